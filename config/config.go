// Package config loads console settings from flags, environment variables
// and an optional config file.
package config

import (
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

const (
	ModeStandalone = "standalone"
	ModeInsights   = "insights"

	EngineNetHTTP = "nethttp"
	EngineNBIO    = "nbio"
)

// Config is the console configuration. Field defaults follow the standalone
// development build.
type Config struct {
	// The host where the API lives. EX: https://localhost:5001
	APIHost string
	// Path to the API on the API host. EX: /api/automation-hub/
	APIBasePath string
	APIToken    string
	APIUsername string
	APIPassword string

	// Backend the development proxy forwards to.
	ProxyHost string
	ProxyPort string

	UIBasePath        string
	PublicPath        string
	UIPort            int
	UseHTTPS          bool
	Debug             bool
	DeploymentMode    string
	NamespaceTerm     string
	TargetEnvironment string
	ExternalLoginURI  string

	StaticDir      string
	TLSCert        string
	TLSKey         string
	AutoTLSDomains []string
	CertCache      string
	Engine         string

	Log logger.Config
}

// Opt is a single command-line option that can also come from the
// environment or a config file.
type Opt struct {
	Key     string
	Env     string
	Default interface{}
	Desc    string
}

// Options lists every setting. Key is the flag and config file name.
var Options = []Opt{
	{"api-host", "API_HOST", "", "host where the API lives, empty when served through the proxy"},
	{"api-base-path", "API_BASE_PATH", "/api/automation-hub/", "path to the API on the API host"},
	{"api-token", "API_TOKEN", "", "API token used by CLI commands"},
	{"api-username", "API_USERNAME", "", "basic auth user used by CLI commands"},
	{"api-password", "API_PASSWORD", "", "basic auth password used by CLI commands"},
	{"api-proxy-host", "API_PROXY_HOST", "localhost", "backend host for the development proxy"},
	{"api-proxy-port", "API_PROXY_PORT", "5001", "backend port for the development proxy"},
	{"ui-base-path", "UI_BASE_PATH", "/ui/", "path on the host where the UI is found"},
	{"public-path", "WEBPACK_PUBLIC_PATH", "/static/galaxy_ng/", "path the built assets are served from"},
	{"ui-port", "UI_PORT", 8002, "port the UI is served over"},
	{"ui-use-https", "UI_USE_HTTPS", false, "serve the UI over https"},
	{"ui-debug", "UI_DEBUG", true, "enable live reload and debug logging"},
	{"deployment-mode", "DEPLOYMENT_MODE", ModeStandalone, "standalone or insights"},
	{"namespace-term", "NAMESPACE_TERM", "namespaces", "word used for namespaces in UI paths"},
	{"target-environment", "TARGET_ENVIRONMENT", "dev", "dev or prod"},
	{"ui-external-login-uri", "UI_EXTERNAL_LOGIN_URI", "/login", "login URI"},
	{"static-dir", "UI_STATIC_DIR", "dist", "directory holding the built UI"},
	{"tls-cert", "UI_TLS_CERT", "", "TLS certificate file"},
	{"tls-key", "UI_TLS_KEY", "", "TLS private key file"},
	{"autotls-domains", "UI_AUTOTLS_DOMAINS", "", "comma separated domains for automatic certificates"},
	{"cert-cache", "UI_CERT_CACHE", "", "directory caching automatic certificates"},
	{"engine", "UI_ENGINE", EngineNetHTTP, "serving engine: nethttp or nbio"},
	{"log-level", "UI_LOG_LEVEL", "info", "log level"},
	{"log-format", "UI_LOG_FORMAT", "console", "log format: console or json"},
}

// New returns a viper instance with defaults and environment bindings for
// every option.
func New() *viper.Viper {
	v := viper.New()
	for _, o := range Options {
		v.SetDefault(o.Key, o.Default)
		// BindEnv only fails without arguments.
		_ = v.BindEnv(o.Key, o.Env)
	}
	return v
}

// BindFlags registers a flag per option on fs and binds it to v.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) error {
	for _, o := range Options {
		switch d := o.Default.(type) {
		case string:
			fs.String(o.Key, d, o.Desc)
		case int:
			fs.Int(o.Key, d, o.Desc)
		case bool:
			fs.Bool(o.Key, d, o.Desc)
		default:
			return errors.Errorf("option %s: unsupported default %T", o.Key, o.Default)
		}
		if err := v.BindPFlag(o.Key, fs.Lookup(o.Key)); err != nil {
			return errors.Wrapf(err, "binding flag %s", o.Key)
		}
	}
	return nil
}

// ReadFile merges a yaml, toml or json config file into v.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "reading config file %s", path)
	}
	return nil
}

// Load builds a Config from v and validates it.
func Load(v *viper.Viper) (Config, error) {
	c := Config{
		APIHost:           v.GetString("api-host"),
		APIBasePath:       v.GetString("api-base-path"),
		APIToken:          v.GetString("api-token"),
		APIUsername:       v.GetString("api-username"),
		APIPassword:       v.GetString("api-password"),
		ProxyHost:         v.GetString("api-proxy-host"),
		ProxyPort:         v.GetString("api-proxy-port"),
		UIBasePath:        v.GetString("ui-base-path"),
		PublicPath:        v.GetString("public-path"),
		UIPort:            v.GetInt("ui-port"),
		UseHTTPS:          v.GetBool("ui-use-https"),
		Debug:             v.GetBool("ui-debug"),
		DeploymentMode:    v.GetString("deployment-mode"),
		NamespaceTerm:     v.GetString("namespace-term"),
		TargetEnvironment: v.GetString("target-environment"),
		ExternalLoginURI:  v.GetString("ui-external-login-uri"),
		StaticDir:         v.GetString("static-dir"),
		TLSCert:           v.GetString("tls-cert"),
		TLSKey:            v.GetString("tls-key"),
		AutoTLSDomains:    splitList(v.GetString("autotls-domains")),
		CertCache:         v.GetString("cert-cache"),
		Engine:            v.GetString("engine"),
		Log:               logger.NewConfig(),
	}
	c.Log.Format = v.GetString("log-format")
	if err := c.Log.Level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		return c, errors.Wrap(err, "log-level")
	}
	if c.Debug && c.Log.Level > zapcore.DebugLevel {
		c.Log.Level = zapcore.DebugLevel
	}
	return c, c.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var err error
	switch c.DeploymentMode {
	case ModeStandalone, ModeInsights:
	default:
		err = multierr.Append(err, errors.Errorf("deployment-mode: unknown mode %q", c.DeploymentMode))
	}
	switch c.TargetEnvironment {
	case "dev", "prod":
	default:
		err = multierr.Append(err, errors.Errorf("target-environment: unknown target %q", c.TargetEnvironment))
	}
	switch c.Engine {
	case EngineNetHTTP, EngineNBIO:
	default:
		err = multierr.Append(err, errors.Errorf("engine: unknown engine %q", c.Engine))
	}
	if c.UIPort < 1 || c.UIPort > 65535 {
		err = multierr.Append(err, errors.Errorf("ui-port: %d out of range", c.UIPort))
	}
	if p, perr := strconv.Atoi(c.ProxyPort); perr != nil || p < 1 || p > 65535 {
		err = multierr.Append(err, errors.Errorf("api-proxy-port: invalid port %q", c.ProxyPort))
	}
	for name, p := range map[string]string{"ui-base-path": c.UIBasePath, "api-base-path": c.APIBasePath, "public-path": c.PublicPath} {
		if !strings.HasPrefix(p, "/") || !strings.HasSuffix(p, "/") {
			err = multierr.Append(err, errors.Errorf("%s: %q must start and end with /", name, p))
		}
	}
	if c.UseHTTPS && len(c.AutoTLSDomains) == 0 && (c.TLSCert == "" || c.TLSKey == "") {
		err = multierr.Append(err, errors.New("ui-use-https: needs tls-cert and tls-key or autotls-domains"))
	}
	return err
}

// ProxyTarget forwards every request below Prefix to Target.
type ProxyTarget struct {
	Prefix string
	Target *url.URL
}

// ProxyTargets returns the development proxy table.
func (c Config) ProxyTargets() []ProxyTarget {
	target := &url.URL{Scheme: "http", Host: net.JoinHostPort(c.ProxyHost, c.ProxyPort)}
	prefixes := []string{"/api/", "/pulp/api/", "/v2/", "/extensions/v2/"}
	out := make([]ProxyTarget, 0, len(prefixes))
	for _, p := range prefixes {
		u := *target
		out = append(out, ProxyTarget{Prefix: p, Target: &u})
	}
	return out
}

// APIBaseURL is the root every API client path is resolved against. Without
// an API host the requests go through the development proxy backend.
func (c Config) APIBaseURL() string {
	host := c.APIHost
	if host == "" {
		host = "http://" + net.JoinHostPort(c.ProxyHost, c.ProxyPort)
	}
	return strings.TrimSuffix(host, "/") + c.APIBasePath
}

// Addr is the listen address of the console server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.UIPort)
}

// Settings is the document served to the UI as settings.json.
func (c Config) Settings() map[string]interface{} {
	return map[string]interface{}{
		"API_HOST":              c.APIHost,
		"API_BASE_PATH":         c.APIBasePath,
		"UI_BASE_PATH":          c.UIBasePath,
		"UI_EXTERNAL_LOGIN_URI": c.ExternalLoginURI,
		"DEPLOYMENT_MODE":       c.DeploymentMode,
		"NAMESPACE_TERM":        c.NamespaceTerm,
		"APPLICATION_NAME":      "Galaxy NG",
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

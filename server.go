// Package hubconsole serves the hub admin console: the built UI, its
// settings, the development proxy to the hub API, live reload and
// metrics.
package hubconsole

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync"
	"time"

	"github.com/lesismal/nbio/nbhttp"
	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/config"
	"github.com/sfi2k7/hubconsole/logger"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/crypto/acme/autocert"
)

const (
	ReloadPath  = "/__reload"
	MetricsPath = "/metrics"

	shutdownTimeout = 5 * time.Second
	reloadDebounce  = 200 * time.Millisecond
)

const reloadSnippet = `<script>(function(){var p=location.protocol==="https:"?"wss://":"ws://";` +
	`var s=new WebSocket(p+location.host+"` + ReloadPath + `");` +
	`s.onmessage=function(e){if(JSON.parse(e.data).type==="reload"){location.reload()}};})();</script>`

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	router  *Router
	metrics *Metrics
	static  *Static
	proxy   *Proxy
	reload  *ReloadHub
	watcher *Watcher

	httpServer *http.Server
	challenge  *http.Server
	engine     *nbhttp.Engine
	done       chan struct{}
	stopOnce   sync.Once
}

// New wires the console routes for cfg.
func New(cfg config.Config, log *zap.Logger) (*Server, error) {
	log = logger.OrNop(log)
	metrics := NewMetrics()

	s := &Server{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		router:  NewRouter(log, metrics),
		proxy:   NewProxy(cfg.ProxyTargets(), log, metrics),
		reload:  NewReloadHub(cfg.Engine == config.EngineNBIO, log, metrics),
		done:    make(chan struct{}),
	}

	static := StaticConfig{
		Root:       cfg.StaticDir,
		BasePath:   cfg.UIBasePath,
		PublicPath: cfg.PublicPath,
		Settings:   cfg.Settings(),
	}
	if cfg.Debug {
		static.IndexSnippet = reloadSnippet
	}
	var err error
	if s.static, err = NewStatic(static, log); err != nil {
		return nil, err
	}

	if cfg.Debug {
		s.router.Use(CORS(DefaultCORSConfig))
		s.router.Get(ReloadPath, s.reload.Handle)
	}
	s.router.Handle(http.MethodGet, MetricsPath, metrics.Handler())
	if cfg.UIBasePath != "/" {
		s.router.Get("/", func(c *Context) {
			c.Redirect(cfg.UIBasePath, http.StatusFound)
		})
	}
	s.proxy.Mount(s.router)
	staticHandler := s.static.Handler()
	s.router.NotFound(func(c *Context) {
		staticHandler.ServeHTTP(c.ResponseWriter, c.Request)
	})

	return s, nil
}

func (s *Server) Router() *Router {
	return s.router
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) ReloadHub() *ReloadHub {
	return s.reload
}

// AssetsChanged drops the cached UI files and reloads connected browsers.
func (s *Server) AssetsChanged(path string) {
	s.static.Invalidate()
	s.reload.Reload(path)
}

// Run serves until ctx is done or serving fails, then shuts down.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.Debug {
		w, err := NewWatcher(s.cfg.StaticDir, reloadDebounce, s.AssetsChanged, s.log)
		if err != nil {
			s.log.Warn("live reload disabled", zap.String("dir", s.cfg.StaticDir), zap.Error(err))
		} else {
			s.watcher = w
			go w.Run(ctx)
		}
	}

	if err := s.prepare(); err != nil {
		return err
	}
	errc := make(chan error, 1)
	go func() { errc <- s.serve() }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	err := s.Shutdown(shutdownCtx)
	if serveErr := <-errc; serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) && err == nil {
		err = serveErr
	}
	return err
}

// prepare builds the listener side of the server for the configured
// engine.
func (s *Server) prepare() error {
	addr := s.cfg.Addr()
	tlsConfig, err := s.tlsConfig()
	if err != nil {
		return err
	}

	s.log.Info("listening",
		zap.String("addr", addr),
		zap.String("engine", s.cfg.Engine),
		zap.Bool("https", tlsConfig != nil),
		zap.String("ui", s.cfg.UIBasePath))

	if s.cfg.Engine == config.EngineNBIO {
		conf := nbhttp.Config{
			Network: "tcp",
			Handler: s.router,
		}
		if tlsConfig != nil {
			conf.AddrsTLS = []string{addr}
			conf.TLSConfig = tlsConfig
		} else {
			conf.Addrs = []string{addr}
		}
		s.engine = nbhttp.NewEngine(conf)
		return nil
	}

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         tlsConfig,
	}
	return nil
}

func (s *Server) serve() error {
	if s.engine != nil {
		if err := s.engine.Start(); err != nil {
			return errors.Wrap(err, "starting nbio engine")
		}
		<-s.done
		return nil
	}

	if s.httpServer.TLSConfig != nil {
		return s.httpServer.ListenAndServeTLS("", "")
	}
	return s.httpServer.ListenAndServe()
}

// tlsConfig is nil when the console is served over plain http.
func (s *Server) tlsConfig() (*tls.Config, error) {
	if !s.cfg.UseHTTPS {
		return nil, nil
	}

	if len(s.cfg.AutoTLSDomains) > 0 {
		manager := &autocert.Manager{
			Prompt:     autocert.AcceptTOS,
			HostPolicy: autocert.HostWhitelist(s.cfg.AutoTLSDomains...),
		}
		if s.cfg.CertCache != "" {
			manager.Cache = autocert.DirCache(s.cfg.CertCache)
		}

		// HTTP-01 challenges are answered on :80.
		s.challenge = &http.Server{
			Addr:              ":80",
			Handler:           manager.HTTPHandler(nil),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			if err := s.challenge.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("challenge handler stopped", zap.Error(err))
			}
		}()

		return &tls.Config{
			GetCertificate: manager.GetCertificate,
			MinVersion:     tls.VersionTLS12,
			NextProtos:     []string{"h2", "http/1.1"},
		}, nil
	}

	cert, err := tls.LoadX509KeyPair(s.cfg.TLSCert, s.cfg.TLSKey)
	if err != nil {
		return nil, errors.Wrap(err, "loading TLS certificate")
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Shutdown closes the live reload connections and stops serving.
func (s *Server) Shutdown(ctx context.Context) error {
	s.reload.Close()

	var err error
	if s.challenge != nil {
		err = multierr.Append(err, errors.Wrap(s.challenge.Shutdown(ctx), "challenge server"))
	}
	if s.engine != nil {
		err = multierr.Append(err, errors.Wrap(s.engine.Shutdown(ctx), "nbio engine"))
	}
	if s.httpServer != nil {
		if serr := s.httpServer.Shutdown(ctx); serr != nil {
			// Connections still open after ctx are dropped.
			err = multierr.Append(err, errors.Wrap(serr, "http server"))
			err = multierr.Append(err, errors.Wrap(s.httpServer.Close(), "closing http server"))
		}
	}
	s.stopOnce.Do(func() { close(s.done) })
	return err
}

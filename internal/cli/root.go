// Package cli implements the hubconsole command line.
package cli

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/api"
	"github.com/sfi2k7/hubconsole/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ValidFormats are the output formats of the read commands.
var ValidFormats = []string{"text", "json"}

// RootOptions holds global flags and the loaded configuration.
type RootOptions struct {
	ConfigFile string
	Format     string

	v      *viper.Viper
	cfg    config.Config
	log    *zap.Logger
	stderr io.Writer
}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: config.New(), stderr: os.Stderr}

	cmd := &cobra.Command{
		Use:           "hubconsole",
		Short:         "Automation hub admin console server and API tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.stderr = cmd.ErrOrStderr()
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&opts.ConfigFile, "config", "", "config file (yaml, toml or json)")
	fs.StringVar(&opts.Format, "format", "text", "output format (text|json)")
	if err := config.BindFlags(fs, opts.v); err != nil {
		panic(err)
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewImagesCommand(opts))
	cmd.AddCommand(NewNamespacesCommand(opts))
	cmd.AddCommand(NewRemotesCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewTOCCommand(opts))

	return cmd
}

func (o *RootOptions) load() error {
	if !isValidFormat(o.Format) {
		return errors.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}
	if err := config.ReadFile(o.v, o.ConfigFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	log, err := cfg.Log.New(o.stderr)
	if err != nil {
		return err
	}
	o.cfg, o.log = cfg, log
	return nil
}

func (o *RootOptions) client() (*api.Client, error) {
	return api.NewClient(api.Config{
		BaseURL:   o.cfg.APIBaseURL(),
		Token:     o.cfg.APIToken,
		Username:  o.cfg.APIUsername,
		Password:  o.cfg.APIPassword,
		Timeout:   30 * time.Second,
		RateLimit: 10,
		Burst:     5,
		Logger:    o.log,
	})
}

func (o *RootOptions) json() bool {
	return o.Format == "json"
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mousephone/client/internal/config"
	"github.com/mousephone/client/internal/logging"
	"github.com/mousephone/client/internal/session"
	"github.com/mousephone/client/internal/transport"
	"github.com/rs/zerolog"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	host       string
	port       string
	logLevel   string
	logFile    string
}

func (f *globalFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "path to a YAML or TOML config file")
	pf.StringVar(&f.host, "host", "", "server IPv4 address")
	pf.StringVar(&f.port, "port", "", "server port")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&f.logFile, "log-file", "", `log file, "-" for stderr`)
}

// load reads the config file and applies any flags that were set
// explicitly on cmd.
func (f globalFlags) load(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(f.configPath)
	if err != nil {
		return nil, err
	}
	changed := cmd.Flags().Changed
	if changed("host") {
		cfg.Server.Host = f.host
	}
	if changed("port") {
		cfg.Server.Port = f.port
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
	return cfg, nil
}

// engine is the session stack every command builds from config.
type engine struct {
	cfg     *config.Config
	log     zerolog.Logger
	closer  io.Closer
	channel *session.Channel
}

// newEngine loads config and builds the channel. A quiet engine logs
// warnings to stderr unless the log flags say otherwise.
func newEngine(cmd *cobra.Command, f globalFlags, quiet bool) (*engine, error) {
	cfg, err := f.load(cmd)
	if err != nil {
		return nil, err
	}
	if quiet {
		if !cmd.Flags().Changed("log-file") {
			cfg.Log.File = logging.Stderr
		}
		if !cmd.Flags().Changed("log-level") {
			cfg.Log.Level = "warn"
		}
	}
	logger, closer, err := logging.New("mousephone", cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	ws := transport.NewWebSocket(transport.Options{
		ConnectTimeout: cfg.Transport.ConnectTimeout,
		WriteTimeout:   cfg.Transport.WriteTimeout,
		PingInterval:   cfg.Transport.PingInterval,
		PongTimeout:    cfg.Transport.PongTimeout,
		CloseTimeout:   cfg.Transport.CloseTimeout,
	}, logger)
	return &engine{
		cfg:     cfg,
		log:     logger,
		closer:  closer,
		channel: session.NewChannel(ws, cfg.Server.Path, logger),
	}, nil
}

func (e *engine) Close() {
	e.channel.Disconnect()
	if err := e.closer.Close(); err != nil {
		e.log.Debug().Err(err).Msg("close log")
	}
}

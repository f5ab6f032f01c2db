// Package cli builds the command shared by the sender binaries. Each binary
// wires in one congestion-control variant; everything else (configuration
// layering, logging, socket setup, metrics) is common
package cli

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/YaoZengzeng/yusend/config"
	"github.com/YaoZengzeng/yusend/exporter"
	"github.com/YaoZengzeng/yusend/transport/sender"
)

// New builds the command for one sender variant binary. build constructs a
// fresh controller for the run
func New(variant, defaultFile string, build func() sender.Controller) *cobra.Command {
	var (
		cfgPath         string
		flagCfg         config.Config
		flagRecvTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:          "sender-" + variant,
		Short:        "Transfer a file over UDP with " + variant + " congestion control",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default(defaultFile)
			if cfgPath != "" {
				if err := cfg.LoadFile(cfgPath); err != nil {
					return err
				}
			}
			if err := cfg.LoadEnv(cmd.Context()); err != nil {
				return err
			}
			flagCfg.RecvTimeout = config.Duration(flagRecvTimeout)
			overlayFlags(&cfg, &flagCfg, cmd.Flags())

			return run(cmd, variant, &cfg, build())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgPath, "config", "", "path to a YAML config file")
	flags.StringVar(&flagCfg.File, "file", defaultFile, "file to transfer")
	flags.StringVar(&flagCfg.BindAddr, "bind-addr", "0.0.0.0:5002", "local address to bind")
	flags.StringVar(&flagCfg.PeerAddr, "peer-addr", "127.0.0.1:5001", "receiver address")
	flags.DurationVar(&flagRecvTimeout, "recv-timeout", 1*time.Second, "socket receive timeout")
	flags.StringVar(&flagCfg.LogLevel, "log-level", "info", "log level (per-packet traces at debug)")
	flags.StringVar(&flagCfg.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the transfer")
	flags.BoolVar(&flagCfg.Progress, "progress", false, "draw a progress bar of acknowledged bytes on stderr")

	return cmd
}

// overlayFlags applies only the flags the user set explicitly, so flags win
// over the environment and the config file
func overlayFlags(dst, src *config.Config, flags *pflag.FlagSet) {
	if flags.Changed("file") {
		dst.File = src.File
	}
	if flags.Changed("bind-addr") {
		dst.BindAddr = src.BindAddr
	}
	if flags.Changed("peer-addr") {
		dst.PeerAddr = src.PeerAddr
	}
	if flags.Changed("recv-timeout") {
		dst.RecvTimeout = src.RecvTimeout
	}
	if flags.Changed("log-level") {
		dst.LogLevel = src.LogLevel
	}
	if flags.Changed("metrics-addr") {
		dst.MetricsAddr = src.MetricsAddr
	}
	if flags.Changed("progress") {
		dst.Progress = src.Progress
	}
}

func run(cmd *cobra.Command, variant string, cfg *config.Config, ctrl sender.Controller) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrapf(err, "parse log level %q", cfg.LogLevel)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(cmd.ErrOrStderr())

	id := xid.New().String()
	log := logger.WithFields(logrus.Fields{"variant": variant, "transfer": id})

	f, err := os.Open(cfg.File)
	if err != nil {
		return errors.Wrapf(err, "open input file %s", cfg.File)
	}
	defer f.Close()

	bindAddr, err := net.ResolveUDPAddr("udp", cfg.BindAddr)
	if err != nil {
		return errors.Wrapf(err, "resolve bind address %s", cfg.BindAddr)
	}
	peer, err := net.ResolveUDPAddr("udp", cfg.PeerAddr)
	if err != nil {
		return errors.Wrapf(err, "resolve peer address %s", cfg.PeerAddr)
	}

	conn, err := net.ListenUDP("udp", bindAddr)
	if err != nil {
		return errors.Wrapf(err, "bind transfer socket %s", cfg.BindAddr)
	}
	defer conn.Close()

	var probes sender.MultiProbe
	if cfg.MetricsAddr != "" {
		exp := exporter.New(id)
		probes = append(probes, exp)
		go func() {
			if err := http.ListenAndServe(cfg.MetricsAddr, exp.Handler()); err != nil {
				log.WithError(err).Warn("metrics endpoint failed")
			}
		}()
	}
	if cfg.Progress {
		if st, err := f.Stat(); err == nil {
			probes = append(probes, newProgressProbe(st.Size()))
		}
	}

	snd := sender.New(conn, peer, f, ctrl, &sender.Options{
		Logger:      log,
		Probe:       probes,
		RecvTimeout: cfg.RecvTimeout.Std(),
	})

	log.WithFields(logrus.Fields{"file": cfg.File, "peer": cfg.PeerAddr}).Info("starting transfer")
	report, err := snd.Run()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), report)
	return nil
}

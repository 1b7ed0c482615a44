package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"periph.io/x/periph/conn/physic"

	"github.com/cgxeiji/ads7953"
	"github.com/cgxeiji/ads7953/bus"
	"github.com/cgxeiji/ads7953/config"
)

func main() {
	var configFile string
	var levelFlag string
	var port string
	var metricsListen string

	pflag.StringVarP(&configFile, "config", "c", "ads7953.yaml", "Configuration file")
	pflag.StringVarP(&levelFlag, "level", "l", "info", "Set log level")
	pflag.StringVar(&port, "port", "", "SPI port, overrides the configuration file")
	pflag.StringVar(&metricsListen, "metrics", "", "Address serving /metrics, overrides the configuration file")
	pflag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(levelFlag); err != nil {
		logger.Fatal().Err(err).Msg("invalid log level")
	} else {
		logger = logger.Level(level)
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load configuration")
	}
	if pflag.CommandLine.Changed("port") {
		cfg.Bus.Port = port
	}
	if pflag.CommandLine.Changed("metrics") {
		cfg.Metrics.Listen = metricsListen
	}

	link, err := bus.Open(bus.Config{
		Port:       cfg.Bus.Port,
		Speed:      physic.Frequency(cfg.Bus.SpeedHz) * physic.Hertz,
		ChipSelect: cfg.Bus.ChipSelect,
		Busy:       cfg.Bus.Busy,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("could not open bus")
	}
	defer link.Close()

	adc, err := ads7953.New(link, link.CS(), link.Busy(),
		ads7953.Channels(cfg.Sampling.Channels),
		ads7953.Depth(cfg.Sampling.Depth),
		ads7953.Window(cfg.Sampling.Window),
		ads7953.ReadyTimeout(cfg.Sampling.ReadyTimeout),
		ads7953.Gain2x(cfg.Sampling.Gain2x),
		ads7953.ExternalRef(cfg.Sampling.ExternalRef),
		ads7953.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not initialize ADS7953")
	}
	defer adc.Close()

	if cfg.Metrics.Listen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				logger.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, adc, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("sampling failed")
		os.Exit(1)
	}
}

// run samples windows back to back until ctx is canceled.
func run(ctx context.Context, adc *ads7953.Device, log zerolog.Logger) error {
	var results ads7953.Snapshot
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := adc.StartSampling(); err != nil {
			return err
		}
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := adc.Step(ctx); err != nil {
				return err
			}
			done, err := adc.IsWindowComplete()
			if err != nil {
				return err
			}
			if done {
				break
			}
		}

		if !adc.Results(&results) {
			continue
		}
		ev := log.Info().Uint32("timestamp_ms", results.Timestamp)
		for ch, avg := range results.Averages {
			ev = ev.Uint16(fmt.Sprintf("ch%02d", ch), avg)
		}
		ev.Msg("window results")
	}
}

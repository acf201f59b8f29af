package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LdDl/ball-tracker/internal/config"
	"github.com/LdDl/ball-tracker/internal/logging"
	"github.com/LdDl/ball-tracker/internal/metrics"
	"github.com/LdDl/ball-tracker/internal/record"
	"github.com/LdDl/ball-tracker/track"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	videoFlag    = flag.String("video", "", "Path to video file or camera device id (required)")
	configFlag   = flag.String("config", "", "Path to JSON configuration file")
	loopFlag     = flag.Bool("loop", false, "Rewind video and reset estimator at the end of stream")
	noWindowFlag = flag.Bool("no-window", false, "Don't show annotated frames")
	outFlag      = flag.String("out", "", "Write annotated video (Motion JPEG) into this file")
	csvFlag      = flag.String("csv", "", "Write per-frame results into CSV file")
	dbFlag       = flag.String("db", "", "Write per-frame results into SQLite database")
	plotFlag     = flag.String("plot", "", "Render trajectory of the last session into PNG file")
	metricsFlag  = flag.String("metrics", "", "Serve Prometheus metrics on this address, e.g. ':9100'")
	logLevelFlag = flag.String("log-level", "", "Log level: debug, info, warn, error")
	prettyFlag   = flag.Bool("pretty", false, "Human readable logs")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *videoFlag == "" {
		fmt.Fprintln(os.Stderr, "-video is required")
		flag.Usage()
		return 1
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't load configuration: %v\n", err)
		return 1
	}
	applyFlags(&cfg)

	logger := logging.New(cfg.LogLevel, *prettyFlag)
	trackerCfg, err := cfg.TrackerConfig()
	if err != nil {
		logger.Error().Err(err).Msg("Invalid tracker configuration")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runSession(ctx, logger, cfg, trackerCfg); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("Interrupted")
			return 0
		}
		logger.Error().Err(err).Str("source", *videoFlag).Msg("Tracking failed")
		return 1
	}
	return 0
}

// applyFlags overrides configuration with flags given explicitly
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "loop":
			cfg.Loop = *loopFlag
		case "metrics":
			cfg.MetricsAddr = *metricsFlag
		case "log-level":
			cfg.LogLevel = *logLevelFlag
		}
	})
}

func runSession(ctx context.Context, logger zerolog.Logger, cfg config.Config, trackerCfg track.Config) error {
	source, err := track.OpenVideo(*videoFlag)
	if err != nil {
		return err
	}
	pipeline, err := track.NewPipeline(trackerCfg)
	if err != nil {
		source.Close()
		return err
	}
	logger.Info().
		Str("source", source.URI()).
		Bool("device", source.IsDevice()).
		Float64("source_fps", source.FPS()).
		Str("model", string(trackerCfg.Model)).
		Str("session", pipeline.Session().String()).
		Msg("Source opened")

	options := []track.Option{
		track.WithLogger(logger),
		track.WithLoop(cfg.Loop),
		track.WithFrameSize(cfg.FrameWidth, cfg.FrameHeight),
		track.WithFPS(cfg.FPS),
	}

	recorders, err := openRecorders()
	if err != nil {
		source.Close()
		pipeline.Close()
		return err
	}
	defer func() {
		if err := recorders.Close(); err != nil {
			logger.Error().Err(err).Msg("Can't close recorders")
		}
	}()
	if len(recorders) > 0 {
		options = append(options, track.WithSinks(record.Sink(recorders)))
	}

	if cfg.MetricsAddr != "" {
		m := metrics.New(nil, nil)
		options = append(options, track.WithObserver(m.Observe))
		server := &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsMux(m),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Str("addr", cfg.MetricsAddr).Msg("Metrics server failed")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("Serving metrics")
	}

	if *outFlag != "" {
		fps := cfg.FPS
		if fps <= 0 {
			fps = source.FPS()
		}
		writer := track.NewVideoWriterSink(*outFlag, fps)
		defer writer.Close()
		options = append(options, track.WithSinks(writer))
	}
	if !*noWindowFlag {
		window := track.NewWindowSink("Tennis Ball Tracker")
		defer window.Close()
		options = append(options, track.WithSinks(window))
	} else if *outFlag == "" {
		options = append(options, track.WithAnnotate(false))
	}

	session := track.NewSession(source, pipeline, options...)
	return session.Run(ctx)
}

func openRecorders() (record.Multi, error) {
	recorders := record.Multi{}
	if *csvFlag != "" {
		recorder, err := record.NewCSVRecorder(*csvFlag)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, recorder)
	}
	if *dbFlag != "" {
		recorder, err := record.NewSQLiteRecorder(*dbFlag)
		if err != nil {
			recorders.Close()
			return nil, err
		}
		recorders = append(recorders, recorder)
	}
	if *plotFlag != "" {
		recorders = append(recorders, record.NewPlotRecorder(*plotFlag))
	}
	return recorders, nil
}

func metricsMux(m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

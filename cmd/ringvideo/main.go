package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/zsiec/ringvideo/internal/capture"
	"github.com/zsiec/ringvideo/internal/config"
	"github.com/zsiec/ringvideo/internal/errors"
	"github.com/zsiec/ringvideo/internal/index"
	"github.com/zsiec/ringvideo/internal/logger"
	"github.com/zsiec/ringvideo/internal/metrics"
	"github.com/zsiec/ringvideo/internal/output"
	"github.com/zsiec/ringvideo/internal/pipeline"
	"github.com/zsiec/ringvideo/internal/report"
	"github.com/zsiec/ringvideo/pkg/version"
)

func main() {
	os.Exit(run())
}

func run() (code int) {
	var (
		configPath  string
		outDir      string
		mode        string
		flip        string
		noCache     bool
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&outDir, "out", "", "Output directory (overrides output.dir)")
	flag.StringVar(&mode, "mode", "", "Decode mode: color or monochrome (overrides decode.mode)")
	flag.StringVar(&flip, "flip", "", "Display correction: rows or buffer (overrides decode.flip)")
	flag.BoolVar(&noCache, "no-cache", false, "Do not read or store the frame index cache")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <capture>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	// Show version and exit if requested
	if showVersion {
		fmt.Println(version.GetInfo().String())
		return errors.ExitOK
	}

	if flag.NArg() != 1 {
		flag.Usage()
		return errors.ExitValidation
	}
	capturePath := flag.Arg(0)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return errors.ExitValidation
	}
	applyFlags(cfg, outDir, mode, flip, noCache)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid flags: %v\n", err)
		return errors.ExitValidation
	}

	// Initialize logger
	log, err := logger.New(&cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return errors.ExitInternal
	}

	handler := errors.NewErrorHandler(log)
	defer func() {
		if r := recover(); r != nil {
			code = handler.HandlePanic(r)
		}
	}()

	log.WithFields(version.GetInfo().Fields()).Info("Starting ringvideo decoder")
	log.WithField("config_path", configPath).Debug("Configuration loaded")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.WithField("signal", sig).Info("Received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	src, err := capture.Open(capturePath, cfg.Decode.MaxCaptureSize)
	if err != nil {
		appErr := errors.Classify(err).WithDetails(map[string]interface{}{"capture": capturePath})
		return handler.Handle(appErr)
	}
	defer src.Close()
	logger.WithCapture(log, src.Name(), src.Size()).Info("Capture opened")

	var opts []pipeline.RunnerOption
	if cfg.Cache.Enabled {
		store, err := index.Dial(ctx, &cfg.Cache, log)
		if err != nil {
			// the cache only saves a marker search
			log.WithError(err).Warn("Frame index cache disabled")
		} else {
			defer store.Close()
			opts = append(opts, pipeline.WithStore(store))
		}
	}

	sinks := output.Open(&cfg.Output)
	summary, runErr := pipeline.NewRunner(cfg.Decode, log, opts...).Run(ctx, src, sinks)
	closeErr := sinks.Close()

	if runErr == nil && cfg.Output.Index {
		path := filepath.Join(cfg.Output.Dir, output.IndexFile)
		if err := output.WriteIndex(path, summary.Index); err != nil {
			closeErr = err
		}
	}

	fmt.Println(report.Render(summary))
	writeMetrics(cfg, log)

	if runErr != nil {
		return handler.Handle(runErr)
	}
	if closeErr != nil {
		return handler.Handle(errors.WrapIOError(closeErr, "output incomplete").
			WithDetails(map[string]interface{}{"output": cfg.Output.Dir}))
	}

	fields := logrus.Fields{"output": cfg.Output.Dir}
	if audio, ok := sinks.Audio(); ok && audio.Samples() > 0 {
		fields["audio_crc"] = fmt.Sprintf("%08x", audio.Checksum())
	}
	log.WithFields(fields).Info("Decode complete")
	return errors.ExitOK
}

func applyFlags(cfg *config.Config, outDir, mode, flip string, noCache bool) {
	if outDir != "" {
		cfg.Output.Dir = outDir
	}
	if mode != "" {
		cfg.Decode.Mode = mode
	}
	if flip != "" {
		cfg.Decode.Flip = flip
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
}

func writeMetrics(cfg *config.Config, log *logrus.Logger) {
	if !cfg.Metrics.Enabled {
		return
	}
	if err := metrics.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		log.WithError(err).Warn("Failed to write metrics textfile")
		return
	}
	log.WithField("textfile", cfg.Metrics.Textfile).Debug("Metrics written")
}

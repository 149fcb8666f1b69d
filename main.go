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

	"vidbatch/config"
	"vidbatch/credentials"
	"vidbatch/encoder"
	"vidbatch/failures"
	"vidbatch/job"
	"vidbatch/logger"
	"vidbatch/models"
	"vidbatch/routes"
	"vidbatch/success"
)

func main() {
	var (
		inputDir  = flag.String("in", "", "input folder with videos and animated WebP images")
		outputDir = flag.String("out", "", "output folder for the MP4 files")
		fps       = flag.Int("fps", models.DefaultFrameRate, fmt.Sprintf("frame rate for animated images (%d-%d)", models.MinFrameRate, models.MaxFrameRate))
		destKey   = flag.String("dest", "", "key of a registered destination to publish outputs to")
		serve     = flag.Bool("serve", false, "run the HTTP server instead of a single batch")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s -in <folder> -out <folder> [-fps N] [-dest key]\n  %s -serve\n\nFlags:\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Invalid configuration: %v", err)
	}
	setupLogging(cfg)
	defer logger.Close()

	if err := os.MkdirAll(config.GetDataDir(), 0755); err != nil {
		logger.Fatalf("Failed to create data directory: %v", err)
	}
	closeStores := openStores()
	defer closeStores()

	encoder.RegisterDefaults(encoder.Tools{FFmpeg: cfg.FFmpegPath, Magick: cfg.MagickPath})

	if *serve {
		runServer(cfg)
		return
	}

	code := runOnce(cfg, models.JobParams{InputDir: *inputDir, OutputDir: *outputDir, FrameRate: *fps}, *destKey)
	closeStores()
	logger.Close()
	os.Exit(code)
}

func setupLogging(cfg *config.Config) {
	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("%v, using info", err)
		level = logger.INFO
	}
	logger.SetLevel(level)
	if cfg.LogFile != "" {
		if err := logger.Init(cfg.LogFile, true); err != nil {
			logger.Fatalf("Failed to open log file: %v", err)
		}
	}
}

// openStores opens the history, failure and destination stores and returns
// a function closing all of them.
func openStores() func() {
	logger.Debug("Initializing destinations database")
	if err := credentials.OpenDB(config.GetDestinationsDBPath()); err != nil {
		logger.Fatalf("Failed to initialize destination store: %v", err)
	}

	logger.Debug("Initializing failures database")
	if err := failures.Init(config.GetFailuresDBPath()); err != nil {
		logger.Fatalf("Failed to initialize failure store: %v", err)
	}

	logger.Debug("Initializing history database")
	if err := success.Init(config.GetHistoryDBPath()); err != nil {
		logger.Fatalf("Failed to initialize history store: %v", err)
	}
	logger.Info("Databases initialized successfully")

	return func() {
		success.Close()
		failures.Close()
		credentials.CloseDB()
	}
}

// runOnce converts one folder and returns the process exit code: 0 when the
// batch completed, 2 for a selection problem, 1 for a failed batch.
func runOnce(cfg *config.Config, params models.JobParams, destKey string) int {
	opts := job.Options{WorkDir: cfg.WorkDir}
	if destKey != "" {
		dest, err := credentials.GetDestination(destKey)
		if err != nil {
			logger.Errorf("Cannot publish: %v", err)
			return 2
		}
		opts.Destination = &dest
	}

	o, err := job.Run(context.Background(), params, opts)
	if err != nil {
		logger.Error(err)
		return 2
	}

	switch {
	case o.IsWarning():
		fmt.Fprintln(os.Stderr, o.Message)
		return 2
	case o.Kind == job.OutcomeFailed:
		fmt.Fprintln(os.Stderr, o.Message)
		return 1
	}
	fmt.Println(o.Message)
	for _, out := range o.Outputs {
		fmt.Println(out)
	}
	if o.PublishErr != nil {
		fmt.Fprintf(os.Stderr, "Publishing failed: %v\n", o.PublishErr)
	}
	return 0
}

func runServer(cfg *config.Config) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("Starting cleanup routine (retention %v)", cfg.HistoryRetention)
	go cleanupRoutine(ctx, cfg.HistoryRetention)

	routes.Configure(routes.Settings{
		JWTSecret: cfg.JWTSecret,
		JWTIssuer: cfg.JWTIssuer,
		WorkDir:   cfg.WorkDir,
	})
	if cfg.JWTSecret == "" {
		logger.Warn("VIDBATCH_JWT_SECRET is not set; mutating endpoints are open")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           routes.NewMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Server shutdown: %v", err)
		}
	}()

	logger.Infof("vidbatch server listening on %s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("Server failed to start: %v", err)
	}
}

// cleanupRoutine periodically drops history and failure records older than
// maxAge.
func cleanupRoutine(ctx context.Context, maxAge time.Duration) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Cleanup routine stopped")
			return
		case <-ticker.C:
			logger.Debugf("Cleaning up records older than %v", maxAge)
			if err := success.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old history records: %v", err)
			}
			if err := failures.CleanupOldRecords(maxAge); err != nil {
				logger.Errorf("Failed to cleanup old failure records: %v", err)
			}
			logger.Info("Scheduled cleanup completed")
		}
	}
}

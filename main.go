package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/crowd-go/mode"
	"github.com/khaledhikmat/crowd-go/pipeline"
	"github.com/khaledhikmat/crowd-go/service/config"
	"github.com/khaledhikmat/crowd-go/service/data"
	"github.com/khaledhikmat/crowd-go/service/lgr"
)

const defaultConfigPath = "./settings/crowd.yaml"

const (
	exitOK = iota
	exitReadFailure
	exitUnavailable
)

var modeProcessors = map[string]mode.Processor{
	"local":    mode.Camera,
	"camera":   mode.Camera,
	"mjpeg":    mode.Stream,
	"stream":   mode.Stream,
	"simulate": mode.Simulate,
}

func main() {
	os.Exit(run())
}

func run() int {
	rootCtx := context.Background()
	canxCtx, canxFn := context.WithCancel(rootCtx)
	defer canxFn()

	// Hook up a signal handler to cancel the context
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		lgr.Logger.Info(
			"received kill signal",
			slog.Any("signal", sig),
		)
		canxFn()
	}()

	// Load env vars if we are in DEV mode
	if os.Getenv("RUN_TIME_ENV") == "dev" || os.Getenv("RUN_TIME_ENV") == "" {
		lgr.Logger.Info("loading env vars from .env file")
		err := godotenv.Load()
		if err != nil {
			lgr.Logger.Warn("error loading .env file", slog.Any("error", xerrors.New(err.Error())))
		}
	}

	configPath := os.Getenv("CROWD_CONFIG")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	cfgSvc, err := config.NewViper(configPath)
	if err != nil {
		lgr.Logger.Error("invalid configuration",
			slog.String("path", configPath),
			slog.Any("error", err),
		)
		return exitUnavailable
	}

	lgr.Init(cfgSvc.GetLogLevel(), cfgSvc.GetLogFile())

	// Give every sensor iteration a real span so its records carry trace ids
	shutdownTracing := lgr.InitTracing()
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			lgr.Logger.Warn("error shutting down tracing", slog.Any("error", err))
		}
	}()

	modeType := cfgSvc.GetSourceType()
	args := os.Args[1:]
	if len(args) > 0 {
		modeType = args[0]
	}

	modeProc, ok := modeProcessors[modeType]
	if !ok {
		lgr.Logger.Error("invalid mode", slog.String("mode", modeType))
		return exitUnavailable
	}

	// Create the services needed for the mode processor
	dataSvc := data.NewFilesDB(cfgSvc)

	// Create mode processor result
	modeProcResult := make(chan error, 1)

	// Start the mode processor
	go func() {
		modeProcResult <- modeProc(canxCtx, cfgSvc, dataSvc)
	}()

	// Wait for cancellation or the mode proc
	select {
	case <-canxCtx.Done():
		lgr.Logger.Info(
			"crowd sensor context cancelled",
		)
		// WARNING: this has to be bigger than the mode processor shutdown time,
		// which config.ShutdownWait derives from the alert, device and server timeouts
		err = waitForProcessor(modeProcResult, config.ShutdownWait(cfgSvc))

	case err = <-modeProcResult:
	}

	if err != nil {
		lgr.Logger.Error(
			"crowd sensor mode processor exited",
			slog.Any("error", err),
		)
	}

	return exitCode(err)
}

// waitForProcessor gives the mode processor `period` to finish its last
// iteration and persist its stats.
func waitForProcessor(modeProcResult chan error, period time.Duration) error {
	lgr.Logger.Info(
		"crowd sensor is waiting for the mode processor to exit",
		slog.Duration("period", period),
	)

	timer := time.NewTimer(period)
	defer timer.Stop()

	select {
	case <-timer.C:
		lgr.Logger.Info(
			"crowd sensor shutdown waiting period expired. Exiting now",
			slog.Duration("period", period),
		)
		return nil

	case err := <-modeProcResult:
		return err
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case xerrors.Is(err, pipeline.ErrFrameRead):
		return exitReadFailure
	default:
		return exitUnavailable
	}
}

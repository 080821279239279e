package mode

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	goxerrors "github.com/mdobak/go-xerrors"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/crowd-go/model"
	"github.com/khaledhikmat/crowd-go/pipeline"
	"github.com/khaledhikmat/crowd-go/service/config"
	"github.com/khaledhikmat/crowd-go/service/data"
	"github.com/khaledhikmat/crowd-go/service/device"
	"github.com/khaledhikmat/crowd-go/service/inference"
	"github.com/khaledhikmat/crowd-go/service/lgr"
	"github.com/khaledhikmat/crowd-go/service/metrics"
	"github.com/khaledhikmat/crowd-go/service/sms"
	"github.com/khaledhikmat/crowd-go/service/vision"
)

const simulateFrameInterval = 100 * time.Millisecond

// Camera senses a local capture device.
func Camera(canxCtx context.Context, cfgSvc config.IService, dataSvc data.IService) error {
	return runSensor(canxCtx, cfgSvc, dataSvc, model.SourceLocal)
}

// Stream senses a remote MJPEG stream over HTTP.
func Stream(canxCtx context.Context, cfgSvc config.IService, dataSvc data.IService) error {
	return runSensor(canxCtx, cfgSvc, dataSvc, model.SourceMJPEG)
}

// Simulate runs the full loop on synthetic frames and random crowd counts.
// It needs no camera and no model weights.
func Simulate(canxCtx context.Context, cfgSvc config.IService, dataSvc data.IService) error {
	return runSensor(canxCtx, cfgSvc, dataSvc, model.SourceSimulate)
}

func newCamera(cfgSvc config.IService, runID, sourceType string) model.Camera {
	camera := model.Camera{
		ID:          runID,
		SourceType:  sourceType,
		DeviceIndex: cfgSvc.GetSourceDeviceIndex(),
		StreamURL:   cfgSvc.GetSourceStreamURL(),
	}

	switch sourceType {
	case model.SourceMJPEG:
		camera.Name = camera.StreamURL
	case model.SourceSimulate:
		camera.Name = "simulated"
	default:
		camera.Name = fmt.Sprintf("camera-%d", camera.DeviceIndex)
	}
	return camera
}

// runSensor wires the configured services into a sensor and runs it until it
// stops. A read-failure stop is reported as an ErrFrameRead error.
func runSensor(canxCtx context.Context, cfgSvc config.IService, dataSvc data.IService, sourceType string) error {
	runID := uuid.NewString()
	camera := newCamera(cfgSvc, runID, sourceType)

	lgr.Logger.Info(
		"crowd sensor starting....",
		slog.String("runID", runID),
		slog.String("camera", camera.Name),
		slog.String("source", sourceType),
		slog.Int("threshold", cfgSvc.GetCrowdAlertThreshold()),
	)

	if prev, ok, err := data.PreviousRun(dataSvc); err != nil {
		lgr.Logger.Warn(
			"error retrieving previous run stats",
			slog.Any("error", err),
		)
	} else if ok {
		lgr.Logger.Info(
			"previous run",
			slog.String("runID", prev.RunID),
			slog.String("reason", prev.StopReason),
			slog.Int("frames", prev.Frames),
			slog.Int("alerts", prev.Alerts),
		)
	}

	// Create an error stream
	errorStream := make(chan interface{}, 10)

	// Load the detector before opening the source so a bad model never
	// leaves a capture handle open
	var source pipeline.FrameSource
	var detector pipeline.Detector
	if sourceType == model.SourceSimulate {
		detector = inference.NewFake(time.Now().UnixNano(), cfgSvc.GetCrowdAlertThreshold()+3)
		source = &pipeline.SyntheticSource{Interval: simulateFrameInterval}
	} else {
		yolo, err := vision.NewYoloDetector(cfgSvc.GetDetectorModelPath(),
			cfgSvc.GetDetectorLabelsPath(),
			cfgSvc.GetDetectorInputSize(),
			cfgSvc.GetDetectorNMSThreshold())
		if err != nil {
			procError(dataSvc, model.GenError("crowd_sensor", err, nil, "error loading detector"))
			return xerrors.Errorf("loading detector: %w", err)
		}
		defer yolo.Close()
		detector = yolo

		capture, err := vision.Open(camera, cfgSvc.GetSourceWarmup())
		if err != nil {
			procError(dataSvc, model.GenError("crowd_sensor", err, map[string]interface{}{
				"camera": camera.Name,
			}, "error opening video source"))
			return err
		}
		source = capture
	}

	mtrcs := metrics.New()

	var publisher *pipeline.DevicePublisher
	if deviceSvc := device.NewFromConfig(cfgSvc); deviceSvc != nil {
		defer deviceSvc.Close()
		publisher = pipeline.NewDevicePublisher(deviceSvc, cfgSvc.GetDeviceMinInterval())
		lgr.Logger.Info(
			"device updates enabled",
			slog.String("transport", cfgSvc.GetDeviceTransport()),
			slog.Duration("minInterval", publisher.Throttle.Interval()),
		)
	}

	alerter := pipeline.NewThresholdAlerter(sms.NewFromConfig(cfgSvc),
		cfgSvc.GetCrowdAlertThreshold(),
		cfgSvc.GetAlertMinInterval(),
		cfgSvc.GetTwilioFrom(),
		cfgSvc.GetTwilioTo(),
		cfgSvc.GetAlertMessage(),
		cfgSvc.GetAlertTimeout())
	alerter.Journal = dataSvc
	alerter.RunID = runID
	alerter.Camera = camera.Name
	lgr.Logger.Info(
		"crowd alerts enabled",
		slog.Int("threshold", alerter.Threshold),
		slog.Duration("minInterval", alerter.Throttle.Interval()),
	)

	displays := []pipeline.Display{}
	if cfgSvc.GetDisplayWindow() {
		displays = append(displays, vision.NewWindow(config.DisplayTitleFor(cfgSvc, sourceType)))
	}

	var server *http.Server
	if addr := cfgSvc.GetHTTPAddr(); addr != "" {
		preview := vision.NewPreview()
		displays = append(displays, preview)
		server = startServer(addr, mtrcs, preview, errorStream)
	}

	var journal *pipeline.DetectionJournal
	if path := cfgSvc.GetDetectionLogFile(); path != "" {
		journal = pipeline.NewDetectionJournal(path, camera.Name)
		defer journal.Close()
	}

	sensor := &pipeline.Sensor{
		RunID:           runID,
		Camera:          camera,
		Source:          source,
		Counter:         pipeline.NewPersonCounter(detector, cfgSvc.GetDetectorPersonClass(), cfgSvc.GetDetectorConfidence()),
		Publisher:       publisher,
		Alerter:         alerter,
		Displays:        displays,
		Journal:         journal,
		Metrics:         mtrcs,
		MaxReadFailures: cfgSvc.GetSourceMaxReadFailures(),
	}

	sensorResult := make(chan pipeline.StopReason, 1)
	go func() {
		sensorResult <- sensor.Run(canxCtx)
	}()

	// Wait for the sensor to stop while persisting errors from the side goroutines
	var reason pipeline.StopReason
	for {
		select {
		case reason = <-sensorResult:
			goto resume

		case e := <-errorStream:
			procError(dataSvc, e)
		}
	}

resume:
	procStats(dataSvc, sensor.Stats())
	procAlerts(dataSvc, runID, sensor.Stats())

	if server != nil {
		lgr.Logger.Info(
			"crowd sensor is waiting for the http server to exit",
		)

		period := time.Duration(cfgSvc.GetModeMaxShutdownTime()) * time.Second
		shutdownCtx, cancel := context.WithTimeout(context.Background(), period)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Logger.Warn(
				"http server shutdown waiting period expired",
				slog.Duration("period", period),
				slog.Any("error", err),
			)
		}
	}

	// Drain whatever the side goroutines reported while shutting down
drain:
	for {
		select {
		case e := <-errorStream:
			procError(dataSvc, e)
		default:
			break drain
		}
	}

	if reason == pipeline.StopReadFailure {
		return goxerrors.WithStackTrace(xerrors.Errorf("sensor %s stopped after %d consecutive failures: %w",
			runID, cfgSvc.GetSourceMaxReadFailures(), pipeline.ErrFrameRead), 0)
	}

	return nil
}

// startServer exposes /metrics and the annotated /stream on addr.
func startServer(addr string, mtrcs *metrics.Metrics, preview *vision.Preview, errorStream chan interface{}) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", mtrcs.Handler())
	mux.Handle("/stream", preview.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		lgr.Logger.Info(
			"http server listening",
			slog.String("addr", addr),
		)

		if err := server.ListenAndServe(); err != nil && !xerrors.Is(err, http.ErrServerClosed) {
			errorStream <- model.GenError("crowd_sensor_http",
				err,
				map[string]interface{}{"addr": addr},
				"error serving metrics and stream")
		}
	}()

	return server
}

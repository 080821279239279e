package vision

import (
	"log/slog"
	"time"

	goxerrors "github.com/mdobak/go-xerrors"
	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/crowd-go/model"
	"github.com/khaledhikmat/crowd-go/pipeline"
	"github.com/khaledhikmat/crowd-go/service/lgr"
)

// Frame is a captured OpenCV image. Closing it releases the native memory.
type Frame struct {
	mat gocv.Mat
}

func NewFrame(mat gocv.Mat) *Frame {
	return &Frame{mat: mat}
}

func (f *Frame) Mat() *gocv.Mat {
	return &f.mat
}

func (f *Frame) Close() error {
	return f.mat.Close()
}

// CaptureSource reads frames from a local camera or an MJPEG URL.
type CaptureSource struct {
	camera  model.Camera
	capture *gocv.VideoCapture
}

// Open opens the camera source and, for network streams, waits warmup
// before the first read so the stream can buffer.
func Open(camera model.Camera, warmup time.Duration) (*CaptureSource, error) {
	capture, err := gocv.OpenVideoCapture(camera.Source())
	if err != nil {
		return nil, goxerrors.WithStackTrace(xerrors.Errorf("%s (%v): %w", camera.Name, err, pipeline.ErrSourceUnavailable), 0)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, goxerrors.WithStackTrace(xerrors.Errorf("%s: %w", camera.Name, pipeline.ErrSourceUnavailable), 0)
	}

	lgr.Logger.Info(
		"video source opened",
		slog.String("camera", camera.Name),
		slog.String("source", camera.SourceType),
		slog.String("openCV", gocv.Version()),
	)

	if camera.SourceType == model.SourceMJPEG && warmup > 0 {
		time.Sleep(warmup)
	}

	return &CaptureSource{
		camera:  camera,
		capture: capture,
	}, nil
}

func (s *CaptureSource) Read() (pipeline.FrameData, error) {
	img := gocv.NewMat()
	if ok := s.capture.Read(&img); !ok || img.Empty() {
		img.Close() // Crucial to close the image to avoid memory leaks
		return pipeline.FrameData{}, xerrors.Errorf("%s: %w", s.camera.Name, pipeline.ErrFrameRead)
	}

	return pipeline.FrameData{
		Image:     NewFrame(img),
		Timestamp: time.Now(),
	}, nil
}

func (s *CaptureSource) Close() error {
	return s.capture.Close()
}

// matOf returns the OpenCV image behind a frame, or a blank canvas for
// frames that carry no pixels. The second value reports whether the caller
// owns the returned Mat.
func matOf(frame pipeline.FrameData) (*gocv.Mat, bool) {
	if f, ok := frame.Image.(*Frame); ok {
		return f.Mat(), false
	}

	blank := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	return &blank, true
}

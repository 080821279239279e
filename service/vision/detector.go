package vision

import (
	"image"
	"log/slog"
	"os"

	goxerrors "github.com/mdobak/go-xerrors"
	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/crowd-go/pipeline"
	"github.com/khaledhikmat/crowd-go/service/inference"
	"github.com/khaledhikmat/crowd-go/service/lgr"
)

// YoloDetector runs a YOLO ONNX model through the OpenCV DNN module.
// The underlying net is not thread-safe; use one detector per goroutine.
type YoloDetector struct {
	net       gocv.Net
	labels    []string
	inputSize int
	nms       float32
}

func NewYoloDetector(modelPath, labelsPath string, inputSize int, nms float32) (*YoloDetector, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, goxerrors.WithStackTrace(xerrors.Errorf("no yolo model at %s: %w", modelPath, err), 0)
	}

	labels, err := inference.LoadLabels(labelsPath)
	if err != nil {
		return nil, err
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		return nil, goxerrors.WithStackTrace(xerrors.Errorf("error reading yolo model %s", modelPath), 0)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, goxerrors.WithStackTrace(xerrors.Errorf("error setting backend: %w", err), 0)
	}

	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, goxerrors.WithStackTrace(xerrors.Errorf("error setting target: %w", err), 0)
	}

	lgr.Logger.Info("yolo detector loaded",
		slog.String("model", modelPath),
		slog.Int("labels", len(labels)),
		slog.Int("inputSize", inputSize),
	)

	return &YoloDetector{
		net:       net,
		labels:    labels,
		inputSize: inputSize,
		nms:       nms,
	}, nil
}

func (d *YoloDetector) Infer(frame pipeline.FrameData, classes []int, confidence float32) ([]pipeline.Box, error) {
	f, ok := frame.Image.(*Frame)
	if !ok {
		return nil, xerrors.Errorf("unsupported frame image %T", frame.Image)
	}

	mat := f.Mat()
	if mat.Empty() {
		return nil, xerrors.New("empty frame")
	}

	blob := gocv.BlobFromImage(*mat, 1.0/255.0, image.Pt(d.inputSize, d.inputSize), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	output := d.net.Forward("")
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return nil, xerrors.Errorf("reading dnn output: %w", err)
	}

	dets, err := inference.Decode(data, output.Size(), inference.Options{
		InputSize:   d.inputSize,
		FrameWidth:  mat.Cols(),
		FrameHeight: mat.Rows(),
		Confidence:  confidence,
		Classes:     classes,
		NMS:         d.nms,
	})
	if err != nil {
		return nil, err
	}

	boxes := make([]pipeline.Box, 0, len(dets))
	for _, det := range dets {
		boxes = append(boxes, pipeline.Box{
			Rect:       det.Rect,
			ClassID:    det.ClassID,
			Label:      inference.Label(d.labels, det.ClassID),
			Confidence: det.Confidence,
		})
	}
	return boxes, nil
}

func (d *YoloDetector) Close() error {
	return d.net.Close()
}

package vision

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"net/http"

	"github.com/hybridgroup/mjpeg"
	"gocv.io/x/gocv"

	"github.com/khaledhikmat/crowd-go/pipeline"
	"github.com/khaledhikmat/crowd-go/service/lgr"
)

var (
	boxColor   = color.RGBA{0, 255, 0, 0}
	countColor = color.RGBA{0, 0, 255, 0}
)

// annotate returns a copy of the frame with person boxes and the crowd count
// drawn on it. The caller closes the copy.
func annotate(frame pipeline.FrameData, result pipeline.DetectionResult) gocv.Mat {
	src, owned := matOf(frame)
	out := src.Clone()
	if owned {
		src.Close()
	}

	for _, b := range result.Boxes {
		gocv.Rectangle(&out, b.Rect, boxColor, 2)
		gocv.PutText(&out, fmt.Sprintf("%s %.2f", b.Label, b.Confidence), image.Pt(b.Rect.Min.X, b.Rect.Min.Y-5),
			gocv.FontHersheySimplex, 0.5, boxColor, 1)
	}

	gocv.PutText(&out, fmt.Sprintf("Crowd Count: %d", result.Count), image.Pt(10, 30),
		gocv.FontHersheySimplex, 1, countColor, 2)
	return out
}

// Window shows annotated frames in a desktop window; pressing q asks the
// sensor to stop.
type Window struct {
	window *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{
		window: gocv.NewWindow(title),
	}
}

func (w *Window) Render(frame pipeline.FrameData, result pipeline.DetectionResult) {
	img := annotate(frame, result)
	defer img.Close()

	w.window.IMShow(img)
}

func (w *Window) QuitRequested() bool {
	return w.window.WaitKey(1)&0xFF == 'q'
}

func (w *Window) Close() error {
	return w.window.Close()
}

// Preview serves annotated frames as an MJPEG stream over HTTP.
type Preview struct {
	stream *mjpeg.Stream
}

func NewPreview() *Preview {
	return &Preview{
		stream: mjpeg.NewStream(),
	}
}

func (p *Preview) Handler() http.Handler {
	return p.stream
}

func (p *Preview) Render(frame pipeline.FrameData, result pipeline.DetectionResult) {
	img := annotate(frame, result)
	defer img.Close()

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		lgr.Logger.Warn(
			"error encoding preview frame",
			slog.Any("error", err),
		)
		return
	}
	defer buf.Close()

	p.stream.UpdateJPEG(buf.GetBytes())
}

func (p *Preview) QuitRequested() bool {
	return false
}

func (p *Preview) Close() error {
	return nil
}

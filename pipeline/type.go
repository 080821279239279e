package pipeline

import (
	"image"
	"time"

	"golang.org/x/xerrors"
)

var (
	// ErrSourceUnavailable is returned when a video source cannot be opened.
	ErrSourceUnavailable = xerrors.New("video source unavailable")
	// ErrFrameRead is returned by a FrameSource when a read fails.
	ErrFrameRead = xerrors.New("frame read failed")
	// ErrEndOfStream is returned by a FrameSource that has no more frames.
	ErrEndOfStream = xerrors.New("end of video stream")
)

// Image is an opaque captured image. The capture layer decides what backs it.
type Image interface {
	Close() error
}

type FrameData struct {
	Image     Image
	Timestamp time.Time
}

type Box struct {
	Rect       image.Rectangle
	ClassID    int
	Label      string
	Confidence float32
}

type DetectionResult struct {
	Count int
	Boxes []Box
}

// FrameSource yields frames until it returns ErrEndOfStream. Any other error
// is a failed read; the source may recover on the next call.
type FrameSource interface {
	Read() (FrameData, error)
	Close() error
}

// Detector returns the boxes of the requested classes at or above confidence.
type Detector interface {
	Infer(frame FrameData, classes []int, confidence float32) ([]Box, error)
}

// Display renders annotated frames and reports operator quit requests.
type Display interface {
	Render(frame FrameData, result DetectionResult)
	QuitRequested() bool
	Close() error
}

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "RUNNING"
	}
	return "STOPPED"
}

type StopReason string

const (
	StopCancelled   StopReason = "cancelled"
	StopOperator    StopReason = "operator_quit"
	StopEndOfStream StopReason = "end_of_stream"
	StopReadFailure StopReason = "read_failure"
)

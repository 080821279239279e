package inference

import "image"

// Detection is one decoded box in frame pixel coordinates.
type Detection struct {
	Rect       image.Rectangle
	ClassID    int
	Confidence float32
}

// Options controls how a raw YOLO output tensor is decoded.
type Options struct {
	// InputSize is the square network input the coordinates refer to.
	InputSize   int
	FrameWidth  int
	FrameHeight int
	Confidence  float32
	// Classes limits decoding to these class ids; empty keeps every class.
	Classes []int
	// NMS is the IoU above which overlapping boxes of one class are dropped.
	NMS float32
}

type Layout int

const (
	// LayoutUnknown is returned for tensors that match neither export.
	LayoutUnknown Layout = iota
	// LayoutV5 is 1 x N x (5+classes): box, objectness, class scores per row.
	LayoutV5
	// LayoutV8 is 1 x (4+classes) x N: one column per candidate, no objectness.
	LayoutV8
)

func (l Layout) String() string {
	switch l {
	case LayoutV5:
		return "yolov5"
	case LayoutV8:
		return "yolov8"
	default:
		return "unknown"
	}
}

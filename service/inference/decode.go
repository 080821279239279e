package inference

import (
	"image"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// DetectLayout guesses the export layout from the output dims. YOLOv8 puts
// the candidates last, so they outnumber the channels.
func DetectLayout(dims []int) Layout {
	if len(dims) != 3 || dims[0] != 1 {
		return LayoutUnknown
	}

	switch {
	case dims[2] > dims[1] && dims[1] > 4:
		return LayoutV8
	case dims[1] >= dims[2] && dims[2] > 5:
		return LayoutV5
	default:
		return LayoutUnknown
	}
}

// Decode turns a raw output tensor into detections above the confidence
// threshold, scaled to the frame and reduced by NMS.
func Decode(data []float32, dims []int, opts Options) ([]Detection, error) {
	layout := DetectLayout(dims)
	if layout == LayoutUnknown {
		return nil, xerrors.Errorf("unexpected output dims %v", dims)
	}
	if len(data) < dims[1]*dims[2] {
		return nil, xerrors.Errorf("output has %d values, dims %v need %d", len(data), dims, dims[1]*dims[2])
	}
	if opts.InputSize <= 0 {
		return nil, xerrors.New("input size must be positive")
	}

	var candidates []Detection
	if layout == LayoutV8 {
		candidates = decodeV8(data, dims[1], dims[2], opts)
	} else {
		candidates = decodeV5(data, dims[1], dims[2], opts)
	}

	return NMS(candidates, opts.NMS), nil
}

func decodeV5(data []float32, rows, cols int, opts Options) []Detection {
	var dets []Detection
	for i := 0; i < rows; i++ {
		row := data[i*cols : (i+1)*cols]
		objectness := row[4]
		if objectness < opts.Confidence {
			continue
		}

		classID, score := bestClass(row[5:], opts.Classes)
		conf := objectness * score
		if classID < 0 || conf < opts.Confidence {
			continue
		}

		dets = append(dets, Detection{
			Rect:       toRect(row[0], row[1], row[2], row[3], opts),
			ClassID:    classID,
			Confidence: conf,
		})
	}
	return dets
}

func decodeV8(data []float32, channels, anchors int, opts Options) []Detection {
	at := func(c, a int) float32 {
		return data[c*anchors+a]
	}

	scores := make([]float32, channels-4)
	var dets []Detection
	for a := 0; a < anchors; a++ {
		for c := range scores {
			scores[c] = at(c+4, a)
		}

		classID, conf := bestClass(scores, opts.Classes)
		if classID < 0 || conf < opts.Confidence {
			continue
		}

		dets = append(dets, Detection{
			Rect:       toRect(at(0, a), at(1, a), at(2, a), at(3, a), opts),
			ClassID:    classID,
			Confidence: conf,
		})
	}
	return dets
}

func bestClass(scores []float32, classes []int) (int, float32) {
	classID := -1
	best := float32(0)

	if len(classes) > 0 {
		for _, id := range classes {
			if id >= 0 && id < len(scores) && scores[id] > best {
				best = scores[id]
				classID = id
			}
		}
		return classID, best
	}

	for id, s := range scores {
		if s > best {
			best = s
			classID = id
		}
	}
	return classID, best
}

// toRect converts a center box in network input pixels to frame pixels.
func toRect(cx, cy, w, h float32, opts Options) image.Rectangle {
	sx := float32(opts.FrameWidth) / float32(opts.InputSize)
	sy := float32(opts.FrameHeight) / float32(opts.InputSize)

	x0 := int((cx - w/2) * sx)
	y0 := int((cy - h/2) * sy)
	x1 := int((cx + w/2) * sx)
	y1 := int((cy + h/2) * sy)
	return image.Rect(x0, y0, x1, y1)
}

// NMS keeps the most confident box of every overlapping group within a
// class. A threshold of 0 or less disables suppression.
func NMS(dets []Detection, threshold float32) []Detection {
	if threshold <= 0 || len(dets) < 2 {
		return dets
	}

	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Confidence > sorted[j].Confidence
	})

	kept := make([]Detection, 0, len(sorted))
	for _, d := range sorted {
		suppressed := false
		for _, k := range kept {
			if k.ClassID == d.ClassID && IoU(k.Rect, d.Rect) > threshold {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, d)
		}
	}
	return kept
}

func IoU(a, b image.Rectangle) float32 {
	inter := a.Intersect(b)
	if inter.Empty() {
		return 0
	}

	ia := area(inter)
	union := area(a) + area(b) - ia
	if union <= 0 {
		return 0
	}
	return float32(ia) / float32(union)
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}

// LoadLabels reads one class name per line.
func LoadLabels(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("reading labels %s: %w", path, err)
	}

	var labels []string
	for _, l := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		labels = append(labels, strings.TrimSpace(l))
	}
	return labels, nil
}

// Label returns the class name for id, or "class-<id>" when unknown.
func Label(labels []string, id int) string {
	if id >= 0 && id < len(labels) && labels[id] != "" {
		return labels[id]
	}
	return "class-" + strconv.Itoa(id)
}

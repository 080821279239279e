package inference

import (
	"image"
	"math/rand"

	"github.com/khaledhikmat/crowd-go/pipeline"
)

// Fake is a detector that ignores pixels. It replays Counts in order, or
// random-walks between 0 and Max when no counts are scripted.
type Fake struct {
	Counts []int
	Max    int

	rng   *rand.Rand
	last  int
	calls int
}

func NewFake(seed int64, max int, counts ...int) *Fake {
	return &Fake{
		Counts: counts,
		Max:    max,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (d *Fake) Infer(_ pipeline.FrameData, classes []int, confidence float32) ([]pipeline.Box, error) {
	n := d.next()

	classID := 0
	if len(classes) > 0 {
		classID = classes[0]
	}
	if confidence <= 0 {
		confidence = 0.5
	}

	boxes := make([]pipeline.Box, n)
	for i := range boxes {
		x := 20 + i*60
		boxes[i] = pipeline.Box{
			Rect:       image.Rect(x, 100, x+50, 260),
			ClassID:    classID,
			Label:      "person",
			Confidence: confidence,
		}
	}
	return boxes, nil
}

func (d *Fake) next() int {
	d.calls++
	if len(d.Counts) > 0 {
		if d.calls <= len(d.Counts) {
			return d.Counts[d.calls-1]
		}
		return d.Counts[len(d.Counts)-1]
	}

	step := d.rng.Intn(3) - 1
	d.last += step
	if d.last < 0 {
		d.last = 0
	}
	if d.last > d.Max {
		d.last = d.Max
	}
	return d.last
}

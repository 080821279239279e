package pipeline

// PersonCounter turns detector output into a per-frame person count.
type PersonCounter struct {
	Detector   Detector
	Classes    []int
	Confidence float32
}

func NewPersonCounter(detector Detector, personClass int, confidence float32) *PersonCounter {
	return &PersonCounter{
		Detector:   detector,
		Classes:    []int{personClass},
		Confidence: confidence,
	}
}

// Count only counts boxes that match the class filter and the confidence
// threshold, whatever the detector returns.
func (c *PersonCounter) Count(frame FrameData) (DetectionResult, error) {
	boxes, err := c.Detector.Infer(frame, c.Classes, c.Confidence)
	if err != nil {
		return DetectionResult{}, err
	}

	kept := make([]Box, 0, len(boxes))
	for _, b := range boxes {
		if b.Confidence < c.Confidence || !c.wanted(b.ClassID) {
			continue
		}
		kept = append(kept, b)
	}

	return DetectionResult{
		Count: len(kept),
		Boxes: kept,
	}, nil
}

func (c *PersonCounter) wanted(classID int) bool {
	if len(c.Classes) == 0 {
		return true
	}
	for _, id := range c.Classes {
		if id == classID {
			return true
		}
	}
	return false
}

package pipeline

import (
	"time"
)

type syntheticImage struct {
	Seq int
}

func (syntheticImage) Close() error {
	return nil
}

// SyntheticSource produces placeholder frames at a fixed pace. It stands in
// for a camera in simulate mode; pair it with a detector that ignores pixels.
type SyntheticSource struct {
	// Frames is the number of frames before end of stream; 0 means endless.
	Frames   int
	Interval time.Duration

	seq int
}

func (s *SyntheticSource) Read() (FrameData, error) {
	if s.Frames > 0 && s.seq >= s.Frames {
		return FrameData{}, ErrEndOfStream
	}

	if s.Interval > 0 {
		time.Sleep(s.Interval)
	}

	s.seq++
	return FrameData{
		Image:     syntheticImage{Seq: s.seq},
		Timestamp: time.Now(),
	}, nil
}

func (s *SyntheticSource) Close() error {
	return nil
}

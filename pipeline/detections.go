package pipeline

import (
	"encoding/json"
	"image"
	"io"
	"time"

	"github.com/natefinch/lumberjack"
	"golang.org/x/xerrors"
)

// DetectionJournal appends one JSON line per frame with persons in it.
type DetectionJournal struct {
	camera string
	w      io.WriteCloser
}

type journalBox struct {
	Label      string          `json:"label"`
	Confidence float32         `json:"confidence"`
	Rect       image.Rectangle `json:"rect"`
}

type journalEntry struct {
	Time       string       `json:"time"`
	Camera     string       `json:"camera"`
	Count      int          `json:"count"`
	Detections []journalBox `json:"detections"`
}

// NewDetectionJournal writes to a rotated file at path.
func NewDetectionJournal(path, camera string) *DetectionJournal {
	return newDetectionJournal(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 5,
		MaxAge:     7,    // days
		Compress:   true, // compress old logs
	}, camera)
}

func newDetectionJournal(w io.WriteCloser, camera string) *DetectionJournal {
	return &DetectionJournal{
		camera: camera,
		w:      w,
	}
}

func (j *DetectionJournal) Record(frame FrameData, result DetectionResult) error {
	if result.Count == 0 {
		return nil // skip logging if none match
	}

	entry := journalEntry{
		Time:       frame.Timestamp.Format(time.RFC3339Nano),
		Camera:     j.camera,
		Count:      result.Count,
		Detections: make([]journalBox, 0, len(result.Boxes)),
	}
	for _, b := range result.Boxes {
		entry.Detections = append(entry.Detections, journalBox{
			Label:      b.Label,
			Confidence: b.Confidence,
			Rect:       b.Rect,
		})
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return xerrors.Errorf("marshaling detections: %w", err)
	}

	if _, err := j.w.Write(append(data, '\n')); err != nil {
		return xerrors.Errorf("writing detection journal: %w", err)
	}
	return nil
}

func (j *DetectionJournal) Close() error {
	return j.w.Close()
}

package config

import (
	"time"

	"github.com/khaledhikmat/crowd-go/model"
)

const defaultDisplayTitle = "YOLOv8 Crowd Detector"

// shutdownMargin covers closing the capture, the displays and the data files
// once the last notification has returned.
const shutdownMargin = 3 * time.Second

// DisplayTitleFor picks the preview window title. A configured title always
// wins; the built-in one is qualified by the source it shows.
func DisplayTitleFor(svc IService, sourceType string) string {
	title := svc.GetDisplayTitle()
	if title != "" && title != defaultDisplayTitle {
		return title
	}

	switch sourceType {
	case model.SourceMJPEG:
		return defaultDisplayTitle + " (ESP32 Stream)"
	case model.SourceSimulate:
		return defaultDisplayTitle + " (Simulation)"
	default:
		return defaultDisplayTitle
	}
}

// ShutdownWait is how long the process waits for a cancelled mode processor.
// The last iteration may still be sending an alert and a device update, and
// the http server gets its own grace period after that.
func ShutdownWait(svc IService) time.Duration {
	return svc.GetAlertTimeout() +
		svc.GetDeviceTimeout() +
		time.Duration(svc.GetModeMaxShutdownTime())*time.Second +
		shutdownMargin
}

package model

import (
	"fmt"
	"runtime/debug"
)

type CustomError struct {
	Processor  string                 `json:"processor"`
	Inner      error                  `json:"innerError"`
	Message    string                 `json:"message"`
	StackTrace string                 `json:"stackTrace"`
	Misc       map[string]interface{} `json:"misc"`
}

func (e CustomError) Error() string {
	if e.Inner == nil {
		return fmt.Sprintf("%s: %s", e.Processor, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Processor, e.Message, e.Inner)
}

func (e CustomError) Unwrap() error {
	return e.Inner
}

func GenError(proc string, err error, misc map[string]interface{}, messagef string, args ...interface{}) CustomError {
	return CustomError{
		Processor:  proc,
		Inner:      err,
		Message:    fmt.Sprintf(messagef, args...),
		StackTrace: string(debug.Stack()),
		Misc:       misc,
	}
}

// Camera describes the video source a sensor reads from.
type Camera struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	SourceType  string `json:"sourceType"`  // local, mjpeg or simulate
	DeviceIndex int    `json:"deviceIndex"` // local capture device
	StreamURL   string `json:"streamUrl"`   // MJPEG over HTTP
}

// Source returns what the capture layer should open for this camera.
func (c Camera) Source() interface{} {
	if c.SourceType == SourceMJPEG {
		return c.StreamURL
	}
	return c.DeviceIndex
}

const (
	SourceLocal    = "local"
	SourceMJPEG    = "mjpeg"
	SourceSimulate = "simulate"
)

type SensorStats struct {
	RunID           string  `json:"runId"`
	Camera          string  `json:"camera"`
	StopReason      string  `json:"stopReason"`
	Frames          int     `json:"frames"`
	ReadErrors      int     `json:"readErrors"`
	DetectErrors    int     `json:"detectErrors"`
	Uptime          int64   `json:"uptime"`
	FPS             int     `json:"fps"`
	AvgDetectTime   float64 `json:"avgDetectTime"`
	MaxCount        int     `json:"maxCount"`
	Exceedances     int     `json:"exceedances"`
	DeviceUpdates   int     `json:"deviceUpdates"`
	DeviceFailures  int     `json:"deviceFailures"`
	DeviceThrottled int     `json:"deviceThrottled"`
	Alerts          int     `json:"alerts"`
	AlertFailures   int     `json:"alertFailures"`
	AlertsThrottled int     `json:"alertsThrottled"`
	Timestamp       int64   `json:"timestamp"`
}

// AlertRecord is one alert attempt, successful or not.
type AlertRecord struct {
	RunID     string `json:"runId"`
	Camera    string `json:"camera"`
	Count     int    `json:"count"`
	Threshold int    `json:"threshold"`
	Body      string `json:"body"`
	Delivered bool   `json:"delivered"`
	Error     string `json:"error,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

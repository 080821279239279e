package config

import (
	"time"
)

type hardcodedService struct {
}

// NewHardCoded returns the built-in defaults. The viper service layers a
// config file and the environment on top of these.
func NewHardCoded() IService {
	return &hardcodedService{}
}

func (svc *hardcodedService) GetModeMaxShutdownTime() int {
	return 5
}

func (svc *hardcodedService) GetDataFolder() string {
	return "./settings"
}

func (svc *hardcodedService) GetLogLevel() string {
	return "info"
}

func (svc *hardcodedService) GetLogFile() string {
	return ""
}

func (svc *hardcodedService) GetDetectionLogFile() string {
	return ""
}

func (svc *hardcodedService) GetHTTPAddr() string {
	return ""
}

func (svc *hardcodedService) GetSourceType() string {
	return "local"
}

func (svc *hardcodedService) GetSourceDeviceIndex() int {
	return 0
}

func (svc *hardcodedService) GetSourceStreamURL() string {
	return "http://192.168.4.1:81/stream"
}

// The ESP32-CAM stream needs a moment after opening before frames flow.
func (svc *hardcodedService) GetSourceWarmup() time.Duration {
	return 2 * time.Second
}

func (svc *hardcodedService) GetSourceMaxReadFailures() int {
	return 1
}

func (svc *hardcodedService) GetDetectorModelPath() string {
	return "./models/yolov8n.onnx"
}

func (svc *hardcodedService) GetDetectorLabelsPath() string {
	return "./models/coco.names"
}

func (svc *hardcodedService) GetDetectorConfidence() float32 {
	return 0.5
}

// COCO class 0
func (svc *hardcodedService) GetDetectorPersonClass() int {
	return 0
}

func (svc *hardcodedService) GetDetectorInputSize() int {
	return 640
}

func (svc *hardcodedService) GetDetectorNMSThreshold() float32 {
	return 0.45
}

func (svc *hardcodedService) GetCrowdAlertThreshold() int {
	return 5
}

func (svc *hardcodedService) GetDeviceTransport() string {
	return "http"
}

func (svc *hardcodedService) GetDeviceURL() string {
	return "http://192.168.4.2:80/update-count"
}

func (svc *hardcodedService) GetDeviceTimeout() time.Duration {
	return 500 * time.Millisecond
}

func (svc *hardcodedService) GetDeviceMinInterval() time.Duration {
	return 1 * time.Second
}

func (svc *hardcodedService) GetMQTTBroker() string {
	return "localhost:1883"
}

func (svc *hardcodedService) GetMQTTTopic() string {
	return "crowd/count"
}

func (svc *hardcodedService) GetMQTTClientID() string {
	return "crowd-go"
}

func (svc *hardcodedService) GetAlertProvider() string {
	return "log"
}

func (svc *hardcodedService) GetAlertMinInterval() time.Duration {
	return 60 * time.Second
}

func (svc *hardcodedService) GetAlertTimeout() time.Duration {
	return 5 * time.Second
}

func (svc *hardcodedService) GetAlertMessage() string {
	return "Crowd Alert: %d people detected!"
}

func (svc *hardcodedService) GetTwilioAccountSID() string {
	return ""
}

func (svc *hardcodedService) GetTwilioAuthToken() string {
	return ""
}

func (svc *hardcodedService) GetTwilioFrom() string {
	return ""
}

func (svc *hardcodedService) GetTwilioTo() string {
	return ""
}

func (svc *hardcodedService) GetDisplayWindow() bool {
	return true
}

func (svc *hardcodedService) GetDisplayTitle() string {
	return defaultDisplayTitle
}

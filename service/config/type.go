package config

import "time"

type IService interface {
	GetModeMaxShutdownTime() int
	GetDataFolder() string
	GetLogLevel() string
	GetLogFile() string
	GetDetectionLogFile() string
	GetHTTPAddr() string

	GetSourceType() string
	GetSourceDeviceIndex() int
	GetSourceStreamURL() string
	GetSourceWarmup() time.Duration
	GetSourceMaxReadFailures() int

	GetDetectorModelPath() string
	GetDetectorLabelsPath() string
	GetDetectorConfidence() float32
	GetDetectorPersonClass() int
	GetDetectorInputSize() int
	GetDetectorNMSThreshold() float32

	GetCrowdAlertThreshold() int

	GetDeviceTransport() string
	GetDeviceURL() string
	GetDeviceTimeout() time.Duration
	GetDeviceMinInterval() time.Duration
	GetMQTTBroker() string
	GetMQTTTopic() string
	GetMQTTClientID() string

	GetAlertProvider() string
	GetAlertMinInterval() time.Duration
	GetAlertTimeout() time.Duration
	GetAlertMessage() string
	GetTwilioAccountSID() string
	GetTwilioAuthToken() string
	GetTwilioFrom() string
	GetTwilioTo() string

	GetDisplayWindow() bool
	GetDisplayTitle() string
}

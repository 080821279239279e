package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/xerrors"
)

type viperService struct {
	v *viper.Viper
}

// NewViper loads an optional YAML file and then the CROWD_* environment on
// top of the hardcoded defaults. A missing file is not an error.
func NewViper(path string) (IService, error) {
	v := viper.New()
	setDefaults(v, NewHardCoded())

	v.SetEnvPrefix("CROWD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, xerrors.Errorf("reading config file %s: %w", path, err)
			}
		}
	}

	svc := &viperService{v: v}
	if err := Validate(svc); err != nil {
		return nil, err
	}

	return svc, nil
}

func setDefaults(v *viper.Viper, d IService) {
	v.SetDefault("mode.max_shutdown_time", d.GetModeMaxShutdownTime())
	v.SetDefault("data.folder", d.GetDataFolder())
	v.SetDefault("log.level", d.GetLogLevel())
	v.SetDefault("log.file", d.GetLogFile())
	v.SetDefault("detection_log", d.GetDetectionLogFile())
	v.SetDefault("http.addr", d.GetHTTPAddr())

	v.SetDefault("source.type", d.GetSourceType())
	v.SetDefault("source.device_index", d.GetSourceDeviceIndex())
	v.SetDefault("source.stream_url", d.GetSourceStreamURL())
	v.SetDefault("source.warmup", d.GetSourceWarmup())
	v.SetDefault("source.max_read_failures", d.GetSourceMaxReadFailures())

	v.SetDefault("detector.model_path", d.GetDetectorModelPath())
	v.SetDefault("detector.labels_path", d.GetDetectorLabelsPath())
	v.SetDefault("detector.confidence", d.GetDetectorConfidence())
	v.SetDefault("detector.person_class", d.GetDetectorPersonClass())
	v.SetDefault("detector.input_size", d.GetDetectorInputSize())
	v.SetDefault("detector.nms", d.GetDetectorNMSThreshold())

	v.SetDefault("crowd.alert_threshold", d.GetCrowdAlertThreshold())

	v.SetDefault("device.transport", d.GetDeviceTransport())
	v.SetDefault("device.url", d.GetDeviceURL())
	v.SetDefault("device.timeout", d.GetDeviceTimeout())
	v.SetDefault("device.min_interval", d.GetDeviceMinInterval())
	v.SetDefault("mqtt.broker", d.GetMQTTBroker())
	v.SetDefault("mqtt.topic", d.GetMQTTTopic())
	v.SetDefault("mqtt.client_id", d.GetMQTTClientID())

	v.SetDefault("alert.provider", d.GetAlertProvider())
	v.SetDefault("alert.min_interval", d.GetAlertMinInterval())
	v.SetDefault("alert.timeout", d.GetAlertTimeout())
	v.SetDefault("alert.message", d.GetAlertMessage())
	v.SetDefault("twilio.account_sid", d.GetTwilioAccountSID())
	v.SetDefault("twilio.auth_token", d.GetTwilioAuthToken())
	v.SetDefault("twilio.from", d.GetTwilioFrom())
	v.SetDefault("twilio.to", d.GetTwilioTo())

	v.SetDefault("display.window", d.GetDisplayWindow())
	v.SetDefault("display.title", d.GetDisplayTitle())
}

// Validate rejects configurations the sensor cannot run with.
func Validate(svc IService) error {
	switch svc.GetSourceType() {
	case "local":
		if svc.GetSourceDeviceIndex() < 0 {
			return xerrors.Errorf("source.device_index must be >= 0, got %d", svc.GetSourceDeviceIndex())
		}
	case "mjpeg":
		if svc.GetSourceStreamURL() == "" {
			return xerrors.New("source.stream_url is required for mjpeg sources")
		}
	case "simulate":
	default:
		return xerrors.Errorf("unknown source.type %q", svc.GetSourceType())
	}

	if svc.GetSourceMaxReadFailures() < 1 {
		return xerrors.Errorf("source.max_read_failures must be >= 1, got %d", svc.GetSourceMaxReadFailures())
	}

	if c := svc.GetDetectorConfidence(); c <= 0 || c > 1 {
		return xerrors.Errorf("detector.confidence must be in (0, 1], got %v", c)
	}

	if svc.GetCrowdAlertThreshold() < 0 {
		return xerrors.Errorf("crowd.alert_threshold must be >= 0, got %d", svc.GetCrowdAlertThreshold())
	}

	if svc.GetDeviceMinInterval() < 0 || svc.GetAlertMinInterval() < 0 {
		return xerrors.New("device.min_interval and alert.min_interval must not be negative")
	}

	if svc.GetDeviceTimeout() <= 0 || svc.GetAlertTimeout() <= 0 {
		return xerrors.New("device.timeout and alert.timeout must be positive")
	}

	switch svc.GetDeviceTransport() {
	case "http":
		if svc.GetDeviceURL() == "" {
			return xerrors.New("device.url is required for the http transport")
		}
	case "mqtt":
		if svc.GetMQTTBroker() == "" || svc.GetMQTTTopic() == "" {
			return xerrors.New("mqtt.broker and mqtt.topic are required for the mqtt transport")
		}
	case "none":
	default:
		return xerrors.Errorf("unknown device.transport %q", svc.GetDeviceTransport())
	}

	switch svc.GetAlertProvider() {
	case "twilio":
		if svc.GetTwilioAccountSID() == "" || svc.GetTwilioAuthToken() == "" ||
			svc.GetTwilioFrom() == "" || svc.GetTwilioTo() == "" {
			return xerrors.New("twilio.account_sid, twilio.auth_token, twilio.from and twilio.to are required")
		}
	case "log":
	default:
		return xerrors.Errorf("unknown alert.provider %q", svc.GetAlertProvider())
	}

	if !strings.Contains(svc.GetAlertMessage(), "%d") {
		return xerrors.New("alert.message must contain a %d verb for the count")
	}

	return nil
}

func (svc *viperService) GetModeMaxShutdownTime() int {
	return svc.v.GetInt("mode.max_shutdown_time")
}

func (svc *viperService) GetDataFolder() string {
	return svc.v.GetString("data.folder")
}

func (svc *viperService) GetLogLevel() string {
	return svc.v.GetString("log.level")
}

func (svc *viperService) GetLogFile() string {
	return svc.v.GetString("log.file")
}

func (svc *viperService) GetDetectionLogFile() string {
	return svc.v.GetString("detection_log")
}

func (svc *viperService) GetHTTPAddr() string {
	return svc.v.GetString("http.addr")
}

func (svc *viperService) GetSourceType() string {
	return strings.ToLower(svc.v.GetString("source.type"))
}

func (svc *viperService) GetSourceDeviceIndex() int {
	return svc.v.GetInt("source.device_index")
}

func (svc *viperService) GetSourceStreamURL() string {
	return svc.v.GetString("source.stream_url")
}

func (svc *viperService) GetSourceWarmup() time.Duration {
	return svc.v.GetDuration("source.warmup")
}

func (svc *viperService) GetSourceMaxReadFailures() int {
	return svc.v.GetInt("source.max_read_failures")
}

func (svc *viperService) GetDetectorModelPath() string {
	return svc.v.GetString("detector.model_path")
}

func (svc *viperService) GetDetectorLabelsPath() string {
	return svc.v.GetString("detector.labels_path")
}

func (svc *viperService) GetDetectorConfidence() float32 {
	return float32(svc.v.GetFloat64("detector.confidence"))
}

func (svc *viperService) GetDetectorPersonClass() int {
	return svc.v.GetInt("detector.person_class")
}

func (svc *viperService) GetDetectorInputSize() int {
	return svc.v.GetInt("detector.input_size")
}

func (svc *viperService) GetDetectorNMSThreshold() float32 {
	return float32(svc.v.GetFloat64("detector.nms"))
}

func (svc *viperService) GetCrowdAlertThreshold() int {
	return svc.v.GetInt("crowd.alert_threshold")
}

func (svc *viperService) GetDeviceTransport() string {
	return strings.ToLower(svc.v.GetString("device.transport"))
}

func (svc *viperService) GetDeviceURL() string {
	return svc.v.GetString("device.url")
}

func (svc *viperService) GetDeviceTimeout() time.Duration {
	return svc.v.GetDuration("device.timeout")
}

func (svc *viperService) GetDeviceMinInterval() time.Duration {
	return svc.v.GetDuration("device.min_interval")
}

func (svc *viperService) GetMQTTBroker() string {
	return svc.v.GetString("mqtt.broker")
}

func (svc *viperService) GetMQTTTopic() string {
	return svc.v.GetString("mqtt.topic")
}

func (svc *viperService) GetMQTTClientID() string {
	return svc.v.GetString("mqtt.client_id")
}

func (svc *viperService) GetAlertProvider() string {
	return strings.ToLower(svc.v.GetString("alert.provider"))
}

func (svc *viperService) GetAlertMinInterval() time.Duration {
	return svc.v.GetDuration("alert.min_interval")
}

func (svc *viperService) GetAlertTimeout() time.Duration {
	return svc.v.GetDuration("alert.timeout")
}

func (svc *viperService) GetAlertMessage() string {
	return svc.v.GetString("alert.message")
}

func (svc *viperService) GetTwilioAccountSID() string {
	return svc.v.GetString("twilio.account_sid")
}

func (svc *viperService) GetTwilioAuthToken() string {
	return svc.v.GetString("twilio.auth_token")
}

func (svc *viperService) GetTwilioFrom() string {
	return svc.v.GetString("twilio.from")
}

func (svc *viperService) GetTwilioTo() string {
	return svc.v.GetString("twilio.to")
}

func (svc *viperService) GetDisplayWindow() bool {
	return svc.v.GetBool("display.window")
}

func (svc *viperService) GetDisplayTitle() string {
	return svc.v.GetString("display.title")
}

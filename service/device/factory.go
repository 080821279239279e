package device

import (
	"github.com/khaledhikmat/crowd-go/service/config"
)

// NewFromConfig picks the transport named by device.transport. It returns
// nil when device updates are disabled.
func NewFromConfig(cfgSvc config.IService) IService {
	switch cfgSvc.GetDeviceTransport() {
	case "mqtt":
		return NewMQTT(cfgSvc.GetMQTTBroker(), cfgSvc.GetMQTTClientID(), cfgSvc.GetMQTTTopic(), cfgSvc.GetDeviceTimeout())
	case "http":
		return NewHTTP(cfgSvc.GetDeviceURL(), cfgSvc.GetDeviceTimeout())
	default:
		return nil
	}
}

package sms

import (
	"github.com/khaledhikmat/crowd-go/service/config"
)

// NewFromConfig picks the provider named by alert.provider.
func NewFromConfig(cfgSvc config.IService) IService {
	if cfgSvc.GetAlertProvider() == "twilio" {
		return NewTwilio(cfgSvc.GetTwilioAccountSID(), cfgSvc.GetTwilioAuthToken(), cfgSvc.GetAlertTimeout())
	}
	return NewLog()
}

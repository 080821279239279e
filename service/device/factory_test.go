package device

import (
	"testing"

	"github.com/khaledhikmat/crowd-go/service/config"
)

type transportConfig struct {
	config.IService
	transport string
}

func (c transportConfig) GetDeviceTransport() string {
	return c.transport
}

func TestNewFromConfig(t *testing.T) {
	base := config.NewHardCoded()

	svc := NewFromConfig(transportConfig{IService: base, transport: "http"})
	if _, ok := svc.(*httpService); !ok {
		t.Fatalf("http transport built %T", svc)
	}

	if svc := NewFromConfig(transportConfig{IService: base, transport: "none"}); svc != nil {
		t.Fatalf("none transport built %T, want nil", svc)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestViperDefaultsMatchHardcoded(t *testing.T) {
	svc, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper failed: %v", err)
	}

	d := NewHardCoded()
	if svc.GetCrowdAlertThreshold() != d.GetCrowdAlertThreshold() {
		t.Errorf("threshold = %d, want %d", svc.GetCrowdAlertThreshold(), d.GetCrowdAlertThreshold())
	}
	if svc.GetDeviceMinInterval() != time.Second {
		t.Errorf("device interval = %v, want 1s", svc.GetDeviceMinInterval())
	}
	if svc.GetAlertMinInterval() != time.Minute {
		t.Errorf("alert interval = %v, want 60s", svc.GetAlertMinInterval())
	}
	if svc.GetDeviceTimeout() != 500*time.Millisecond {
		t.Errorf("device timeout = %v, want 500ms", svc.GetDeviceTimeout())
	}
	if svc.GetDetectorConfidence() != 0.5 {
		t.Errorf("confidence = %v, want 0.5", svc.GetDetectorConfidence())
	}
}

func TestViperEnvironmentOverrides(t *testing.T) {
	t.Setenv("CROWD_CROWD_ALERT_THRESHOLD", "12")
	t.Setenv("CROWD_DEVICE_MIN_INTERVAL", "2500ms")
	t.Setenv("CROWD_SOURCE_TYPE", "MJPEG")
	t.Setenv("CROWD_SOURCE_STREAM_URL", "http://10.0.0.9:81/stream")

	svc, err := NewViper("")
	if err != nil {
		t.Fatalf("NewViper failed: %v", err)
	}

	if svc.GetCrowdAlertThreshold() != 12 {
		t.Errorf("threshold = %d, want 12", svc.GetCrowdAlertThreshold())
	}
	if svc.GetDeviceMinInterval() != 2500*time.Millisecond {
		t.Errorf("device interval = %v, want 2.5s", svc.GetDeviceMinInterval())
	}
	if svc.GetSourceType() != "mjpeg" {
		t.Errorf("source type = %q, want mjpeg", svc.GetSourceType())
	}
	if svc.GetSourceStreamURL() != "http://10.0.0.9:81/stream" {
		t.Errorf("stream url = %q", svc.GetSourceStreamURL())
	}
}

func TestViperConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crowd.yaml")
	yaml := strings.Join([]string{
		"crowd:",
		"  alert_threshold: 3",
		"alert:",
		"  min_interval: 30s",
		"device:",
		"  transport: none",
		"display:",
		"  window: false",
	}, "\n")
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	svc, err := NewViper(path)
	if err != nil {
		t.Fatalf("NewViper failed: %v", err)
	}

	if svc.GetCrowdAlertThreshold() != 3 {
		t.Errorf("threshold = %d, want 3", svc.GetCrowdAlertThreshold())
	}
	if svc.GetAlertMinInterval() != 30*time.Second {
		t.Errorf("alert interval = %v, want 30s", svc.GetAlertMinInterval())
	}
	if svc.GetDeviceTransport() != "none" {
		t.Errorf("transport = %q, want none", svc.GetDeviceTransport())
	}
	if svc.GetDisplayWindow() {
		t.Error("display window should be disabled")
	}
}

func TestViperMissingFileFallsBackToDefaults(t *testing.T) {
	svc, err := NewViper(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("NewViper failed: %v", err)
	}
	if svc.GetSourceType() != "local" {
		t.Errorf("source type = %q, want local", svc.GetSourceType())
	}
}

func TestValidateRejectsBadConfig(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown source":      {"CROWD_SOURCE_TYPE": "v4l"},
		"twilio without keys": {"CROWD_ALERT_PROVIDER": "twilio"},
		"bad transport":       {"CROWD_DEVICE_TRANSPORT": "serial"},
		"zero device timeout": {"CROWD_DEVICE_TIMEOUT": "0s"},
		"confidence too high": {"CROWD_DETECTOR_CONFIDENCE": "1.5"},
		"negative threshold":  {"CROWD_CROWD_ALERT_THRESHOLD": "-1"},
		"message without %d":  {"CROWD_ALERT_MESSAGE": "crowd!"},
		"no read failures":    {"CROWD_SOURCE_MAX_READ_FAILURES": "0"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := NewViper(""); err == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}

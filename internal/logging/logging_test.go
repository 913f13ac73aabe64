package logging

import (
	"testing"

	"go.uber.org/zap"

	"github.com/example/garage/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.LogConfig
		debugOn     bool
		infoOn      bool
		warnEnabled bool
	}{
		{"console debug", config.LogConfig{Level: "debug", Format: "console"}, true, true, true},
		{"json info", config.LogConfig{Level: "info", Format: "json"}, false, true, true},
		{"json warn", config.LogConfig{Level: "warn", Format: "json"}, false, false, true},
		{"error only", config.LogConfig{Level: "error", Format: "console"}, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			core := logger.Core()
			if core.Enabled(zap.DebugLevel) != tt.debugOn {
				t.Errorf("debug enabled = %v, want %v", !tt.debugOn, tt.debugOn)
			}
			if core.Enabled(zap.InfoLevel) != tt.infoOn {
				t.Errorf("info enabled = %v, want %v", !tt.infoOn, tt.infoOn)
			}
			if core.Enabled(zap.WarnLevel) != tt.warnEnabled {
				t.Errorf("warn enabled = %v, want %v", !tt.warnEnabled, tt.warnEnabled)
			}
		})
	}
}

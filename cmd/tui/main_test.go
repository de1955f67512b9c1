package main

import (
	"path/filepath"
	"testing"
)

func TestRunFailsBeforeStarting(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Missing config file", map[string]string{"SPORTBUDDY_CONFIG": filepath.Join(t.TempDir(), "missing.yaml")}},
		{"Invalid delays", map[string]string{"SPORTBUDDY_REPLY_DELAY_MIN": "0s", "SPORTBUDDY_REPLY_DELAY_MAX": "0s"}},
		{"Unwritable log file", map[string]string{"SPORTBUDDY_TUI_LOG": filepath.Join(t.TempDir(), "no", "such", "dir", "tui.log")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if code := run(); code != 1 {
				t.Errorf("run() = %d; want 1", code)
			}
		})
	}
}

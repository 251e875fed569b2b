package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		development bool
		wantLevel   zapcore.Level
		wantErr     bool
	}{
		{name: "default level", level: "", wantLevel: zapcore.InfoLevel},
		{name: "debug", level: "debug", wantLevel: zapcore.DebugLevel},
		{name: "upper case", level: "WARN", wantLevel: zapcore.WarnLevel},
		{name: "development", level: "error", development: true, wantLevel: zapcore.ErrorLevel},
		{name: "unknown", level: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.development)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("level %v not enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("level %v enabled below configured %v", tt.wantLevel-1, tt.wantLevel)
			}
		})
	}
}

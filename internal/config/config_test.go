package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoadFromMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		environ   map[string]string
		want      Config
		wantLevel slog.Level
		wantErr   bool
	}{
		{
			name:      "defaults",
			want:      Config{LogLevel: "info", LogFormat: LogFormatJSON, Timeout: 10 * time.Second},
			wantLevel: slog.LevelInfo,
		},
		{
			name: "overrides",
			environ: map[string]string{
				"ACTION_LOG_LEVEL":  "debug",
				"ACTION_LOG_FORMAT": "text",
				"ACTION_TIMEOUT":    "250ms",
			},
			want:      Config{LogLevel: "debug", LogFormat: LogFormatText, Timeout: 250 * time.Millisecond},
			wantLevel: slog.LevelDebug,
		},
		{
			name:      "warning alias",
			environ:   map[string]string{"ACTION_LOG_LEVEL": "WARNING"},
			want:      Config{LogLevel: "WARNING", LogFormat: LogFormatJSON, Timeout: 10 * time.Second},
			wantLevel: slog.LevelWarn,
		},
		{name: "unknown level", environ: map[string]string{"ACTION_LOG_LEVEL": "loud"}, wantErr: true},
		{name: "unknown format", environ: map[string]string{"ACTION_LOG_FORMAT": "xml"}, wantErr: true},
		{name: "bad duration", environ: map[string]string{"ACTION_TIMEOUT": "soon"}, wantErr: true},
		{name: "zero timeout", environ: map[string]string{"ACTION_TIMEOUT": "0s"}, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := LoadFromMap(testCase.environ)
			if testCase.wantErr {
				if err == nil {
					t.Fatalf("LoadFromMap = %+v, want error", cfg)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFromMap failed: %v", err)
			}
			if cfg != testCase.want {
				t.Fatalf("config = %+v, want %+v", cfg, testCase.want)
			}
			level, err := cfg.Level()
			if err != nil || level != testCase.wantLevel {
				t.Fatalf("Level = (%v, %v), want (%v, nil)", level, err, testCase.wantLevel)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		cfg       Config
		wantInLog string
	}{
		{name: "json", cfg: Config{LogLevel: "info", LogFormat: LogFormatJSON}, wantInLog: `"msg":"hello"`},
		{name: "text", cfg: Config{LogLevel: "info", LogFormat: LogFormatText}, wantInLog: "msg=hello"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var buffer bytes.Buffer
			logger, err := testCase.cfg.NewLogger(&buffer)
			if err != nil {
				t.Fatalf("NewLogger failed: %v", err)
			}
			logger.Debug("hidden")
			logger.Info("hello")

			if !strings.Contains(buffer.String(), testCase.wantInLog) {
				t.Fatalf("log = %q, want substring %q", buffer.String(), testCase.wantInLog)
			}
			if strings.Contains(buffer.String(), "hidden") {
				t.Fatalf("log = %q, debug line leaked at info level", buffer.String())
			}
		})
	}
}

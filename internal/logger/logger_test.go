package logger

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNew(t *testing.T) {
	log := New(zerolog.InfoLevel)
	if log.GetLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want %v", log.GetLevel(), zerolog.InfoLevel)
	}
}

func TestNewWithWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewWithWriter(buf, zerolog.InfoLevel)

	log.Debug().Msg("hidden")
	log.Info().Str("file", "a.csv").Msg("parsed")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line written at info level: %s", out)
	}
	if !strings.Contains(out, `"message":"parsed"`) || !strings.Contains(out, `"file":"a.csv"`) {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestFromContext(t *testing.T) {
	buf := &bytes.Buffer{}
	ctx := WithContext(context.Background(), NewWithWriter(buf, zerolog.DebugLevel))

	log := FromContext(ctx)
	log.Debug().Msg("test")

	if buf.Len() == 0 {
		t.Error("expected output from the context logger")
	}
}

func TestFromContext_Default(t *testing.T) {
	log := FromContext(context.Background())
	if log.GetLevel() != zerolog.WarnLevel {
		t.Errorf("default level = %v, want warn", log.GetLevel())
	}
}

func TestWithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := WithFields(NewWithWriter(buf, zerolog.InfoLevel), map[string]interface{}{
		"merchant": "Netflix",
		"score":    95,
	})
	log.Info().Msg("accepted")

	out := buf.String()
	if !strings.Contains(out, `"merchant":"Netflix"`) || !strings.Contains(out, `"score":95`) {
		t.Errorf("fields missing from output: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.WarnLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{" warning ", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"off", zerolog.Disabled, false},
		{"loud", zerolog.NoLevel, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

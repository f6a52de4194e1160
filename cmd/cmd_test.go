package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/theirongolddev/recur/internal/model"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    model.ConfidenceLevel
		wantErr bool
	}{
		{"", model.ConfidenceLow, false},
		{"low", model.ConfidenceLow, false},
		{"Medium", model.ConfidenceMedium, false},
		{" high ", model.ConfidenceHigh, false},
		{"certain", "", true},
	}
	for _, tt := range tests {
		got, err := parseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseLevel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMerchantKeyNormalizesArgs(t *testing.T) {
	key, err := merchantKey([]string{"KORTKÖP", "2024-06-03", "NETFLIX.COM"})
	if err != nil {
		t.Fatalf("merchantKey: %v", err)
	}
	if key != "Netflix.com" {
		t.Errorf("merchantKey = %q, want Netflix.com", key)
	}

	if _, err := merchantKey([]string{"  "}); err == nil {
		t.Error("merchantKey of blank input should fail")
	}
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"daemon", "--detach", "--addr", "127.0.0.1:9000", "--detach=true"})
	want := []string{"daemon", "--addr", "127.0.0.1:9000"}
	if len(got) != len(want) {
		t.Fatalf("filterDetachArg = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("filterDetachArg[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPIDFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recurd.pid")
	if err := writePID(path, 4242); err != nil {
		t.Fatalf("writePID: %v", err)
	}
	pid, err := readPID(path)
	if err != nil {
		t.Fatalf("readPID: %v", err)
	}
	if pid != 4242 {
		t.Errorf("readPID = %d, want 4242", pid)
	}

	if err := os.WriteFile(path, []byte("nope\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := readPID(path); err == nil {
		t.Error("readPID should reject a non-numeric pid")
	}
}

func TestInputDirPrefersFlag(t *testing.T) {
	t.Setenv("RECUR_INPUT_DIR", "/from/env")
	defer func(prev string) { flagInputDir = prev }(flagInputDir)

	flagInputDir = "/from/flag"
	if got, err := inputDir(); err != nil || got != "/from/flag" {
		t.Errorf("inputDir = %q, %v; want /from/flag", got, err)
	}

	flagInputDir = ""
	if got, err := inputDir(); err != nil || got != "/from/env" {
		t.Errorf("inputDir = %q, %v; want /from/env", got, err)
	}
}

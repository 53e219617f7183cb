package shared

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestNewLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		logger.Error("boom", "key", "value")

		if !bytes.Contains(buf.Bytes(), []byte("boom")) {
			t.Errorf("expected log output, got %q", buf.String())
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		if NewLogger(nil) == nil {
			t.Error("expected a logger")
		}
	})
}

func TestNewFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Error("persisted line")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected the log file to exist: %v", err)
	}
	if !bytes.Contains(data, []byte("persisted line")) {
		t.Errorf("expected the line in the file, got %q", data)
	}
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected distinct ids")
	}
	if len(a) != 36 {
		t.Errorf("expected a uuid string, got %q", a)
	}
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a == b {
		t.Error("expected distinct state tokens")
	}
	if _, err := hex.DecodeString(a); err != nil || len(a) != 32 {
		t.Errorf("expected 16 random bytes hex encoded, got %q", a)
	}
}

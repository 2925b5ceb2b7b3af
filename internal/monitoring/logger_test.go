package monitoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tapedeck/tapedeck-go/internal/config"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "logs", "app.log")

	cfg := &config.LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     "file",
		FilePath:   logPath,
		MaxSizeMB:  10,
		MaxBackups: 1,
		MaxAgeDays: 1,
	}

	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("hello")
	logger.Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if len(data) == 0 {
		t.Error("Expected log output in file")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := &config.LoggingConfig{Level: "loud", Format: "json", Output: "console"}
	if _, err := NewLogger(cfg); err == nil {
		t.Error("Expected error for invalid level")
	}
}

package logging_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dalo/internal/logging"
	"dalo/internal/services"
)

func TestConsoleLoggerWritesSubjectAndFields(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "console.log")
	logger, err := logging.New(logging.Options{Level: "info", Format: "console", OutputPaths: []string{out}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRunID(context.Background(), "0123456789abcdef")
	ctx = services.WithStage(ctx, "video")
	logging.WithContext(ctx, logging.NewComponentLogger(logger, "download")).Info("format selected",
		logging.Args(logging.DecisionAttrs("height_mode", "TARGET", "1080p available")...)...)

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	text := string(data)
	for _, want := range []string{"INFO [download] Run 01234567 (video) - format selected", "- Decision: height_mode", "- Result: TARGET"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %q in output:\n%s", want, text)
		}
	}
	if strings.Contains(text, "run_id") {
		t.Fatalf("run id should only appear in the subject:\n%s", text)
	}
}

func TestConsoleLoggerFormatsBytes(t *testing.T) {
	out := filepath.Join(t.TempDir(), "console.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{out}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("download finished", logging.Int64("size_bytes", 2_500_000))

	data, _ := os.ReadFile(out)
	if !strings.Contains(string(data), "- Size: 2.5 MB") {
		t.Fatalf("expected humanized size, got:\n%s", data)
	}
}

func TestLoggerTeesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "logs", "dalo.log")
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{filepath.Join(dir, "console.log")},
		FilePath:    file,
	})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("hidden")
	logger.Warn("probe slow", logging.String(logging.FieldEventType, "probe_slow"))

	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read json log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one json record, got %d:\n%s", len(lines), data)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("decode json record: %v", err)
	}
	if record[logging.KeyLevel] != "warn" || record[logging.KeyMessage] != "probe slow" || record[logging.FieldEventType] != "probe_slow" {
		t.Fatalf("unexpected record: %v", record)
	}
	ts, _ := record[logging.KeyTime].(string)
	if _, err := time.Parse(logging.JSONTimeLayout, ts); err != nil {
		t.Fatalf("timestamp %q not in JSON layout: %v", ts, err)
	}
	if _, ok := record[logging.KeySource].(string); !ok {
		t.Fatalf("expected source in file record: %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestTeeHandlerRespectsEachLevel(t *testing.T) {
	dir := t.TempDir()
	debugOut := filepath.Join(dir, "debug.log")
	errorOut := filepath.Join(dir, "error.log")
	debugLogger, _ := logging.New(logging.Options{Level: "debug", Format: "json", OutputPaths: []string{debugOut}})
	errorLogger, _ := logging.New(logging.Options{Level: "error", Format: "json", OutputPaths: []string{errorOut}})

	logger := slog.New(logging.TeeHandler(debugLogger.Handler(), nil, errorLogger.Handler()))
	logger.Info("only debug sink")
	logger.Error("both sinks")

	debugData, _ := os.ReadFile(debugOut)
	errorData, _ := os.ReadFile(errorOut)
	if got := strings.Count(string(debugData), "\n"); got != 2 {
		t.Fatalf("expected 2 records in debug sink, got %d", got)
	}
	if got := strings.Count(string(errorData), "\n"); got != 1 {
		t.Fatalf("expected 1 record in error sink, got %d", got)
	}
}

func TestTeeHandlerWithoutSinksDiscards(t *testing.T) {
	handler := logging.TeeHandler(nil, nil)
	if handler.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("empty tee should not enable any level")
	}
	slog.New(handler).Error("dropped")
}

func TestFormatSubject(t *testing.T) {
	cases := []struct {
		runID, stage, want string
	}{
		{"", "", ""},
		{"", "probe", "probe"},
		{"abc", "", "Run abc"},
		{"0123456789", "audio", "Run 01234567 (audio)"},
	}
	for _, tc := range cases {
		if got := logging.FormatSubject(tc.runID, tc.stage); got != tc.want {
			t.Errorf("FormatSubject(%q, %q) = %q, want %q", tc.runID, tc.stage, got, tc.want)
		}
	}
}

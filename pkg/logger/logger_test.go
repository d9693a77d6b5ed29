package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warning", WarnLevel},
		{"Warn", WarnLevel},
		{"error", ErrorLevel},
		{"fatal", FatalLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.expected {
				t.Errorf("Expected level %d for %q, got %d", tt.expected, tt.input, got)
			}
		})
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{Level: WarnLevel, Writer: &buf, NoColor: true})

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible warning")
	log.Errorf("visible %s", "error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("Expected entries below warn to be filtered, got:\n%s", out)
	}
	if !strings.Contains(out, "visible warning") || !strings.Contains(out, "visible error") {
		t.Errorf("Expected warn and error entries, got:\n%s", out)
	}
}

func TestLoggerPrefixAndFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithConfig(Config{Level: DebugLevel, Writer: &buf, NoColor: true})

	log := base.WithPrefix("scenario-300").WithField("devices", 300)
	log.Info("slot complete")

	out := buf.String()
	if !strings.Contains(out, "[scenario-300] slot complete") {
		t.Errorf("Expected prefixed message, got:\n%s", out)
	}
	if !strings.Contains(out, "devices=300") {
		t.Errorf("Expected field in output, got:\n%s", out)
	}

	buf.Reset()
	base.Info("plain")
	if strings.Contains(buf.String(), "devices=") || strings.Contains(buf.String(), "[scenario-300]") {
		t.Errorf("Expected derived loggers not to change the parent, got:\n%s", buf.String())
	}
}

func TestLoggerFileCopy(t *testing.T) {
	var console, file bytes.Buffer
	log := NewWithConfig(Config{Level: InfoLevel, Writer: &console, File: &file})

	log.Info("written twice")

	if !strings.Contains(console.String(), "written twice") {
		t.Errorf("Expected console entry, got:\n%s", console.String())
	}
	if !strings.Contains(file.String(), "written twice") {
		t.Errorf("Expected file entry, got:\n%s", file.String())
	}
	if strings.Contains(file.String(), "\x1b[") {
		t.Errorf("Expected file copy without color codes, got %q", file.String())
	}
}

func TestSetLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "run.log")

	closeFile, err := SetLogFile(path)
	if err != nil {
		t.Fatalf("Failed to open log file: %v", err)
	}

	Warn("persisted entry")

	if err := closeFile(); err != nil {
		t.Fatalf("Failed to close log file: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "persisted entry") {
		t.Errorf("Expected entry in log file, got:\n%s", data)
	}
}

func TestTable(t *testing.T) {
	SetNoColor(true)
	defer SetNoColor(false)

	table := NewTable("Devices", "Efficiency")
	table.AddRow("300", "1.25e-16")
	table.AddRow("1000", "9.8e-17")

	var buf bytes.Buffer
	table.Fprint(&buf)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected header, separator and 2 rows, got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "Devices  Efficiency") {
		t.Errorf("Unexpected header line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "-------  ----------") {
		t.Errorf("Unexpected separator line: %q", lines[1])
	}
	if table.Rows() != 2 {
		t.Errorf("Expected 2 rows, got %d", table.Rows())
	}
}

func TestProgressBar(t *testing.T) {
	var buf bytes.Buffer
	console = &buf
	defer func() { console = os.Stdout }()

	bar := NewProgressBar(4, "Sweep")
	bar.Increment()
	bar.Increment()

	if bar.Current() != 2 {
		t.Errorf("Expected progress 2, got %d", bar.Current())
	}
	if !strings.Contains(buf.String(), " 50%") {
		t.Errorf("Expected 50%% progress in output, got %q", buf.String())
	}

	bar.Update(3)
	if bar.Current() != 3 || !strings.Contains(buf.String(), " 75%") {
		t.Errorf("Expected progress 3 at 75%%, got %d in %q", bar.Current(), buf.String())
	}

	bar.Finish()
	if bar.Current() != 4 {
		t.Errorf("Expected progress 4 after Finish, got %d", bar.Current())
	}
	if !strings.Contains(buf.String(), "100%") {
		t.Errorf("Expected 100%% progress in output, got %q", buf.String())
	}
}

func TestListAndProgressHelpers(t *testing.T) {
	var out, entries bytes.Buffer
	console = &out
	SetOutput(&entries)
	defer func() {
		console = os.Stdout
		SetOutput(nil)
	}()

	Progressf("Configuring %s...", "offloading")
	LogList("2 scenarios:", []string{"300 devices", "400 devices"})

	if !strings.Contains(entries.String(), IconRefresh+" Configuring offloading...") {
		t.Errorf("Expected progress entry, got:\n%s", entries.String())
	}
	if !strings.Contains(entries.String(), "2 scenarios:") {
		t.Errorf("Expected list title entry, got:\n%s", entries.String())
	}
	for _, item := range []string{"300 devices", "400 devices"} {
		if !strings.Contains(out.String(), IconDot+" "+item) {
			t.Errorf("Expected bullet for %q, got:\n%s", item, out.String())
		}
	}
}

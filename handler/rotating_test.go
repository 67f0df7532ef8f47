package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agora-platform/agoralog/core"
	"github.com/agora-platform/agoralog/formatter"
)

// fixedRecord builds records whose serialized length is identical for
// every index, so rotation points are exact.
func fixedRecord(i int) *core.Record {
	return &core.Record{
		Time:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Level:   core.InfoLevel,
		Message: fmt.Sprintf("rot-msg-%02d", i),
		Service: "test",
		Caller:  core.CallerInfo{File: "app.go", Line: 10, Function: "main.run"},
	}
}

// lineSize returns the serialized byte length of one fixed record.
func lineSize(t *testing.T) int64 {
	t.Helper()
	data, err := formatter.NewJSONFormatter().Format(fixedRecord(0))
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	return int64(len(data))
}

func TestRotatingFileHandler_RotatesAndRetainsBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	size := lineSize(t)

	h, err := NewRotatingFileHandler(RotatingFileConfig{
		Path:        path,
		MaxBytes:    10 * size,
		BackupCount: 2,
		ErrOutput:   io.Discard,
	})
	if err != nil {
		t.Fatalf("NewRotatingFileHandler failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		if err := h.Emit(fixedRecord(i)); err != nil {
			t.Fatalf("Emit %d failed: %v", i, err)
		}
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// 10 records per file, rotations before records 10, 20, 30, 40.
	// Primary holds the newest ten, .1 the previous ten, .2 the ten
	// before that, and everything older is gone.
	checks := []struct {
		path  string
		first int
	}{
		{path, 40},
		{path + ".1", 30},
		{path + ".2", 20},
	}
	for _, c := range checks {
		lines := readLines(t, c.path)
		if len(lines) != 10 {
			t.Fatalf("%s: expected 10 lines, got %d", c.path, len(lines))
		}
		for j, line := range lines {
			want := fmt.Sprintf("rot-msg-%02d", c.first+j)
			if !strings.Contains(line, want) {
				t.Errorf("%s line %d: expected %q in %q", c.path, j, want, line)
			}
		}
	}

	if _, err := os.Stat(path + ".3"); !os.IsNotExist(err) {
		t.Errorf("Expected no backup beyond .2, stat err = %v", err)
	}
}

func TestRotatingFileHandler_DisabledWhenMaxBytesZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	h, err := NewRotatingFileHandler(RotatingFileConfig{
		Path:        path,
		MaxBytes:    0,
		BackupCount: 3,
		ErrOutput:   io.Discard,
	})
	if err != nil {
		t.Fatalf("NewRotatingFileHandler failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		h.Emit(fixedRecord(i))
	}
	h.Close()

	if lines := readLines(t, path); len(lines) != 50 {
		t.Errorf("Expected 50 lines in a single file, got %d", len(lines))
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Errorf("Expected no backups when rotation is disabled, stat err = %v", err)
	}
}

func TestRotatingFileHandler_ZeroBackupCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	size := lineSize(t)

	h, err := NewRotatingFileHandler(RotatingFileConfig{
		Path:        path,
		MaxBytes:    10 * size,
		BackupCount: 0,
		ErrOutput:   io.Discard,
	})
	if err != nil {
		t.Fatalf("NewRotatingFileHandler failed: %v", err)
	}

	for i := 0; i < 50; i++ {
		h.Emit(fixedRecord(i))
	}
	h.Close()

	// Still rotates at the threshold, but rotated content is discarded.
	lines := readLines(t, path)
	if len(lines) != 10 {
		t.Fatalf("Expected only the newest 10 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "rot-msg-40") {
		t.Errorf("Expected primary to start at rot-msg-40, got %q", lines[0])
	}
	if _, err := os.Stat(path + ".1"); !os.IsNotExist(err) {
		t.Errorf("Expected no backup files retained, stat err = %v", err)
	}
}

func TestRotatingFileHandler_SeedsSizeFromExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	size := lineSize(t)

	h1, err := NewRotatingFileHandler(RotatingFileConfig{
		Path:        path,
		MaxBytes:    10 * size,
		BackupCount: 2,
		ErrOutput:   io.Discard,
	})
	if err != nil {
		t.Fatalf("NewRotatingFileHandler failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		h1.Emit(fixedRecord(i))
	}
	h1.Close()

	// A new handler over the same path must count the existing 5 lines
	// toward the threshold, so rotation fires after 5 more, not 10.
	h2, err := NewRotatingFileHandler(RotatingFileConfig{
		Path:        path,
		MaxBytes:    10 * size,
		BackupCount: 2,
		ErrOutput:   io.Discard,
	})
	if err != nil {
		t.Fatalf("NewRotatingFileHandler failed: %v", err)
	}
	for i := 5; i < 15; i++ {
		h2.Emit(fixedRecord(i))
	}
	h2.Close()

	primary := readLines(t, path)
	if len(primary) != 5 {
		t.Fatalf("Expected 5 lines in primary after seeded rotation, got %d", len(primary))
	}
	if !strings.Contains(primary[0], "rot-msg-10") {
		t.Errorf("Expected primary to start at rot-msg-10, got %q", primary[0])
	}
	backup := readLines(t, path+".1")
	if len(backup) != 10 {
		t.Errorf("Expected 10 lines in backup, got %d", len(backup))
	}
}

func TestRotatingFileHandler_ConcurrentEmitsAcrossRotations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	size := lineSize(t)

	// A threshold of a few lines forces rotations throughout the run;
	// a backup count large enough to retain every file lets the test
	// account for every record afterwards.
	h, err := NewRotatingFileHandler(RotatingFileConfig{
		Path:        path,
		MaxBytes:    4 * size,
		BackupCount: 200,
		ErrOutput:   io.Discard,
	})
	if err != nil {
		t.Fatalf("NewRotatingFileHandler failed: %v", err)
	}

	const goroutines = 8
	const perGoroutine = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				rec := fixedRecord(i)
				rec.Message = fmt.Sprintf("g%d-msg-%02d", g, i)
				h.Emit(rec)
			}
		}(g)
	}
	wg.Wait()
	h.Close()

	// Gather every line from the primary and the whole backup chain.
	seen := make(map[string]bool)
	total := 0
	backups := 0
	for i := 0; ; i++ {
		p := path
		if i > 0 {
			p = fmt.Sprintf("%s.%d", path, i)
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			break
		}
		if i > 0 {
			backups++
		}
		for _, line := range readLines(t, p) {
			var decoded map[string]interface{}
			if err := json.Unmarshal([]byte(line), &decoded); err != nil {
				t.Fatalf("%s: corrupt line: %v\n%s", p, err, line)
			}
			msg, _ := decoded["message"].(string)
			if seen[msg] {
				t.Fatalf("Duplicate record %q", msg)
			}
			seen[msg] = true
			total++
		}
	}

	if total != goroutines*perGoroutine {
		t.Errorf("Expected %d records across all files, got %d", goroutines*perGoroutine, total)
	}
	if backups == 0 {
		t.Error("Expected at least one rotation during the run")
	}
}

func TestRotatingFileHandler_RequiresPath(t *testing.T) {
	if _, err := NewRotatingFileHandler(RotatingFileConfig{}); err == nil {
		t.Error("Expected error for empty path")
	}
}

package formatter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/agora-platform/agoralog/core"
)

func sampleRecord() *core.Record {
	return &core.Record{
		Time:        time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC),
		Level:       core.InfoLevel,
		Message:     "order created",
		Service:     "checkout",
		Environment: "production",
		Version:     "1.2.3",
		Host:        "web-01",
		LoggerName:  "checkout.orders",
		Caller:      core.CallerInfo{File: "orders.go", Line: 42, Function: "orders.Create"},
	}
}

func TestJSONFormatter_WireShape(t *testing.T) {
	rec := sampleRecord()
	rec.AttachContext([]core.Field{
		{Key: "order_id", Type: core.StringType, Str: "ord-7"},
		{Key: "attempt", Type: core.IntType, Int64: 3},
		{Key: "user_id", Type: core.StringType, Str: "u-9"},
	})

	data, err := NewJSONFormatter().Format(rec)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	if !strings.HasSuffix(string(data), "\n") {
		t.Error("Expected trailing newline")
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, data)
	}

	want := map[string]string{
		"level":       "INFO",
		"message":     "order created",
		"service":     "checkout",
		"environment": "production",
		"version":     "1.2.3",
		"host":        "web-01",
		"logger_name": "checkout.orders",
		"file":        "orders.go",
		"function":    "orders.Create",
		"user_id":     "u-9",
	}
	for key, val := range want {
		if decoded[key] != val {
			t.Errorf("Expected %s=%q, got %v", key, val, decoded[key])
		}
	}
	if decoded["line"] != float64(42) {
		t.Errorf("Expected line 42, got %v", decoded["line"])
	}

	ts, ok := decoded["timestamp"].(string)
	if !ok {
		t.Fatalf("Expected string timestamp, got %v", decoded["timestamp"])
	}
	parsed, err := time.Parse(TimestampFormat, ts)
	if err != nil {
		t.Fatalf("Timestamp %q does not match layout: %v", ts, err)
	}
	if !parsed.Equal(rec.Time) {
		t.Errorf("Expected timestamp %v, got %v", rec.Time, parsed)
	}

	ctx, ok := decoded["context"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected context object, got %v", decoded["context"])
	}
	if ctx["order_id"] != "ord-7" || ctx["attempt"] != float64(3) {
		t.Errorf("Unexpected context contents: %v", ctx)
	}
	if _, present := ctx["user_id"]; present {
		t.Error("Promoted key must not appear inside context")
	}
	if _, present := decoded["exception"]; present {
		t.Error("Exception must be absent when no error is attached")
	}
	if _, present := decoded["correlation_id"]; present {
		t.Error("Unset promoted keys must be absent")
	}
}

func TestJSONFormatter_EmptyContext(t *testing.T) {
	data, err := NewJSONFormatter().Format(sampleRecord())
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	ctx, ok := decoded["context"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected context object even when empty, got %v", decoded["context"])
	}
	if len(ctx) != 0 {
		t.Errorf("Expected empty context, got %v", ctx)
	}
}

func TestJSONFormatter_Exception(t *testing.T) {
	rec := sampleRecord()
	rec.Level = core.ErrorLevel
	rec.Err = core.NewErrorInfo("*net.OpError", "dial tcp: refused", "goroutine 1 [running]:\nmain.main()")

	data, err := NewJSONFormatter().Format(rec)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, data)
	}
	exc, ok := decoded["exception"].(map[string]interface{})
	if !ok {
		t.Fatalf("Expected exception object, got %v", decoded["exception"])
	}
	if exc["type"] != "*net.OpError" || exc["message"] != "dial tcp: refused" {
		t.Errorf("Unexpected exception: %v", exc)
	}
	if !strings.Contains(exc["stacktrace"].(string), "main.main()") {
		t.Errorf("Stacktrace not preserved: %v", exc["stacktrace"])
	}
}

func TestJSONFormatter_Escaping(t *testing.T) {
	rec := sampleRecord()
	rec.Message = "quote \" backslash \\ newline \n tab \t ctrl \x01 done"
	rec.AttachContext([]core.Field{{Key: "weird\"key", Type: core.StringType, Str: "line1\nline2"}})

	data, err := NewJSONFormatter().Format(rec)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Escaped output is not valid JSON: %v\n%s", err, data)
	}
	if decoded["message"] != rec.Message {
		t.Errorf("Message did not round-trip: got %q", decoded["message"])
	}
	ctx := decoded["context"].(map[string]interface{})
	if ctx["weird\"key"] != "line1\nline2" {
		t.Errorf("Context value did not round-trip: %v", ctx)
	}
}

func TestJSONFormatter_AnyValues(t *testing.T) {
	rec := sampleRecord()
	rec.AttachContext([]core.Field{
		{Key: "tags", Type: core.AnyType, Any: []string{"a", "b"}},
		{Key: "meta", Type: core.AnyType, Any: map[string]int{"n": 1}},
	})

	data, err := NewJSONFormatter().Format(rec)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, data)
	}
	ctx := decoded["context"].(map[string]interface{})
	tags, ok := ctx["tags"].([]interface{})
	if !ok || len(tags) != 2 || tags[0] != "a" {
		t.Errorf("Expected nested list to survive, got %v", ctx["tags"])
	}
	meta, ok := ctx["meta"].(map[string]interface{})
	if !ok || meta["n"] != float64(1) {
		t.Errorf("Expected nested map to survive, got %v", ctx["meta"])
	}
}

func TestTextFormatter(t *testing.T) {
	rec := sampleRecord()
	rec.AttachContext([]core.Field{
		{Key: "order_id", Type: core.StringType, Str: "ord-7"},
		{Key: "user_id", Type: core.StringType, Str: "u-9"},
	})
	rec.Err = core.NewErrorInfo("*errors.errorString", "boom", "")

	data, err := NewTextFormatter().Format(rec)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	line := string(data)

	for _, want := range []string{
		"2025-03-14 09:26:53.589",
		"[INFO]",
		"[checkout]",
		"order created",
		"(orders.go:42)",
		"user_id=u-9",
		"order_id=ord-7",
		"Exception: *errors.errorString: boom",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("Expected output to contain %q, got %q", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("Expected trailing newline")
	}
}

func TestFormatToMatchesFormat(t *testing.T) {
	rec := sampleRecord()
	rec.AttachContext([]core.Field{{Key: "k", Type: core.StringType, Str: "v"}})

	f := NewJSONFormatter()
	direct, err := f.Format(rec)
	if err != nil {
		t.Fatalf("Format failed: %v", err)
	}
	var buf strings.Builder
	if err := f.FormatTo(rec, &buf); err != nil {
		t.Fatalf("FormatTo failed: %v", err)
	}
	if buf.String() != string(direct) {
		t.Errorf("FormatTo output differs from Format:\n%q\n%q", buf.String(), direct)
	}
}

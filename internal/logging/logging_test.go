package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestPreInitLoggerUsesConfiguredHandler(t *testing.T) {
	logger := L("orchestrator")

	var buf bytes.Buffer
	Init("text", "info", &buf)

	logger.Info("spawned", "service", "Spooler")

	out := buf.String()
	if !strings.Contains(out, "msg=spawned") {
		t.Fatalf("expected plain spawned message, got: %s", out)
	}
	if !strings.Contains(out, "component=orchestrator") {
		t.Fatalf("expected component field, got: %s", out)
	}
	if !strings.Contains(out, "service=Spooler") {
		t.Fatalf("expected service field, got: %s", out)
	}
}

func TestPreInitLoggerRespectsConfiguredLevel(t *testing.T) {
	logger := L("dispatch")

	var buf bytes.Buffer
	Init("text", "warn", &buf)

	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info log should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Fatalf("warn log should be emitted: %s", out)
	}
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init("json", "debug", &buf)

	WithService(L("svcctl"), "Spooler").Debug("status")

	out := buf.String()
	if !strings.Contains(out, `"service":"Spooler"`) {
		t.Fatalf("expected json service field, got: %s", out)
	}
	if !strings.Contains(out, `"component":"svcctl"`) {
		t.Fatalf("expected json component field, got: %s", out)
	}
}

func TestContextCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := NewContext(context.Background(), logger)
	if FromContext(ctx) != logger {
		t.Fatal("expected logger from context")
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("expected default logger fallback")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelWarn,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitSwitchesBetweenFormats(t *testing.T) {
	logger := L("svcctl")

	var text, js bytes.Buffer
	Init("text", "info", &text)
	logger.Info("first")
	Init("json", "info", &js)
	logger.Info("second")
	Init("text", "info", &text)
	logger.Info("third")

	if !strings.Contains(js.String(), `"msg":"second"`) {
		t.Fatalf("expected json record after switching format, got: %s", js.String())
	}
	if !strings.Contains(text.String(), "msg=first") || !strings.Contains(text.String(), "msg=third") {
		t.Fatalf("expected text records before and after json, got: %s", text.String())
	}
	if strings.Contains(text.String(), "second") {
		t.Fatalf("json record leaked into text output: %s", text.String())
	}
}

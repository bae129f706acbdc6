package logging

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
)

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("expected NoopHandler when every handler is nil")
	}
	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	if got := TeeHandler(nil, inner); got != inner {
		t.Fatal("expected single non-nil handler to be returned unwrapped")
	}
}

func TestTeeHandlerRespectsLevels(t *testing.T) {
	var infoBuf, warnBuf bytes.Buffer
	h := TeeHandler(
		slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	if h.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("debug should be disabled for both handlers")
	}

	slog.New(h).Info("training finished")
	if infoBuf.Len() == 0 {
		t.Fatal("expected info handler to receive record")
	}
	if warnBuf.Len() != 0 {
		t.Fatalf("warn handler should not receive info record: %s", warnBuf.String())
	}
}

func TestTeeHandlerPropagatesAttrsAndGroups(t *testing.T) {
	var a, b bytes.Buffer
	h := TeeHandler(slog.NewJSONHandler(&a, nil), slog.NewJSONHandler(&b, nil))
	logger := slog.New(h).With(slog.String(FieldRunID, "run-1")).WithGroup("metrics")
	logger.Info("evaluated", slog.Float64("mse", 0.5))

	for name, buf := range map[string]*bytes.Buffer{"first": &a, "second": &b} {
		out := buf.Bytes()
		if !bytes.Contains(out, []byte(`"run_id":"run-1"`)) {
			t.Fatalf("%s handler missing run id: %s", name, out)
		}
		if !bytes.Contains(out, []byte(`"metrics":{"mse":0.5}`)) {
			t.Fatalf("%s handler missing grouped metric: %s", name, out)
		}
	}
}

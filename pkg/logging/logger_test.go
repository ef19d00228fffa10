package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestComponentTagging(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		l := newLogger(&buf, false)
		l.ComponentInfo(ComponentIPFS, "added content")
		_ = l.Sync()

		out := buf.String()
		if !strings.Contains(out, "[IPFS] added content") {
			t.Errorf("expected component tag in output, got %q", out)
		}
		if strings.Contains(out, "\033[") {
			t.Errorf("expected no ANSI codes with colors disabled, got %q", out)
		}
	})

	t.Run("colored", func(t *testing.T) {
		var buf bytes.Buffer
		l := newLogger(&buf, true)
		l.ComponentWarn(ComponentPinning, "pin skipped")
		_ = l.Sync()

		out := buf.String()
		if !strings.Contains(out, BrightYellow+"[PINNING]"+Reset) {
			t.Errorf("expected colored component tag, got %q", out)
		}
	})
}

func TestNopLogger(t *testing.T) {
	l := NewNopLogger()
	// Must not panic on any level.
	l.ComponentDebug(ComponentUpload, "debug")
	l.ComponentInfo(ComponentUpload, "info")
	l.ComponentWarn(ComponentUpload, "warn")
	l.ComponentError(ComponentUpload, "error")
}

func TestWithKeepsComponentTagging(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, false).With(zap.String("upload_id", "u-1"))
	l.ComponentInfo(ComponentUpload, "upload complete")
	_ = l.Sync()

	out := buf.String()
	if !strings.Contains(out, "[UPLOAD] upload complete") || !strings.Contains(out, "u-1") {
		t.Errorf("expected tag and field in output, got %q", out)
	}
}

package clipboard

import (
	"encoding/base64"
	"strings"
	"testing"
)

func TestCopyEmptyContent(t *testing.T) {
	_, err := Copy("")
	if err == nil {
		t.Fatal("expected error for empty content")
	}
	if err.Error() != "no content to copy" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestGenerateOSC52(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("alice@test.com"))

	plain := generateOSC52(encoded, false)
	if !strings.HasPrefix(plain, "\x1b]52;c;") {
		t.Errorf("missing OSC 52 prefix: %q", plain)
	}
	if !strings.HasSuffix(plain, "\x07") {
		t.Errorf("missing BEL terminator: %q", plain)
	}
	if !strings.Contains(plain, encoded) {
		t.Error("payload not embedded")
	}

	wrapped := generateOSC52(encoded, true)
	if !strings.HasPrefix(wrapped, "\x1bPtmux;") {
		t.Errorf("missing tmux DCS passthrough prefix: %q", wrapped)
	}
	if !strings.Contains(wrapped, encoded) {
		t.Error("payload not embedded in tmux wrapping")
	}
}

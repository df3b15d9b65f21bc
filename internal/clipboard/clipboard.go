// Package clipboard copies roster values (emails, phone numbers) to the
// system clipboard, falling back to the OSC 52 escape sequence when no
// native clipboard tool exists.
package clipboard

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/deskroster/deskroster/internal/platform"
)

// Copy copies text to the system clipboard using platform-appropriate
// methods. The fallback chain is: native clipboard tool, then the
// OSC 52 escape sequence. Returns the method used.
func Copy(text string) (string, error) {
	if text == "" {
		return "", fmt.Errorf("no content to copy")
	}

	method, err := copyNative(text)
	if err == nil {
		return method, nil
	}

	if err := copyOSC52(text); err != nil {
		return "", fmt.Errorf("no clipboard method available (install pbcopy, xclip, xsel, or wl-copy): %w", err)
	}
	return "osc52", nil
}

// copyNative attempts to copy using a platform-native clipboard command.
// Returns the method name on success.
func copyNative(text string) (string, error) {
	switch platform.Detect() {
	case platform.PlatformMacOS:
		return "pbcopy", runClipCmd("pbcopy", nil, text)

	case platform.PlatformWSL1, platform.PlatformWSL2:
		return "clip.exe", runClipCmd("clip.exe", nil, text)

	case platform.PlatformLinux:
		// Wayland takes priority over X11
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			if path, err := exec.LookPath("wl-copy"); err == nil {
				return "wl-copy", runClipCmd(path, nil, text)
			}
		}
		if path, err := exec.LookPath("xclip"); err == nil {
			return "xclip", runClipCmd(path, []string{"-selection", "clipboard"}, text)
		}
		if path, err := exec.LookPath("xsel"); err == nil {
			return "xsel", runClipCmd(path, []string{"--clipboard", "--input"}, text)
		}
		return "", fmt.Errorf("no clipboard command found on Linux")

	default:
		return "", fmt.Errorf("unsupported platform: %s", platform.Detect())
	}
}

// runClipCmd executes a clipboard command, piping text to its stdin.
func runClipCmd(name string, args []string, text string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}

// copyOSC52 copies text using the OSC 52 terminal escape sequence.
// Inside tmux, wraps the sequence in a DCS passthrough.
func copyOSC52(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	seq := generateOSC52(encoded, os.Getenv("TMUX") != "")

	// Write to /dev/tty to bypass any stdout redirection
	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	_, err = tty.WriteString(seq)
	return err
}

// generateOSC52 builds the OSC 52 escape sequence.
// If inTmux is true, wraps it in a DCS passthrough for tmux compatibility.
func generateOSC52(base64Content string, inTmux bool) string {
	osc := "\x1b]52;c;" + base64Content + "\x07"
	if inTmux {
		return "\x1bPtmux;\x1b" + osc + "\x1b\\"
	}
	return osc
}

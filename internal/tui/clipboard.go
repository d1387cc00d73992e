package tui

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/jmylchreest/themekit/internal/model"
)

var errNoClipboard = errors.New("no clipboard command available")

// copyText copies text to the system clipboard using command, or an
// auto-detected one when command is empty.
func copyText(text, command string) error {
	if command == "" {
		command = detectClipboardCommand()
	}
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return errNoClipboard
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := exec.CommandContext(ctx, parts[0], parts[1:]...)
	c.Stdin = strings.NewReader(text)

	return c.Run()
}

// detectClipboardCommand returns the first clipboard tool found on PATH.
func detectClipboardCommand() string {
	// Wayland first, then X11.
	if _, err := exec.LookPath("wl-copy"); err == nil {
		return "wl-copy"
	}
	if _, err := exec.LookPath("xclip"); err == nil {
		return "xclip -selection clipboard"
	}
	if _, err := exec.LookPath("xsel"); err == nil {
		return "xsel --clipboard --input"
	}
	return ""
}

// selectionText returns what the copy action puts on the clipboard for the
// row named name: the theme name, or the markup of the selected variant.
func selectionText(snap model.Snapshot, name string) (string, bool) {
	if name == "theme" {
		return snap.Theme, snap.Theme != ""
	}
	kind, err := model.ParseKind(name)
	if err != nil {
		return "", false
	}
	v := snap.Selected(kind)
	if v == nil {
		return "", false
	}
	return v.Markup, true
}

// Package notify delivers out-of-band alerts for outlook changes
// during long-running watch sessions.
package notify

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"stock-outlook/internal/models"
)

// Notifier is told when a watched symbol's outlook changes between
// sweeps.
type Notifier interface {
	OutlookChange(symbol, timeframe string, previous, current models.Outlook)
}

// Terminal rings the terminal bell and posts a best-effort desktop
// notification. Delivery is fire-and-forget; the watch output itself is
// the reliable channel.
type Terminal struct {
	out  io.Writer
	bell bool

	mu sync.Mutex
}

// NewTerminal creates a notifier writing to stdout.
func NewTerminal(bell bool) *Terminal {
	return &Terminal{out: os.Stdout, bell: bell}
}

// OutlookChange implements Notifier.
func (t *Terminal) OutlookChange(symbol, timeframe string, previous, current models.Outlook) {
	if t.bell {
		t.mu.Lock()
		fmt.Fprint(t.out, "\a")
		t.mu.Unlock()
	}
	post("stock-outlook", fmt.Sprintf("%s (%s): %s -> %s", symbol, timeframe, previous, current))
}

// post hands the message to the platform's notification service.
// Unsupported platforms and spawn failures are silently skipped.
func post(title, message string) {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", message, title)
		_ = exec.Command("osascript", "-e", script).Start()
	case "linux":
		_ = exec.Command("notify-send", title, message).Start()
	}
}

// Package notify emits fire-and-forget notifications on the secondary
// output channel (stderr), one JSON line per call.
//
// Notifications never touch the primary output, so a tool can report
// progress without corrupting a pending JSON response or an active event
// stream. Nothing reads them back; delivery is best-effort.
package notify

import (
	"encoding/json"
	"io"
	"os"
)

// Notifier writes notification events to a single writer.
type Notifier struct {
	w   io.Writer
	enc *json.Encoder
}

// NewNotifier creates a notifier bound to w.
func NewNotifier(w io.Writer) *Notifier {
	if w == nil {
		w = os.Stderr
	}
	return &Notifier{w: w, enc: json.NewEncoder(w)}
}

func (n *Notifier) emit(event map[string]any) {
	// Fire-and-forget: write failures are deliberately dropped.
	_ = n.enc.Encode(event)
	if f, ok := n.w.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
}

// Progress reports forward motion, optionally with a completion percentage.
func (n *Notifier) Progress(message string, percent ...int) {
	event := map[string]any{
		"type":    "notification",
		"kind":    "progress",
		"message": message,
	}
	if len(percent) > 0 {
		event["percent"] = percent[0]
	}
	n.emit(event)
}

// Log emits a log notification at the given level.
func (n *Notifier) Log(level, message string) {
	n.emit(map[string]any{
		"type":    "notification",
		"kind":    "log",
		"level":   level,
		"message": message,
	})
}

// Artifact announces a produced artifact by name and URI.
func (n *Notifier) Artifact(name, uri string) {
	n.emit(map[string]any{
		"type": "notification",
		"kind": "artifact",
		"name": name,
		"uri":  uri,
	})
}

var std = NewNotifier(os.Stderr)

// Progress emits on the process-wide stderr notifier.
func Progress(message string, percent ...int) { std.Progress(message, percent...) }

// Log emits on the process-wide stderr notifier.
func Log(level, message string) { std.Log(level, message) }

// Artifact emits on the process-wide stderr notifier.
func Artifact(name, uri string) { std.Artifact(name, uri) }

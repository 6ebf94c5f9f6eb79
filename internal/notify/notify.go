// Package notify surfaces transient, user-visible messages.
package notify

import (
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/dtroode/gophsocial/internal/model"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
)

// Notification is a single toast.
type Notification struct {
	ID        uuid.UUID
	Level     Level
	Message   string
	CreatedAt time.Time
}

var (
	_ model.Notifier = (*Recorder)(nil)
	_ model.Notifier = (*Console)(nil)
	_ model.Notifier = Fanout(nil)
)

// Recorder keeps the notifications of one run in memory.
type Recorder struct {
	mu    sync.Mutex
	now   func() time.Time
	items []Notification
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) Success(msg string) { r.add(LevelSuccess, msg) }
func (r *Recorder) Error(msg string)   { r.add(LevelError, msg) }
func (r *Recorder) Warning(msg string) { r.add(LevelWarning, msg) }
func (r *Recorder) Info(msg string)    { r.add(LevelInfo, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Notification{
		ID:        uuid.New(),
		Level:     level,
		Message:   msg,
		CreatedAt: r.now(),
	})
}

// All returns every notification recorded so far, oldest first.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.items))
	copy(out, r.items)
	return out
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Console prints notifications as colored lines.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(msg string) { c.print(color.New(color.FgGreen), "✓", msg) }
func (c *Console) Error(msg string)   { c.print(color.New(color.FgRed, color.Bold), "✗", msg) }
func (c *Console) Warning(msg string) { c.print(color.New(color.FgYellow), "!", msg) }
func (c *Console) Info(msg string)    { c.print(color.New(color.FgCyan), "i", msg) }

func (c *Console) print(col *color.Color, mark, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = col.Fprintf(c.w, "%s %s\n", mark, msg)
}

// Fanout forwards every notification to all sinks.
type Fanout []model.Notifier

func (f Fanout) Success(msg string) {
	for _, n := range f {
		n.Success(msg)
	}
}

func (f Fanout) Error(msg string) {
	for _, n := range f {
		n.Error(msg)
	}
}

func (f Fanout) Warning(msg string) {
	for _, n := range f {
		n.Warning(msg)
	}
}

func (f Fanout) Info(msg string) {
	for _, n := range f {
		n.Info(msg)
	}
}

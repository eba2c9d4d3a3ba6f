// Package notify delivers user-facing outcome messages. The core never
// surfaces raw errors; every asynchronous failure becomes a notification
// with a severity kind.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Kind is the notification severity.
type Kind int

const (
	KindInfo Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Note 封装一次通知的内容。
type Note struct {
	Kind     Kind
	Title    string
	Message  string
	Duration time.Duration
}

// Notifier 定义通知输送接口。
type Notifier interface {
	Notify(ctx context.Context, note Note) error
}

// LogNotifier writes notifications to the structured log. Always wired so
// outcomes are visible even without an external channel.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier constructs the log-backed notifier.
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With().Str("component", "notify_log").Logger()}
}

// Notify logs the note at a level matching its kind.
func (n *LogNotifier) Notify(ctx context.Context, note Note) error {
	event := n.logger.Info()
	if note.Kind == KindError {
		event = n.logger.Error()
	}
	event.Str("kind", note.Kind.String()).Str("title", note.Title).Msg(note.Message)
	return nil
}

// Multi fans a note out to several notifiers; the first error wins but all
// notifiers are attempted.
type Multi []Notifier

// Notify dispatches to every wrapped notifier.
func (m Multi) Notify(ctx context.Context, note Note) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, note); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var (
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (Multi)(nil)
)

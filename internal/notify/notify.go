// Package notify is the fire-and-forget status reporting surface. Nothing
// in the core consumes a notifier's result.
package notify

import "go.uber.org/zap"

type Notifier interface {
	Notify(title, body string, isError bool)
}

// ZapNotifier reports into the process log. It is the default when no chat
// notifier is configured.
type ZapNotifier struct {
	Log *zap.Logger
}

func (n ZapNotifier) Notify(title, body string, isError bool) {
	if isError {
		n.Log.Warn(title, zap.String("detail", body))
		return
	}
	n.Log.Info(title, zap.String("detail", body))
}

// Multi fans one notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(title, body string, isError bool) {
	for _, n := range m {
		n.Notify(title, body, isError)
	}
}

// Package email renders localized guest notifications and delivers them
// through a pluggable Sender.
package email

import "context"

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a single message and returns the provider's message id
// when one is available.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
	Name() string
}

// Package model defines the data structures shared across sodam.
package model

import "time"

// Message is one chat message.
type Message struct {
	// ID is the backing store's row identity. Messages pending write carry
	// a locally generated ID until the write is reconciled.
	ID string

	// Text is the message body. Non-empty after trimming.
	Text string

	// Time is the message instant. Zero when the stored timestamp failed
	// to parse; such messages keep their place but render empty labels.
	Time time.Time
}

package models

import "time"

// Conversation carries only what the access core needs: its identity and the
// two join secrets generated when it was created.
type Conversation struct {
	ID          string
	Title       string
	TokenViewer string
	TokenWriter string
	CreatedAt   time.Time
}

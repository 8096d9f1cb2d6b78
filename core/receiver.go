package core

import "context"

// Receiver polls the chat platform for inbound updates.
type Receiver interface {
	Start(ctx context.Context) error
}

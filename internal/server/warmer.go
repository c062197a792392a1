package server

import (
	"context"

	"github.com/preston-bernstein/poll-position/internal/warmer"
)

// Warmer defines the minimal warm-up behavior needed by the server.
type Warmer interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() warmer.Status
}

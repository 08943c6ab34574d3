// Package drafts keeps the split state of bills that are still being edited
// between requests. Drafts expire after a TTL so abandoned flows are
// discarded.
package drafts

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/billsplit/internal/calculator"
)

// ErrNotFound is returned for unknown or expired drafts.
var ErrNotFound = errors.New("draft not found")

// DefaultTTL is how long an untouched draft is kept.
const DefaultTTL = 24 * time.Hour

// Store persists draft engine snapshots keyed by draft ID. Every Save
// restarts the draft's TTL.
type Store interface {
	Get(ctx context.Context, id string) (calculator.State, error)
	Save(ctx context.Context, id string, st calculator.State) error
	Delete(ctx context.Context, id string) error
}

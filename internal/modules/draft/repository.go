// Package draft checkpoints the in-progress cart of each terminal so a
// restarted service can hand the operator back their sale.
package draft

import (
	"context"
	"errors"
	"time"

	"github.com/georgemunganga/frente-caixa/internal/modules/cart"
)

var ErrNotFound = errors.New("draft not found")

// Draft is the checkpoint of one terminal.
type Draft struct {
	Key       string        `json:"key"`
	CaixaID   string        `json:"caixa_id,omitempty"`
	Snapshot  cart.Snapshot `json:"snapshot"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store defines the interface for draft storage.
type Store interface {
	Save(ctx context.Context, d *Draft) error
	Load(ctx context.Context, key string) (*Draft, error)
	Delete(ctx context.Context, key string) error
}

type noopStore struct{}

// NewNoopStore returns a Store that keeps nothing. Load always misses.
func NewNoopStore() Store { return noopStore{} }

func (noopStore) Save(context.Context, *Draft) error { return nil }

func (noopStore) Load(context.Context, string) (*Draft, error) { return nil, ErrNotFound }

func (noopStore) Delete(context.Context, string) error { return nil }

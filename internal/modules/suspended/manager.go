// Package suspended parks an in-progress sale on the backend under a label and
// brings it back later. Resuming consumes the record.
package suspended

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/georgemunganga/frente-caixa/internal/modules/cart"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart            = errors.New("não há itens para suspender")
	ErrNameRequired         = errors.New("informe um nome para a venda suspensa")
	ErrConfirmationRequired = errors.New("a venda atual será descartada: confirme para continuar")
	ErrWrongRegister        = errors.New("venda suspensa pertence a outro caixa")
)

// State of the terminal with respect to suspension.
type State string

const (
	StateActive    State = "active"
	StateSuspended State = "suspended"
)

// Backend is the part of the ERP API the manager needs.
type Backend interface {
	CreateSuspendedSale(ctx context.Context, sess erp.Session, caixaID, name string, data json.RawMessage) (*erp.SuspendedSale, error)
	ListSuspendedSales(ctx context.Context, sess erp.Session, caixaID string) ([]erp.SuspendedSale, error)
	GetSuspendedSale(ctx context.Context, sess erp.Session, id string) (*erp.SuspendedSale, error)
	DeleteSuspendedSale(ctx context.Context, sess erp.Session, id string) error
}

// Summary is one entry of the suspended sales picker.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Items     int       `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager runs suspend/resume against the backend.
type Manager struct {
	backend Backend
	logger  *zap.Logger
}

func NewManager(backend Backend, logger *zap.Logger) *Manager {
	return &Manager{backend: backend, logger: logger.Named("suspended")}
}

// Suspend stores snap under name for the register session. Empty carts are
// rejected before any request is made.
func (m *Manager) Suspend(ctx context.Context, sess erp.Session, caixaID, name string, snap cart.Snapshot) (*Summary, error) {
	if len(snap.Items) == 0 {
		return nil, ErrEmptyCart
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	sale, err := m.backend.CreateSuspendedSale(ctx, sess, caixaID, name, data)
	if err != nil {
		return nil, fmt.Errorf("suspend sale: %w", err)
	}
	m.logger.Info("sale suspended",
		zap.String("suspended_id", sale.ID),
		zap.String("caixa_id", caixaID),
		zap.Int("items", len(snap.Items)))
	return &Summary{ID: sale.ID, Name: name, Items: len(snap.Items), CreatedAt: sale.CreatedAt}, nil
}

// Resume fetches a suspended sale, deletes it and returns its snapshot. When the
// current cart has items the caller must confirm discarding them. If the delete
// fails the snapshot is not returned, so a record is never restored twice.
func (m *Manager) Resume(ctx context.Context, sess erp.Session, caixaID, id string, cartHasItems, confirmDiscard bool) (cart.Snapshot, error) {
	if cartHasItems && !confirmDiscard {
		return cart.Snapshot{}, ErrConfirmationRequired
	}
	sale, err := m.backend.GetSuspendedSale(ctx, sess, id)
	if err != nil {
		return cart.Snapshot{}, fmt.Errorf("load suspended sale: %w", err)
	}
	if sale.CaixaID != "" && sale.CaixaID != caixaID {
		return cart.Snapshot{}, ErrWrongRegister
	}
	var snap cart.Snapshot
	if err := json.Unmarshal(sale.Data, &snap); err != nil {
		return cart.Snapshot{}, fmt.Errorf("decode suspended sale %s: %w", id, err)
	}
	if err := m.backend.DeleteSuspendedSale(ctx, sess, id); err != nil {
		return cart.Snapshot{}, fmt.Errorf("consume suspended sale: %w", err)
	}
	m.logger.Info("sale resumed", zap.String("suspended_id", id), zap.Int("items", len(snap.Items)))
	return snap, nil
}

// List returns the suspended sales of the register session, newest first as
// delivered by the backend.
func (m *Manager) List(ctx context.Context, sess erp.Session, caixaID string) ([]Summary, error) {
	sales, err := m.backend.ListSuspendedSales(ctx, sess, caixaID)
	if err != nil {
		return nil, fmt.Errorf("list suspended sales: %w", err)
	}
	out := make([]Summary, 0, len(sales))
	for _, s := range sales {
		sum := Summary{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
		var snap cart.Snapshot
		if err := json.Unmarshal(s.Data, &snap); err == nil {
			sum.Items = len(snap.Items)
		}
		out = append(out, sum)
	}
	return out, nil
}

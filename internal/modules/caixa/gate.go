// Package caixa gates the sale screen behind an open cash-register session and
// runs the cash movements (sangria/suprimento) of that session.
package caixa

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/shopspring/decimal"
)

var (
	ErrRegisterClosed      = errors.New("caixa fechado: abra o caixa para iniciar as vendas")
	ErrRegisterAlreadyOpen = errors.New("já existe um caixa aberto")
	ErrInvalidAmount       = errors.New("valor deve ser maior que zero")
	ErrReasonRequired      = errors.New("motivo é obrigatório")
	ErrInsufficientCash    = errors.New("valor da sangria maior que o saldo em caixa")
	ErrNegativeOpening     = errors.New("saldo inicial não pode ser negativo")
)

// Backend is the part of the ERP API the gate needs.
type Backend interface {
	CaixaStatus(ctx context.Context, sess erp.Session) (*erp.Caixa, error)
	CaixaSummary(ctx context.Context, sess erp.Session, caixaID string) (*erp.CaixaSummary, error)
	OpenCaixa(ctx context.Context, sess erp.Session, openingBalance decimal.Decimal) (*erp.Caixa, error)
	Sangria(ctx context.Context, sess erp.Session, req erp.CashMovementRequest) (*erp.CashMovement, error)
	Suprimento(ctx context.Context, sess erp.Session, req erp.CashMovementRequest) (*erp.CashMovement, error)
}

// State is what the gate last learned from the backend.
type State struct {
	Checked bool              `json:"checked"`
	Open    bool              `json:"open"`
	Caixa   *erp.Caixa        `json:"caixa,omitempty"`
	Summary *erp.CaixaSummary `json:"summary,omitempty"`
}

// Gate caches the register session state of one terminal. It is checked on
// load and refreshed after each sale, never per keystroke.
type Gate struct {
	backend Backend

	mu      sync.RWMutex
	checked bool
	caixa   *erp.Caixa
	summary *erp.CaixaSummary
}

func NewGate(backend Backend) *Gate { return &Gate{backend: backend} }

// Check asks the backend whether the operator has an open register session.
// On failure the previous state is kept.
func (g *Gate) Check(ctx context.Context, sess erp.Session) (State, error) {
	cx, err := g.backend.CaixaStatus(ctx, sess)
	if err != nil {
		return g.State(), fmt.Errorf("check register status: %w", err)
	}
	g.mu.Lock()
	g.checked = true
	if cx == nil || (cx.Status != "" && cx.Status != erp.CaixaAberto) {
		g.caixa = nil
		g.summary = nil
	} else {
		g.caixa = cx
	}
	g.mu.Unlock()
	return g.State(), nil
}

// Refresh rechecks the status and reloads the running balance.
func (g *Gate) Refresh(ctx context.Context, sess erp.Session) (State, error) {
	st, err := g.Check(ctx, sess)
	if err != nil || !st.Open {
		return st, err
	}
	summary, err := g.backend.CaixaSummary(ctx, sess, st.Caixa.ID)
	if err != nil {
		return st, fmt.Errorf("load register summary: %w", err)
	}
	g.mu.Lock()
	g.summary = summary
	g.mu.Unlock()
	return g.State(), nil
}

// Require returns the open register session or ErrRegisterClosed.
func (g *Gate) Require() (*erp.Caixa, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.caixa == nil {
		return nil, ErrRegisterClosed
	}
	cx := *g.caixa
	return &cx, nil
}

// State returns a copy of the cached state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	st := State{Checked: g.checked, Open: g.caixa != nil}
	if g.caixa != nil {
		cx := *g.caixa
		st.Caixa = &cx
	}
	if g.summary != nil {
		s := *g.summary
		st.Summary = &s
	}
	return st
}

// Open opens a register session with the given opening balance.
func (g *Gate) Open(ctx context.Context, sess erp.Session, openingBalance decimal.Decimal) (State, error) {
	if openingBalance.IsNegative() {
		return g.State(), ErrNegativeOpening
	}
	if _, err := g.Require(); err == nil {
		return g.State(), ErrRegisterAlreadyOpen
	}
	cx, err := g.backend.OpenCaixa(ctx, sess, openingBalance.Round(2))
	if err != nil {
		return g.State(), fmt.Errorf("open register: %w", err)
	}
	g.mu.Lock()
	g.checked = true
	g.caixa = cx
	g.summary = nil
	g.mu.Unlock()
	return g.Refresh(ctx, sess)
}

// Sangria withdraws cash from the open register session.
func (g *Gate) Sangria(ctx context.Context, sess erp.Session, amount decimal.Decimal, reason string) (State, error) {
	req, err := g.movement(sess, amount, reason)
	if err != nil {
		return g.State(), err
	}
	if st := g.State(); st.Summary != nil && amount.GreaterThan(st.Summary.CurrentBalance) {
		return st, ErrInsufficientCash
	}
	if _, err := g.backend.Sangria(ctx, sess, req); err != nil {
		return g.State(), fmt.Errorf("sangria: %w", err)
	}
	return g.Refresh(ctx, sess)
}

// Suprimento adds cash to the open register session.
func (g *Gate) Suprimento(ctx context.Context, sess erp.Session, amount decimal.Decimal, reason string) (State, error) {
	req, err := g.movement(sess, amount, reason)
	if err != nil {
		return g.State(), err
	}
	if _, err := g.backend.Suprimento(ctx, sess, req); err != nil {
		return g.State(), fmt.Errorf("suprimento: %w", err)
	}
	return g.Refresh(ctx, sess)
}

func (g *Gate) movement(sess erp.Session, amount decimal.Decimal, reason string) (erp.CashMovementRequest, error) {
	cx, err := g.Require()
	if err != nil {
		return erp.CashMovementRequest{}, err
	}
	if !amount.IsPositive() {
		return erp.CashMovementRequest{}, ErrInvalidAmount
	}
	if strings.TrimSpace(reason) == "" {
		return erp.CashMovementRequest{}, ErrReasonRequired
	}
	return erp.CashMovementRequest{
		CompanyID: sess.CompanyID,
		CaixaID:   cx.ID,
		UserID:    sess.UserID,
		Amount:    amount.Round(2),
		Reason:    strings.TrimSpace(reason),
	}, nil
}

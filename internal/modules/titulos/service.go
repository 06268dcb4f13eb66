// Package titulos settles open receivables and payables in bulk: the operator
// selects rows from the open listing, edits them inline and confirms the whole
// batch in one request.
package titulos

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"go.uber.org/zap"
)

// Backend is the part of the ERP API the settlement screen needs.
type Backend interface {
	ListOpenTitulos(ctx context.Context, sess erp.Session, f erp.TituloFilter) ([]erp.Titulo, error)
	ListBankAccounts(ctx context.Context, sess erp.Session) ([]erp.BankAccount, error)
	SettleBatch(ctx context.Context, sess erp.Session, req erp.BatchSettlementRequest) (*erp.BatchSettlementResult, error)
}

// Service defines the settlement workflow.
type Service interface {
	List(ctx context.Context, sess erp.Session, f erp.TituloFilter) ([]erp.Titulo, error)
	BankAccounts(ctx context.Context, sess erp.Session) ([]erp.BankAccount, error)
	Select(sess erp.Session, tituloID, bankAccountID string) (Summary, error)
	Deselect(sess erp.Session, tituloID string) Summary
	Edit(sess erp.Session, tituloID string, e Edit) (Summary, error)
	Batch(sess erp.Session) Summary
	Confirm(ctx context.Context, sess erp.Session) (*erp.BatchSettlementResult, error)
	Clear(sess erp.Session) Summary
}

type workspace struct {
	mu     sync.Mutex
	listed map[string]erp.Titulo
	batch  *Batch
}

type service struct {
	backend Backend
	logger  *zap.Logger
	now     func() time.Time

	mu     sync.Mutex
	spaces map[string]*workspace
}

func NewService(backend Backend, logger *zap.Logger) Service {
	return &service{
		backend: backend,
		logger:  logger.Named("titulos"),
		now:     time.Now,
		spaces:  make(map[string]*workspace),
	}
}

func (s *service) workspace(sess erp.Session) *workspace {
	key := sess.CompanyID + ":" + sess.UserID
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.spaces[key]
	if !ok {
		ws = &workspace{listed: make(map[string]erp.Titulo), batch: NewBatch()}
		s.spaces[key] = ws
	}
	return ws
}

// List fetches the open títulos ordered by due date and remembers them for
// selection.
func (s *service) List(ctx context.Context, sess erp.Session, f erp.TituloFilter) ([]erp.Titulo, error) {
	f.Kind = strings.ToLower(strings.TrimSpace(f.Kind))
	if f.Kind != "" && f.Kind != "receber" && f.Kind != "pagar" {
		return nil, ErrInvalidFilter
	}
	if f.DueTo != "" {
		if _, err := time.Parse(dateLayout, f.DueTo); err != nil {
			return nil, ErrInvalidDate
		}
	}
	list, err := s.backend.ListOpenTitulos(ctx, sess, f)
	if err != nil {
		return nil, fmt.Errorf("list titulos: %w", err)
	}
	sortByDue(list)

	ws := s.workspace(sess)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, t := range list {
		ws.listed[t.ID] = t
	}
	return list, nil
}

func (s *service) BankAccounts(ctx context.Context, sess erp.Session) ([]erp.BankAccount, error) {
	accounts, err := s.backend.ListBankAccounts(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list bank accounts: %w", err)
	}
	return accounts, nil
}

func (s *service) Select(sess erp.Session, tituloID, bankAccountID string) (Summary, error) {
	ws := s.workspace(sess)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	t, ok := ws.listed[tituloID]
	if !ok {
		return Summary{}, ErrNotListed
	}
	ws.batch.Select(t, s.now(), bankAccountID)
	return summarize(ws.batch), nil
}

func (s *service) Deselect(sess erp.Session, tituloID string) Summary {
	ws := s.workspace(sess)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.batch.Deselect(tituloID)
	return summarize(ws.batch)
}

func (s *service) Edit(sess erp.Session, tituloID string, e Edit) (Summary, error) {
	ws := s.workspace(sess)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, err := ws.batch.Edit(tituloID, e); err != nil {
		return Summary{}, err
	}
	return summarize(ws.batch), nil
}

func (s *service) Batch(sess erp.Session) Summary {
	ws := s.workspace(sess)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return summarize(ws.batch)
}

// Confirm validates every row and posts the batch. The batch is kept when the
// backend rejects it.
func (s *service) Confirm(ctx context.Context, sess erp.Session) (*erp.BatchSettlementResult, error) {
	ws := s.workspace(sess)
	ws.mu.Lock()
	defer ws.mu.Unlock()

	if err := ws.batch.Validate(); err != nil {
		return nil, err
	}
	req := erp.BatchSettlementRequest{
		CompanyID:   sess.CompanyID,
		UserID:      sess.UserID,
		Settlements: ws.batch.Settlements(),
	}
	res, err := s.backend.SettleBatch(ctx, sess, req)
	if err != nil {
		s.logger.Warn("batch settlement failed", zap.Int("rows", len(req.Settlements)), zap.Error(err))
		return nil, fmt.Errorf("settle batch: %w", err)
	}
	s.logger.Info("batch settled",
		zap.Int("rows", len(req.Settlements)),
		zap.Int("processed", res.Processed),
		zap.String("total", ws.batch.Total().StringFixed(2)))

	for _, st := range req.Settlements {
		delete(ws.listed, st.TituloID)
	}
	ws.batch.Clear()
	return res, nil
}

func (s *service) Clear(sess erp.Session) Summary {
	ws := s.workspace(sess)
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.batch.Clear()
	return summarize(ws.batch)
}

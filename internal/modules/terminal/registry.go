package terminal

import (
	"context"
	"errors"
	"sync"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/georgemunganga/frente-caixa/internal/modules/draft"
	"github.com/georgemunganga/frente-caixa/internal/modules/input"
	"go.uber.org/zap"
)

// Registry keeps one Terminal per operator of a company.
type Registry struct {
	backend Backend
	drafts  draft.Store
	scanner input.ClassifierConfig
	logger  *zap.Logger

	mu        sync.Mutex
	terminals map[string]*Terminal
}

func NewRegistry(backend Backend, drafts draft.Store, scanner input.ClassifierConfig, logger *zap.Logger) *Registry {
	if drafts == nil {
		drafts = draft.NewNoopStore()
	}
	return &Registry{
		backend:   backend,
		drafts:    drafts,
		scanner:   scanner,
		logger:    logger.Named("terminal"),
		terminals: make(map[string]*Terminal),
	}
}

// Key identifies the terminal of a session.
func Key(sess erp.Session) string { return sess.CompanyID + ":" + sess.UserID }

// Terminal returns the operator's terminal, creating it on first use. A new
// terminal loads the register state before restoring the checkpointed cart; a
// terminal whose register check failed retries it on the next call.
func (r *Registry) Terminal(ctx context.Context, sess erp.Session) *Terminal {
	t, created := r.terminal(ctx, sess)
	if !created && !t.gate.State().Checked {
		t.checkRegister(ctx, sess)
	}
	return t
}

func (r *Registry) terminal(ctx context.Context, sess erp.Session) (*Terminal, bool) {
	key := Key(sess)
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.terminals[key]; ok {
		return t, false
	}

	t := newTerminal(key, r.backend, r.drafts, r.scanner, r.logger)
	t.checkRegister(ctx, sess)
	d, err := r.drafts.Load(ctx, key)
	switch {
	case err == nil:
		r.restoreDraft(ctx, t, d)
	case !errors.Is(err, draft.ErrNotFound):
		r.logger.Warn("draft load failed", zap.String("terminal", key), zap.Error(err))
	}
	r.terminals[key] = t
	return t, true
}

// restoreDraft brings back a checkpointed cart unless it belongs to a register
// session that is no longer the open one.
func (r *Registry) restoreDraft(ctx context.Context, t *Terminal, d *draft.Draft) {
	st := t.gate.State()
	if st.Checked && d.CaixaID != "" && (!st.Open || st.Caixa.ID != d.CaixaID) {
		r.logger.Info("draft dropped: register session changed",
			zap.String("terminal", t.key), zap.String("draft_caixa", d.CaixaID))
		if err := r.drafts.Delete(ctx, t.key); err != nil {
			r.logger.Warn("draft delete failed", zap.String("terminal", t.key), zap.Error(err))
		}
		return
	}
	t.restore(d)
	r.logger.Info("draft restored", zap.String("terminal", t.key), zap.Int("items", len(d.Snapshot.Items)))
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.terminals)
}

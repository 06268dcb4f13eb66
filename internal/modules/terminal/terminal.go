// Package terminal runs the sale screen of one register terminal: it owns the
// cart session and routes search, scanner, shortcut and checkout input to it.
package terminal

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/georgemunganga/frente-caixa/internal/modules/caixa"
	"github.com/georgemunganga/frente-caixa/internal/modules/cart"
	"github.com/georgemunganga/frente-caixa/internal/modules/draft"
	"github.com/georgemunganga/frente-caixa/internal/modules/input"
	"github.com/georgemunganga/frente-caixa/internal/modules/suspended"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Backend is the part of the ERP API a terminal needs.
type Backend interface {
	caixa.Backend
	suspended.Backend
	SearchProducts(ctx context.Context, sess erp.Session, term string) ([]erp.Product, error)
	SearchCustomers(ctx context.Context, sess erp.Session, term string) ([]erp.Customer, error)
	ListNaturezas(ctx context.Context, sess erp.Session) ([]erp.NaturezaOperacao, error)
	FinalizeSale(ctx context.Context, sess erp.Session, req erp.SaleRequest) (*erp.SaleReceipt, error)
}

// Terminal is the sale screen of one operator. Product lookups run outside the
// terminal lock and are applied only if still current. Finalize, suspend and
// resume hold the lock across their backend call so the cart that was sent is
// the cart that gets cleared.
type Terminal struct {
	key     string
	backend Backend
	drafts  draft.Store
	logger  *zap.Logger
	gate    *caixa.Gate
	parking *suspended.Manager
	seq     input.Sequencer

	mu             sync.Mutex
	cart           *cart.Cart
	classifier     *input.Classifier
	modal          Modal
	search         *SearchState
	parked         bool
	suspendedCount int
	naturezas      []erp.NaturezaOperacao
}

func newTerminal(key string, backend Backend, drafts draft.Store, cfg input.ClassifierConfig, logger *zap.Logger) *Terminal {
	logger = logger.With(zap.String("terminal", key))
	return &Terminal{
		key:        key,
		backend:    backend,
		drafts:     drafts,
		logger:     logger,
		gate:       caixa.NewGate(backend),
		parking:    suspended.NewManager(backend, logger),
		cart:       cart.New(),
		classifier: input.NewClassifier(cfg),
	}
}

func (t *Terminal) Key() string { return t.key }

// View returns the current screen without touching the backend.
func (t *Terminal) View() View {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.viewLocked()
}

// Status loads the register state and the suspended sales badge.
func (t *Terminal) Status(ctx context.Context, sess erp.Session) (Outcome, error) {
	var out Outcome
	st, err := t.gate.Refresh(ctx, sess)
	if err != nil {
		return Outcome{}, err
	}
	if !st.Open {
		out.notify(LevelWarning, caixa.ErrRegisterClosed.Error())
	} else {
		t.countSuspended(ctx, sess, st.Caixa.ID, &out)
	}
	return t.finish(out), nil
}

// OpenRegister opens a register session for the operator.
func (t *Terminal) OpenRegister(ctx context.Context, sess erp.Session, openingBalance decimal.Decimal) (Outcome, error) {
	if _, err := t.gate.Open(ctx, sess, openingBalance); err != nil {
		return Outcome{}, err
	}
	var out Outcome
	out.notify(LevelSuccess, "Caixa aberto")
	return t.finish(out), nil
}

// Sangria withdraws cash from the register.
func (t *Terminal) Sangria(ctx context.Context, sess erp.Session, amount decimal.Decimal, reason string) (Outcome, error) {
	if _, err := t.gate.Sangria(ctx, sess, amount, reason); err != nil {
		return Outcome{}, err
	}
	t.closeModalIf(ModalSangria)
	var out Outcome
	out.notify(LevelSuccess, "Sangria registrada")
	return t.finish(out), nil
}

// Suprimento adds cash to the register.
func (t *Terminal) Suprimento(ctx context.Context, sess erp.Session, amount decimal.Decimal, reason string) (Outcome, error) {
	if _, err := t.gate.Suprimento(ctx, sess, amount, reason); err != nil {
		return Outcome{}, err
	}
	t.closeModalIf(ModalSuprimento)
	var out Outcome
	out.notify(LevelSuccess, "Suprimento registrado")
	return t.finish(out), nil
}

// Search looks up term typed by the operator. A response overtaken by a newer
// search is reported stale and not applied.
func (t *Terminal) Search(ctx context.Context, sess erp.Session, term string) (Outcome, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return Outcome{}, ErrSearchTermRequired
	}
	if _, err := t.gate.Require(); err != nil {
		return Outcome{}, err
	}
	tok := t.seq.Next()
	products, err := t.backend.SearchProducts(ctx, sess, term)

	var out Outcome
	t.applyLookup(ctx, tok, term, products, err, &out)
	return t.finish(out), nil
}

// Scan looks up a code read by the barcode scanner.
func (t *Terminal) Scan(ctx context.Context, sess erp.Session, code string) (Outcome, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Outcome{}, ErrSearchTermRequired
	}
	if _, err := t.gate.Require(); err != nil {
		return Outcome{}, err
	}
	var out Outcome
	t.scanInto(ctx, sess, code, &out)
	return t.finish(out), nil
}

// SelectResult adds a product picked from the search dropdown.
func (t *Terminal) SelectResult(ctx context.Context, productID string) (Outcome, error) {
	return t.mutate(ctx, func(c *cart.Cart, out *Outcome) error {
		if t.search == nil {
			return ErrNotInResults
		}
		for _, p := range t.search.Options {
			if p.ID == productID {
				t.addLocked(p, out)
				return nil
			}
		}
		return ErrNotInResults
	})
}

// Keys feeds raw keystrokes: shortcuts are dispatched, everything else goes to
// the scanner classifier and completed scans are looked up.
func (t *Terminal) Keys(ctx context.Context, sess erp.Session, events []input.KeyEvent) Outcome {
	var out Outcome
	for _, ev := range events {
		t.mu.Lock()
		var (
			code    string
			scanned bool
		)
		if action, ok := input.Dispatch(ev, t.modal != ModalNone); ok {
			t.applyActionLocked(ctx, action, &out)
		} else {
			code, scanned = t.classifier.Feed(ev)
		}
		t.mu.Unlock()

		if scanned {
			t.scanInto(ctx, sess, code, &out)
		}
	}
	return t.finish(out)
}

// Flush completes a buffered scan once the scanner has gone idle.
func (t *Terminal) Flush(ctx context.Context, sess erp.Session, now time.Time) Outcome {
	t.mu.Lock()
	code, ok := t.classifier.Flush(now)
	t.mu.Unlock()

	var out Outcome
	if ok {
		t.scanInto(ctx, sess, code, &out)
	}
	return t.finish(out)
}

func (t *Terminal) AddCustomItem(ctx context.Context, it CustomItem) (Outcome, error) {
	return t.mutate(ctx, func(c *cart.Cart, out *Outcome) error {
		added, err := c.AddCustomItem(it.Code, it.Name, it.UnitPrice, it.Quantity)
		if err != nil {
			return err
		}
		t.parked = false
		out.Added = &added
		out.Feedback = FeedbackSuccess
		return nil
	})
}

func (t *Terminal) UpdateQuantity(ctx context.Context, id uuid.UUID, qty int) (Outcome, error) {
	return t.mutate(ctx, func(c *cart.Cart, _ *Outcome) error {
		return c.UpdateQuantity(id, qty)
	})
}

func (t *Terminal) RemoveItem(ctx context.Context, id uuid.UUID) (Outcome, error) {
	return t.mutate(ctx, func(c *cart.Cart, _ *Outcome) error {
		return c.RemoveItem(id)
	})
}

func (t *Terminal) ApplyItemDiscount(ctx context.Context, id uuid.UUID, kind cart.DiscountKind, value decimal.Decimal) (Outcome, error) {
	return t.mutate(ctx, func(c *cart.Cart, _ *Outcome) error {
		return c.ApplyItemDiscount(id, kind, value)
	})
}

// SetOverallDiscount sets the literal sale discount.
func (t *Terminal) SetOverallDiscount(ctx context.Context, amount decimal.Decimal) (Outcome, error) {
	return t.mutate(ctx, func(c *cart.Cart, _ *Outcome) error {
		if err := c.SetOverallDiscount(amount); err != nil {
			return err
		}
		t.closeModalLocked(ModalDiscount)
		return nil
	})
}

// ApplyOverallDiscountPercent spreads a percentage discount over the lines.
func (t *Terminal) ApplyOverallDiscountPercent(ctx context.Context, pct decimal.Decimal) (Outcome, error) {
	return t.mutate(ctx, func(c *cart.Cart, _ *Outcome) error {
		if err := c.ApplyOverallDiscountPercent(pct); err != nil {
			return err
		}
		t.closeModalLocked(ModalDiscount)
		return nil
	})
}

// SetCustomer selects the customer of the sale; nil clears it.
func (t *Terminal) SetCustomer(ctx context.Context, cust *erp.Customer) (Outcome, error) {
	if cust != nil && strings.TrimSpace(cust.ID) == "" {
		return Outcome{}, ErrInvalidCustomer
	}
	return t.mutate(ctx, func(c *cart.Cart, _ *Outcome) error {
		c.SetCustomer(cust)
		return nil
	})
}

// SetNatureza selects a POS-enabled operation-nature by id.
func (t *Terminal) SetNatureza(ctx context.Context, sess erp.Session, id string) (Outcome, error) {
	options, err := t.Naturezas(ctx, sess)
	if err != nil {
		return Outcome{}, err
	}
	var picked *erp.NaturezaOperacao
	for i := range options {
		if options[i].ID == id {
			n := options[i]
			picked = &n
			break
		}
	}
	if picked == nil {
		return Outcome{}, ErrNaturezaUnavailable
	}
	return t.mutate(ctx, func(c *cart.Cart, _ *Outcome) error {
		c.SetNatureza(picked)
		return nil
	})
}

// SetPayment selects the payment method and, for cash, the amount tendered.
func (t *Terminal) SetPayment(ctx context.Context, method string, tendered decimal.Decimal) (Outcome, error) {
	m, err := cart.ParsePaymentMethod(method)
	if err != nil {
		return Outcome{}, err
	}
	return t.mutate(ctx, func(c *cart.Cart, _ *Outcome) error {
		return c.SetPayment(m, tendered)
	})
}

// Naturezas returns the operation-natures enabled for the POS. The list is
// fetched once per terminal.
func (t *Terminal) Naturezas(ctx context.Context, sess erp.Session) ([]erp.NaturezaOperacao, error) {
	t.mu.Lock()
	cached := t.naturezas
	t.mu.Unlock()
	if cached != nil {
		return cached, nil
	}

	all, err := t.backend.ListNaturezas(ctx, sess)
	if err != nil {
		return nil, fmt.Errorf("list naturezas: %w", err)
	}
	enabled := make([]erp.NaturezaOperacao, 0, len(all))
	for _, n := range all {
		if n.EnabledInPOS {
			enabled = append(enabled, n)
		}
	}
	t.mu.Lock()
	t.naturezas = enabled
	t.mu.Unlock()
	return enabled, nil
}

// SearchCustomers looks up customers for the customer field.
func (t *Terminal) SearchCustomers(ctx context.Context, sess erp.Session, term string) ([]erp.Customer, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []erp.Customer{}, nil
	}
	customers, err := t.backend.SearchCustomers(ctx, sess, term)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	return customers, nil
}

// Finalize validates the sale and posts it. The cart is cleared only after
// the backend accepted it.
func (t *Terminal) Finalize(ctx context.Context, sess erp.Session) (Outcome, error) {
	cx, err := t.gate.Require()
	if err != nil {
		return Outcome{}, err
	}
	receipt, totals, err := t.submitSale(ctx, sess, cx)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Receipt: receipt, Feedback: FeedbackSuccess}
	out.notify(LevelSuccess, "Venda finalizada")
	if totals.Change.IsPositive() {
		out.notify(LevelInfo, "Troco: R$ "+totals.Change.StringFixed(2))
	}
	if _, err := t.gate.Refresh(ctx, sess); err != nil {
		t.logger.Warn("register refresh after sale failed", zap.Error(err))
		out.notify(LevelWarning, "Não foi possível atualizar o saldo do caixa")
	}
	return t.finish(out), nil
}

func (t *Terminal) submitSale(ctx context.Context, sess erp.Session, cx *erp.Caixa) (*erp.SaleReceipt, cart.Totals, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	req, err := t.saleRequestLocked(sess, cx)
	if err != nil {
		return nil, cart.Totals{}, err
	}
	totals := t.cart.Totals()
	receipt, err := t.backend.FinalizeSale(ctx, sess, req)
	if err != nil {
		t.logger.Warn("sale rejected", zap.String("caixa_id", cx.ID), zap.Error(err))
		return nil, cart.Totals{}, fmt.Errorf("finalize sale: %w", err)
	}
	t.logger.Info("sale finalized",
		zap.String("caixa_id", cx.ID),
		zap.String("sale_id", receipt.ID),
		zap.Int("lines", totals.Lines),
		zap.String("total", totals.Total.StringFixed(2)),
		zap.String("payment_method", req.PaymentMethod))

	t.resetLocked()
	t.checkpointLocked(ctx)
	return receipt, totals, nil
}

func (t *Terminal) saleRequestLocked(sess erp.Session, cx *erp.Caixa) (erp.SaleRequest, error) {
	if t.cart.IsEmpty() {
		return erp.SaleRequest{}, cart.ErrEmptyCart
	}
	n := t.cart.Natureza()
	if n == nil {
		return erp.SaleRequest{}, ErrNaturezaRequired
	}
	method := t.cart.PaymentMethod()
	if method == "" {
		return erp.SaleRequest{}, ErrPaymentRequired
	}
	totals := t.cart.Totals()
	if method == cart.PaymentCash && totals.AmountTendered.LessThan(totals.Total) {
		return erp.SaleRequest{}, ErrInsufficientTendered
	}

	req := erp.SaleRequest{
		CompanyID:       sess.CompanyID,
		CaixaID:         cx.ID,
		UserID:          sess.UserID,
		NaturezaID:      n.ID,
		OverallDiscount: totals.OverallDiscount,
		PaymentMethod:   string(method),
		AmountTendered:  totals.AmountTendered,
	}
	if cust := t.cart.Customer(); cust != nil {
		id := cust.ID
		snapshot := *cust
		req.CustomerID = &id
		req.Customer = &snapshot
	}
	for _, it := range t.cart.Items() {
		req.Items = append(req.Items, erp.SaleItem{
			ProductID:       it.ProductID,
			Code:            it.Code,
			Name:            it.Name,
			Quantity:        it.Quantity,
			UnitPrice:       it.UnitPrice,
			DiscountAmount:  it.DiscountAmount,
			DiscountPercent: it.DiscountPercent,
			NCM:             it.NCM,
			CFOP:            it.CFOP,
			Unit:            it.Unit,
		})
	}
	return req, nil
}

// Cancel discards the current sale.
func (t *Terminal) Cancel(ctx context.Context) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out Outcome
	if !t.cart.IsEmpty() {
		t.cancelLocked(ctx)
		out.notify(LevelInfo, "Venda cancelada")
	}
	out.View = t.viewLocked()
	return out
}

// Suspend parks the current sale under name.
func (t *Terminal) Suspend(ctx context.Context, sess erp.Session, name string) (Outcome, error) {
	cx, err := t.gate.Require()
	if err != nil {
		return Outcome{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	sum, err := t.parking.Suspend(ctx, sess, cx.ID, name, t.cart.Snapshot())
	if err != nil {
		return Outcome{}, err
	}
	t.resetLocked()
	t.parked = true
	t.suspendedCount++
	t.checkpointLocked(ctx)

	var out Outcome
	out.notify(LevelSuccess, fmt.Sprintf("Venda %q suspensa", sum.Name))
	out.View = t.viewLocked()
	return out, nil
}

// Resume restores a suspended sale. Replacing a non-empty cart needs confirm.
func (t *Terminal) Resume(ctx context.Context, sess erp.Session, id string, confirm bool) (Outcome, error) {
	cx, err := t.gate.Require()
	if err != nil {
		return Outcome{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	snap, err := t.parking.Resume(ctx, sess, cx.ID, id, !t.cart.IsEmpty(), confirm)
	if err != nil {
		return Outcome{}, err
	}
	t.cart.Restore(snap)
	t.parked = false
	t.modal = ModalNone
	t.search = nil
	if t.suspendedCount > 0 {
		t.suspendedCount--
	}
	t.checkpointLocked(ctx)

	var out Outcome
	out.notify(LevelSuccess, "Venda retomada")
	out.View = t.viewLocked()
	return out, nil
}

// ListSuspended returns the suspended sales of the open register.
func (t *Terminal) ListSuspended(ctx context.Context, sess erp.Session) ([]suspended.Summary, error) {
	cx, err := t.gate.Require()
	if err != nil {
		return nil, err
	}
	list, err := t.parking.List(ctx, sess, cx.ID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.suspendedCount = len(list)
	t.mu.Unlock()
	return list, nil
}

func (t *Terminal) OpenModal(m Modal) (Outcome, error) {
	if !m.valid() {
		return Outcome{}, ErrUnknownModal
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modal = m
	return Outcome{View: t.viewLocked()}, nil
}

func (t *Terminal) CloseModal() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.modal = ModalNone
	t.search = nil
	return Outcome{View: t.viewLocked()}
}

func (t *Terminal) scanInto(ctx context.Context, sess erp.Session, code string, out *Outcome) {
	products, err := t.backend.SearchProducts(ctx, sess, code)
	t.applyLookup(ctx, 0, code, products, err, out)
}

// applyLookup applies the result of a product lookup. tok 0 marks a scan,
// which is never stale.
func (t *Terminal) applyLookup(ctx context.Context, tok uint64, term string, products []erp.Product, lookupErr error, out *Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tok != 0 && !t.seq.IsLatest(tok) {
		out.Stale = true
		return
	}
	if lookupErr != nil {
		t.logger.Warn("product lookup failed", zap.String("term", term), zap.Error(lookupErr))
		out.notify(LevelError, erp.UserMessage(lookupErr))
		out.Feedback = FeedbackError
		return
	}

	res := input.Resolve(term, products)
	switch res.Outcome {
	case input.OutcomeAdd:
		t.addLocked(*res.Product, out)
		t.checkpointLocked(ctx)
	case input.OutcomeChoose:
		t.search = &SearchState{Token: tok, Term: term, Options: res.Options}
	case input.OutcomeNotFound:
		out.notify(LevelError, input.NotFoundMessage)
		out.Feedback = FeedbackError
	}
}

func (t *Terminal) addLocked(p erp.Product, out *Outcome) {
	added := t.cart.AddItem(p)
	t.parked = false
	t.search = nil
	t.closeModalLocked(ModalSearch)
	out.Added = &added
	out.Feedback = FeedbackSuccess
}

func (t *Terminal) applyActionLocked(ctx context.Context, action input.Action, out *Outcome) {
	out.Actions = append(out.Actions, action)
	switch action {
	case input.ActionNewSale:
		if !t.cart.IsEmpty() {
			out.notify(LevelWarning, ErrSaleInProgress.Error())
			return
		}
		t.resetLocked()
	case input.ActionOpenSearch:
		t.modal = ModalSearch
	case input.ActionOpenDiscount:
		t.modal = ModalDiscount
	case input.ActionOpenSangria:
		t.modal = ModalSangria
	case input.ActionOpenSuprimento:
		t.modal = ModalSuprimento
	case input.ActionRemoveLastItem:
		it, ok := t.cart.RemoveLast()
		if !ok {
			out.notify(LevelInfo, "Nenhum item para remover")
			return
		}
		out.notify(LevelInfo, "Item removido: "+it.Name)
		t.checkpointLocked(ctx)
	case input.ActionCancelSale:
		if t.cart.IsEmpty() {
			return
		}
		t.cancelLocked(ctx)
		out.notify(LevelInfo, "Venda cancelada")
	case input.ActionFinalizeSale:
		if t.cart.IsEmpty() {
			out.notify(LevelError, cart.ErrEmptyCart.Error())
			out.Feedback = FeedbackError
			return
		}
		t.modal = ModalPayment
	case input.ActionCloseModal:
		t.modal = ModalNone
		t.search = nil
	}
	// focus_customer, open_history and open_dashboard are carried out by the UI.
}

func (t *Terminal) cancelLocked(ctx context.Context) {
	t.resetLocked()
	t.checkpointLocked(ctx)
	t.logger.Info("sale cancelled")
}

func (t *Terminal) resetLocked() {
	t.cart.Clear()
	t.search = nil
	t.modal = ModalNone
	t.parked = false
}

// mutate runs fn on the cart of an open register and checkpoints the result.
func (t *Terminal) mutate(ctx context.Context, fn func(c *cart.Cart, out *Outcome) error) (Outcome, error) {
	if _, err := t.gate.Require(); err != nil {
		return Outcome{}, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	var out Outcome
	if err := fn(t.cart, &out); err != nil {
		return Outcome{}, err
	}
	t.checkpointLocked(ctx)
	out.View = t.viewLocked()
	return out, nil
}

// checkpointLocked saves the cart to the draft store. Failures are logged only.
func (t *Terminal) checkpointLocked(ctx context.Context) {
	if t.cart.IsEmpty() {
		if err := t.drafts.Delete(ctx, t.key); err != nil {
			t.logger.Warn("draft delete failed", zap.Error(err))
		}
		return
	}
	d := &draft.Draft{Key: t.key, Snapshot: t.cart.Snapshot(), UpdatedAt: time.Now().UTC()}
	if cx, err := t.gate.Require(); err == nil {
		d.CaixaID = cx.ID
	}
	if err := t.drafts.Save(ctx, d); err != nil {
		t.logger.Warn("draft save failed", zap.Error(err))
	}
}

// checkRegister loads the register state. Failures leave the gate unchecked.
func (t *Terminal) checkRegister(ctx context.Context, sess erp.Session) {
	if _, err := t.gate.Check(ctx, sess); err != nil {
		t.logger.Warn("register check failed", zap.Error(err))
	}
}

func (t *Terminal) restore(d *draft.Draft) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cart.Restore(d.Snapshot)
}

func (t *Terminal) countSuspended(ctx context.Context, sess erp.Session, caixaID string, out *Outcome) {
	list, err := t.parking.List(ctx, sess, caixaID)
	if err != nil {
		t.logger.Warn("suspended sales count failed", zap.Error(err))
		out.notify(LevelWarning, erp.UserMessage(err))
		return
	}
	t.mu.Lock()
	t.suspendedCount = len(list)
	t.mu.Unlock()
}

func (t *Terminal) closeModalIf(m Modal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closeModalLocked(m)
}

func (t *Terminal) closeModalLocked(m Modal) {
	if t.modal == m {
		t.modal = ModalNone
	}
}

func (t *Terminal) finish(out Outcome) Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	out.View = t.viewLocked()
	return out
}

func (t *Terminal) viewLocked() View {
	state := suspended.StateActive
	if t.parked && t.cart.IsEmpty() {
		state = suspended.StateSuspended
	}
	v := View{
		Terminal:       t.key,
		Register:       t.gate.State(),
		State:          state,
		Items:          t.cart.Items(),
		Customer:       t.cart.Customer(),
		Natureza:       t.cart.Natureza(),
		PaymentMethod:  t.cart.PaymentMethod(),
		Totals:         t.cart.Totals(),
		Modal:          t.modal,
		SuspendedCount: t.suspendedCount,
	}
	if t.search != nil {
		s := *t.search
		v.Search = &s
	}
	return v
}

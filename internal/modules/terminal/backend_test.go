package terminal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/shopspring/decimal"
)

// fakeBackend is an in-memory ERP. Searches for a term present in block wait
// until the channel is closed, after signalling on started.
type fakeBackend struct {
	m sync.Mutex

	products  []erp.Product
	customers []erp.Customer
	naturezas []erp.NaturezaOperacao
	caixa     *erp.Caixa
	summary   *erp.CaixaSummary
	suspended map[string]erp.SuspendedSale
	sales     []erp.SaleRequest

	searches  []string
	saleErr   error
	searchErr error
	statusErr error
	block     map[string]chan struct{}
	started   chan string
	seq       int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		suspended: map[string]erp.SuspendedSale{},
		block:     map[string]chan struct{}{},
		started:   make(chan string, 4),
		naturezas: []erp.NaturezaOperacao{
			{ID: "n1", Description: "Venda ao consumidor", CFOP: "5102", DefaultNCM: "00000000", EnabledInPOS: true},
			{ID: "n2", Description: "Transferência", CFOP: "5152"},
		},
	}
}

func (b *fakeBackend) openRegister() {
	b.m.Lock()
	defer b.m.Unlock()
	b.caixa = &erp.Caixa{ID: "cx1", Status: erp.CaixaAberto, OpeningBalance: decimal.NewFromInt(100)}
	b.summary = &erp.CaixaSummary{OpeningBalance: decimal.NewFromInt(100), CurrentBalance: decimal.NewFromInt(100)}
}

func (b *fakeBackend) SearchProducts(_ context.Context, _ erp.Session, term string) ([]erp.Product, error) {
	b.m.Lock()
	b.searches = append(b.searches, term)
	wait := b.block[term]
	err := b.searchErr
	b.m.Unlock()
	if wait != nil {
		b.started <- term
		<-wait
	}
	if err != nil {
		return nil, err
	}

	b.m.Lock()
	defer b.m.Unlock()
	out := []erp.Product{}
	for _, p := range b.products {
		if p.Code == term || p.Barcode == term || strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (b *fakeBackend) SearchCustomers(_ context.Context, _ erp.Session, term string) ([]erp.Customer, error) {
	b.m.Lock()
	defer b.m.Unlock()
	out := []erp.Customer{}
	for _, c := range b.customers {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (b *fakeBackend) ListNaturezas(context.Context, erp.Session) ([]erp.NaturezaOperacao, error) {
	b.m.Lock()
	defer b.m.Unlock()
	return append([]erp.NaturezaOperacao(nil), b.naturezas...), nil
}

func (b *fakeBackend) CaixaStatus(context.Context, erp.Session) (*erp.Caixa, error) {
	b.m.Lock()
	defer b.m.Unlock()
	if b.statusErr != nil {
		return nil, b.statusErr
	}
	return b.caixa, nil
}

func (b *fakeBackend) CaixaSummary(context.Context, erp.Session, string) (*erp.CaixaSummary, error) {
	b.m.Lock()
	defer b.m.Unlock()
	s := *b.summary
	return &s, nil
}

func (b *fakeBackend) OpenCaixa(_ context.Context, _ erp.Session, balance decimal.Decimal) (*erp.Caixa, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.caixa = &erp.Caixa{ID: "cx1", Status: erp.CaixaAberto, OpeningBalance: balance}
	b.summary = &erp.CaixaSummary{OpeningBalance: balance, CurrentBalance: balance}
	return b.caixa, nil
}

func (b *fakeBackend) Sangria(_ context.Context, _ erp.Session, req erp.CashMovementRequest) (*erp.CashMovement, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.summary.Withdrawals = b.summary.Withdrawals.Add(req.Amount)
	b.summary.CurrentBalance = b.summary.CurrentBalance.Sub(req.Amount)
	return &erp.CashMovement{ID: "mv1"}, nil
}

func (b *fakeBackend) Suprimento(_ context.Context, _ erp.Session, req erp.CashMovementRequest) (*erp.CashMovement, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.summary.Injections = b.summary.Injections.Add(req.Amount)
	b.summary.CurrentBalance = b.summary.CurrentBalance.Add(req.Amount)
	return &erp.CashMovement{ID: "mv2"}, nil
}

func (b *fakeBackend) FinalizeSale(_ context.Context, _ erp.Session, req erp.SaleRequest) (*erp.SaleReceipt, error) {
	b.m.Lock()
	defer b.m.Unlock()
	if b.saleErr != nil {
		return nil, b.saleErr
	}
	b.sales = append(b.sales, req)
	total := decimal.Zero
	for _, it := range req.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))).Sub(it.DiscountAmount))
	}
	total = total.Sub(req.OverallDiscount)
	b.summary.Sales = b.summary.Sales.Add(total)
	b.summary.CurrentBalance = b.summary.CurrentBalance.Add(total)
	return &erp.SaleReceipt{ID: fmt.Sprintf("sale-%d", len(b.sales)), Number: fmt.Sprintf("%06d", len(b.sales))}, nil
}

func (b *fakeBackend) CreateSuspendedSale(_ context.Context, _ erp.Session, caixaID, name string, data json.RawMessage) (*erp.SuspendedSale, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.seq++
	s := erp.SuspendedSale{ID: fmt.Sprintf("s%d", b.seq), Name: name, CaixaID: caixaID, Data: data}
	b.suspended[s.ID] = s
	return &s, nil
}

func (b *fakeBackend) ListSuspendedSales(_ context.Context, _ erp.Session, caixaID string) ([]erp.SuspendedSale, error) {
	b.m.Lock()
	defer b.m.Unlock()
	out := []erp.SuspendedSale{}
	for _, s := range b.suspended {
		if s.CaixaID == caixaID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (b *fakeBackend) GetSuspendedSale(_ context.Context, _ erp.Session, id string) (*erp.SuspendedSale, error) {
	b.m.Lock()
	defer b.m.Unlock()
	s, ok := b.suspended[id]
	if !ok {
		return nil, &erp.APIError{Status: 404, Message: "Venda suspensa não encontrada"}
	}
	return &s, nil
}

func (b *fakeBackend) DeleteSuspendedSale(_ context.Context, _ erp.Session, id string) error {
	b.m.Lock()
	defer b.m.Unlock()
	if _, ok := b.suspended[id]; !ok {
		return errors.New("not found")
	}
	delete(b.suspended, id)
	return nil
}

func (b *fakeBackend) searchCount() int {
	b.m.Lock()
	defer b.m.Unlock()
	return len(b.searches)
}

func (b *fakeBackend) salesCount() int {
	b.m.Lock()
	defer b.m.Unlock()
	return len(b.sales)
}

package suspended

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/georgemunganga/frente-caixa/internal/modules/cart"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// memoryBackend keeps suspended sales in a map, like the backend would.
type memoryBackend struct {
	m         sync.Mutex
	sales     map[string]erp.SuspendedSale
	seq       int
	calls     int
	deleteErr error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{sales: map[string]erp.SuspendedSale{}}
}

func (b *memoryBackend) CreateSuspendedSale(_ context.Context, _ erp.Session, caixaID, name string, data json.RawMessage) (*erp.SuspendedSale, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.calls++
	b.seq++
	s := erp.SuspendedSale{ID: fmt.Sprintf("s%d", b.seq), Name: name, CaixaID: caixaID, Data: data}
	b.sales[s.ID] = s
	return &s, nil
}

func (b *memoryBackend) ListSuspendedSales(_ context.Context, _ erp.Session, caixaID string) ([]erp.SuspendedSale, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.calls++
	var out []erp.SuspendedSale
	for _, s := range b.sales {
		if s.CaixaID == caixaID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (b *memoryBackend) GetSuspendedSale(_ context.Context, _ erp.Session, id string) (*erp.SuspendedSale, error) {
	b.m.Lock()
	defer b.m.Unlock()
	b.calls++
	s, ok := b.sales[id]
	if !ok {
		return nil, &erp.APIError{Status: 404, Message: "não encontrada"}
	}
	return &s, nil
}

func (b *memoryBackend) DeleteSuspendedSale(_ context.Context, _ erp.Session, id string) error {
	b.m.Lock()
	defer b.m.Unlock()
	b.calls++
	if b.deleteErr != nil {
		return b.deleteErr
	}
	delete(b.sales, id)
	return nil
}

var sess = erp.Session{Token: "t", CompanyID: "c1", UserID: "u1"}

func filledCart(t *testing.T) *cart.Cart {
	c := cart.New()
	c.SetNatureza(&erp.NaturezaOperacao{ID: "n1", CFOP: "5102"})
	c.SetCustomer(&erp.Customer{ID: "cli1", Name: "Maria"})
	it := c.AddItem(erp.Product{ID: "p1", Code: "001", Name: "Arroz", Price: decimal.RequireFromString("22.90")})
	require.NoError(t, c.UpdateQuantity(it.ID, 2))
	require.NoError(t, c.ApplyItemDiscount(it.ID, cart.DiscountPercentage, decimal.NewFromInt(10)))
	require.NoError(t, c.SetOverallDiscount(decimal.NewFromInt(1)))
	require.NoError(t, c.SetPayment(cart.PaymentCash, decimal.NewFromInt(50)))
	return c
}

func TestSuspendThenResume_RestoresIdenticalSession(t *testing.T) {
	b := newMemoryBackend()
	m := NewManager(b, zaptest.NewLogger(t))
	c := filledCart(t)
	before := c.Snapshot()

	sum, err := m.Suspend(context.Background(), sess, "cx1", "Mesa 3", before)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Items)
	c.Clear()

	list, err := m.List(context.Background(), sess, "cx1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mesa 3", list[0].Name)

	snap, err := m.Resume(context.Background(), sess, "cx1", sum.ID, c.Len() > 0, false)
	require.NoError(t, err)
	restored := cart.New()
	restored.Restore(snap)

	after := restored.Snapshot()
	require.Len(t, after.Items, 1)
	assert.Equal(t, before.Items[0].ID, after.Items[0].ID)
	assert.True(t, before.Items[0].Total.Equal(after.Items[0].Total))
	assert.Equal(t, before.Customer, after.Customer)
	assert.Equal(t, before.Natureza, after.Natureza)
	assert.Equal(t, before.PaymentMethod, after.PaymentMethod)
	assert.True(t, before.AmountTendered.Equal(after.AmountTendered))
	assert.True(t, before.OverallDiscount.Equal(after.OverallDiscount))
	assert.Empty(t, b.sales, "resume consumes the suspended sale")
}

func TestSuspend_EmptyCartMakesNoRequest(t *testing.T) {
	b := newMemoryBackend()
	m := NewManager(b, zaptest.NewLogger(t))

	_, err := m.Suspend(context.Background(), sess, "cx1", "x", cart.New().Snapshot())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, b.calls)
}

func TestSuspend_NameRequired(t *testing.T) {
	b := newMemoryBackend()
	m := NewManager(b, zaptest.NewLogger(t))

	_, err := m.Suspend(context.Background(), sess, "cx1", "  ", filledCart(t).Snapshot())
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.Zero(t, b.calls)
}

func TestResume_RequiresConfirmationOverNonEmptyCart(t *testing.T) {
	b := newMemoryBackend()
	m := NewManager(b, zaptest.NewLogger(t))
	sum, err := m.Suspend(context.Background(), sess, "cx1", "Mesa 1", filledCart(t).Snapshot())
	require.NoError(t, err)

	_, err = m.Resume(context.Background(), sess, "cx1", sum.ID, true, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.Len(t, b.sales, 1)

	_, err = m.Resume(context.Background(), sess, "cx1", sum.ID, true, true)
	require.NoError(t, err)
	assert.Empty(t, b.sales)
}

func TestResume_IsOneShot(t *testing.T) {
	b := newMemoryBackend()
	m := NewManager(b, zaptest.NewLogger(t))
	sum, err := m.Suspend(context.Background(), sess, "cx1", "Mesa 1", filledCart(t).Snapshot())
	require.NoError(t, err)

	_, err = m.Resume(context.Background(), sess, "cx1", sum.ID, false, false)
	require.NoError(t, err)
	_, err = m.Resume(context.Background(), sess, "cx1", sum.ID, false, false)
	assert.True(t, erp.IsNotFound(err))
}

func TestResume_DeleteFailureRestoresNothing(t *testing.T) {
	b := newMemoryBackend()
	m := NewManager(b, zaptest.NewLogger(t))
	sum, err := m.Suspend(context.Background(), sess, "cx1", "Mesa 1", filledCart(t).Snapshot())
	require.NoError(t, err)

	b.deleteErr = errors.New("connection reset")
	snap, err := m.Resume(context.Background(), sess, "cx1", sum.ID, false, false)
	require.Error(t, err)
	assert.Empty(t, snap.Items)
	assert.Len(t, b.sales, 1)
}

func TestResume_OtherRegister(t *testing.T) {
	b := newMemoryBackend()
	m := NewManager(b, zaptest.NewLogger(t))
	sum, err := m.Suspend(context.Background(), sess, "cx1", "Mesa 1", filledCart(t).Snapshot())
	require.NoError(t, err)

	_, err = m.Resume(context.Background(), sess, "cx2", sum.ID, false, false)
	assert.ErrorIs(t, err, ErrWrongRegister)
}

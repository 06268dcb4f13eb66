package titulos

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var sess = erp.Session{Token: "tok", CompanyID: "c1", UserID: "u1"}

type fakeBackend struct {
	mu        sync.Mutex
	titulos   []erp.Titulo
	accounts  []erp.BankAccount
	filters   []erp.TituloFilter
	batches   []erp.BatchSettlementRequest
	settleErr error
}

func (f *fakeBackend) ListOpenTitulos(_ context.Context, _ erp.Session, flt erp.TituloFilter) ([]erp.Titulo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, flt)
	return append([]erp.Titulo(nil), f.titulos...), nil
}

func (f *fakeBackend) ListBankAccounts(context.Context, erp.Session) ([]erp.BankAccount, error) {
	return f.accounts, nil
}

func (f *fakeBackend) SettleBatch(_ context.Context, _ erp.Session, req erp.BatchSettlementRequest) (*erp.BatchSettlementResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, req)
	if f.settleErr != nil {
		return nil, f.settleErr
	}
	return &erp.BatchSettlementResult{Processed: len(req.Settlements)}, nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T, b *fakeBackend) *service {
	s := NewService(b, zaptest.NewLogger(t)).(*service)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC) }
	return s
}

func sampleTitulos() []erp.Titulo {
	return []erp.Titulo{
		{ID: "t2", Kind: "receber", Number: "102", DueDate: "2026-03-15", Amount: dec("200"), Balance: dec("150"), Status: "aberto"},
		{ID: "t1", Kind: "receber", Number: "101", DueDate: "2026-03-01", Amount: dec("100"), Balance: dec("100"), Status: "aberto"},
	}
}

func TestList_SortsByDueDateAndValidatesFilter(t *testing.T) {
	b := &fakeBackend{titulos: sampleTitulos()}
	s := newTestService(t, b)

	list, err := s.List(context.Background(), sess, erp.TituloFilter{Kind: " Receber ", DueTo: "2026-03-31"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "t1", list[0].ID)
	assert.Equal(t, "receber", b.filters[0].Kind)

	_, err = s.List(context.Background(), sess, erp.TituloFilter{Kind: "outro"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
	_, err = s.List(context.Background(), sess, erp.TituloFilter{DueTo: "31/03/2026"})
	assert.ErrorIs(t, err, ErrInvalidDate)
	assert.Len(t, b.filters, 1)
}

func TestSelect_DefaultsToBalanceAndToday(t *testing.T) {
	s := newTestService(t, &fakeBackend{titulos: sampleTitulos()})

	_, err := s.Select(sess, "t2", "acc1")
	assert.ErrorIs(t, err, ErrNotListed)

	_, err = s.List(context.Background(), sess, erp.TituloFilter{})
	require.NoError(t, err)
	summary, err := s.Select(sess, "t2", "acc1")
	require.NoError(t, err)
	require.Len(t, summary.Rows, 1)
	row := summary.Rows[0]
	assert.True(t, row.Amount.Equal(dec("150")))
	assert.True(t, row.TotalPaid.Equal(dec("150")))
	assert.Equal(t, "2026-03-10", row.PaymentDate)
	assert.Equal(t, "acc1", row.BankAccountID)
	assert.Empty(t, summary.Problems)
}

func TestEdit_RecomputesTotal(t *testing.T) {
	s := newTestService(t, &fakeBackend{titulos: sampleTitulos()})
	_, err := s.List(context.Background(), sess, erp.TituloFilter{})
	require.NoError(t, err)
	_, err = s.Select(sess, "t1", "acc1")
	require.NoError(t, err)

	summary, err := s.Edit(sess, "t1", Edit{
		Amount:   ptr(dec("80")),
		Interest: ptr(dec("2.50")),
		Fine:     ptr(dec("1.60")),
		Discount: ptr(dec("4.10")),
	})
	require.NoError(t, err)
	assert.True(t, summary.Rows[0].TotalPaid.Equal(dec("80")), summary.Rows[0].TotalPaid.String())
	assert.True(t, summary.Total.Equal(dec("80")))

	_, err = s.Edit(sess, "t1", Edit{PaymentDate: ptr("ontem")})
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = s.Edit(sess, "t2", Edit{Amount: ptr(dec("1"))})
	assert.ErrorIs(t, err, ErrNotSelected)
}

func TestBatchValidate(t *testing.T) {
	titulo := erp.Titulo{ID: "t1", Balance: dec("100")}
	today := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		edit Edit
		want string
	}{
		{"zero amount", Edit{Amount: ptr(decimal.Zero)}, "valor da baixa deve ser maior que zero"},
		{"above balance", Edit{Amount: ptr(dec("100.01"))}, "valor da baixa maior que o saldo"},
		{"negative interest", Edit{Interest: ptr(dec("-1"))}, "juros, multa e desconto não podem ser negativos"},
		{"no account", Edit{BankAccountID: ptr("  ")}, "selecione a conta bancária"},
		{"discount wipes total", Edit{Discount: ptr(dec("100"))}, "total pago deve ser maior que zero"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBatch()
			b.Select(titulo, today, "acc1")
			_, err := b.Edit("t1", tc.edit)
			require.NoError(t, err)

			err = b.Validate()
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			messages := make([]string, 0, len(verr.Problems))
			for _, p := range verr.Problems {
				assert.Equal(t, "t1", p.TituloID)
				messages = append(messages, p.Message)
			}
			assert.Contains(t, messages, tc.want)
		})
	}

	assert.ErrorIs(t, NewBatch().Validate(), ErrEmptyBatch)
}

func TestBatch_SelectTwiceKeepsEditsAndDeselect(t *testing.T) {
	b := NewBatch()
	today := time.Now()
	t1 := erp.Titulo{ID: "t1", Balance: dec("100")}
	t2 := erp.Titulo{ID: "t2", Balance: dec("50")}

	b.Select(t1, today, "acc1")
	b.Select(t2, today, "acc1")
	_, err := b.Edit("t1", Edit{Amount: ptr(dec("10"))})
	require.NoError(t, err)
	row := b.Select(t1, today, "acc2")
	assert.True(t, row.Amount.Equal(dec("10")))
	assert.Equal(t, "acc1", row.BankAccountID)

	b.Deselect("t1")
	b.Deselect("missing")
	require.Equal(t, 1, b.Len())
	assert.Equal(t, "t2", b.Rows()[0].Titulo.ID)
	assert.True(t, b.Total().Equal(dec("50")))
}

func TestConfirm_PostsOnceAndClears(t *testing.T) {
	b := &fakeBackend{titulos: sampleTitulos()}
	s := newTestService(t, b)
	_, err := s.List(context.Background(), sess, erp.TituloFilter{})
	require.NoError(t, err)
	_, err = s.Select(sess, "t1", "acc1")
	require.NoError(t, err)
	_, err = s.Select(sess, "t2", "acc1")
	require.NoError(t, err)

	res, err := s.Confirm(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)

	require.Len(t, b.batches, 1)
	req := b.batches[0]
	assert.Equal(t, "c1", req.CompanyID)
	assert.Equal(t, "u1", req.UserID)
	require.Len(t, req.Settlements, 2)
	assert.Equal(t, "t1", req.Settlements[0].TituloID)
	assert.True(t, req.Settlements[1].Amount.Equal(dec("150")))

	assert.Equal(t, 0, s.Batch(sess).Count)
	_, err = s.Select(sess, "t1", "acc1")
	assert.ErrorIs(t, err, ErrNotListed)
}

func TestConfirm_KeepsBatchOnFailure(t *testing.T) {
	b := &fakeBackend{titulos: sampleTitulos(), settleErr: &erp.APIError{Status: 422, Message: "Conta inativa"}}
	s := newTestService(t, b)
	_, err := s.List(context.Background(), sess, erp.TituloFilter{})
	require.NoError(t, err)
	_, err = s.Select(sess, "t1", "acc1")
	require.NoError(t, err)

	_, err = s.Confirm(context.Background(), sess)
	var apiErr *erp.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 1, s.Batch(sess).Count)
}

func TestConfirm_InvalidBatchMakesNoRequest(t *testing.T) {
	b := &fakeBackend{titulos: sampleTitulos()}
	s := newTestService(t, b)
	_, err := s.List(context.Background(), sess, erp.TituloFilter{})
	require.NoError(t, err)
	_, err = s.Select(sess, "t1", "")
	require.NoError(t, err)

	_, err = s.Confirm(context.Background(), sess)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, b.batches)

	_, err = s.Confirm(context.Background(), erp.Session{CompanyID: "c1", UserID: "other"})
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

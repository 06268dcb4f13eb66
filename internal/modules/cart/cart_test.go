package cart

import (
	"math/rand"
	"testing"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func product(id, price string) erp.Product {
	return erp.Product{ID: id, Code: "C-" + id, Name: "Produto " + id, Price: d(price), Unit: "UN"}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), "want %s got %s %v", want, got.String(), msgAndArgs)
}

func TestCheckoutScenario(t *testing.T) {
	c := New()

	it := c.AddItem(product("A", "10.00"))
	assert.Equal(t, 1, c.Len())
	assertDecimal(t, "10", c.Totals().Total)

	require.NoError(t, c.UpdateQuantity(it.ID, 3))
	assertDecimal(t, "30", c.Totals().Total)

	require.NoError(t, c.ApplyItemDiscount(it.ID, DiscountPercentage, d("10")))
	line, ok := c.Item(it.ID)
	require.True(t, ok)
	assertDecimal(t, "27", line.Total)
	assertDecimal(t, "3", line.DiscountAmount)

	require.NoError(t, c.SetOverallDiscount(d("2.00")))
	assertDecimal(t, "25", c.Totals().Total)

	require.NoError(t, c.SetPayment(PaymentCash, d("30.00")))
	totals := c.Totals()
	assertDecimal(t, "5", totals.Change)
	assertDecimal(t, "27", totals.Subtotal)
}

func TestAddItem_MergesSameProduct(t *testing.T) {
	c := New()
	first := c.AddItem(product("A", "2.50"))
	again := c.AddItem(product("A", "2.50"))
	c.AddItem(product("B", "1.00"))

	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 2, again.Quantity)
	assertDecimal(t, "5", again.Total)
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 3, c.Totals().Quantity)
}

func TestAddItem_DefaultsTaxCodesFromNatureza(t *testing.T) {
	c := New()
	c.SetNatureza(&erp.NaturezaOperacao{ID: "n1", CFOP: "5102", DefaultNCM: "00000000"})

	p := product("A", "1")
	p.NCM = "21011110"
	withNCM := c.AddItem(p)
	bare := c.AddItem(product("B", "1"))

	assert.Equal(t, "21011110", withNCM.NCM)
	assert.Equal(t, "5102", withNCM.CFOP)
	assert.Equal(t, "00000000", bare.NCM)
	assert.Equal(t, "5102", bare.CFOP)
}

func TestSetNatureza_FillsExistingLines(t *testing.T) {
	c := New()
	it := c.AddItem(product("A", "1"))
	c.SetNatureza(&erp.NaturezaOperacao{ID: "n1", CFOP: "5405"})
	line, _ := c.Item(it.ID)
	assert.Equal(t, "5405", line.CFOP)
}

func TestUpdateQuantity(t *testing.T) {
	c := New()
	it := c.AddItem(product("A", "10"))

	t.Run("percentage discount stays proportional", func(t *testing.T) {
		require.NoError(t, c.ApplyItemDiscount(it.ID, DiscountPercentage, d("20")))
		require.NoError(t, c.UpdateQuantity(it.ID, 5))
		line, _ := c.Item(it.ID)
		assertDecimal(t, "10", line.DiscountAmount)
		assertDecimal(t, "40", line.Total)
	})

	t.Run("amount discount is clamped to gross", func(t *testing.T) {
		require.NoError(t, c.ApplyItemDiscount(it.ID, DiscountAmount, d("15")))
		require.NoError(t, c.UpdateQuantity(it.ID, 1))
		line, _ := c.Item(it.ID)
		assertDecimal(t, "10", line.DiscountAmount)
		assertDecimal(t, "0", line.Total)
		assertDecimal(t, "100", line.DiscountPercent)
	})

	t.Run("zero removes", func(t *testing.T) {
		require.NoError(t, c.UpdateQuantity(it.ID, 0))
		assert.True(t, c.IsEmpty())
	})

	t.Run("unknown item", func(t *testing.T) {
		assert.ErrorIs(t, c.UpdateQuantity(uuid.New(), 2), ErrItemNotFound)
	})
}

func TestApplyItemDiscount_DerivesOtherRepresentation(t *testing.T) {
	c := New()
	it := c.AddItem(product("A", "8"))
	require.NoError(t, c.UpdateQuantity(it.ID, 2))

	require.NoError(t, c.ApplyItemDiscount(it.ID, DiscountAmount, d("4")))
	line, _ := c.Item(it.ID)
	assertDecimal(t, "25", line.DiscountPercent)
	assertDecimal(t, "12", line.Total)

	require.NoError(t, c.ApplyItemDiscount(it.ID, DiscountAmount, decimal.Zero))
	line, _ = c.Item(it.ID)
	assert.Equal(t, DiscountNone, line.DiscountKind)
	assertDecimal(t, "16", line.Total)
}

func TestApplyItemDiscount_Rejections(t *testing.T) {
	c := New()
	it := c.AddItem(product("A", "10"))

	assert.ErrorIs(t, c.ApplyItemDiscount(it.ID, DiscountPercentage, d("101")), ErrInvalidDiscount)
	assert.ErrorIs(t, c.ApplyItemDiscount(it.ID, DiscountAmount, d("-1")), ErrInvalidDiscount)
	assert.ErrorIs(t, c.ApplyItemDiscount(it.ID, DiscountAmount, d("10.01")), ErrDiscountExceedsSubtotal)
	assert.ErrorIs(t, c.ApplyItemDiscount(it.ID, "bogus", d("1")), ErrInvalidDiscount)

	line, _ := c.Item(it.ID)
	assertDecimal(t, "10", line.Total, "rejected discounts leave the line untouched")
}

func TestOverallDiscount(t *testing.T) {
	c := New()
	a := c.AddItem(product("A", "10"))
	c.AddItem(product("B", "5"))

	assert.ErrorIs(t, c.SetOverallDiscount(d("15.01")), ErrDiscountExceedsSubtotal)
	assert.ErrorIs(t, c.SetOverallDiscount(d("-1")), ErrInvalidDiscount)

	require.NoError(t, c.SetOverallDiscount(d("12")))
	require.NoError(t, c.RemoveItem(a.ID))
	totals := c.Totals()
	assertDecimal(t, "5", totals.OverallDiscount, "overall discount is capped when lines shrink")
	assertDecimal(t, "0", totals.Total)
}

func TestApplyOverallDiscountPercent_Redistributes(t *testing.T) {
	c := New()
	a := c.AddItem(product("A", "10"))
	b := c.AddItem(product("B", "20"))
	e := c.AddItem(product("C", "3.33"))
	require.NoError(t, c.SetOverallDiscount(d("1")))

	require.NoError(t, c.ApplyOverallDiscountPercent(d("10")))

	totals := c.Totals()
	assertDecimal(t, "3.33", totals.ItemDiscounts)
	assertDecimal(t, "0", totals.OverallDiscount)
	assertDecimal(t, "30", totals.Total)

	la, _ := c.Item(a.ID)
	lb, _ := c.Item(b.ID)
	lc, _ := c.Item(e.ID)
	assertDecimal(t, "1", la.DiscountAmount)
	assertDecimal(t, "2", lb.DiscountAmount)
	assertDecimal(t, "0.33", lc.DiscountAmount)

	assert.ErrorIs(t, New().ApplyOverallDiscountPercent(d("5")), ErrEmptyCart)
	assert.ErrorIs(t, c.ApplyOverallDiscountPercent(d("120")), ErrInvalidDiscount)
}

func TestApplyOverallDiscountPercent_ManySmallLines(t *testing.T) {
	cases := []struct {
		name   string
		prices []string
		pct    string
		target string
	}{
		{"ten cents at half", []string{"0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01", "0.01"}, "50", "0.05"},
		{"uneven cents", []string{"0.01", "0.02", "0.03", "0.04", "0.05", "0.06", "0.07"}, "33", "0.09"},
		{"all shares round up", []string{"0.03", "0.03", "0.03", "0.03"}, "50", "0.06"},
		{"full discount", []string{"0.01", "0.02", "0.03"}, "100", "0.06"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			for i, price := range tc.prices {
				c.AddItem(product(string(rune('a'+i)), price))
			}
			subtotal := c.Totals().Subtotal

			require.NoError(t, c.ApplyOverallDiscountPercent(d(tc.pct)))

			sum := decimal.Zero
			for _, it := range c.Items() {
				gross := Gross(it.Quantity, it.UnitPrice)
				assert.False(t, it.DiscountAmount.IsNegative(), "line %s discount %s", it.Name, it.DiscountAmount)
				assert.False(t, it.DiscountAmount.GreaterThan(gross), "line %s discount %s gross %s", it.Name, it.DiscountAmount, gross)
				assertDecimal(t, gross.Sub(it.DiscountAmount).String(), it.Total, it.Name)
				sum = sum.Add(it.DiscountAmount)
			}
			assertDecimal(t, tc.target, sum)
			assertDecimal(t, subtotal.Sub(d(tc.target)).String(), c.Totals().Total)
		})
	}
}

func TestChange(t *testing.T) {
	c := New()
	c.AddItem(product("A", "12.50"))

	require.NoError(t, c.SetPayment(PaymentCash, d("10")))
	assertDecimal(t, "0", c.Totals().Change, "insufficient cash gives no change")

	require.NoError(t, c.SetPayment(PaymentCash, d("20")))
	assertDecimal(t, "7.5", c.Totals().Change)

	require.NoError(t, c.SetPayment(PaymentPix, d("50")))
	assertDecimal(t, "0", c.Totals().Change)
	assertDecimal(t, "0", c.Totals().AmountTendered)

	assert.ErrorIs(t, c.SetPayment("cheque", d("1")), ErrInvalidPaymentMethod)
	assert.ErrorIs(t, c.SetPayment(PaymentCash, d("-1")), ErrInvalidTendered)
}

func TestAddCustomItem(t *testing.T) {
	c := New()
	it, err := c.AddCustomItem("", "Serviço avulso", d("15"), 2)
	require.NoError(t, err)
	assert.Nil(t, it.ProductID)
	assertDecimal(t, "30", it.Total)

	_, err = c.AddCustomItem("", " ", d("1"), 1)
	assert.ErrorIs(t, err, ErrNameRequired)
	_, err = c.AddCustomItem("", "x", d("1"), 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = c.AddCustomItem("", "x", d("-1"), 1)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}

func TestClear_KeepsNatureza(t *testing.T) {
	c := New()
	n := &erp.NaturezaOperacao{ID: "n1"}
	c.SetNatureza(n)
	c.SetCustomer(&erp.Customer{ID: "cli", Name: "Ana"})
	c.AddItem(product("A", "10"))
	require.NoError(t, c.SetPayment(PaymentCash, d("10")))

	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.Customer())
	assert.Equal(t, PaymentMethod(""), c.PaymentMethod())
	assert.Equal(t, n, c.Natureza())
}

func TestSnapshotRestore_Identical(t *testing.T) {
	c := New()
	c.SetNatureza(&erp.NaturezaOperacao{ID: "n1", CFOP: "5102"})
	c.SetCustomer(&erp.Customer{ID: "cli", Name: "Ana"})
	it := c.AddItem(product("A", "10"))
	require.NoError(t, c.UpdateQuantity(it.ID, 4))
	require.NoError(t, c.ApplyItemDiscount(it.ID, DiscountPercentage, d("5")))
	c.AddItem(product("B", "2.50"))
	require.NoError(t, c.SetOverallDiscount(d("1")))
	require.NoError(t, c.SetPayment(PaymentCash, d("50")))

	snap := c.Snapshot()
	other := New()
	other.Restore(snap)

	require.Len(t, other.Items(), 2)
	assert.NotEqual(t, other.Items()[0].ID, other.Items()[1].ID)
	assert.Equal(t, snap, other.Snapshot())
	assert.Equal(t, c.Totals(), other.Totals())
}

// Random operation sequences must keep the line invariant and the line count.
func TestLineTotals_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	ids := []string{"A", "B", "C", "D"}
	prices := map[string]string{"A": "1.99", "B": "10", "C": "0.35", "D": "7.5"}

	for run := 0; run < 200; run++ {
		c := New()
		lines := map[string]bool{}
		for step := 0; step < 30; step++ {
			items := c.Items()
			switch op := rng.Intn(4); {
			case op == 0 || len(items) == 0:
				id := ids[rng.Intn(len(ids))]
				c.AddItem(product(id, prices[id]))
				lines[id] = true
			case op == 1:
				it := items[rng.Intn(len(items))]
				qty := rng.Intn(6) - 1
				require.NoError(t, c.UpdateQuantity(it.ID, qty))
				if qty <= 0 {
					delete(lines, *it.ProductID)
				}
			case op == 2:
				it := items[rng.Intn(len(items))]
				require.NoError(t, c.RemoveItem(it.ID))
				delete(lines, *it.ProductID)
			default:
				it := items[rng.Intn(len(items))]
				_ = c.ApplyItemDiscount(it.ID, DiscountPercentage, decimal.NewFromInt(int64(rng.Intn(50))))
			}

			require.Equal(t, len(lines), c.Len())
			for _, it := range c.Items() {
				want := Gross(it.Quantity, it.UnitPrice).Sub(it.DiscountAmount)
				require.True(t, want.Equal(it.Total), "line total invariant")
				require.Greater(t, it.Quantity, 0)
			}
			totals := c.Totals()
			require.True(t, totals.Subtotal.Sub(totals.OverallDiscount).Equal(totals.Total))
		}
	}
}

// Package cart holds the in-progress sale of a register terminal and derives its
// totals. A Cart is not safe for concurrent use; the terminal owning it
// serializes access.
package cart

import (
	"strings"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is the cart session of one register terminal.
type Cart struct {
	items           []*Item
	customer        *erp.Customer
	natureza        *erp.NaturezaOperacao
	paymentMethod   PaymentMethod
	amountTendered  decimal.Decimal
	overallDiscount decimal.Decimal
}

// New returns an empty cart.
func New() *Cart { return &Cart{} }

// AddItem adds one unit of product. A line already referencing the product gets
// its quantity incremented; otherwise a new line is appended.
func (c *Cart) AddItem(p erp.Product) Item {
	for _, it := range c.items {
		if it.ProductID != nil && *it.ProductID == p.ID {
			it.Quantity++
			recompute(it)
			return *it
		}
	}

	id := p.ID
	it := &Item{
		ID:        uuid.New(),
		ProductID: &id,
		Code:      p.Code,
		Name:      p.Name,
		Quantity:  1,
		UnitPrice: round2(p.Price),
		NCM:       p.NCM,
		CFOP:      p.CFOP,
		Unit:      p.Unit,
	}
	c.defaultTaxCodes(it)
	recompute(it)
	c.items = append(c.items, it)
	return *it
}

// AddCustomItem appends an ad-hoc line that is not linked to a catalogue product.
func (c *Cart) AddCustomItem(code, name string, unitPrice decimal.Decimal, qty int) (Item, error) {
	if strings.TrimSpace(name) == "" {
		return Item{}, ErrNameRequired
	}
	if qty <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Item{}, ErrInvalidPrice
	}
	it := &Item{
		ID:        uuid.New(),
		Code:      code,
		Name:      strings.TrimSpace(name),
		Quantity:  qty,
		UnitPrice: round2(unitPrice),
		Unit:      "UN",
	}
	c.defaultTaxCodes(it)
	recompute(it)
	c.items = append(c.items, it)
	return *it, nil
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (c *Cart) UpdateQuantity(id uuid.UUID, qty int) error {
	i := c.index(id)
	if i < 0 {
		return ErrItemNotFound
	}
	if qty <= 0 {
		c.removeAt(i)
		return nil
	}
	c.items[i].Quantity = qty
	recompute(c.items[i])
	c.capOverallDiscount()
	return nil
}

// RemoveItem deletes a line.
func (c *Cart) RemoveItem(id uuid.UUID) error {
	i := c.index(id)
	if i < 0 {
		return ErrItemNotFound
	}
	c.removeAt(i)
	return nil
}

// RemoveLast deletes the most recently added line.
func (c *Cart) RemoveLast() (Item, bool) {
	if len(c.items) == 0 {
		return Item{}, false
	}
	last := *c.items[len(c.items)-1]
	c.removeAt(len(c.items) - 1)
	return last, true
}

// ApplyItemDiscount sets a line discount either as a percentage or as an amount.
// A zero value clears the discount.
func (c *Cart) ApplyItemDiscount(id uuid.UUID, kind DiscountKind, value decimal.Decimal) error {
	i := c.index(id)
	if i < 0 {
		return ErrItemNotFound
	}
	if value.IsNegative() {
		return ErrInvalidDiscount
	}
	it := c.items[i]
	switch kind {
	case DiscountPercentage:
		if value.GreaterThan(hundred) {
			return ErrInvalidDiscount
		}
		it.DiscountPercent = round2(value)
	case DiscountAmount:
		if value.GreaterThan(Gross(it.Quantity, it.UnitPrice)) {
			return ErrDiscountExceedsSubtotal
		}
		it.DiscountAmount = round2(value)
	default:
		return ErrInvalidDiscount
	}
	it.DiscountKind = kind
	if value.IsZero() {
		it.DiscountKind = DiscountNone
	}
	recompute(it)
	c.capOverallDiscount()
	return nil
}

// SetOverallDiscount sets the literal discount over the whole sale.
func (c *Cart) SetOverallDiscount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidDiscount
	}
	if amount.GreaterThan(c.subtotal()) {
		return ErrDiscountExceedsSubtotal
	}
	c.overallDiscount = round2(amount)
	return nil
}

// ApplyOverallDiscountPercent spreads pct% of the subtotal over the lines in
// proportion to each line's share. The distributed sum equals the requested
// discount and no line gets more than its own total. The literal overall
// discount is reset because both entry points describe the same discount.
func (c *Cart) ApplyOverallDiscountPercent(pct decimal.Decimal) error {
	if len(c.items) == 0 {
		return ErrEmptyCart
	}
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	subtotal := c.subtotal()
	if subtotal.IsZero() || pct.IsZero() {
		c.overallDiscount = decimal.Zero
		return nil
	}

	shares := apportion(PercentOf(subtotal, pct), subtotal, c.items)
	for i, it := range c.items {
		if shares[i].IsZero() {
			continue
		}
		it.DiscountAmount = it.DiscountAmount.Add(shares[i])
		it.DiscountKind = DiscountAmount
		recompute(it)
	}
	c.overallDiscount = decimal.Zero
	return nil
}

// SetCustomer selects the customer; nil clears it.
func (c *Cart) SetCustomer(cust *erp.Customer) { c.customer = cust }

// SetNatureza selects the operation-nature and fills missing tax codes of the
// lines already in the cart.
func (c *Cart) SetNatureza(n *erp.NaturezaOperacao) {
	c.natureza = n
	for _, it := range c.items {
		c.defaultTaxCodes(it)
	}
}

// SetPayment selects the payment method. The tendered amount only applies to
// cash and is zeroed for every other method.
func (c *Cart) SetPayment(method PaymentMethod, tendered decimal.Decimal) error {
	if _, err := ParsePaymentMethod(string(method)); err != nil {
		return err
	}
	if tendered.IsNegative() {
		return ErrInvalidTendered
	}
	c.paymentMethod = method
	if method == PaymentCash {
		c.amountTendered = round2(tendered)
	} else {
		c.amountTendered = decimal.Zero
	}
	return nil
}

// Clear empties the cart and resets the customer and payment selections. The
// operation-nature is kept for the next sale.
func (c *Cart) Clear() {
	c.items = nil
	c.customer = nil
	c.paymentMethod = ""
	c.amountTendered = decimal.Zero
	c.overallDiscount = decimal.Zero
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	for i, it := range c.items {
		out[i] = *it
	}
	return out
}

// Item returns a copy of one line.
func (c *Cart) Item(id uuid.UUID) (Item, bool) {
	i := c.index(id)
	if i < 0 {
		return Item{}, false
	}
	return *c.items[i], true
}

func (c *Cart) Len() int                        { return len(c.items) }
func (c *Cart) IsEmpty() bool                   { return len(c.items) == 0 }
func (c *Cart) Customer() *erp.Customer         { return c.customer }
func (c *Cart) Natureza() *erp.NaturezaOperacao { return c.natureza }
func (c *Cart) PaymentMethod() PaymentMethod    { return c.paymentMethod }

// Totals derives the amounts of the session.
func (c *Cart) Totals() Totals {
	t := Totals{
		Lines:           len(c.items),
		Subtotal:        c.subtotal(),
		ItemDiscounts:   decimal.Zero,
		OverallDiscount: c.overallDiscount,
		AmountTendered:  c.amountTendered,
	}
	for _, it := range c.items {
		t.Quantity += it.Quantity
		t.ItemDiscounts = t.ItemDiscounts.Add(it.DiscountAmount)
	}
	t.Total = Total(t.Subtotal, t.OverallDiscount)
	t.Change = Change(c.paymentMethod, c.amountTendered, t.Total)
	return t
}

// Snapshot copies the whole session.
func (c *Cart) Snapshot() Snapshot {
	s := Snapshot{
		Items:           c.Items(),
		PaymentMethod:   c.paymentMethod,
		AmountTendered:  c.amountTendered,
		OverallDiscount: c.overallDiscount,
	}
	if c.customer != nil {
		cust := *c.customer
		s.Customer = &cust
	}
	if c.natureza != nil {
		n := *c.natureza
		s.Natureza = &n
	}
	return s
}

// Restore replaces the session with s. Line totals are recomputed so a
// snapshot from an older version cannot break the line invariant.
func (c *Cart) Restore(s Snapshot) {
	c.items = make([]*Item, 0, len(s.Items))
	for _, it := range s.Items {
		if it.Quantity <= 0 {
			continue
		}
		if it.ID == uuid.Nil {
			it.ID = uuid.New()
		}
		recompute(&it)
		c.items = append(c.items, &it)
	}
	c.customer = s.Customer
	c.natureza = s.Natureza
	c.paymentMethod = s.PaymentMethod
	c.amountTendered = s.AmountTendered
	c.overallDiscount = s.OverallDiscount
	c.capOverallDiscount()
}

func (c *Cart) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Total)
	}
	return sum
}

func (c *Cart) index(id uuid.UUID) int {
	for i, it := range c.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.items = append(c.items[:i], c.items[i+1:]...)
	c.capOverallDiscount()
}

// capOverallDiscount keeps total = subtotal − overall discount from going
// negative after lines shrink.
func (c *Cart) capOverallDiscount() {
	if sub := c.subtotal(); c.overallDiscount.GreaterThan(sub) {
		c.overallDiscount = sub
	}
}

func (c *Cart) defaultTaxCodes(it *Item) {
	if c.natureza == nil {
		return
	}
	if it.CFOP == "" {
		it.CFOP = c.natureza.CFOP
	}
	if it.NCM == "" {
		it.NCM = c.natureza.DefaultNCM
	}
}

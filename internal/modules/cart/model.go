package cart

import (
	"fmt"
	"strings"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountKind tells which representation of an item discount the operator typed.
type DiscountKind string

const (
	DiscountNone       DiscountKind = ""
	DiscountPercentage DiscountKind = "percentage"
	DiscountAmount     DiscountKind = "amount"
)

// PaymentMethod is how the customer pays the sale.
type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "dinheiro"
	PaymentCredit PaymentMethod = "cartao_credito"
	PaymentDebit  PaymentMethod = "cartao_debito"
	PaymentPix    PaymentMethod = "pix"
)

// ParsePaymentMethod validates a payment method string.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case PaymentCash, PaymentCredit, PaymentDebit, PaymentPix:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q (allowed: dinheiro, cartao_credito, cartao_debito, pix)", ErrInvalidPaymentMethod, s)
	}
}

// Item is one line of the sale.
type Item struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       *string         `json:"product_id"` // nil for ad-hoc items
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DiscountKind    DiscountKind    `json:"discount_kind,omitempty"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Total           decimal.Decimal `json:"total"`
	NCM             string          `json:"ncm,omitempty"`
	CFOP            string          `json:"cfop,omitempty"`
	Unit            string          `json:"unit,omitempty"`
}

// Snapshot is a full copy of a cart session, used for suspend/resume and drafts.
type Snapshot struct {
	Items           []Item                `json:"items"`
	Customer        *erp.Customer         `json:"customer,omitempty"`
	Natureza        *erp.NaturezaOperacao `json:"natureza,omitempty"`
	PaymentMethod   PaymentMethod         `json:"payment_method,omitempty"`
	AmountTendered  decimal.Decimal       `json:"amount_tendered"`
	OverallDiscount decimal.Decimal       `json:"overall_discount"`
}

// Totals are the derived amounts of a cart session.
type Totals struct {
	Lines           int             `json:"lines"`
	Quantity        int             `json:"quantity"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	ItemDiscounts   decimal.Decimal `json:"item_discounts"`
	OverallDiscount decimal.Decimal `json:"overall_discount"`
	Total           decimal.Decimal `json:"total"`
	AmountTendered  decimal.Decimal `json:"amount_tendered"`
	Change          decimal.Decimal `json:"change"`
}

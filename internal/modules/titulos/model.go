package titulos

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	ErrNotListed     = errors.New("título não está na listagem atual")
	ErrNotSelected   = errors.New("título não selecionado")
	ErrEmptyBatch    = errors.New("nenhum título selecionado")
	ErrInvalidDate   = errors.New("data de pagamento inválida (use AAAA-MM-DD)")
	ErrInvalidFilter = errors.New("tipo deve ser receber ou pagar")
)

// Row is one título selected for settlement and its inline edits.
type Row struct {
	Titulo        erp.Titulo      `json:"titulo"`
	Amount        decimal.Decimal `json:"valor_baixa"`
	Interest      decimal.Decimal `json:"juros"`
	Fine          decimal.Decimal `json:"multa"`
	Discount      decimal.Decimal `json:"desconto"`
	PaymentDate   string          `json:"data_pagamento"`
	BankAccountID string          `json:"conta_bancaria_id"`
	TotalPaid     decimal.Decimal `json:"total_pago"`
}

func (r *Row) recompute() {
	r.TotalPaid = r.Amount.Add(r.Interest).Add(r.Fine).Sub(r.Discount).Round(2)
}

// problems lists what keeps the row from being settled.
func (r *Row) problems() []string {
	var out []string
	if !r.Amount.IsPositive() {
		out = append(out, "valor da baixa deve ser maior que zero")
	} else if r.Amount.GreaterThan(r.Titulo.Balance) {
		out = append(out, "valor da baixa maior que o saldo")
	}
	if r.Interest.IsNegative() || r.Fine.IsNegative() || r.Discount.IsNegative() {
		out = append(out, "juros, multa e desconto não podem ser negativos")
	}
	if strings.TrimSpace(r.BankAccountID) == "" {
		out = append(out, "selecione a conta bancária")
	}
	if _, err := time.Parse(dateLayout, r.PaymentDate); err != nil {
		out = append(out, ErrInvalidDate.Error())
	}
	if !r.TotalPaid.IsPositive() {
		out = append(out, "total pago deve ser maior que zero")
	}
	return out
}

// Edit is a partial change to a row; nil fields are left alone.
type Edit struct {
	Amount        *decimal.Decimal `json:"valor_baixa"`
	Interest      *decimal.Decimal `json:"juros"`
	Fine          *decimal.Decimal `json:"multa"`
	Discount      *decimal.Decimal `json:"desconto"`
	PaymentDate   *string          `json:"data_pagamento"`
	BankAccountID *string          `json:"conta_bancaria_id"`
}

// Problem is a validation failure of one row.
type Problem struct {
	TituloID string `json:"titulo_id"`
	Message  string `json:"message"`
}

// ValidationError carries every problem found in the batch.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = fmt.Sprintf("%s: %s", p.TituloID, p.Message)
	}
	return "baixa em lote inválida: " + strings.Join(msgs, "; ")
}

// Batch is the set of selected rows, in selection order. It is not safe for
// concurrent use.
type Batch struct {
	rows  map[string]*Row
	order []string
}

func NewBatch() *Batch { return &Batch{rows: make(map[string]*Row)} }

// Select adds t with the whole saldo as the settled amount and today as the
// payment date. Selecting a row twice keeps its edits.
func (b *Batch) Select(t erp.Titulo, today time.Time, bankAccountID string) Row {
	if r, ok := b.rows[t.ID]; ok {
		return *r
	}
	r := &Row{
		Titulo:        t,
		Amount:        t.Balance.Round(2),
		PaymentDate:   today.Format(dateLayout),
		BankAccountID: bankAccountID,
	}
	r.recompute()
	b.rows[t.ID] = r
	b.order = append(b.order, t.ID)
	return *r
}

func (b *Batch) Deselect(id string) {
	if _, ok := b.rows[id]; !ok {
		return
	}
	delete(b.rows, id)
	for i, o := range b.order {
		if o == id {
			b.order = append(b.order[:i], b.order[i+1:]...)
			break
		}
	}
}

// Edit applies e to a selected row and recomputes its total.
func (b *Batch) Edit(id string, e Edit) (Row, error) {
	r, ok := b.rows[id]
	if !ok {
		return Row{}, ErrNotSelected
	}
	if e.PaymentDate != nil {
		if _, err := time.Parse(dateLayout, *e.PaymentDate); err != nil {
			return Row{}, ErrInvalidDate
		}
	}
	if e.Amount != nil {
		r.Amount = e.Amount.Round(2)
	}
	if e.Interest != nil {
		r.Interest = e.Interest.Round(2)
	}
	if e.Fine != nil {
		r.Fine = e.Fine.Round(2)
	}
	if e.Discount != nil {
		r.Discount = e.Discount.Round(2)
	}
	if e.PaymentDate != nil {
		r.PaymentDate = *e.PaymentDate
	}
	if e.BankAccountID != nil {
		r.BankAccountID = strings.TrimSpace(*e.BankAccountID)
	}
	r.recompute()
	return *r, nil
}

func (b *Batch) Rows() []Row {
	out := make([]Row, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.rows[id])
	}
	return out
}

func (b *Batch) Len() int { return len(b.order) }

// Total is the sum of the rows' total paid.
func (b *Batch) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, r := range b.rows {
		sum = sum.Add(r.TotalPaid)
	}
	return sum
}

// Validate checks every selected row.
func (b *Batch) Validate() error {
	if len(b.order) == 0 {
		return ErrEmptyBatch
	}
	var problems []Problem
	for _, id := range b.order {
		for _, msg := range b.rows[id].problems() {
			problems = append(problems, Problem{TituloID: id, Message: msg})
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// Settlements converts the rows into the backend payload.
func (b *Batch) Settlements() []erp.Settlement {
	out := make([]erp.Settlement, 0, len(b.order))
	for _, r := range b.Rows() {
		out = append(out, erp.Settlement{
			TituloID:      r.Titulo.ID,
			Amount:        r.Amount,
			Interest:      r.Interest,
			Fine:          r.Fine,
			Discount:      r.Discount,
			PaymentDate:   r.PaymentDate,
			BankAccountID: r.BankAccountID,
		})
	}
	return out
}

func (b *Batch) Clear() {
	b.rows = make(map[string]*Row)
	b.order = nil
}

// Summary is the batch as rendered by the settlement screen.
type Summary struct {
	Rows     []Row           `json:"rows"`
	Count    int             `json:"count"`
	Total    decimal.Decimal `json:"total"`
	Problems []Problem       `json:"problems,omitempty"`
}

func summarize(b *Batch) Summary {
	s := Summary{Rows: b.Rows(), Count: b.Len(), Total: b.Total()}
	var verr *ValidationError
	if err := b.Validate(); errors.As(err, &verr) {
		s.Problems = verr.Problems
	}
	return s
}

// sortByDue orders títulos by due date, then number.
func sortByDue(list []erp.Titulo) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].DueDate != list[j].DueDate {
			return list[i].DueDate < list[j].DueDate
		}
		return list[i].Number < list[j].Number
	})
}

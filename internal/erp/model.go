package erp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalogue entry as returned by /api/produtos.
type Product struct {
	ID      string          `json:"id"`
	Code    string          `json:"codigo"`
	Barcode string          `json:"codigo_barras,omitempty"`
	Name    string          `json:"nome"`
	Price   decimal.Decimal `json:"preco_venda"`
	NCM     string          `json:"ncm,omitempty"`
	CFOP    string          `json:"cfop,omitempty"`
	Unit    string          `json:"unidade,omitempty"`
}

// Customer is a registration ("cadastro") of type cliente.
type Customer struct {
	ID       string `json:"id"`
	Name     string `json:"nome"`
	Document string `json:"cpf_cnpj,omitempty"`
	Email    string `json:"email,omitempty"`
}

// NaturezaOperacao is a tax operation-nature; it supplies default tax codes.
type NaturezaOperacao struct {
	ID           string `json:"id"`
	Description  string `json:"descricao"`
	CFOP         string `json:"cfop,omitempty"`
	DefaultNCM   string `json:"ncm_padrao,omitempty"`
	EnabledInPOS bool   `json:"habilitada_pdv"`
}

// CaixaStatus values.
const (
	CaixaAberto  = "aberto"
	CaixaFechado = "fechado"
)

// Caixa is a cash-register session.
type Caixa struct {
	ID             string          `json:"id"`
	OpeningBalance decimal.Decimal `json:"saldo_inicial"`
	OpenedAt       time.Time       `json:"aberto_em"`
	Status         string          `json:"status"`
}

// CaixaSummary is the running balance of a register session.
type CaixaSummary struct {
	OpeningBalance decimal.Decimal `json:"saldo_inicial"`
	Sales          decimal.Decimal `json:"total_vendas"`
	Withdrawals    decimal.Decimal `json:"total_sangrias"`
	Injections     decimal.Decimal `json:"total_suprimentos"`
	CurrentBalance decimal.Decimal `json:"saldo_atual"`
}

// SaleItem is one line of a finalized sale.
type SaleItem struct {
	ProductID       *string         `json:"produto_id"`
	Code            string          `json:"codigo"`
	Name            string          `json:"nome"`
	Quantity        int             `json:"quantidade"`
	UnitPrice       decimal.Decimal `json:"preco_unitario"`
	DiscountAmount  decimal.Decimal `json:"desconto_valor"`
	DiscountPercent decimal.Decimal `json:"desconto_percentual"`
	NCM             string          `json:"ncm,omitempty"`
	CFOP            string          `json:"cfop,omitempty"`
	Unit            string          `json:"unidade,omitempty"`
}

// SaleRequest is the body of POST /api/caixa/venda.
type SaleRequest struct {
	CompanyID       string          `json:"company_id"`
	CaixaID         string          `json:"caixa_id"`
	UserID          string          `json:"usuario_id"`
	NaturezaID      string          `json:"natureza_operacao_id"`
	CustomerID      *string         `json:"cliente_id"`
	Customer        *Customer       `json:"cliente,omitempty"`
	Items           []SaleItem      `json:"itens"`
	OverallDiscount decimal.Decimal `json:"desconto"`
	PaymentMethod   string          `json:"forma_pagamento"`
	AmountTendered  decimal.Decimal `json:"valor_recebido"`
}

// SaleReceipt is the backend answer for a finalized sale.
type SaleReceipt struct {
	ID     string `json:"id"`
	Number string `json:"numero,omitempty"`
}

// CashMovementRequest is the body of sangria/suprimento calls.
type CashMovementRequest struct {
	CompanyID string          `json:"company_id"`
	CaixaID   string          `json:"caixa_id"`
	UserID    string          `json:"usuario_id"`
	Amount    decimal.Decimal `json:"valor"`
	Reason    string          `json:"motivo"`
}

// CashMovement is a recorded sangria or suprimento.
type CashMovement struct {
	ID string `json:"id"`
}

// SuspendedSale is a named snapshot of an in-progress sale held by the backend.
// Data is opaque to this package.
type SuspendedSale struct {
	ID        string          `json:"id"`
	Name      string          `json:"nome"`
	CaixaID   string          `json:"caixa_id"`
	Data      json.RawMessage `json:"dados"`
	CreatedAt time.Time       `json:"created_at"`
}

// Titulo is a receivable or payable installment.
type Titulo struct {
	ID          string          `json:"id"`
	Kind        string          `json:"tipo"`
	Number      string          `json:"numero"`
	Installment int             `json:"parcela"`
	PartnerName string          `json:"parceiro_nome"`
	DueDate     string          `json:"vencimento"`
	Amount      decimal.Decimal `json:"valor"`
	Balance     decimal.Decimal `json:"saldo"`
	Status      string          `json:"status"`
}

// BankAccount is a banking account settlements can be posted to.
type BankAccount struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// Settlement is one row of a batch settlement.
type Settlement struct {
	TituloID      string          `json:"titulo_id"`
	Amount        decimal.Decimal `json:"valor"`
	Interest      decimal.Decimal `json:"juros"`
	Fine          decimal.Decimal `json:"multa"`
	Discount      decimal.Decimal `json:"desconto"`
	PaymentDate   string          `json:"data_pagamento"`
	BankAccountID string          `json:"conta_bancaria_id"`
}

// BatchSettlementRequest is the body of POST /api/financeiro/titulos/baixa-lote.
type BatchSettlementRequest struct {
	CompanyID   string       `json:"company_id"`
	UserID      string       `json:"usuario_id"`
	Settlements []Settlement `json:"baixas"`
}

// BatchSettlementResult is the backend answer for a batch settlement.
type BatchSettlementResult struct {
	Processed int `json:"processados"`
}

// ── response schemas ──────────────────────────────────────────────────────────

var errMissingData = errors.New(`missing "data" field`)

type productList struct {
	Data []Product `json:"data"`
}

func (l *productList) validate() error {
	if l.Data == nil {
		return errMissingData
	}
	for i, p := range l.Data {
		if p.ID == "" {
			return fmt.Errorf("data[%d]: missing id", i)
		}
		if p.Name == "" {
			return fmt.Errorf("data[%d]: missing nome", i)
		}
		if p.Price.IsNegative() {
			return fmt.Errorf("data[%d]: negative preco_venda", i)
		}
	}
	return nil
}

type customerList struct {
	Data []Customer `json:"data"`
}

func (l *customerList) validate() error {
	if l.Data == nil {
		return errMissingData
	}
	for i, c := range l.Data {
		if c.ID == "" || c.Name == "" {
			return fmt.Errorf("data[%d]: missing id or nome", i)
		}
	}
	return nil
}

type naturezaList struct {
	Data []NaturezaOperacao `json:"data"`
}

func (l *naturezaList) validate() error {
	if l.Data == nil {
		return errMissingData
	}
	for i, n := range l.Data {
		if n.ID == "" {
			return fmt.Errorf("data[%d]: missing id", i)
		}
	}
	return nil
}

type caixaStatus struct {
	Open  *bool  `json:"aberto"`
	Caixa *Caixa `json:"caixa"`
}

func (s *caixaStatus) validate() error {
	if s.Open == nil {
		return errors.New(`missing "aberto" field`)
	}
	if *s.Open && (s.Caixa == nil || s.Caixa.ID == "") {
		return errors.New("open register without caixa id")
	}
	return nil
}

func (c *Caixa) validate() error {
	if c.ID == "" {
		return errors.New("missing id")
	}
	return nil
}

func (s *CaixaSummary) validate() error { return nil }

func (r *SaleReceipt) validate() error {
	if r.ID == "" {
		return errors.New("missing id")
	}
	return nil
}

func (m *CashMovement) validate() error {
	if m.ID == "" {
		return errors.New("missing id")
	}
	return nil
}

func (s *SuspendedSale) validate() error {
	if s.ID == "" {
		return errors.New("missing id")
	}
	if len(s.Data) == 0 || string(s.Data) == "null" {
		return errors.New(`missing "dados" field`)
	}
	return nil
}

type suspendedList struct {
	Data []SuspendedSale `json:"data"`
}

func (l *suspendedList) validate() error {
	if l.Data == nil {
		return errMissingData
	}
	for i := range l.Data {
		if l.Data[i].ID == "" {
			return fmt.Errorf("data[%d]: missing id", i)
		}
	}
	return nil
}

type tituloList struct {
	Data []Titulo `json:"data"`
}

func (l *tituloList) validate() error {
	if l.Data == nil {
		return errMissingData
	}
	for i, t := range l.Data {
		if t.ID == "" {
			return fmt.Errorf("data[%d]: missing id", i)
		}
		if t.Balance.IsNegative() {
			return fmt.Errorf("data[%d]: negative saldo", i)
		}
	}
	return nil
}

type bankAccountList struct {
	Data []BankAccount `json:"data"`
}

func (l *bankAccountList) validate() error {
	if l.Data == nil {
		return errMissingData
	}
	return nil
}

func (r *BatchSettlementResult) validate() error { return nil }

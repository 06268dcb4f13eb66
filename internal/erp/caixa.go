package erp

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"
)

// CaixaStatus returns the open register session of the operator, or nil when
// the register is closed.
func (c *Client) CaixaStatus(ctx context.Context, sess Session) (*Caixa, error) {
	var out caixaStatus
	q := url.Values{"company_id": {sess.CompanyID}, "usuario_id": {sess.UserID}}
	if err := c.get(ctx, sess, "/api/caixa/status", q, &out); err != nil {
		return nil, err
	}
	if !*out.Open {
		return nil, nil
	}
	return out.Caixa, nil
}

// CaixaSummary returns the running balance of a register session.
func (c *Client) CaixaSummary(ctx context.Context, sess Session, caixaID string) (*CaixaSummary, error) {
	var out CaixaSummary
	q := url.Values{"company_id": {sess.CompanyID}, "caixa_id": {caixaID}}
	if err := c.get(ctx, sess, "/api/caixa/resumo", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// OpenCaixa opens a register session with the given opening balance.
func (c *Client) OpenCaixa(ctx context.Context, sess Session, openingBalance decimal.Decimal) (*Caixa, error) {
	body := map[string]any{
		"company_id":    sess.CompanyID,
		"usuario_id":    sess.UserID,
		"saldo_inicial": openingBalance,
	}
	var out Caixa
	if err := c.post(ctx, sess, "/api/caixa/abrir", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Sangria records a cash withdrawal.
func (c *Client) Sangria(ctx context.Context, sess Session, req CashMovementRequest) (*CashMovement, error) {
	var out CashMovement
	if err := c.post(ctx, sess, "/api/caixa/sangria", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Suprimento records a cash injection.
func (c *Client) Suprimento(ctx context.Context, sess Session, req CashMovementRequest) (*CashMovement, error) {
	var out CashMovement
	if err := c.post(ctx, sess, "/api/caixa/suprimento", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FinalizeSale posts a complete sale. The backend applies it all-or-nothing.
func (c *Client) FinalizeSale(ctx context.Context, sess Session, req SaleRequest) (*SaleReceipt, error) {
	var out SaleReceipt
	if err := c.post(ctx, sess, "/api/caixa/venda", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package erp

import (
	"context"
	"encoding/json"
	"net/url"
)

const suspendedPath = "/api/caixa/vendas-suspensas"

// CreateSuspendedSale stores a named snapshot for the register session.
func (c *Client) CreateSuspendedSale(ctx context.Context, sess Session, caixaID, name string, data json.RawMessage) (*SuspendedSale, error) {
	body := map[string]any{
		"company_id": sess.CompanyID,
		"caixa_id":   caixaID,
		"usuario_id": sess.UserID,
		"nome":       name,
		"dados":      data,
	}
	var out SuspendedSale
	if err := c.post(ctx, sess, suspendedPath, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListSuspendedSales returns the suspended sales of a register session.
func (c *Client) ListSuspendedSales(ctx context.Context, sess Session, caixaID string) ([]SuspendedSale, error) {
	var out suspendedList
	q := url.Values{"company_id": {sess.CompanyID}, "caixa_id": {caixaID}}
	if err := c.get(ctx, sess, suspendedPath, q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetSuspendedSale fetches one suspended sale with its snapshot.
func (c *Client) GetSuspendedSale(ctx context.Context, sess Session, id string) (*SuspendedSale, error) {
	var out SuspendedSale
	q := url.Values{"company_id": {sess.CompanyID}}
	if err := c.get(ctx, sess, suspendedPath+"/"+url.PathEscape(id), q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSuspendedSale removes a suspended sale.
func (c *Client) DeleteSuspendedSale(ctx context.Context, sess Session, id string) error {
	q := url.Values{"company_id": {sess.CompanyID}}
	return c.delete(ctx, sess, suspendedPath+"/"+url.PathEscape(id), q)
}

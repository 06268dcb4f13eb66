package erp

import (
	"context"
	"net/url"
)

// TituloFilter narrows the open títulos listing.
type TituloFilter struct {
	Kind   string // receber | pagar
	DueTo  string // YYYY-MM-DD, optional
	Search string
}

// ListOpenTitulos returns open receivables or payables.
func (c *Client) ListOpenTitulos(ctx context.Context, sess Session, f TituloFilter) ([]Titulo, error) {
	q := url.Values{"company_id": {sess.CompanyID}, "status": {"aberto"}}
	if f.Kind != "" {
		q.Set("tipo", f.Kind)
	}
	if f.DueTo != "" {
		q.Set("vencimento_ate", f.DueTo)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	var out tituloList
	if err := c.get(ctx, sess, "/api/financeiro/titulos", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SettleBatch posts every settlement in one call.
func (c *Client) SettleBatch(ctx context.Context, sess Session, req BatchSettlementRequest) (*BatchSettlementResult, error) {
	var out BatchSettlementResult
	if err := c.post(ctx, sess, "/api/financeiro/titulos/baixa-lote", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

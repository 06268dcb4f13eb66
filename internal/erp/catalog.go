package erp

import (
	"context"
	"net/url"
)

// SearchProducts looks products up by code, barcode or free text.
func (c *Client) SearchProducts(ctx context.Context, sess Session, term string) ([]Product, error) {
	var out productList
	q := url.Values{"search": {term}, "companyId": {sess.CompanyID}}
	if err := c.get(ctx, sess, "/api/produtos", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SearchCustomers looks customers up by name or document.
func (c *Client) SearchCustomers(ctx context.Context, sess Session, term string) ([]Customer, error) {
	var out customerList
	q := url.Values{"search": {term}, "companyId": {sess.CompanyID}, "tipo": {"cliente"}}
	if err := c.get(ctx, sess, "/api/cadastros", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListNaturezas returns the enabled operation-natures of the company. Callers
// filter the ones usable at the point of sale.
func (c *Client) ListNaturezas(ctx context.Context, sess Session) ([]NaturezaOperacao, error) {
	var out naturezaList
	q := url.Values{"companyId": {sess.CompanyID}, "habilitadas": {"true"}}
	if err := c.get(ctx, sess, "/api/natureza-operacao", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// ListBankAccounts returns the company's banking accounts.
func (c *Client) ListBankAccounts(ctx context.Context, sess Session) ([]BankAccount, error) {
	var out bankAccountList
	q := url.Values{"company_id": {sess.CompanyID}}
	if err := c.get(ctx, sess, "/api/contas-bancarias", q, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

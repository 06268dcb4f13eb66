package terminal

import "errors"

var (
	ErrNaturezaRequired     = errors.New("selecione a natureza de operação")
	ErrNaturezaUnavailable  = errors.New("natureza de operação não habilitada para o PDV")
	ErrPaymentRequired      = errors.New("selecione a forma de pagamento")
	ErrInsufficientTendered = errors.New("valor recebido menor que o total da venda")
	ErrSearchTermRequired   = errors.New("informe o código ou nome do produto")
	ErrNotInResults         = errors.New("produto não está nos resultados da busca")
	ErrUnknownModal         = errors.New("modal desconhecido")
	ErrInvalidCustomer      = errors.New("cliente inválido")
	ErrSaleInProgress       = errors.New("finalize ou cancele a venda atual")
)

package cart

import "errors"

var (
	ErrItemNotFound            = errors.New("item não encontrado no carrinho")
	ErrEmptyCart               = errors.New("carrinho vazio")
	ErrInvalidQuantity         = errors.New("quantidade deve ser maior que zero")
	ErrInvalidPrice            = errors.New("preço não pode ser negativo")
	ErrInvalidDiscount         = errors.New("desconto inválido")
	ErrDiscountExceedsSubtotal = errors.New("desconto maior que o subtotal")
	ErrInvalidPaymentMethod    = errors.New("forma de pagamento inválida")
	ErrInvalidTendered         = errors.New("valor recebido não pode ser negativo")
	ErrNameRequired            = errors.New("nome do item é obrigatório")
)

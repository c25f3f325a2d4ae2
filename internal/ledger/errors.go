package ledger

import "errors"

// Validation failures, reported before anything is written.
var (
	ErrEmptyCart           = errors.New("venda sem produtos")
	ErrInvalidPayment      = errors.New("forma de pagamento invalida")
	ErrInvalidInstallments = errors.New("numero de parcelas invalido")
	ErrInvalidSaleDate     = errors.New("data da venda invalida")
	ErrInsufficientStock   = errors.New("estoque insuficiente")
)

// Missing references.
var (
	ErrCustomerNotFound    = errors.New("cliente nao encontrado")
	ErrProductNotFound     = errors.New("produto nao encontrado")
	ErrInstallmentNotFound = errors.New("parcela nao encontrada")
)

// IsValidation reports whether err is caller error rather than a storage
// failure.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidPayment) ||
		errors.Is(err, ErrInvalidInstallments) ||
		errors.Is(err, ErrInvalidSaleDate) ||
		errors.Is(err, ErrInsufficientStock)
}

// IsNotFound reports whether err is a missing-reference error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrInstallmentNotFound)
}

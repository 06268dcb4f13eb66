package input

import (
	"strings"
	"sync/atomic"

	"github.com/georgemunganga/frente-caixa/internal/erp"
)

// NotFoundMessage is the notice shown when a lookup has no results.
const NotFoundMessage = "Produto não encontrado"

// Sequencer hands out search tokens. Only the response carrying the most
// recent token is applied; earlier ones arriving late are stale.
type Sequencer struct {
	last atomic.Uint64
}

// Next issues a new token, making every earlier token stale.
func (s *Sequencer) Next() uint64 { return s.last.Add(1) }

// IsLatest reports whether tok is the most recently issued token.
func (s *Sequencer) IsLatest(tok uint64) bool { return s.last.Load() == tok }

// Outcome of resolving a lookup.
type Outcome string

const (
	OutcomeAdd      Outcome = "add"
	OutcomeChoose   Outcome = "choose"
	OutcomeNotFound Outcome = "not_found"
)

// Resolution says what to do with the results of a product lookup.
type Resolution struct {
	Outcome Outcome       `json:"outcome"`
	Product *erp.Product  `json:"product,omitempty"`
	Options []erp.Product `json:"options,omitempty"`
}

// Resolve picks the product to add for term. An exact code or barcode match
// wins over any number of fuzzy results; a single result is added directly;
// several results are offered for manual selection.
func Resolve(term string, products []erp.Product) Resolution {
	term = strings.TrimSpace(term)
	for i := range products {
		p := products[i]
		if term != "" && (strings.EqualFold(p.Code, term) || (p.Barcode != "" && p.Barcode == term)) {
			return Resolution{Outcome: OutcomeAdd, Product: &p}
		}
	}
	switch len(products) {
	case 0:
		return Resolution{Outcome: OutcomeNotFound}
	case 1:
		p := products[0]
		return Resolution{Outcome: OutcomeAdd, Product: &p}
	default:
		return Resolution{Outcome: OutcomeChoose, Options: products}
	}
}

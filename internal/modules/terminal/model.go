package terminal

import (
	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/georgemunganga/frente-caixa/internal/modules/caixa"
	"github.com/georgemunganga/frente-caixa/internal/modules/cart"
	"github.com/georgemunganga/frente-caixa/internal/modules/input"
	"github.com/georgemunganga/frente-caixa/internal/modules/suspended"
	"github.com/shopspring/decimal"
)

// Modal is the dialog currently open on the sale screen.
type Modal string

const (
	ModalNone       Modal = ""
	ModalSearch     Modal = "search"
	ModalDiscount   Modal = "discount"
	ModalSangria    Modal = "sangria"
	ModalSuprimento Modal = "suprimento"
	ModalPayment    Modal = "payment"
	ModalSuspend    Modal = "suspend"
	ModalResume     Modal = "resume"
)

func (m Modal) valid() bool {
	switch m {
	case ModalSearch, ModalDiscount, ModalSangria, ModalSuprimento, ModalPayment, ModalSuspend, ModalResume:
		return true
	}
	return false
}

// Level of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a toast for the operator.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Feedback is the sound the POS UI plays.
type Feedback string

const (
	FeedbackSuccess Feedback = "success"
	FeedbackError   Feedback = "error"
)

// SearchState holds the results the operator still has to choose from.
type SearchState struct {
	Token   uint64        `json:"token"`
	Term    string        `json:"term"`
	Options []erp.Product `json:"options"`
}

// View is everything the sale screen renders.
type View struct {
	Terminal       string                `json:"terminal"`
	Register       caixa.State           `json:"register"`
	State          suspended.State       `json:"state"`
	Items          []cart.Item           `json:"items"`
	Customer       *erp.Customer         `json:"customer,omitempty"`
	Natureza       *erp.NaturezaOperacao `json:"natureza,omitempty"`
	PaymentMethod  cart.PaymentMethod    `json:"payment_method,omitempty"`
	Totals         cart.Totals           `json:"totals"`
	Modal          Modal                 `json:"modal,omitempty"`
	Search         *SearchState          `json:"search,omitempty"`
	SuspendedCount int                   `json:"suspended_count"`
}

// Outcome is the answer to every terminal operation.
type Outcome struct {
	View     View             `json:"view"`
	Notices  []Notice         `json:"notices,omitempty"`
	Feedback Feedback         `json:"feedback,omitempty"`
	Actions  []input.Action   `json:"actions,omitempty"`
	Added    *cart.Item       `json:"added,omitempty"`
	Receipt  *erp.SaleReceipt `json:"receipt,omitempty"`
	Stale    bool             `json:"stale,omitempty"`
}

func (o *Outcome) notify(level Level, msg string) {
	o.Notices = append(o.Notices, Notice{Level: level, Message: msg})
}

// CustomItem is an ad-hoc line typed by the operator.
type CustomItem struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
}

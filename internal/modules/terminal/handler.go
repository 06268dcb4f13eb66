package terminal

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/georgemunganga/frente-caixa/internal/middleware"
	"github.com/georgemunganga/frente-caixa/internal/modules/caixa"
	"github.com/georgemunganga/frente-caixa/internal/modules/cart"
	"github.com/georgemunganga/frente-caixa/internal/modules/input"
	"github.com/georgemunganga/frente-caixa/internal/modules/suspended"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handler exposes the sale screen over HTTP.
type Handler struct {
	registry *Registry
	logger   *zap.Logger
}

func NewHandler(registry *Registry, logger *zap.Logger) *Handler {
	return &Handler{registry: registry, logger: logger.Named("terminal.http")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/frente-caixa", func(r chi.Router) {
		r.Get("/", h.status)                          // GET    /api/v1/frente-caixa
		r.Get("/shortcuts", h.shortcuts)              // GET    /api/v1/frente-caixa/shortcuts
		r.Post("/caixa/abrir", h.openRegister)        // POST   /api/v1/frente-caixa/caixa/abrir
		r.Post("/caixa/sangria", h.sangria)           // POST   /api/v1/frente-caixa/caixa/sangria
		r.Post("/caixa/suprimento", h.suprimento)     // POST   /api/v1/frente-caixa/caixa/suprimento
		r.Post("/search", h.search)                   // POST   /api/v1/frente-caixa/search
		r.Post("/search/select", h.selectResult)      // POST   /api/v1/frente-caixa/search/select
		r.Post("/scan", h.scan)                       // POST   /api/v1/frente-caixa/scan
		r.Post("/keys", h.keys)                       // POST   /api/v1/frente-caixa/keys
		r.Post("/keys/flush", h.flush)                // POST   /api/v1/frente-caixa/keys/flush
		r.Post("/items", h.addCustomItem)             // POST   /api/v1/frente-caixa/items
		r.Patch("/items/{id}", h.updateQuantity)      // PATCH  /api/v1/frente-caixa/items/{id}
		r.Delete("/items/{id}", h.removeItem)         // DELETE /api/v1/frente-caixa/items/{id}
		r.Put("/items/{id}/discount", h.itemDiscount) // PUT    /api/v1/frente-caixa/items/{id}/discount
		r.Put("/discount", h.overallDiscount)         // PUT    /api/v1/frente-caixa/discount
		r.Get("/customers", h.searchCustomers)        // GET    /api/v1/frente-caixa/customers?search=
		r.Put("/customer", h.setCustomer)             // PUT    /api/v1/frente-caixa/customer
		r.Get("/naturezas", h.naturezas)              // GET    /api/v1/frente-caixa/naturezas
		r.Put("/natureza", h.setNatureza)             // PUT    /api/v1/frente-caixa/natureza
		r.Put("/payment", h.setPayment)               // PUT    /api/v1/frente-caixa/payment
		r.Post("/finalize", h.finalize)               // POST   /api/v1/frente-caixa/finalize
		r.Post("/cancel", h.cancel)                   // POST   /api/v1/frente-caixa/cancel
		r.Post("/suspend", h.suspend)                 // POST   /api/v1/frente-caixa/suspend
		r.Get("/suspended", h.listSuspended)          // GET    /api/v1/frente-caixa/suspended
		r.Post("/suspended/{id}/resume", h.resume)    // POST   /api/v1/frente-caixa/suspended/{id}/resume
		r.Put("/modal", h.openModal)                  // PUT    /api/v1/frente-caixa/modal
		r.Delete("/modal", h.closeModal)              // DELETE /api/v1/frente-caixa/modal
	})
}

type amountRequest struct {
	Amount decimal.Decimal `json:"valor"`
	Reason string          `json:"motivo"`
}

type openRequest struct {
	OpeningBalance decimal.Decimal `json:"saldo_inicial"`
}

type termRequest struct {
	Term string `json:"term"`
}

type selectRequest struct {
	ProductID string `json:"product_id"`
}

type keysRequest struct {
	Events []input.KeyEvent `json:"events"`
}

type flushRequest struct {
	At *time.Time `json:"at"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type discountRequest struct {
	Kind  cart.DiscountKind `json:"kind"`
	Value decimal.Decimal   `json:"value"`
}

type overallDiscountRequest struct {
	Amount  *decimal.Decimal `json:"amount"`
	Percent *decimal.Decimal `json:"percent"`
}

type customerRequest struct {
	Customer *erp.Customer `json:"customer"`
}

type naturezaRequest struct {
	ID string `json:"id"`
}

type paymentRequest struct {
	Method         string          `json:"method"`
	AmountTendered decimal.Decimal `json:"amount_tendered"`
}

type suspendRequest struct {
	Name string `json:"name"`
}

type resumeRequest struct {
	Confirm bool `json:"confirm"`
}

type modalRequest struct {
	Modal Modal `json:"modal"`
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Status(r.Context(), sess)
	})
}

func (h *Handler) shortcuts(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{"data": input.Shortcuts()})
}

func (h *Handler) openRegister(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.OpenRegister(r.Context(), sess, req.OpeningBalance)
	})
}

func (h *Handler) sangria(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Sangria(r.Context(), sess, req.Amount, req.Reason)
	})
}

func (h *Handler) suprimento(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Suprimento(r.Context(), sess, req.Amount, req.Reason)
	})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var req termRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Search(r.Context(), sess, req.Term)
	})
}

func (h *Handler) selectResult(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.SelectResult(r.Context(), req.ProductID)
	})
}

func (h *Handler) scan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Scan(r.Context(), sess, req.Code)
	})
}

func (h *Handler) keys(w http.ResponseWriter, r *http.Request) {
	var req keysRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Keys(r.Context(), sess, req.Events), nil
	})
}

func (h *Handler) flush(w http.ResponseWriter, r *http.Request) {
	var req flushRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	now := time.Now()
	if req.At != nil {
		now = *req.At
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Flush(r.Context(), sess, now), nil
	})
}

func (h *Handler) addCustomItem(w http.ResponseWriter, r *http.Request) {
	var req CustomItem
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.AddCustomItem(r.Context(), req)
	})
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var req quantityRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.UpdateQuantity(r.Context(), id, req.Quantity)
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.RemoveItem(r.Context(), id)
	})
}

func (h *Handler) itemDiscount(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}
	var req discountRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.ApplyItemDiscount(r.Context(), id, req.Kind, req.Value)
	})
}

func (h *Handler) overallDiscount(w http.ResponseWriter, r *http.Request) {
	var req overallDiscountRequest
	if !decode(w, r, &req) {
		return
	}
	if (req.Amount == nil) == (req.Percent == nil) {
		respond(w, http.StatusBadRequest, map[string]string{"error": "informe amount ou percent"})
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		if req.Percent != nil {
			return t.ApplyOverallDiscountPercent(r.Context(), *req.Percent)
		}
		return t.SetOverallDiscount(r.Context(), *req.Amount)
	})
}

func (h *Handler) searchCustomers(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		customers, err := t.SearchCustomers(r.Context(), sess, term)
		if err != nil {
			return nil, err
		}
		return map[string]any{"data": customers}, nil
	})
}

func (h *Handler) setCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.SetCustomer(r.Context(), req.Customer)
	})
}

func (h *Handler) naturezas(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		list, err := t.Naturezas(r.Context(), sess)
		if err != nil {
			return nil, err
		}
		return map[string]any{"data": list}, nil
	})
}

func (h *Handler) setNatureza(w http.ResponseWriter, r *http.Request) {
	var req naturezaRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.SetNatureza(r.Context(), sess, req.ID)
	})
}

func (h *Handler) setPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.SetPayment(r.Context(), req.Method, req.AmountTendered)
	})
}

func (h *Handler) finalize(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Finalize(r.Context(), sess)
	})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.Cancel(r.Context()), nil
	})
}

func (h *Handler) suspend(w http.ResponseWriter, r *http.Request) {
	var req suspendRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Suspend(r.Context(), sess, req.Name)
	})
}

func (h *Handler) listSuspended(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		list, err := t.ListSuspended(r.Context(), sess)
		if err != nil {
			return nil, err
		}
		return map[string]any{"data": list, "count": len(list)}, nil
	})
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req resumeRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, sess erp.Session) (any, error) {
		return t.Resume(r.Context(), sess, id, req.Confirm)
	})
}

func (h *Handler) openModal(w http.ResponseWriter, r *http.Request) {
	var req modalRequest
	if !decode(w, r, &req) {
		return
	}
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.OpenModal(req.Modal)
	})
}

func (h *Handler) closeModal(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, func(t *Terminal, _ erp.Session) (any, error) {
		return t.CloseModal(), nil
	})
}

// run resolves the operator's terminal and writes the result of fn.
func (h *Handler) run(w http.ResponseWriter, r *http.Request, fn func(t *Terminal, sess erp.Session) (any, error)) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": middleware.ErrMissingToken.Error()})
		return
	}
	body, err := fn(h.registry.Terminal(r.Context(), sess), sess)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, body)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := errorStatus(err)
	if code >= http.StatusInternalServerError {
		h.logger.Warn("operation failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	respond(w, code, map[string]string{"error": msg, "feedback": string(FeedbackError)})
}

var conflictErrors = []error{
	caixa.ErrRegisterClosed,
	caixa.ErrRegisterAlreadyOpen,
	suspended.ErrConfirmationRequired,
	ErrSaleInProgress,
}

var validationErrors = []error{
	cart.ErrEmptyCart,
	cart.ErrInvalidQuantity,
	cart.ErrInvalidPrice,
	cart.ErrInvalidDiscount,
	cart.ErrDiscountExceedsSubtotal,
	cart.ErrInvalidPaymentMethod,
	cart.ErrInvalidTendered,
	cart.ErrNameRequired,
	caixa.ErrInvalidAmount,
	caixa.ErrReasonRequired,
	caixa.ErrInsufficientCash,
	caixa.ErrNegativeOpening,
	suspended.ErrEmptyCart,
	suspended.ErrNameRequired,
	suspended.ErrWrongRegister,
	ErrNaturezaRequired,
	ErrNaturezaUnavailable,
	ErrPaymentRequired,
	ErrInsufficientTendered,
	ErrSearchTermRequired,
	ErrNotInResults,
	ErrUnknownModal,
	ErrInvalidCustomer,
}

// errorStatus maps an operation error to the HTTP status and the message the
// operator sees.
func errorStatus(err error) (int, string) {
	if matches(err, conflictErrors) {
		return http.StatusConflict, err.Error()
	}
	if matches(err, validationErrors) {
		return http.StatusUnprocessableEntity, err.Error()
	}
	if errors.Is(err, cart.ErrItemNotFound) {
		return http.StatusNotFound, err.Error()
	}

	var apiErr *erp.APIError
	var schemaErr *erp.SchemaError
	switch {
	case errors.Is(err, erp.ErrUnavailable):
		return http.StatusServiceUnavailable, erp.UserMessage(err)
	case errors.As(err, &apiErr):
		switch {
		case apiErr.Status == http.StatusNotFound, apiErr.Status == http.StatusUnauthorized, apiErr.Status == http.StatusForbidden:
			return apiErr.Status, erp.UserMessage(err)
		case apiErr.Status < http.StatusInternalServerError:
			return http.StatusUnprocessableEntity, erp.UserMessage(err)
		default:
			return http.StatusBadGateway, erp.UserMessage(err)
		}
	case errors.As(err, &schemaErr):
		return http.StatusBadGateway, erp.UserMessage(err)
	default:
		return http.StatusInternalServerError, erp.UserMessage(err)
	}
}

func matches(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func itemID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "id de item inválido"})
		return uuid.Nil, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "requisição inválida: " + err.Error()})
		return false
	}
	return true
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

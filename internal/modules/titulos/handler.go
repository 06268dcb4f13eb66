package titulos

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/georgemunganga/frente-caixa/internal/erp"
	"github.com/georgemunganga/frente-caixa/internal/middleware"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger.Named("titulos.http")}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/titulos", func(r chi.Router) {
		r.Get("/", h.list)                   // GET    /api/v1/titulos?tipo=&vencimento_ate=&search=
		r.Get("/contas", h.bankAccounts)     // GET    /api/v1/titulos/contas
		r.Get("/lote", h.batch)              // GET    /api/v1/titulos/lote
		r.Delete("/lote", h.clear)           // DELETE /api/v1/titulos/lote
		r.Post("/lote/{id}", h.selectRow)    // POST   /api/v1/titulos/lote/{id}
		r.Patch("/lote/{id}", h.editRow)     // PATCH  /api/v1/titulos/lote/{id}
		r.Delete("/lote/{id}", h.deselect)   // DELETE /api/v1/titulos/lote/{id}
		r.Post("/lote/confirmar", h.confirm) // POST   /api/v1/titulos/lote/confirmar
	})
}

type selectRequest struct {
	BankAccountID string `json:"conta_bancaria_id"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	list, err := h.service.List(r.Context(), sess, erp.TituloFilter{
		Kind:   q.Get("tipo"),
		DueTo:  q.Get("vencimento_ate"),
		Search: q.Get("search"),
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"data": list})
}

func (h *Handler) bankAccounts(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	accounts, err := h.service.BankAccounts(r.Context(), sess)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{"data": accounts})
}

func (h *Handler) batch(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, h.service.Batch(sess))
}

func (h *Handler) clear(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, h.service.Clear(sess))
}

func (h *Handler) selectRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var req selectRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond(w, http.StatusBadRequest, map[string]string{"error": "requisição inválida: " + err.Error()})
			return
		}
	}
	summary, err := h.service.Select(sess, chi.URLParam(r, "id"), req.BankAccountID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

func (h *Handler) editRow(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	var e Edit
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": "requisição inválida: " + err.Error()})
		return
	}
	summary, err := h.service.Edit(sess, chi.URLParam(r, "id"), e)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

func (h *Handler) deselect(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respond(w, http.StatusOK, h.service.Deselect(sess, chi.URLParam(r, "id")))
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	res, err := h.service.Confirm(r.Context(), sess)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]interface{}{
		"processed": res.Processed,
		"message":   "Baixa realizada com sucesso",
		"feedback":  "success",
	})
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (erp.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		respond(w, http.StatusUnauthorized, map[string]string{"error": "sessão não encontrada"})
	}
	return sess, ok
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		respond(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":    verr.Error(),
			"problems": verr.Problems,
			"feedback": "error",
		})
		return
	}
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	respond(w, status, map[string]string{"error": msg, "feedback": "error"})
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotListed), errors.Is(err, ErrNotSelected):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidFilter):
		return http.StatusUnprocessableEntity, err.Error()
	}

	var apiErr *erp.APIError
	switch {
	case errors.Is(err, erp.ErrUnavailable):
		return http.StatusServiceUnavailable, erp.UserMessage(err)
	case errors.As(err, &apiErr) && apiErr.Status < http.StatusInternalServerError:
		if apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden {
			return apiErr.Status, erp.UserMessage(err)
		}
		return http.StatusUnprocessableEntity, erp.UserMessage(err)
	default:
		return http.StatusBadGateway, erp.UserMessage(err)
	}
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

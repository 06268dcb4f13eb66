package erp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("erp: backend unavailable")

// GenericErrorMessage is shown when nothing better can be extracted from a failure.
const GenericErrorMessage = "Erro ao comunicar com o servidor. Tente novamente."

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Path    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("erp: %s returned %d: %s", e.Path, e.Status, e.Message)
}

// SchemaError means the backend answered 2xx with a payload that does not match
// the expected schema.
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("erp: malformed response from %s: %s", e.Path, e.Reason)
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}

// UserMessage turns any error from this package into a message fit for a toast.
func UserMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var schemaErr *SchemaError
	if errors.As(err, &schemaErr) {
		return "Resposta inválida do servidor."
	}
	if errors.Is(err, ErrUnavailable) {
		return "Servidor indisponível no momento. Tente novamente em instantes."
	}
	return GenericErrorMessage
}

// extractMessage looks for the usual message fields in an error body.
func extractMessage(body []byte) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	for _, key := range []string{"message", "mensagem", "error", "detail"} {
		raw, ok := fields[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
		// {"error": {"message": "..."}}
		var nested struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(raw, &nested); err == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}

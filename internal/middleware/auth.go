// Package middleware holds the chi middleware shared by the terminal and
// títulos routes.
package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/georgemunganga/frente-caixa/internal/erp"
	"go.uber.org/zap"
)

var (
	ErrMissingToken = errors.New("token de acesso ausente")
	ErrInvalidToken = errors.New("token de acesso inválido")
)

// Claims are the operator claims issued by the backend.
type Claims struct {
	CompanyID string `json:"company_id"`
	jwt.StandardClaims
}

type sessionKey struct{}

// WithSession stores sess in ctx.
func WithSession(ctx context.Context, sess erp.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, sess)
}

// SessionFromContext returns the session stored by Auth.
func SessionFromContext(ctx context.Context) (erp.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(erp.Session)
	return sess, ok
}

// ParseToken validates an HS256 operator token and builds the session that is
// forwarded to the backend.
func ParseToken(secret []byte, raw string) (erp.Session, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return erp.Session{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.CompanyID == "" {
		return erp.Session{}, ErrInvalidToken
	}
	return erp.Session{Token: raw, CompanyID: claims.CompanyID, UserID: claims.Subject}, nil
}

// Auth rejects requests without a valid bearer token and stores the session
// in the request context.
func Auth(secret []byte, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				unauthorized(w, ErrMissingToken)
				return
			}
			sess, err := ParseToken(secret, strings.TrimSpace(raw))
			if err != nil {
				logger.Debug("token rejected", zap.String("path", r.URL.Path), zap.Error(err))
				unauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

func unauthorized(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CorrelationHeader é ecoado em toda resposta
const CorrelationHeader = "X-Correlation-Id"

type correlationKey struct{}

// Correlation propaga o X-Correlation-Id recebido ou gera um novo
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(CorrelationHeader))
		if id == "" {
			id = newCorrelationID()
		}
		w.Header().Set(CorrelationHeader, id)
		ctx := context.WithValue(r.Context(), correlationKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CorrelationID devolve o id guardado no contexto, ou "" se não houver
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

var newCorrelationID = func() string {
	return uuid.NewString()
}

package middlewares

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dropDatabas3/socialconnect/internal/http/errors"
	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
)

// WithRecover convierte un panic del handler en un 500 JSON. http.ErrAbortHandler
// se relanza para que net/http corte la conexión.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				logger.From(r.Context()).Error("handler panic",
					logger.Route(routePattern(r)),
					logger.Any("panic", rec),
					zap.StackSkip("stack", 2),
				)
				errors.WriteError(w, errors.ErrInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

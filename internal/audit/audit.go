// Package audit emite eventos de auditoría como logs estructurados.
package audit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
)

// Eventos emitidos por el connect flow.
const (
	EventUserCreated   = "user_created"
	EventUserLinked    = "user_logged_in"
	EventConnectDenied = "connect_rejected"
)

// Log writes event to the "audit" logger, keeping the request-scoped fields
// carried by ctx.
func Log(ctx context.Context, event string, fields ...zap.Field) {
	all := make([]zap.Field, 0, len(fields)+2)
	all = append(all, zap.String("event", event), zap.Time("ts", time.Now().UTC()))
	all = append(all, fields...)
	logger.From(ctx).Named("audit").Info(event, all...)
}

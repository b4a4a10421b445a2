package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Field is zap.Field, re-exported so callers can build field slices
// without importing zap.
type Field = zap.Field

// HTTP

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Route(v string) zap.Field           { return zap.String("route", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }

// Social login

func Provider(v string) zap.Field { return zap.String("provider", v) }
func Outcome(v string) zap.Field  { return zap.String("outcome", v) }
func Reason(v string) zap.Field   { return zap.String("reason", v) }
func UserID(v string) zap.Field   { return zap.String("user_id", v) }
func RoleID(v string) zap.Field   { return zap.String("role_id", v) }

// Email logs a masked address: "jane.doe@example.com" -> "j***@example.com".
func Email(v string) zap.Field { return zap.String("email", MaskEmail(v)) }

// MaskEmail keeps the first rune of the local part and the whole domain.
func MaskEmail(v string) string {
	at := strings.LastIndex(v, "@")
	if at <= 0 {
		if v == "" {
			return ""
		}
		return "***"
	}
	local := []rune(v[:at])
	return string(local[0]) + "***" + v[at:]
}

// Structure

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Key(v string) zap.Field       { return zap.String("key", v) }

// Err uses zap.Error so the key stays "error".
func Err(err error) zap.Field { return zap.Error(err) }

func String(k, v string) zap.Field    { return zap.String(k, v) }
func Int(k string, v int) zap.Field   { return zap.Int(k, v) }
func Bool(k string, v bool) zap.Field { return zap.Bool(k, v) }
func Any(k string, v any) zap.Field   { return zap.Any(k, v) }

// Package controllers adapta los servicios a HTTP.
package controllers

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/socialconnect/internal/domain/repository"
	"github.com/dropDatabas3/socialconnect/internal/http/errors"
	"github.com/dropDatabas3/socialconnect/internal/http/helpers"
	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
	"github.com/dropDatabas3/socialconnect/internal/providers"
	"github.com/dropDatabas3/socialconnect/internal/social"
)

// ConnectService es lo que el controller necesita de social.Service.
type ConnectService interface {
	Connect(ctx context.Context, name string, q providers.Query) (social.Outcome, error)
	EnabledProviders(ctx context.Context) (map[string]bool, error)
}

// TokenIssuer emite el token de sesión de un usuario.
type TokenIssuer interface {
	Issue(userID string) (string, time.Time, error)
}

// ConnectController maneja GET /connect/{provider}/callback.
type ConnectController struct {
	service ConnectService
	tokens  TokenIssuer
}

func NewConnectController(service ConnectService, tokens TokenIssuer) *ConnectController {
	return &ConnectController{service: service, tokens: tokens}
}

// ConnectResponse es el cuerpo de un connect exitoso.
type ConnectResponse struct {
	JWT     string           `json:"jwt"`
	User    *repository.User `json:"user"`
	Created bool             `json:"created,omitempty"`
}

func (c *ConnectController) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	provider := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ConnectController.Callback"))

	out, err := c.service.Connect(ctx, provider, providers.ParseQuery(r.URL.Query()))
	if err != nil {
		errors.WriteError(w, connectError(err))
		return
	}
	if !out.OK() {
		rej := out.Rejection
		errors.WriteError(w, errors.New(http.StatusBadRequest, rej.ID, rej.Message))
		return
	}

	token, _, err := c.tokens.Issue(out.User.ID)
	if err != nil {
		log.Error("issue session token", logger.Err(err), logger.UserID(out.User.ID))
		errors.WriteError(w, errors.ErrInternalServerError.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ConnectResponse{
		JWT:     token,
		User:    out.User,
		Created: out.Kind == social.CreatedUser,
	})
}

// connectError traduce los errores del servicio a respuestas HTTP.
func connectError(err error) *errors.AppError {
	var pe *providers.ProviderError
	switch {
	case social.IsConfigError(err):
		return errors.ErrProviderDisabled.WithCause(err)
	case providers.IsTimeout(err):
		return errors.ErrGatewayTimeout.WithCause(err)
	case stderrors.As(err, &pe):
		return errors.ErrProviderUnavailable.WithDetail(string(pe.Provider) + ": " + pe.Op).WithCause(err)
	default:
		return errors.ErrInternalServerError.WithCause(err)
	}
}

// Providers maneja GET /providers: el flag enabled de cada provider tal
// como está en el configuration store.
func (c *ConnectController) Providers(w http.ResponseWriter, r *http.Request) {
	enabled, err := c.service.EnabledProviders(r.Context())
	if err != nil {
		logger.From(r.Context()).Error("list enabled providers", logger.Err(err))
		errors.WriteError(w, errors.ErrServiceUnavailable.WithCause(err))
		return
	}
	helpers.WriteJSON(w, http.StatusOK, enabled)
}

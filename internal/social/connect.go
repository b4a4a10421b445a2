package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/dropDatabas3/socialconnect/internal/audit"
	"github.com/dropDatabas3/socialconnect/internal/domain/repository"
	"github.com/dropDatabas3/socialconnect/internal/metrics"
	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
	"github.com/dropDatabas3/socialconnect/internal/observability/tracing"
	"github.com/dropDatabas3/socialconnect/internal/providers"
	"github.com/dropDatabas3/socialconnect/internal/settings"
)

// Deps contains the collaborators of Service.
type Deps struct {
	Registry *providers.Registry
	Settings settings.Source
	Users    repository.UserRepository
	Roles    repository.RoleRepository
	// Explicit holds per-provider client settings from the service
	// configuration, keyed by provider name.
	Explicit map[string]ExplicitCredentials
}

// Service is the connect entry point.
type Service struct {
	gate       *Gate
	registry   *providers.Registry
	reconciler *Reconciler
	explicit   map[string]ExplicitCredentials
}

func NewService(d Deps) *Service {
	return &Service{
		gate:       NewGate(d.Settings),
		registry:   d.Registry,
		reconciler: &Reconciler{Users: d.Users, Roles: d.Roles, Settings: d.Settings},
		explicit:   d.Explicit,
	}
}

// Gate exposes the enabled-providers gate backing the service.
func (s *Service) Gate() *Gate { return s.gate }

// EnabledProviders returns the enabled flag of every configured provider.
func (s *Service) EnabledProviders(ctx context.Context) (map[string]bool, error) {
	return s.gate.ListEnabled(ctx)
}

// Connect resolves a provider callback to a local user. Disabled or unknown
// providers fail with *ConfigError before any provider call; upstream
// failures come back as *providers.ProviderError.
func (s *Service) Connect(ctx context.Context, name string, q providers.Query) (out Outcome, err error) {
	label := name
	if !s.registry.Has(providers.Name(name)) {
		label = "unknown"
	}
	ctx, span := tracing.Tracer().Start(ctx, "social.Connect")
	span.SetAttributes(attribute.String("provider", label))
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("social.connect"), logger.Provider(label))
	start := time.Now()

	defer func() {
		outcome := out.Label()
		if err != nil {
			outcome = errorLabel(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		span.SetAttributes(attribute.String("outcome", outcome))
		span.End()
		metrics.ObserveConnect(label, outcome)
		log.Info("connect finished", logger.Outcome(outcome), logger.Duration(time.Since(start)))
	}()

	grant, err := s.gate.lookup(ctx, name)
	if err != nil {
		return Outcome{}, fmt.Errorf("read grants: %w", err)
	}
	if !grant.Enabled {
		return Outcome{}, &ConfigError{Provider: name, Cause: ErrProviderDisabled}
	}

	if !q.HasArtifact() {
		return rejected(RejectNoAccessArtifact), nil
	}

	adapter, err := s.registry.Get(providers.Name(name))
	if err != nil {
		return Outcome{}, &ConfigError{Provider: name, Cause: err}
	}

	creds := MergeCredentials(s.explicit[name], grant)
	raw, err := adapter.FetchProfile(ctx, q.Artifact(), q, creds)
	if err != nil {
		log.Warn("profile fetch failed", logger.Err(err))
		return Outcome{}, err
	}
	profile, err := providers.Normalize(adapter.Name(), raw)
	if err != nil {
		return Outcome{}, err
	}

	out, err = s.reconciler.Resolve(ctx, name, profile)
	if err != nil {
		log.Error("reconciliation failed", logger.Err(err))
		return Outcome{}, err
	}
	if out.User != nil {
		log = log.With(logger.UserID(out.User.ID))
	}
	auditOutcome(ctx, label, out)
	return out, nil
}

func auditOutcome(ctx context.Context, provider string, out Outcome) {
	switch out.Kind {
	case CreatedUser:
		audit.Log(ctx, audit.EventUserCreated, logger.Provider(provider), logger.UserID(out.User.ID), logger.Email(out.User.Email))
	case ExistingUser:
		audit.Log(ctx, audit.EventUserLinked, logger.Provider(provider), logger.UserID(out.User.ID))
	case Rejected:
		audit.Log(ctx, audit.EventConnectDenied, logger.Provider(provider), logger.Reason(out.Rejection.ID))
	}
}

func errorLabel(err error) string {
	var pe *providers.ProviderError
	switch {
	case IsConfigError(err):
		return "config_error"
	case providers.IsTimeout(err):
		return "provider_timeout"
	case errors.As(err, &pe):
		return "provider_error"
	default:
		return "error"
	}
}

package social

import (
	"context"
	"fmt"

	"github.com/dropDatabas3/socialconnect/internal/domain/repository"
	"github.com/dropDatabas3/socialconnect/internal/observability/logger"
	"github.com/dropDatabas3/socialconnect/internal/providers"
	"github.com/dropDatabas3/socialconnect/internal/settings"
)

// Reconciler maps a normalized profile onto a local user.
type Reconciler struct {
	Users    repository.UserRepository
	Roles    repository.RoleRepository
	Settings settings.Source
}

// Resolve applies the registration policy. The provider match is checked
// before the unique email rule so returning users of the same provider are
// never blocked by it.
func (r *Reconciler) Resolve(ctx context.Context, provider string, p providers.Profile) (Outcome, error) {
	log := logger.From(ctx).With(logger.Layer("service"), logger.Component("social.reconcile"), logger.Provider(provider))

	if !p.HasEmail() {
		return rejected(RejectEmailMissing), nil
	}

	adv, err := r.Settings.Advanced(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("read advanced settings: %w", err)
	}

	users, err := r.Users.Find(ctx, repository.UserFilter{Email: p.Email})
	if err != nil {
		return Outcome{}, fmt.Errorf("find users: %w", err)
	}
	match, found := providerMatch(users, provider)

	if !found && !adv.AllowRegister {
		return rejected(RejectRegistrationDisabled), nil
	}
	if found {
		return existing(match), nil
	}
	if len(users) > 0 && adv.UniqueEmail {
		log.Debug("email owned by another provider", logger.Email(p.Email), logger.String("owner", users[0].Provider))
		return rejected(RejectEmailTaken), nil
	}

	roleType := adv.DefaultRole
	if roleType == "" {
		roleType = settings.DefaultAdvanced().DefaultRole
	}
	role, err := r.Roles.FindOneByType(ctx, roleType)
	if err != nil {
		if repository.IsNotFound(err) {
			return Outcome{}, fmt.Errorf("%w: %q", ErrDefaultRole, roleType)
		}
		return Outcome{}, fmt.Errorf("find default role: %w", err)
	}

	u, err := r.Users.Create(ctx, repository.CreateUserInput{
		Username:  p.Username,
		Email:     p.Email,
		Provider:  provider,
		RoleID:    role.ID,
		Confirmed: true,
	})
	if err == nil {
		log.Info("user registered", logger.UserID(u.ID), logger.RoleID(role.ID), logger.Email(p.Email))
		return created(u), nil
	}
	if !repository.IsConflict(err) {
		return Outcome{}, fmt.Errorf("create user: %w", err)
	}

	// A concurrent callback registered the same email and provider first.
	log.Warn("registration conflict, re-reading users", logger.Email(p.Email))
	users, err = r.Users.Find(ctx, repository.UserFilter{Email: p.Email})
	if err != nil {
		return Outcome{}, fmt.Errorf("find users after conflict: %w", err)
	}
	if match, found := providerMatch(users, provider); found {
		return existing(match), nil
	}
	return rejected(RejectEmailTaken), nil
}

func providerMatch(users []repository.User, provider string) (repository.User, bool) {
	for _, u := range users {
		if u.Provider == provider {
			return u, true
		}
	}
	return repository.User{}, false
}

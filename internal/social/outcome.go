package social

import "github.com/dropDatabas3/socialconnect/internal/domain/repository"

type OutcomeKind string

const (
	ExistingUser OutcomeKind = "existing_user"
	CreatedUser  OutcomeKind = "created_user"
	Rejected     OutcomeKind = "rejected"
)

type RejectionKind string

const (
	NoAccessArtifact     RejectionKind = "no_access_artifact"
	EmailMissing         RejectionKind = "email_missing"
	RegistrationDisabled RejectionKind = "registration_disabled"
	EmailTaken           RejectionKind = "email_taken"
)

// Rejection is a policy refusal. ID is the localization key clients
// translate; Message is the default English text.
type Rejection struct {
	Kind    RejectionKind `json:"-"`
	ID      string        `json:"id"`
	Message string        `json:"message"`
}

var (
	RejectNoAccessArtifact = Rejection{
		Kind: NoAccessArtifact, ID: "Auth.form.error.token.provide", Message: "No access_token.",
	}
	RejectEmailMissing = Rejection{
		Kind: EmailMissing, ID: "Auth.form.error.email.provide", Message: "Email was not available.",
	}
	RejectRegistrationDisabled = Rejection{
		Kind: RegistrationDisabled, ID: "Auth.advanced.allow_register", Message: "Register action is actually not available.",
	}
	RejectEmailTaken = Rejection{
		Kind: EmailTaken, ID: "Auth.form.error.email.taken", Message: "Email is already taken.",
	}
)

// Outcome is the result of a connect attempt. User is set for ExistingUser
// and CreatedUser, Rejection for Rejected.
type Outcome struct {
	Kind      OutcomeKind
	User      *repository.User
	Rejection *Rejection
}

func existing(u repository.User) Outcome { return Outcome{Kind: ExistingUser, User: &u} }

func created(u *repository.User) Outcome { return Outcome{Kind: CreatedUser, User: u} }

func rejected(r Rejection) Outcome { return Outcome{Kind: Rejected, Rejection: &r} }

// OK reports whether the attempt resolved to a user.
func (o Outcome) OK() bool { return o.Kind == ExistingUser || o.Kind == CreatedUser }

// Label is the low cardinality name used in logs and metrics.
func (o Outcome) Label() string {
	if o.Kind == Rejected && o.Rejection != nil {
		return string(o.Rejection.Kind)
	}
	return string(o.Kind)
}

package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/nyaruka/phonenumbers"
	"github.com/uptrace/bun"
)

// DefaultPhoneRegion is used to parse phone numbers without a country prefix.
var DefaultPhoneRegion = "US"

// CreateTeacherMessage is an admin-only operation: teacher accounts are
// provisioned, never self-registered, and are admitted from the start.
type CreateTeacherMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Subject    string `json:"subject"`
	Department string `json:"department"`
	Phone      string `json:"phone_number"`
	Role       string `json:"user_role"`
	UseHashid  bool
	OnResponse func(user *User)
}

func (e CreateTeacherMessage) Type() string { return "teacher.create" }

func (e *CreateTeacherMessage) SetRole(role UserRole) {
	e.Role = role
}

type CreateTeacherHandler struct {
	repo RepositoryManager
}

func NewCreateTeacherHandler(repo RepositoryManager) *CreateTeacherHandler {
	return &CreateTeacherHandler{repo: repo}
}

func (h *CreateTeacherHandler) Execute(ctx context.Context, event CreateTeacherMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during teacher creation",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *CreateTeacherHandler) execute(ctx context.Context, event CreateTeacherMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	ForceRole(&event, RoleTeacher)

	phone, err := normalizePhone(event.Phone)
	if err != nil {
		return err
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.PasswordHash = hash
		user.Email = event.Email
		user.Name = event.Name
		user.Subject = event.Subject
		user.Department = event.Department
		user.Phone = phone
		user.Role = event.Role
		user.Admitted = true
		if event.UseHashid {
			if id, err := hashid.NewUUID(NormalizeEmail(event.Email)); err == nil {
				user.ID = id
			}
		}

		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create teacher")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "teacher creation transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}

// normalizePhone returns the E.164 rendering of a phone number. Empty input
// stays empty, phone is optional on teacher profiles.
func normalizePhone(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}

	parsed, err := phonenumbers.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number").
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"phone_number": raw})
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", goerrors.New("invalid phone number", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"phone_number": raw})
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

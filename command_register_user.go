package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

// RegisterStudentMessage carries a self-service registration. Whatever role
// the client claims, the handler forces a not yet admitted student account.
type RegisterStudentMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Age        int    `json:"age"`
	Department string `json:"department"`
	Role       string `json:"user_role"`
	UseHashid  bool
	OnResponse func(user *User)
}

func (e RegisterStudentMessage) Type() string { return "user.register" }

// SetRole implements RoleAssignable so creation endpoints can force the role.
func (e *RegisterStudentMessage) SetRole(role UserRole) {
	e.Role = role
}

type RegisterStudentHandler struct {
	repo RepositoryManager
}

func NewRegisterStudentHandler(repo RepositoryManager) *RegisterStudentHandler {
	return &RegisterStudentHandler{repo: repo}
}

func (h *RegisterStudentHandler) Execute(ctx context.Context, event RegisterStudentMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during student registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterStudentHandler) execute(ctx context.Context, event RegisterStudentMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	ForceRole(&event, RoleStudent)

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
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
		user.Age = event.Age
		user.Department = event.Department
		user.Role = event.Role
		user.Admitted = false
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
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}

		return goerrors.Wrap(err, goerrors.CategoryInternal, "student registration transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}

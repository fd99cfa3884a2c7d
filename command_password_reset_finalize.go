package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// FinalizePasswordResetMessage completes the forgot-password flow using the
// short lived reset token from the email link.
type FinalizePasswordResetMessage struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

type FinalizePasswordResetHandler struct {
	repo RepositoryManager
	auth Authenticator
}

func NewFinalizePasswordResetHandler(repo RepositoryManager, auth Authenticator) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{repo: repo, auth: auth}
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	claims, err := h.auth.ValidateResetToken(event.Token)
	if err != nil {
		return err
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return ErrTokenMalformed.WithMetadata(map[string]any{
			"claim": "uid",
		})
	}

	hash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return goerrors.Wrap(richErr, goerrors.CategoryValidation, "invalid password provided")
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := h.repo.Users().ResetPassword(ctx, userID, hash); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound.WithMetadata(map[string]any{
				"user_id": userID.String(),
			})
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reset password")
	}

	return nil
}

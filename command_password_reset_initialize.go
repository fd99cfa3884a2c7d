package tutortime

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"

	"github.com/tutortime/tutortime/mailer"
)

// InitializePasswordResetMessage starts the forgot-password flow. The
// response is identical whether or not the email maps to an account; only
// the holder of the mailbox learns the difference.
type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	ResetURL   string `json:"-"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	// Token is only populated for known accounts; the HTTP layer must not
	// leak it in the response body.
	Token   string
	Success bool
}

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	auth   Authenticator
	mailer Mailer
	logger Logger
}

func NewInitializePasswordResetHandler(repo RepositoryManager, auth Authenticator, m Mailer) *InitializePasswordResetHandler {
	return &InitializePasswordResetHandler{
		repo:   repo,
		auth:   auth,
		mailer: m,
		logger: defLogger{},
	}
}

func (h *InitializePasswordResetHandler) WithLogger(l Logger) *InitializePasswordResetHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	resp := &InitializePasswordResetResponse{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByIdentifier(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// pretend we sent something
			resp.Success = true
			if event.OnResponse != nil {
				event.OnResponse(resp)
			}
			return nil
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := h.auth.IssueResetToken(NewIdentityFromUser(user))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue reset token")
	}

	link := fmt.Sprintf("%s?token=%s", event.ResetURL, token)
	if body, err := mailer.PasswordResetBody(user.Name, link, 10); err != nil {
		h.logger.Warn("failed to render reset mail", "error", err)
	} else {
		notifyAsync(h.logger, h.mailer, user.Email, "Reset your TutorTime password", body)
	}

	resp.Token = token
	resp.Success = true

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

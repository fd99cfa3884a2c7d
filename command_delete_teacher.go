package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DeleteTeacherMessage removes a teacher account together with every
// appointment the teacher published and every message involving the
// teacher's address. All three deletions commit or roll back together.
type DeleteTeacherMessage struct {
	TeacherID uuid.UUID `json:"teacher_id"`
	Actor     ActorRef
}

func (e DeleteTeacherMessage) Type() string { return "teacher.delete" }

type DeleteTeacherHandler struct {
	repo RepositoryManager
}

func NewDeleteTeacherHandler(repo RepositoryManager) *DeleteTeacherHandler {
	return &DeleteTeacherHandler{repo: repo}
}

func (h *DeleteTeacherHandler) Execute(ctx context.Context, event DeleteTeacherMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during teacher deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteTeacherHandler) execute(ctx context.Context, event DeleteTeacherMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByIdentifierTx(ctx, tx, event.TeacherID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrIdentityNotFound.WithMetadata(map[string]any{
					"teacher_id": event.TeacherID.String(),
				})
			}
			return err
		}

		if user.Role != RoleTeacher {
			return ErrRoleForbidden.WithMetadata(map[string]any{
				"teacher_id": event.TeacherID.String(),
				"role":       user.Role,
			})
		}

		if err := h.repo.Appointments().DeleteByTeacherEmailTx(ctx, tx, user.Email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to cascade appointments")
		}

		if err := h.repo.Messages().DeleteByEmailTx(ctx, tx, user.Email); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to cascade messages")
		}

		return h.repo.Users().RemoveTx(ctx, tx, user.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "teacher deletion transaction failed")
	}

	return nil
}

package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// DeleteStudentMessage removes a student account and nothing else. Slots the
// student had requested keep their student binding; a teacher resolves them
// by rejecting the booking, which reopens the slot.
type DeleteStudentMessage struct {
	StudentID uuid.UUID `json:"student_id"`
	Actor     ActorRef
}

func (e DeleteStudentMessage) Type() string { return "student.delete" }

type DeleteStudentHandler struct {
	repo RepositoryManager
}

func NewDeleteStudentHandler(repo RepositoryManager) *DeleteStudentHandler {
	return &DeleteStudentHandler{repo: repo}
}

func (h *DeleteStudentHandler) Execute(ctx context.Context, event DeleteStudentMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during student deletion",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *DeleteStudentHandler) execute(ctx context.Context, event DeleteStudentMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByIdentifier(ctx, event.StudentID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound.WithMetadata(map[string]any{
				"student_id": event.StudentID.String(),
			})
		}
		return err
	}

	if user.Role != RoleStudent {
		return ErrRoleForbidden.WithMetadata(map[string]any{
			"student_id": event.StudentID.String(),
			"role":       user.Role,
		})
	}

	if err := h.repo.Users().Remove(ctx, user.ID); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "student deletion failed")
	}

	return nil
}

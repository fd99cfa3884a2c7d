package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RejectStudentMessage removes a pending student account outright. There is
// no rejected-but-present state: a rejected applicant can register again with
// the same email.
type RejectStudentMessage struct {
	StudentID uuid.UUID `json:"student_id"`
	Actor     ActorRef
}

func (e RejectStudentMessage) Type() string { return "admission.reject" }

type RejectStudentHandler struct {
	repo   RepositoryManager
	sink   ActivitySink
	logger Logger
}

func NewRejectStudentHandler(repo RepositoryManager) *RejectStudentHandler {
	return &RejectStudentHandler{
		repo:   repo,
		sink:   noopActivitySink{},
		logger: defLogger{},
	}
}

func (h *RejectStudentHandler) WithLogger(l Logger) *RejectStudentHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *RejectStudentHandler) WithActivitySink(sink ActivitySink) *RejectStudentHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *RejectStudentHandler) Execute(ctx context.Context, event RejectStudentMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admission rejection",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RejectStudentHandler) execute(ctx context.Context, event RejectStudentMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err := h.repo.Users().GetByIdentifierTx(ctx, tx, event.StudentID.String())
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

		// hard delete, the email must be reusable
		return h.repo.Users().RemoveTx(ctx, tx, user.ID)
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "admission rejection failed")
	}

	sink := normalizeActivitySink(h.sink)
	if err := sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventAdmissionRejected,
		Actor:      event.Actor,
		UserID:     event.StudentID.String(),
		OccurredAt: time.Now(),
	}); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}

	return nil
}

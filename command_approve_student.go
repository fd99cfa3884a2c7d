package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/tutortime/tutortime/mailer"
)

// ApproveStudentMessage admits a pending student. The flag flip is the
// durable outcome; the welcome mail rides along best effort and a delivery
// failure never rolls the admission back.
type ApproveStudentMessage struct {
	StudentID  uuid.UUID `json:"student_id"`
	Actor      ActorRef
	OnResponse func(user *User)
}

func (e ApproveStudentMessage) Type() string { return "admission.approve" }

type ApproveStudentHandler struct {
	repo   RepositoryManager
	mailer Mailer
	sink   ActivitySink
	logger Logger
}

func NewApproveStudentHandler(repo RepositoryManager, m Mailer) *ApproveStudentHandler {
	return &ApproveStudentHandler{
		repo:   repo,
		mailer: m,
		sink:   noopActivitySink{},
		logger: defLogger{},
	}
}

func (h *ApproveStudentHandler) WithLogger(l Logger) *ApproveStudentHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *ApproveStudentHandler) WithActivitySink(sink ActivitySink) *ApproveStudentHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *ApproveStudentHandler) Execute(ctx context.Context, event ApproveStudentMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during admission approval",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ApproveStudentHandler) execute(ctx context.Context, event ApproveStudentMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().ApproveAdmission(ctx, event.StudentID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound.WithMetadata(map[string]any{
				"student_id": event.StudentID.String(),
			})
		}
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "admission approval failed")
	}

	// admission is committed; everything below is advisory
	if body, err := mailer.AdmissionApprovedBody(user.Name); err != nil {
		h.logger.Warn("failed to render admission mail", "error", err)
	} else {
		notifyAsync(h.logger, h.mailer, user.Email, "Your TutorTime account is approved", body)
	}

	sink := normalizeActivitySink(h.sink)
	if err := sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventAdmissionApproved,
		Actor:      event.Actor,
		UserID:     user.ID.String(),
		OccurredAt: time.Now(),
	}); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(user)
	}

	return nil
}

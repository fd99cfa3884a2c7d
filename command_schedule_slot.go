package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ScheduleSlotMessage publishes a new open appointment slot for a teacher.
type ScheduleSlotMessage struct {
	TeacherID    uuid.UUID `json:"-"`
	TeacherEmail string    `json:"-"`
	Subject      string    `json:"subject"`
	Description  string    `json:"description"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	Actor        ActorRef
	OnResponse   func(slot *Appointment)
}

func (e ScheduleSlotMessage) Type() string { return "slot.schedule" }

type ScheduleSlotHandler struct {
	repo   RepositoryManager
	sink   ActivitySink
	logger Logger
}

func NewScheduleSlotHandler(repo RepositoryManager) *ScheduleSlotHandler {
	return &ScheduleSlotHandler{
		repo:   repo,
		sink:   noopActivitySink{},
		logger: defLogger{},
	}
}

func (h *ScheduleSlotHandler) WithActivitySink(sink ActivitySink) *ScheduleSlotHandler {
	h.sink = normalizeActivitySink(sink)
	return h
}

func (h *ScheduleSlotHandler) WithLogger(l Logger) *ScheduleSlotHandler {
	if l != nil {
		h.logger = l
	}
	return h
}

func (h *ScheduleSlotHandler) Execute(ctx context.Context, event ScheduleSlotMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during slot scheduling",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ScheduleSlotHandler) execute(ctx context.Context, event ScheduleSlotMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	slot := &Appointment{
		TeacherID:    event.TeacherID,
		TeacherEmail: event.TeacherEmail,
		Subject:      event.Subject,
		Description:  event.Description,
		ScheduledAt:  event.ScheduledAt,
	}

	slot, err := h.repo.Appointments().Schedule(ctx, slot)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to schedule slot")
	}

	sink := normalizeActivitySink(h.sink)
	if err := sink.Record(ctx, ActivityEvent{
		EventType:  ActivityEventSlotCreated,
		Actor:      event.Actor,
		SlotID:     slot.ID.String(),
		ToStatus:   SlotOpen,
		OccurredAt: time.Now(),
	}); err != nil {
		h.logger.Warn("activity sink record error: %v", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(slot)
	}

	return nil
}

// DeleteSlotMessage removes an open slot owned by the requesting teacher.
type DeleteSlotMessage struct {
	SlotID    uuid.UUID `json:"-"`
	TeacherID uuid.UUID `json:"-"`
	Actor     ActorRef
}

func (e DeleteSlotMessage) Type() string { return "slot.delete" }

type DeleteSlotHandler struct {
	slots SlotStateMachine
}

func NewDeleteSlotHandler(slots SlotStateMachine) *DeleteSlotHandler {
	return &DeleteSlotHandler{slots: slots}
}

func (h *DeleteSlotHandler) Execute(ctx context.Context, event DeleteSlotMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during slot deletion",
		)
	default:
		return h.slots.DeleteOpen(ctx, event.Actor, event.SlotID, event.TeacherID)
	}
}

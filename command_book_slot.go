package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// BookSlotMessage requests an open slot on behalf of an admitted student.
type BookSlotMessage struct {
	SlotID     uuid.UUID `json:"-"`
	Student    Identity  `json:"-"`
	Actor      ActorRef
	OnResponse func(slot *Appointment)
}

func (e BookSlotMessage) Type() string { return "slot.book" }

type BookSlotHandler struct {
	slots SlotStateMachine
}

func NewBookSlotHandler(slots SlotStateMachine) *BookSlotHandler {
	return &BookSlotHandler{slots: slots}
}

func (h *BookSlotHandler) Execute(ctx context.Context, event BookSlotMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during slot booking",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *BookSlotHandler) execute(ctx context.Context, event BookSlotMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Student == nil {
		return ErrIdentityNotFound
	}

	// pending students can sign in but cannot act on slots
	if !event.Student.Admitted() {
		return ErrNotAdmitted
	}

	studentID, err := uuid.Parse(event.Student.ID())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid student id")
	}

	slot, err := h.slots.Book(ctx, event.Actor, event.SlotID, studentID)
	if err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(slot)
	}

	return nil
}

package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ReviewDecision is the teacher's verdict on a requested slot.
type ReviewDecision = string

const (
	ReviewApprove ReviewDecision = "approve"
	ReviewReject  ReviewDecision = "reject"
)

// ReviewBookingMessage resolves a requested slot: approve confirms the
// student, reject clears the request and reopens the slot. StudentID names
// the student the teacher reviewed; a slot whose binding no longer matches
// it is reported as not found.
type ReviewBookingMessage struct {
	SlotID     uuid.UUID      `json:"-"`
	TeacherID  uuid.UUID      `json:"-"`
	StudentID  uuid.UUID      `json:"-"`
	Decision   ReviewDecision `json:"decision"`
	Actor      ActorRef
	OnResponse func(slot *Appointment)
}

func (e ReviewBookingMessage) Type() string { return "slot.review" }

type ReviewBookingHandler struct {
	slots SlotStateMachine
}

func NewReviewBookingHandler(slots SlotStateMachine) *ReviewBookingHandler {
	return &ReviewBookingHandler{slots: slots}
}

func (h *ReviewBookingHandler) Execute(ctx context.Context, event ReviewBookingMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during booking review",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ReviewBookingHandler) execute(ctx context.Context, event ReviewBookingMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	var slot *Appointment
	var err error

	switch event.Decision {
	case ReviewApprove:
		slot, err = h.slots.Approve(ctx, event.Actor, event.SlotID, event.TeacherID, event.StudentID)
	case ReviewReject:
		slot, err = h.slots.Reject(ctx, event.Actor, event.SlotID, event.TeacherID, event.StudentID)
	default:
		return goerrors.New("unknown review decision", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{"decision": event.Decision})
	}

	if err != nil {
		return err
	}

	if event.OnResponse != nil {
		event.OnResponse(slot)
	}

	return nil
}

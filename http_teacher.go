package tutortime

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// TeacherController lets a teacher publish slots and resolve bookings.
type TeacherController struct {
	Logger Logger
	Repo   RepositoryManager
	Slots  SlotStateMachine
	Config Config
}

func NewTeacherController(repo RepositoryManager, slots SlotStateMachine, cfg Config) *TeacherController {
	if repo == nil {
		panic("Missing RepositoryManager in teacher controller...")
	}

	if slots == nil {
		panic("Missing SlotStateMachine in teacher controller...")
	}

	return &TeacherController{
		Logger: defLogger{},
		Repo:   repo,
		Slots:  slots,
		Config: cfg,
	}
}

func (t *TeacherController) WithLogger(l Logger) *TeacherController {
	if l != nil {
		t.Logger = l
	}
	return t
}

// SlotCreatePayload publishes a new open slot
type SlotCreatePayload struct {
	Subject     string    `form:"subject" json:"subject"`
	Description string    `form:"description" json:"description"`
	ScheduledAt time.Time `form:"scheduled_at" json:"scheduled_at"`
}

// Validate will validate the payload
func (r SlotCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Subject, validation.Required, validation.Length(1, 120)),
		validation.Field(&r.ScheduledAt, validation.Required),
	)
}

func (t *TeacherController) CreateSlot(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, t.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	teacherID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return RespondError(ctx, ErrUnableToDecodeSession)
	}

	payload := new(SlotCreatePayload)
	if err := ctx.Bind(payload); err != nil {
		t.Logger.Error("create slot parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	var created *Appointment
	req := ScheduleSlotMessage{
		TeacherID:    teacherID,
		TeacherEmail: claims.Email(),
		Subject:      payload.Subject,
		Description:  payload.Description,
		ScheduledAt:  payload.ScheduledAt,
		Actor:        actorFromClaims(claims),
		OnResponse:   func(slot *Appointment) { created = slot },
	}

	scheduleSlot := NewScheduleSlotHandler(t.Repo)
	if err := scheduleSlot.Execute(ctx.Context(), req); err != nil {
		t.Logger.Error("create slot error", "error", err)
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusCreated, created)
}

// ListSlots returns every slot owned by the signed-in teacher, booked or not.
func (t *TeacherController) ListSlots(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, t.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	teacherID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return RespondError(ctx, ErrUnableToDecodeSession)
	}

	slots, err := t.Repo.Appointments().ListByTeacher(ctx.Context(), teacherID)
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, slots)
}

// BookingReviewPayload resolves a requested slot. StudentID is the student
// the teacher is ruling on; the review only lands while that student is
// still bound to the slot.
type BookingReviewPayload struct {
	Decision  string `form:"decision" json:"decision"`
	StudentID string `form:"student_id" json:"student_id"`
}

// Validate will validate the payload
func (r BookingReviewPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Decision,
			validation.Required,
			validation.In(string(ReviewApprove), string(ReviewReject)),
		),
		validation.Field(&r.StudentID, validation.Required, is.UUID),
	)
}

func (t *TeacherController) ReviewBooking(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, t.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	teacherID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return RespondError(ctx, ErrUnableToDecodeSession)
	}

	slotID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrSlotNotFound)
	}

	payload := new(BookingReviewPayload)
	if err := ctx.Bind(payload); err != nil {
		t.Logger.Error("review booking parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	studentID, err := uuid.Parse(payload.StudentID)
	if err != nil {
		return RespondError(ctx, ErrUnableToParseData)
	}

	var reviewed *Appointment
	req := ReviewBookingMessage{
		SlotID:     slotID,
		TeacherID:  teacherID,
		StudentID:  studentID,
		Decision:   ReviewDecision(payload.Decision),
		Actor:      actorFromClaims(claims),
		OnResponse: func(slot *Appointment) { reviewed = slot },
	}

	reviewBooking := NewReviewBookingHandler(t.Slots)
	if err := reviewBooking.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, reviewed)
}

func (t *TeacherController) DeleteSlot(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, t.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	teacherID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return RespondError(ctx, ErrUnableToDecodeSession)
	}

	slotID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrSlotNotFound)
	}

	req := DeleteSlotMessage{
		SlotID:    slotID,
		TeacherID: teacherID,
		Actor:     actorFromClaims(claims),
	}

	deleteSlot := NewDeleteSlotHandler(t.Slots)
	if err := deleteSlot.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"message": "Slot deleted",
	})
}

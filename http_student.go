package tutortime

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// StudentController is the student-facing surface: browse teachers and
// slots, request a booking, track your own appointments.
type StudentController struct {
	Logger Logger
	Repo   RepositoryManager
	Slots  SlotStateMachine
	Config Config
}

func NewStudentController(repo RepositoryManager, slots SlotStateMachine, cfg Config) *StudentController {
	if repo == nil {
		panic("Missing RepositoryManager in student controller...")
	}

	if slots == nil {
		panic("Missing SlotStateMachine in student controller...")
	}

	return &StudentController{
		Logger: defLogger{},
		Repo:   repo,
		Slots:  slots,
		Config: cfg,
	}
}

func (s *StudentController) WithLogger(l Logger) *StudentController {
	if l != nil {
		s.Logger = l
	}
	return s
}

func (s *StudentController) ListTeachers(ctx router.Context) error {
	teachers, err := s.Repo.Users().ListByRole(ctx.Context(), RoleTeacher)
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, teachers)
}

// ListTeacherSlots returns every slot published by one teacher so a student
// can pick an open one.
func (s *StudentController) ListTeacherSlots(ctx router.Context) error {
	teacherID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	slots, err := s.Repo.Appointments().ListByTeacher(ctx.Context(), teacherID)
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, slots)
}

func (s *StudentController) BookSlot(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, s.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	slotID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrSlotNotFound)
	}

	// admission status lives in the database, not the token, so a student
	// approved after sign-in can book without a fresh session
	user, err := s.Repo.Users().GetByIdentifier(ctx.Context(), claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(ctx, ErrIdentityNotFound)
		}
		return RespondError(ctx, err)
	}

	var booked *Appointment
	req := BookSlotMessage{
		SlotID:     slotID,
		Student:    NewIdentityFromUser(user),
		Actor:      actorFromClaims(claims),
		OnResponse: func(slot *Appointment) { booked = slot },
	}

	bookSlot := NewBookSlotHandler(s.Slots)
	if err := bookSlot.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, booked)
}

// ListAppointments returns the slots the signed-in student has requested or
// been confirmed for.
func (s *StudentController) ListAppointments(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, s.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	studentID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return RespondError(ctx, ErrUnableToDecodeSession)
	}

	slots, err := s.Repo.Appointments().ListByStudent(ctx.Context(), studentID)
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, slots)
}

// ProfileUpdatePayload carries the mutable profile fields
type ProfileUpdatePayload struct {
	Name       string `form:"name" json:"name"`
	Age        int    `form:"age" json:"age"`
	Department string `form:"department" json:"department"`
}

// Validate will validate the payload
func (r ProfileUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Age, validation.Min(0), validation.Max(150)),
	)
}

func (s *StudentController) UpdateProfile(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, s.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return RespondError(ctx, ErrUnableToDecodeSession)
	}

	payload := new(ProfileUpdatePayload)
	if err := ctx.Bind(payload); err != nil {
		s.Logger.Error("update profile parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	record := &User{
		ID:         userID,
		Name:       payload.Name,
		Age:        payload.Age,
		Department: payload.Department,
	}

	updated, err := s.Repo.Users().UpdateProfile(ctx.Context(), record)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(ctx, ErrIdentityNotFound)
		}
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, updated)
}

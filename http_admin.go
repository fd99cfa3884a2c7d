package tutortime

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// AdminController manages teacher accounts and the student admission queue.
type AdminController struct {
	Logger Logger
	Repo   RepositoryManager
	Mailer Mailer
	Config Config
}

func NewAdminController(repo RepositoryManager, m Mailer, cfg Config) *AdminController {
	if repo == nil {
		panic("Missing RepositoryManager in admin controller...")
	}

	return &AdminController{
		Logger: defLogger{},
		Repo:   repo,
		Mailer: m,
		Config: cfg,
	}
}

func (a *AdminController) WithLogger(l Logger) *AdminController {
	if l != nil {
		a.Logger = l
	}
	return a
}

// TeacherCreatePayload is the admin payload for provisioning a teacher
type TeacherCreatePayload struct {
	Name       string `form:"name" json:"name"`
	Email      string `form:"email" json:"email"`
	Password   string `form:"password" json:"password"`
	Subject    string `form:"subject" json:"subject"`
	Department string `form:"department" json:"department"`
	Phone      string `form:"phone_number" json:"phone_number"`
	Role       string `form:"user_role" json:"user_role"`
}

// Validate will validate the payload
func (r TeacherCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(&r.Subject, validation.Required, validation.Length(1, 120)),
	)
}

func (a *AdminController) CreateTeacher(ctx router.Context) error {
	payload := new(TeacherCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("create teacher parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	var created *User
	req := CreateTeacherMessage{
		Name:       payload.Name,
		Email:      payload.Email,
		Password:   payload.Password,
		Subject:    payload.Subject,
		Department: payload.Department,
		Phone:      payload.Phone,
		Role:       payload.Role,
		OnResponse: func(u *User) { created = u },
	}

	createTeacher := NewCreateTeacherHandler(a.Repo)
	if err := createTeacher.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("create teacher error", "error", err)
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusCreated, created)
}

func (a *AdminController) ListTeachers(ctx router.Context) error {
	teachers, err := a.Repo.Users().ListByRole(ctx.Context(), RoleTeacher)
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, teachers)
}

func (a *AdminController) GetTeacher(ctx router.Context) error {
	teacherID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	teacher, err := a.Repo.Users().GetByIdentifier(ctx.Context(), teacherID.String())
	if err != nil {
		return RespondError(ctx, err)
	}

	if teacher.Role != RoleTeacher {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	return RespondSuccess(ctx, router.StatusOK, teacher)
}

// TeacherUpdatePayload covers the mutable teacher profile fields. Email and
// role changes are rejected at the repository layer.
type TeacherUpdatePayload struct {
	Name       string `form:"name" json:"name"`
	Subject    string `form:"subject" json:"subject"`
	Department string `form:"department" json:"department"`
	Phone      string `form:"phone_number" json:"phone_number"`
	Age        int    `form:"age" json:"age"`
}

// Validate will validate the payload
func (r TeacherUpdatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Subject, validation.Required, validation.Length(1, 120)),
	)
}

func (a *AdminController) UpdateTeacher(ctx router.Context) error {
	teacherID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	payload := new(TeacherUpdatePayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("update teacher parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	current, err := a.Repo.Users().GetByIdentifier(ctx.Context(), teacherID.String())
	if err != nil {
		return RespondError(ctx, err)
	}

	if current.Role != RoleTeacher {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	phone, err := normalizePhone(payload.Phone)
	if err != nil {
		return RespondError(ctx, err)
	}

	updated, err := a.Repo.Users().UpdateProfile(ctx.Context(), &User{
		ID:         teacherID,
		Name:       payload.Name,
		Subject:    payload.Subject,
		Department: payload.Department,
		Phone:      phone,
		Age:        payload.Age,
	})
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, updated)
}

func (a *AdminController) DeleteTeacher(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, a.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	teacherID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	req := DeleteTeacherMessage{
		TeacherID: teacherID,
		Actor:     actorFromClaims(claims),
	}

	deleteTeacher := NewDeleteTeacherHandler(a.Repo)
	if err := deleteTeacher.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"message": "Teacher deleted",
	})
}

// ListAppointments returns every slot in the system regardless of owner,
// booked or not.
func (a *AdminController) ListAppointments(ctx router.Context) error {
	slots, err := a.Repo.Appointments().ListAll(ctx.Context())
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, slots)
}

// ListPendingStudents returns the admission queue, oldest registration first.
func (a *AdminController) ListPendingStudents(ctx router.Context) error {
	students, err := a.Repo.Users().ListPendingStudents(ctx.Context())
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, students)
}

func (a *AdminController) ApproveStudent(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, a.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	studentID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	var approved *User
	req := ApproveStudentMessage{
		StudentID:  studentID,
		Actor:      actorFromClaims(claims),
		OnResponse: func(u *User) { approved = u },
	}

	approveStudent := NewApproveStudentHandler(a.Repo, a.Mailer).
		WithLogger(a.Logger)

	if err := approveStudent.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, approved)
}

func (a *AdminController) RejectStudent(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, a.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	studentID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	req := RejectStudentMessage{
		StudentID: studentID,
		Actor:     actorFromClaims(claims),
	}

	rejectStudent := NewRejectStudentHandler(a.Repo)
	if err := rejectStudent.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"message": "Registration rejected",
	})
}

func (a *AdminController) DeleteStudent(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, a.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	studentID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrIdentityNotFound)
	}

	req := DeleteStudentMessage{
		StudentID: studentID,
		Actor:     actorFromClaims(claims),
	}

	deleteStudent := NewDeleteStudentHandler(a.Repo)
	if err := deleteStudent.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"message": "Student deleted",
	})
}

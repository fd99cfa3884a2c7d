package tutortime

import (
	stderrors "errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// AuthController serves registration, login, and the password flows.
type AuthController struct {
	Debug  bool
	Logger Logger
	Repo   RepositoryManager
	Auther Authenticator
	Mailer Mailer
	Config Config
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	return c
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerMailer(m Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Mailer = m
		return c
	}
}

func WithControllerConfig(cfg Config) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Config = cfg
		return c
	}
}

func WithControllerLogger(l Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if l != nil {
			c.Logger = l
		}
		return c
	}
}

// LoginRequest payload
type LoginRequest struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// GetIdentifier returns the identifier
func (r LoginRequest) GetIdentifier() string {
	return r.Identifier
}

// GetPassword will return the password
func (r LoginRequest) GetPassword() string {
	return r.Password
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Identifier,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

func (a *AuthController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("login parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=========================")
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	token, err := a.Auther.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"token": token,
	})
}

// RegistrationCreatePayload is the student self-registration payload
type RegistrationCreatePayload struct {
	Name            string `form:"name" json:"name"`
	Email           string `form:"email" json:"email"`
	Age             int    `form:"age" json:"age"`
	Department      string `form:"department" json:"department"`
	Role            string `form:"user_role" json:"user_role"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r RegistrationCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Age, validation.Min(0), validation.Max(150)),
		validation.Field(&r.Password, validation.Required, validation.Length(10, 100)),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) Register(ctx router.Context) error {
	payload := new(RegistrationCreatePayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("register user parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	var created *User
	req := RegisterStudentMessage{
		Name:       payload.Name,
		Email:      payload.Email,
		Age:        payload.Age,
		Department: payload.Department,
		Role:       payload.Role,
		Password:   payload.Password,
		OnResponse: func(u *User) { created = u },
	}

	registerStudent := NewRegisterStudentHandler(a.Repo)
	if err := registerStudent.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error", "error", err)
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusCreated, created)
}

// PasswordResetRequestPayload holds values for the forgot-password flow
type PasswordResetRequestPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r PasswordResetRequestPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
	)
}

func (a *AuthController) ForgotPassword(ctx router.Context) error {
	payload := new(PasswordResetRequestPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("forgot password parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	req := InitializePasswordResetMessage{
		Email:    payload.Email,
		ResetURL: "/reset-password",
	}

	initPwdReset := NewInitializePasswordResetHandler(a.Repo, a.Auther, a.Mailer).
		WithLogger(a.Logger)

	if err := initPwdReset.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("forgot password error", "error", err)
		return RespondError(ctx, err)
	}

	// the answer never says whether the account exists
	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"message": "If the account exists, a reset link has been sent",
	})
}

// PasswordResetVerifyPayload finalizes the forgot-password flow
type PasswordResetVerifyPayload struct {
	Token           string `form:"token" json:"token"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// Validate will validate the payload
func (r PasswordResetVerifyPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Token,
			validation.Required,
		),
		validation.Field(
			&r.Password,
			validation.Required,
			validation.Length(10, 100),
		),
		validation.Field(
			&r.ConfirmPassword,
			validation.Required,
			validation.Length(10, 100),
			validation.By(ValidateStringEquals(r.Password)),
		),
	)
}

func (a *AuthController) ResetPassword(ctx router.Context) error {
	payload := new(PasswordResetVerifyPayload)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("reset password parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	req := FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.Password,
	}

	finalizePwdReset := NewFinalizePasswordResetHandler(a.Repo, a.Auther)
	if err := finalizePwdReset.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"message": "Password updated",
	})
}

// UpdatePasswordPayload changes the password of the signed-in user
type UpdatePasswordPayload struct {
	CurrentPassword string `form:"current_password" json:"current_password"`
	NewPassword     string `form:"new_password" json:"new_password"`
}

// Validate will validate the payload
func (r UpdatePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(10, 100)),
	)
}

func (a *AuthController) UpdatePassword(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, a.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	userID, err := uuid.Parse(claims.UserID())
	if err != nil {
		return RespondError(ctx, ErrUnableToDecodeSession)
	}

	payload := new(UpdatePasswordPayload)
	if err := ctx.Bind(payload); err != nil {
		a.Logger.Error("update password parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	req := UpdatePasswordMessage{
		UserID:          userID,
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	}

	updatePwd := NewUpdatePasswordHandler(a.Repo)
	if err := updatePwd.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"message": "Password updated",
	})
}

// Me returns the profile of the signed-in user.
func (a *AuthController) Me(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, a.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	user, err := a.Repo.Users().GetByIdentifier(ctx.Context(), claims.UserID())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return RespondError(ctx, ErrIdentityNotFound)
		}
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, user)
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != str {
			return stderrors.New("values must match")
		}
		return nil
	}
}

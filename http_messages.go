package tutortime

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// MessageController serves the in-app mailbox shared by every role.
type MessageController struct {
	Logger Logger
	Repo   RepositoryManager
	Config Config
}

func NewMessageController(repo RepositoryManager, cfg Config) *MessageController {
	if repo == nil {
		panic("Missing RepositoryManager in message controller...")
	}

	return &MessageController{
		Logger: defLogger{},
		Repo:   repo,
		Config: cfg,
	}
}

func (m *MessageController) WithLogger(l Logger) *MessageController {
	if l != nil {
		m.Logger = l
	}
	return m
}

// MessageCreatePayload is a new mailbox message
type MessageCreatePayload struct {
	To      string `form:"to_email" json:"to_email"`
	Content string `form:"content" json:"content"`
}

// Validate will validate the payload
func (r MessageCreatePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.To, validation.Required, is.Email),
		validation.Field(&r.Content, validation.Required, validation.Length(1, 5000)),
	)
}

func (m *MessageController) Send(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, m.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	payload := new(MessageCreatePayload)
	if err := ctx.Bind(payload); err != nil {
		m.Logger.Error("send message parse payload", "error", err)
		return RespondError(ctx, ErrUnableToParseData)
	}

	if err := payload.Validate(); err != nil {
		return RespondValidationError(ctx, err)
	}

	var sent *Message
	req := SendMessageMessage{
		From:       claims.Email(),
		To:         payload.To,
		Content:    payload.Content,
		OnResponse: func(msg *Message) { sent = msg },
	}

	sendMessage := NewSendMessageHandler(m.Repo)
	if err := sendMessage.Execute(ctx.Context(), req); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusCreated, sent)
}

func (m *MessageController) Inbox(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, m.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	messages, err := m.Repo.Messages().Inbox(ctx.Context(), claims.Email())
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, messages)
}

func (m *MessageController) Sent(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, m.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	messages, err := m.Repo.Messages().Sent(ctx.Context(), claims.Email())
	if err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, messages)
}

// Delete removes a message the caller sent or received.
func (m *MessageController) Delete(ctx router.Context) error {
	claims, err := ClaimsFromContext(ctx, m.Config.GetContextKey())
	if err != nil {
		return RespondError(ctx, err)
	}

	messageID, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, ErrMessageNotFound)
	}

	if err := m.Repo.Messages().DeleteOwned(ctx.Context(), messageID, claims.Email()); err != nil {
		return RespondError(ctx, err)
	}

	return RespondSuccess(ctx, router.StatusOK, map[string]any{
		"message": "Message deleted",
	})
}

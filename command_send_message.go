package tutortime

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// SendMessageMessage records a direct message between two addresses. The
// recipient must exist; the sender address comes from the session, never
// from the payload.
type SendMessageMessage struct {
	From       string `json:"-"`
	To         string `json:"to_email"`
	Content    string `json:"content"`
	OnResponse func(msg *Message)
}

func (e SendMessageMessage) Type() string { return "message.send" }

type SendMessageHandler struct {
	repo RepositoryManager
}

func NewSendMessageHandler(repo RepositoryManager) *SendMessageHandler {
	return &SendMessageHandler{repo: repo}
}

func (h *SendMessageHandler) Execute(ctx context.Context, event SendMessageMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during message send",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *SendMessageHandler) execute(ctx context.Context, event SendMessageMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if _, err := h.repo.Users().GetByIdentifier(ctx, event.To); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound.WithMetadata(map[string]any{
				"to_email": event.To,
			})
		}
		return err
	}

	msg, err := h.repo.Messages().Send(ctx, &Message{
		From:    event.From,
		To:      event.To,
		Content: event.Content,
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send message")
	}

	if event.OnResponse != nil {
		event.OnResponse(msg)
	}

	return nil
}

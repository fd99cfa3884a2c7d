package tutortime_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutortime/tutortime"
)

func TestSendMessageUsesSessionSender(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	messages := &MockMessages{}

	recipient := &tutortime.User{
		Role:  tutortime.RoleTeacher,
		Email: "teacher@example.com",
	}

	repo.On("Users").Return(users)
	repo.On("Messages").Return(messages)

	users.On("GetByIdentifier", mock.Anything, "teacher@example.com").
		Return(recipient, nil).Once()

	messages.On("Send", mock.Anything, mock.MatchedBy(func(m *tutortime.Message) bool {
		return m.From == "student@example.com" &&
			m.To == "teacher@example.com" &&
			m.Content == "hello"
	})).Return(&tutortime.Message{
		From:    "student@example.com",
		To:      "teacher@example.com",
		Content: "hello",
	}, nil).Once()

	var sent *tutortime.Message
	handler := tutortime.NewSendMessageHandler(repo)
	err := handler.Execute(context.Background(), tutortime.SendMessageMessage{
		From:       "student@example.com",
		To:         "teacher@example.com",
		Content:    "hello",
		OnResponse: func(m *tutortime.Message) { sent = m },
	})

	require.NoError(t, err)
	require.NotNil(t, sent)
	assert.Equal(t, "student@example.com", sent.From)

	users.AssertExpectations(t)
	messages.AssertExpectations(t)
}

func TestSendMessageRequiresExistingRecipient(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	messages := &MockMessages{}

	repo.On("Users").Return(users)
	repo.On("Messages").Return(messages).Maybe()

	users.On("GetByIdentifier", mock.Anything, "ghost@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	handler := tutortime.NewSendMessageHandler(repo)
	err := handler.Execute(context.Background(), tutortime.SendMessageMessage{
		From:    "student@example.com",
		To:      "ghost@example.com",
		Content: "anyone there?",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, tutortime.ErrIdentityNotFound)
	messages.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

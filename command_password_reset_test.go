package tutortime_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutortime/tutortime"
)

func newTestAuther() *tutortime.Auther {
	return tutortime.NewAuthenticator(&MockIdentityProvider{}, newTestConfig())
}

func TestInitializePasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("known account gets a reset mail", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		mailer := &MockMailer{}
		auther := newTestAuther()

		user := &tutortime.User{
			ID:       uuid.New(),
			Role:     tutortime.RoleStudent,
			Name:     "Test Student",
			Email:    "student@example.com",
			Admitted: true,
		}

		repo.On("Users").Return(tutortime.Users(users))
		users.On("GetByIdentifier", mock.Anything, "student@example.com").
			Return(user, nil).Once()

		sent := make(chan struct{}, 1)
		mailer.On("Send", mock.Anything, "student@example.com", mock.Anything, mock.MatchedBy(func(body string) bool {
			return strings.Contains(body, "/reset-password?token=")
		})).Run(func(args mock.Arguments) {
			sent <- struct{}{}
		}).Return(nil).Once()

		handler := tutortime.NewInitializePasswordResetHandler(repo, auther, mailer)

		var resp *tutortime.InitializePasswordResetResponse
		err := handler.Execute(ctx, tutortime.InitializePasswordResetMessage{
			Email:    "student@example.com",
			ResetURL: "/reset-password",
			OnResponse: func(r *tutortime.InitializePasswordResetResponse) {
				resp = r
			},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.True(t, resp.Success)
		require.NotEmpty(t, resp.Token)

		claims, err := auther.ValidateResetToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID())

		select {
		case <-sent:
		case <-time.After(2 * time.Second):
			t.Fatal("reset mail was never sent")
		}
		mailer.AssertExpectations(t)
	})

	t.Run("unknown account gets the same answer", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		mailer := &MockMailer{}

		repo.On("Users").Return(tutortime.Users(users))
		users.On("GetByIdentifier", mock.Anything, "nobody@example.com").
			Return(nil, repository.NewRecordNotFound()).Once()

		handler := tutortime.NewInitializePasswordResetHandler(repo, newTestAuther(), mailer)

		var resp *tutortime.InitializePasswordResetResponse
		err := handler.Execute(ctx, tutortime.InitializePasswordResetMessage{
			Email:    "nobody@example.com",
			ResetURL: "/reset-password",
			OnResponse: func(r *tutortime.InitializePasswordResetResponse) {
				resp = r
			},
		})

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.True(t, resp.Success)
		assert.Empty(t, resp.Token)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFinalizePasswordReset(t *testing.T) {
	ctx := context.Background()

	userID := uuid.New()
	identity := MockIdentity{
		IdentityID:    userID.String(),
		IdentityEmail: "student@example.com",
		IdentityRole:  tutortime.RoleStudent,
		IsAdmitted:    true,
	}

	t.Run("valid token resets the password", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		auther := newTestAuther()

		token, err := auther.IssueResetToken(identity)
		require.NoError(t, err)

		repo.On("Users").Return(tutortime.Users(users))
		users.On("ResetPassword", mock.Anything, userID, mock.MatchedBy(func(hash string) bool {
			return tutortime.ComparePasswordAndHash("new-password-123", hash) == nil
		})).Return(nil).Once()

		handler := tutortime.NewFinalizePasswordResetHandler(repo, auther)

		err = handler.Execute(ctx, tutortime.FinalizePasswordResetMessage{
			Token:    token,
			Password: "new-password-123",
		})

		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("session token is rejected", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		auther := newTestAuther()

		session, err := auther.TokenService().Generate(identity)
		require.NoError(t, err)

		handler := tutortime.NewFinalizePasswordResetHandler(repo, auther)

		err = handler.Execute(ctx, tutortime.FinalizePasswordResetMessage{
			Token:    session,
			Password: "new-password-123",
		})

		require.Error(t, err)
		users.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("deleted account cannot reset", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}
		auther := newTestAuther()

		token, err := auther.IssueResetToken(identity)
		require.NoError(t, err)

		repo.On("Users").Return(tutortime.Users(users))
		users.On("ResetPassword", mock.Anything, userID, mock.Anything).
			Return(repository.NewRecordNotFound()).Once()

		handler := tutortime.NewFinalizePasswordResetHandler(repo, auther)

		err = handler.Execute(ctx, tutortime.FinalizePasswordResetMessage{
			Token:    token,
			Password: "new-password-123",
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, tutortime.ErrIdentityNotFound)
	})
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies the current password first", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		hash, err := tutortime.HashPassword("current-password")
		require.NoError(t, err)

		user := &tutortime.User{
			ID:           uuid.New(),
			Role:         tutortime.RoleStudent,
			Email:        "student@example.com",
			PasswordHash: hash,
			Admitted:     true,
		}

		repo.On("Users").Return(tutortime.Users(users))
		users.On("GetByIdentifier", mock.Anything, user.ID.String()).
			Return(user, nil).Once()
		users.On("ResetPassword", mock.Anything, user.ID, mock.MatchedBy(func(h string) bool {
			return tutortime.ComparePasswordAndHash("next-password-456", h) == nil
		})).Return(nil).Once()

		handler := tutortime.NewUpdatePasswordHandler(repo)

		err = handler.Execute(ctx, tutortime.UpdatePasswordMessage{
			UserID:          user.ID,
			CurrentPassword: "current-password",
			NewPassword:     "next-password-456",
		})

		require.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("wrong current password fails", func(t *testing.T) {
		repo := &MockRepositoryManager{}
		users := &MockUsers{}

		hash, err := tutortime.HashPassword("current-password")
		require.NoError(t, err)

		user := &tutortime.User{
			ID:           uuid.New(),
			PasswordHash: hash,
		}

		repo.On("Users").Return(tutortime.Users(users))
		users.On("GetByIdentifier", mock.Anything, user.ID.String()).
			Return(user, nil).Once()

		handler := tutortime.NewUpdatePasswordHandler(repo)

		err = handler.Execute(ctx, tutortime.UpdatePasswordMessage{
			UserID:          user.ID,
			CurrentPassword: "guess",
			NewPassword:     "next-password-456",
		})

		assert.ErrorIs(t, err, tutortime.ErrMismatchedHashAndPassword)
		users.AssertNotCalled(t, "ResetPassword", mock.Anything, mock.Anything, mock.Anything)
	})
}

package tutortime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutortime/tutortime"
)

func TestRegisterStudentForcesRoleAndAdmission(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)

	// the payload claims admin; the handler must not care
	users.On("RegisterTx", mock.Anything, mock.Anything, mock.MatchedBy(func(u *tutortime.User) bool {
		return u.Role == tutortime.RoleStudent && !u.Admitted
	})).Return(&tutortime.User{
		Role:     tutortime.RoleStudent,
		Email:    "mallory@example.com",
		Admitted: false,
	}, nil).Once()

	var created *tutortime.User
	handler := tutortime.NewRegisterStudentHandler(repo)
	err := handler.Execute(context.Background(), tutortime.RegisterStudentMessage{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "password12345",
		Role:     "admin",
		OnResponse: func(u *tutortime.User) {
			created = u
		},
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, tutortime.RoleStudent, created.Role)
	assert.False(t, created.Admitted)

	users.AssertExpectations(t)
}

func TestRegisterStudentHashesThePassword(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)

	users.On("RegisterTx", mock.Anything, mock.Anything, mock.MatchedBy(func(u *tutortime.User) bool {
		if u.PasswordHash == "password12345" || u.PasswordHash == "" {
			return false
		}
		return tutortime.ComparePasswordAndHash("password12345", u.PasswordHash) == nil
	})).Return(&tutortime.User{}, nil).Once()

	handler := tutortime.NewRegisterStudentHandler(repo)
	err := handler.Execute(context.Background(), tutortime.RegisterStudentMessage{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "password12345",
	})

	require.NoError(t, err)
	users.AssertExpectations(t)
}

func TestRegisterStudentSurfacesDuplicateEmail(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)

	users.On("RegisterTx", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, tutortime.ErrEmailTaken).Once()

	handler := tutortime.NewRegisterStudentHandler(repo)
	err := handler.Execute(context.Background(), tutortime.RegisterStudentMessage{
		Name:     "Bob",
		Email:    "taken@example.com",
		Password: "password12345",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, tutortime.ErrEmailTaken)
	users.AssertExpectations(t)
}

func TestRegisterStudentRejectsEmptyPassword(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users).Maybe()

	handler := tutortime.NewRegisterStudentHandler(repo)
	err := handler.Execute(context.Background(), tutortime.RegisterStudentMessage{
		Name:  "NoPassword",
		Email: "nopass@example.com",
	})

	require.Error(t, err)
	users.AssertNotCalled(t, "RegisterTx", mock.Anything, mock.Anything, mock.Anything)
}

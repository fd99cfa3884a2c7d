package tutortime_test

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutortime/tutortime"
)

func TestApproveStudentSendsWelcomeMail(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	mailer := &MockMailer{}
	sink := &MockActivitySink{}

	studentID := uuid.New()
	approved := &tutortime.User{
		ID:       studentID,
		Role:     tutortime.RoleStudent,
		Name:     "Carla",
		Email:    "carla@example.com",
		Admitted: true,
	}

	repo.On("Users").Return(users)
	users.On("ApproveAdmission", mock.Anything, studentID).
		Return(approved, nil).Once()

	sent := make(chan struct{}, 1)
	mailer.On("Send", mock.Anything, "carla@example.com", mock.Anything, mock.Anything).
		Return(nil).
		Run(func(args mock.Arguments) { sent <- struct{}{} }).Once()

	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt tutortime.ActivityEvent) bool {
		return evt.EventType == tutortime.ActivityEventAdmissionApproved &&
			evt.UserID == studentID.String()
	})).Return(nil).Once()

	handler := tutortime.NewApproveStudentHandler(repo, mailer).
		WithLogger(testLogger{}).
		WithActivitySink(sink)

	var result *tutortime.User
	err := handler.Execute(context.Background(), tutortime.ApproveStudentMessage{
		StudentID:  studentID,
		Actor:      tutortime.ActorRef{ID: "admin-1", Type: "admin"},
		OnResponse: func(u *tutortime.User) { result = u },
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.Admitted)

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("welcome mail was never sent")
	}

	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestApproveStudentMailFailureDoesNotUndoAdmission(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	mailer := &MockMailer{}

	studentID := uuid.New()
	approved := &tutortime.User{
		ID:       studentID,
		Role:     tutortime.RoleStudent,
		Name:     "Dan",
		Email:    "dan@example.com",
		Admitted: true,
	}

	repo.On("Users").Return(users)
	users.On("ApproveAdmission", mock.Anything, studentID).
		Return(approved, nil).Once()

	attempted := make(chan struct{}, 1)
	mailer.On("Send", mock.Anything, "dan@example.com", mock.Anything, mock.Anything).
		Return(assert.AnError).
		Run(func(args mock.Arguments) { attempted <- struct{}{} }).Once()

	handler := tutortime.NewApproveStudentHandler(repo, mailer).
		WithLogger(testLogger{})

	err := handler.Execute(context.Background(), tutortime.ApproveStudentMessage{
		StudentID: studentID,
	})

	// the mail is advisory, the admission stands
	require.NoError(t, err)

	select {
	case <-attempted:
	case <-time.After(2 * time.Second):
		t.Fatal("mail send was never attempted")
	}

	users.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestApproveStudentUnknownID(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	mailer := &MockMailer{}

	studentID := uuid.New()

	repo.On("Users").Return(users)
	users.On("ApproveAdmission", mock.Anything, studentID).
		Return(nil, repository.NewRecordNotFound()).Once()

	handler := tutortime.NewApproveStudentHandler(repo, mailer)

	err := handler.Execute(context.Background(), tutortime.ApproveStudentMessage{
		StudentID: studentID,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, tutortime.ErrIdentityNotFound)
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

package tutortime_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutortime/tutortime"
)

func TestSlotStateMachineBookRecordsActivity(t *testing.T) {
	repo := &MockAppointments{}
	sink := &MockActivitySink{}
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	slotID := uuid.New()
	studentID := uuid.New()
	teacherID := uuid.New()

	booked := &tutortime.Appointment{
		ID:        slotID,
		TeacherID: teacherID,
		StudentID: &studentID,
	}

	repo.On("Book", mock.Anything, slotID, studentID).
		Return(booked, nil).Once()

	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt tutortime.ActivityEvent) bool {
		return evt.EventType == tutortime.ActivityEventSlotBooked &&
			evt.SlotID == slotID.String() &&
			evt.FromStatus == tutortime.SlotOpen &&
			evt.ToStatus == tutortime.SlotRequested
	})).Return(nil).Once()

	sm := tutortime.NewSlotStateMachine(repo,
		tutortime.WithStateMachineClock(func() time.Time { return now }),
		tutortime.WithStateMachineActivitySink(sink),
	)

	result, err := sm.Book(context.Background(), tutortime.ActorRef{ID: studentID.String(), Type: "student"}, slotID, studentID)
	require.NoError(t, err)
	assert.Equal(t, tutortime.SlotRequested, sm.CurrentStatus(result))

	repo.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestSlotStateMachineBookLoserGetsSlotTaken(t *testing.T) {
	repo := &MockAppointments{}
	slotID := uuid.New()
	studentID := uuid.New()

	repo.On("Book", mock.Anything, slotID, studentID).
		Return(nil, tutortime.ErrSlotTaken).Once()

	sm := tutortime.NewSlotStateMachine(repo)

	_, err := sm.Book(context.Background(), tutortime.ActorRef{}, slotID, studentID)
	require.Error(t, err)
	assert.ErrorIs(t, err, tutortime.ErrSlotTaken)
	repo.AssertExpectations(t)
}

func TestSlotStateMachineApproveSetsApprovedStatus(t *testing.T) {
	repo := &MockAppointments{}
	slotID := uuid.New()
	studentID := uuid.New()
	teacherID := uuid.New()
	now := time.Now()

	approved := &tutortime.Appointment{
		ID:          slotID,
		TeacherID:   teacherID,
		StudentID:   &studentID,
		Approved:    true,
		ConfirmedAt: &now,
	}

	repo.On("Approve", mock.Anything, slotID, teacherID, studentID).
		Return(approved, nil).Once()

	sm := tutortime.NewSlotStateMachine(repo)

	result, err := sm.Approve(context.Background(), tutortime.ActorRef{ID: teacherID.String()}, slotID, teacherID, studentID)
	require.NoError(t, err)
	assert.Equal(t, tutortime.SlotApproved, sm.CurrentStatus(result))
	repo.AssertExpectations(t)
}

func TestSlotStateMachineRejectReopensSlot(t *testing.T) {
	repo := &MockAppointments{}
	slotID := uuid.New()
	teacherID := uuid.New()
	studentID := uuid.New()

	reopened := &tutortime.Appointment{
		ID:        slotID,
		TeacherID: teacherID,
	}

	repo.On("Reject", mock.Anything, slotID, teacherID, studentID).
		Return(reopened, nil).Once()

	sm := tutortime.NewSlotStateMachine(repo)

	result, err := sm.Reject(context.Background(), tutortime.ActorRef{ID: teacherID.String()}, slotID, teacherID, studentID)
	require.NoError(t, err)
	assert.Equal(t, tutortime.SlotOpen, sm.CurrentStatus(result))
	assert.Nil(t, result.StudentID)
	repo.AssertExpectations(t)
}

func TestSlotStateMachineApprovePassesThroughOwnershipError(t *testing.T) {
	repo := &MockAppointments{}
	slotID := uuid.New()
	teacherID := uuid.New()
	studentID := uuid.New()

	repo.On("Approve", mock.Anything, slotID, teacherID, studentID).
		Return(nil, tutortime.ErrSlotForbidden).Once()

	sm := tutortime.NewSlotStateMachine(repo)

	_, err := sm.Approve(context.Background(), tutortime.ActorRef{}, slotID, teacherID, studentID)
	require.Error(t, err)
	assert.ErrorIs(t, err, tutortime.ErrSlotForbidden)
	repo.AssertExpectations(t)
}

func TestSlotStateMachineDeleteOpenReportsOneError(t *testing.T) {
	repo := &MockAppointments{}
	slotID := uuid.New()
	teacherID := uuid.New()

	// a booked slot and a missing slot produce the same answer
	repo.On("DeleteOpen", mock.Anything, slotID, teacherID).
		Return(tutortime.ErrSlotNotFound).Once()

	sm := tutortime.NewSlotStateMachine(repo)

	err := sm.DeleteOpen(context.Background(), tutortime.ActorRef{}, slotID, teacherID)
	require.Error(t, err)
	assert.ErrorIs(t, err, tutortime.ErrSlotNotFound)
	repo.AssertExpectations(t)
}

func TestSlotStateMachineDeleteOpenRecordsActivity(t *testing.T) {
	repo := &MockAppointments{}
	sink := &MockActivitySink{}
	slotID := uuid.New()
	teacherID := uuid.New()

	repo.On("DeleteOpen", mock.Anything, slotID, teacherID).
		Return(nil).Once()

	sink.On("Record", mock.Anything, mock.MatchedBy(func(evt tutortime.ActivityEvent) bool {
		return evt.EventType == tutortime.ActivityEventSlotDeleted &&
			evt.SlotID == slotID.String()
	})).Return(nil).Once()

	sm := tutortime.NewSlotStateMachine(repo, tutortime.WithStateMachineActivitySink(sink))

	err := sm.DeleteOpen(context.Background(), tutortime.ActorRef{ID: teacherID.String()}, slotID, teacherID)
	require.NoError(t, err)
	repo.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestSlotStateMachineBeforeHookCanVeto(t *testing.T) {
	repo := &MockAppointments{}
	slotID := uuid.New()
	studentID := uuid.New()

	sm := tutortime.NewSlotStateMachine(repo,
		tutortime.WithStateMachineHookErrorHandler(func(ctx context.Context, phase tutortime.TransitionHookPhase, err error, tc tutortime.TransitionContext) error {
			return err
		}),
	)

	veto := tutortime.ErrNotAdmitted
	_, err := sm.Book(context.Background(), tutortime.ActorRef{}, slotID, studentID,
		tutortime.WithBeforeTransitionHook(func(ctx context.Context, tc tutortime.TransitionContext) error {
			return veto
		}),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, veto)
	repo.AssertNotCalled(t, "Book", mock.Anything, mock.Anything, mock.Anything)
}

func TestSlotStateMachineCurrentStatus(t *testing.T) {
	sm := tutortime.NewSlotStateMachine(&MockAppointments{})
	studentID := uuid.New()

	assert.Equal(t, tutortime.SlotStatus(""), sm.CurrentStatus(nil))
	assert.Equal(t, tutortime.SlotOpen, sm.CurrentStatus(&tutortime.Appointment{}))
	assert.Equal(t, tutortime.SlotRequested, sm.CurrentStatus(&tutortime.Appointment{StudentID: &studentID}))
	assert.Equal(t, tutortime.SlotApproved, sm.CurrentStatus(&tutortime.Appointment{StudentID: &studentID, Approved: true}))
}

package tutortime_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tutortime/tutortime"
)

func TestBookSlotRequiresAdmission(t *testing.T) {
	slots := &MockAppointments{}
	handler := tutortime.NewBookSlotHandler(tutortime.NewSlotStateMachine(slots))

	student := MockIdentity{
		IdentityID:   uuid.New().String(),
		IdentityRole: tutortime.RoleStudent,
		IsAdmitted:   false,
	}

	err := handler.Execute(context.Background(), tutortime.BookSlotMessage{
		SlotID:  uuid.New(),
		Student: student,
		Actor:   tutortime.ActorRef{ID: student.IdentityID, Type: tutortime.RoleStudent},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, tutortime.ErrNotAdmitted)
	slots.AssertNotCalled(t, "Book", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookSlotBindsTheStudent(t *testing.T) {
	slots := &MockAppointments{}
	slotID := uuid.New()
	studentID := uuid.New()

	booked := &tutortime.Appointment{
		ID:        slotID,
		TeacherID: uuid.New(),
		StudentID: &studentID,
	}
	slots.On("Book", mock.Anything, slotID, studentID).Return(booked, nil).Once()

	handler := tutortime.NewBookSlotHandler(tutortime.NewSlotStateMachine(slots))

	student := MockIdentity{
		IdentityID:   studentID.String(),
		IdentityRole: tutortime.RoleStudent,
		IsAdmitted:   true,
	}

	var got *tutortime.Appointment
	err := handler.Execute(context.Background(), tutortime.BookSlotMessage{
		SlotID:  slotID,
		Student: student,
		Actor:   tutortime.ActorRef{ID: student.IdentityID, Type: tutortime.RoleStudent},
		OnResponse: func(slot *tutortime.Appointment) {
			got = slot
		},
	})

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsBoundTo(studentID))
	slots.AssertExpectations(t)
}

func TestBookSlotRaceLoser(t *testing.T) {
	slots := &MockAppointments{}
	slotID := uuid.New()
	studentID := uuid.New()

	// another student won the conditional update first
	slots.On("Book", mock.Anything, slotID, studentID).
		Return(nil, tutortime.ErrSlotTaken).Once()

	handler := tutortime.NewBookSlotHandler(tutortime.NewSlotStateMachine(slots))

	err := handler.Execute(context.Background(), tutortime.BookSlotMessage{
		SlotID: slotID,
		Student: MockIdentity{
			IdentityID:   studentID.String(),
			IdentityRole: tutortime.RoleStudent,
			IsAdmitted:   true,
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, tutortime.ErrSlotTaken)
}

func TestBookSlotMissingIdentity(t *testing.T) {
	slots := &MockAppointments{}
	handler := tutortime.NewBookSlotHandler(tutortime.NewSlotStateMachine(slots))

	err := handler.Execute(context.Background(), tutortime.BookSlotMessage{
		SlotID: uuid.New(),
	})

	assert.ErrorIs(t, err, tutortime.ErrIdentityNotFound)
}

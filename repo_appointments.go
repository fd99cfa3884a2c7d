package tutortime

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BookSlotSQL assigns a student to a slot only while the slot is still
// unclaimed. The WHERE clause is the whole concurrency story: of N racing
// students exactly one UPDATE matches a row, everyone else gets zero rows.
var BookSlotSQL = `UPDATE "appointments" AS "apt"
SET
	"student_id" = ?
WHERE
	"apt"."deleted_at" IS NULL
AND "apt"."student_id" IS NULL
AND (
	"apt"."id" = ?
) RETURNING *;`

// ApproveSlotSQL and RejectSlotSQL both pin the decision to the student the
// teacher reviewed. If the binding changed between the teacher's read and this
// statement, zero rows match and the review fails instead of confirming a
// different student.
var ApproveSlotSQL = `UPDATE "appointments" AS "apt"
SET
	"is_approved" = TRUE,
	"confirmed_at" = ?
WHERE
	"apt"."deleted_at" IS NULL
AND "apt"."teacher_id" = ?
AND "apt"."student_id" = ?
AND "apt"."is_approved" = FALSE
AND (
	"apt"."id" = ?
) RETURNING *;`

var RejectSlotSQL = `UPDATE "appointments" AS "apt"
SET
	"student_id" = NULL,
	"is_approved" = FALSE,
	"confirmed_at" = NULL
WHERE
	"apt"."deleted_at" IS NULL
AND "apt"."teacher_id" = ?
AND "apt"."student_id" = ?
AND "apt"."is_approved" = FALSE
AND (
	"apt"."id" = ?
) RETURNING *;`

// DeleteOpenSlotSQL soft-deletes a slot that nobody has requested yet. A slot
// that was booked between the caller's read and this statement simply stops
// matching, exactly like a slot that never existed.
var DeleteOpenSlotSQL = `UPDATE "appointments" AS "apt"
SET
	"deleted_at" = ?
WHERE
	"apt"."deleted_at" IS NULL
AND "apt"."teacher_id" = ?
AND "apt"."student_id" IS NULL
AND (
	"apt"."id" = ?
) RETURNING *;`

type Appointments interface {
	repository.Repository[*Appointment]

	Schedule(ctx context.Context, record *Appointment) (*Appointment, error)
	ScheduleTx(ctx context.Context, tx bun.IDB, record *Appointment) (*Appointment, error)

	Book(ctx context.Context, slotID, studentID uuid.UUID) (*Appointment, error)
	BookTx(ctx context.Context, tx bun.IDB, slotID, studentID uuid.UUID) (*Appointment, error)
	Approve(ctx context.Context, slotID, teacherID, studentID uuid.UUID) (*Appointment, error)
	ApproveTx(ctx context.Context, tx bun.IDB, slotID, teacherID, studentID uuid.UUID) (*Appointment, error)
	Reject(ctx context.Context, slotID, teacherID, studentID uuid.UUID) (*Appointment, error)
	RejectTx(ctx context.Context, tx bun.IDB, slotID, teacherID, studentID uuid.UUID) (*Appointment, error)
	DeleteOpen(ctx context.Context, slotID, teacherID uuid.UUID) error
	DeleteOpenTx(ctx context.Context, tx bun.IDB, slotID, teacherID uuid.UUID) error

	ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*Appointment, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Appointment, error)
	ListAll(ctx context.Context) ([]*Appointment, error)

	DeleteByTeacherEmailTx(ctx context.Context, tx bun.IDB, email string) error
}

type appointments struct {
	repository.Repository[*Appointment]
	db  *bun.DB
	now func() time.Time
}

var (
	_ Appointments                        = (*appointments)(nil)
	_ repository.Repository[*Appointment] = (*appointments)(nil)
)

type AppointmentsOption func(*appointments)

// WithAppointmentsClock injects a custom clock (useful for tests).
func WithAppointmentsClock(clock func() time.Time) AppointmentsOption {
	return func(a *appointments) {
		if clock != nil {
			a.now = clock
		}
	}
}

func NewAppointmentsRepository(db *bun.DB, opts ...AppointmentsOption) Appointments {
	repo := repository.NewRepository[*Appointment](db, repository.ModelHandlers[*Appointment]{
		NewRecord: func() *Appointment { return &Appointment{} },
		GetID: func(a *Appointment) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Appointment, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
	})

	slots := &appointments{
		Repository: repo,
		db:         db,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(slots)
		}
	}

	return slots
}

func (a *appointments) Schedule(ctx context.Context, record *Appointment) (*Appointment, error) {
	return a.ScheduleTx(ctx, a.db, record)
}

func (a *appointments) ScheduleTx(ctx context.Context, tx bun.IDB, record *Appointment) (*Appointment, error) {
	if record != nil {
		if record.ID == uuid.Nil {
			record.ID = uuid.New()
		}
		record.TeacherEmail = NormalizeEmail(record.TeacherEmail)
		record.StudentID = nil
		record.Approved = false
	}
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *appointments) Book(ctx context.Context, slotID, studentID uuid.UUID) (*Appointment, error) {
	return a.BookTx(ctx, a.db, slotID, studentID)
}

func (a *appointments) BookTx(ctx context.Context, tx bun.IDB, slotID, studentID uuid.UUID) (*Appointment, error) {
	res, err := a.Repository.RawTx(ctx, tx, BookSlotSQL, studentID.String(), slotID.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, a.classifyBookFailure(ctx, tx, slotID)
	}

	return res[0], nil
}

func (a *appointments) Approve(ctx context.Context, slotID, teacherID, studentID uuid.UUID) (*Appointment, error) {
	return a.ApproveTx(ctx, a.db, slotID, teacherID, studentID)
}

func (a *appointments) ApproveTx(ctx context.Context, tx bun.IDB, slotID, teacherID, studentID uuid.UUID) (*Appointment, error) {
	res, err := a.Repository.RawTx(ctx, tx, ApproveSlotSQL, a.now(), teacherID.String(), studentID.String(), slotID.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, a.classifyReviewFailure(ctx, tx, slotID, teacherID)
	}

	return res[0], nil
}

func (a *appointments) Reject(ctx context.Context, slotID, teacherID, studentID uuid.UUID) (*Appointment, error) {
	return a.RejectTx(ctx, a.db, slotID, teacherID, studentID)
}

func (a *appointments) RejectTx(ctx context.Context, tx bun.IDB, slotID, teacherID, studentID uuid.UUID) (*Appointment, error) {
	res, err := a.Repository.RawTx(ctx, tx, RejectSlotSQL, teacherID.String(), studentID.String(), slotID.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, a.classifyReviewFailure(ctx, tx, slotID, teacherID)
	}

	return res[0], nil
}

func (a *appointments) DeleteOpen(ctx context.Context, slotID, teacherID uuid.UUID) error {
	return a.DeleteOpenTx(ctx, a.db, slotID, teacherID)
}

// DeleteOpenTx intentionally does not classify a zero-row outcome: missing,
// foreign, and already requested slots all come back as ErrSlotNotFound.
func (a *appointments) DeleteOpenTx(ctx context.Context, tx bun.IDB, slotID, teacherID uuid.UUID) error {
	res, err := a.Repository.RawTx(ctx, tx, DeleteOpenSlotSQL, a.now(), teacherID.String(), slotID.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return ErrSlotNotFound.WithMetadata(map[string]any{
			"id": slotID.String(),
		})
	}

	return nil
}

func (a *appointments) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*Appointment, error) {
	records := []*Appointment{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.teacher_id = ?", teacherID.String()).
		Order("apt.scheduled_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *appointments) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*Appointment, error) {
	records := []*Appointment{}
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.student_id = ?", studentID.String()).
		Order("apt.scheduled_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *appointments) ListAll(ctx context.Context) ([]*Appointment, error) {
	records := []*Appointment{}
	err := a.db.NewSelect().
		Model(&records).
		Order("apt.scheduled_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *appointments) DeleteByTeacherEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	_, err := tx.NewDelete().
		Model((*Appointment)(nil)).
		Where("?TableAlias.teacher_email = ?", NormalizeEmail(email)).
		Exec(ctx)
	return err
}

// classifyBookFailure figures out why a booking matched zero rows. The slot's
// state may keep moving under us; the answer reflects whatever it looked like
// at the follow-up read.
func (a *appointments) classifyBookFailure(ctx context.Context, tx bun.IDB, slotID uuid.UUID) error {
	slot, err := a.Repository.GetByIDTx(ctx, tx, slotID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrSlotNotFound.WithMetadata(map[string]any{
				"id": slotID.String(),
			})
		}
		return err
	}

	if slot.StudentID != nil {
		return ErrSlotTaken.WithMetadata(map[string]any{
			"id": slotID.String(),
		})
	}

	return ErrSlotNotFound.WithMetadata(map[string]any{
		"id": slotID.String(),
	})
}

func (a *appointments) classifyReviewFailure(ctx context.Context, tx bun.IDB, slotID, teacherID uuid.UUID) error {
	slot, err := a.Repository.GetByIDTx(ctx, tx, slotID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrSlotNotFound.WithMetadata(map[string]any{
				"id": slotID.String(),
			})
		}
		return err
	}

	if !slot.IsOwnedBy(teacherID) {
		return ErrSlotForbidden.WithMetadata(map[string]any{
			"id": slotID.String(),
		})
	}

	return ErrInvalidTransition.WithMetadata(map[string]any{
		"id":     slotID.String(),
		"status": slot.Status(),
	})
}

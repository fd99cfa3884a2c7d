package tutortime

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole = string

const (
	// RoleStudent can browse teachers, book slots, and message once admitted
	RoleStudent UserRole = "student"
	// RoleTeacher publishes slots and reviews bookings
	RoleTeacher UserRole = "teacher"
	// RoleAdmin manages teacher accounts and student admissions
	RoleAdmin UserRole = "admin"
)

// User is the identity model. Email is the identity key and is stored lower
// cased. PasswordHash is never serialized outward.
type User struct {
	bun.BaseModel  `bun:"table:users,alias:usr"`
	ID             uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role           UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Name           string     `bun:"name,notnull" json:"name,omitempty"`
	Email          string     `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash   string     `bun:"password_hash" json:"-"`
	Admitted       bool       `bun:"is_admitted" json:"is_admitted"`
	Age            int        `bun:"age,nullzero" json:"age,omitempty"`
	Department     string     `bun:"department,nullzero" json:"department,omitempty"`
	Subject        string     `bun:"subject,nullzero" json:"subject,omitempty"`
	Phone          string     `bun:"phone_number,nullzero" json:"phone_number,omitempty"`
	LoginAttempts  int        `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt *time.Time `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt     *time.Time `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	CreatedAt      *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt      *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt      *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// NormalizeEmail lower cases and trims an email so lookups are case insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsPendingAdmission reports whether the user is a student awaiting approval.
func (u *User) IsPendingAdmission() bool {
	return u.Role == RoleStudent && !u.Admitted
}

// SlotStatus is the lifecycle state of an appointment slot
type SlotStatus = string

const (
	// SlotOpen has no student bound and can be booked or deleted
	SlotOpen SlotStatus = "open"
	// SlotRequested has a student bound and awaits the teacher's review
	SlotRequested SlotStatus = "requested"
	// SlotApproved is a confirmed booking
	SlotApproved SlotStatus = "approved"
)

// Appointment is a teacher published bookable time slot. The booking state is
// stored as the (student_id, is_approved) pair; Status derives the lifecycle
// state from it.
type Appointment struct {
	bun.BaseModel `bun:"table:appointments,alias:apt"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TeacherID     uuid.UUID  `bun:"teacher_id,notnull,type:uuid" json:"teacher_id,omitempty"`
	TeacherEmail  string     `bun:"teacher_email,notnull" json:"teacher_email,omitempty"`
	StudentID     *uuid.UUID `bun:"student_id,nullzero,type:uuid" json:"student_id,omitempty"`
	Subject       string     `bun:"subject,notnull" json:"subject,omitempty"`
	Description   string     `bun:"description,nullzero" json:"description,omitempty"`
	ScheduledAt   time.Time  `bun:"scheduled_at,notnull" json:"scheduled_at,omitempty"`
	Approved      bool       `bun:"is_approved" json:"is_approved"`
	ConfirmedAt   *time.Time `bun:"confirmed_at,nullzero" json:"confirmed_at,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Status derives the slot lifecycle state from the stored booking fields.
func (a *Appointment) Status() SlotStatus {
	switch {
	case a.StudentID == nil:
		return SlotOpen
	case a.Approved:
		return SlotApproved
	default:
		return SlotRequested
	}
}

// IsOwnedBy reports whether teacherID published this slot.
func (a *Appointment) IsOwnedBy(teacherID uuid.UUID) bool {
	return a.TeacherID == teacherID
}

// IsBoundTo reports whether studentID currently holds the booking.
func (a *Appointment) IsBoundTo(studentID uuid.UUID) bool {
	return a.StudentID != nil && *a.StudentID == studentID
}

// Message is a direct message between two identities, addressed by email.
type Message struct {
	bun.BaseModel `bun:"table:messages,alias:msg"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	From          string     `bun:"from_email,notnull" json:"from,omitempty"`
	To            string     `bun:"to_email,notnull" json:"to,omitempty"`
	Content       string     `bun:"content,notnull" json:"content,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Involves reports whether email is the sender or the recipient.
func (m *Message) Involves(email string) bool {
	email = NormalizeEmail(email)
	return m.From == email || m.To == email
}

package tutortime_test

import (
	"context"
	"database/sql"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/tutortime/tutortime"
	"github.com/uptrace/bun"
)

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// MockIdentity implements tutortime.Identity
type MockIdentity struct {
	IdentityID    string
	IdentityName  string
	IdentityEmail string
	IdentityRole  tutortime.UserRole
	IsAdmitted    bool
}

func (m MockIdentity) ID() string               { return m.IdentityID }
func (m MockIdentity) Name() string             { return m.IdentityName }
func (m MockIdentity) Email() string            { return m.IdentityEmail }
func (m MockIdentity) Role() tutortime.UserRole { return m.IdentityRole }
func (m MockIdentity) Admitted() bool           { return m.IsAdmitted }

// MockUsers implements the subset of tutortime.Users the tests exercise. The
// embedded interface covers the rest and panics when something unexpected
// gets called.
type MockUsers struct {
	mock.Mock
	tutortime.Users
}

var _ tutortime.Users = (*MockUsers)(nil)

func (m *MockUsers) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*tutortime.User, error) {
	args := m.Called(ctx, identifier)
	user, _ := args.Get(0).(*tutortime.User)
	return user, args.Error(1)
}

func (m *MockUsers) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*tutortime.User, error) {
	args := m.Called(ctx, tx, identifier)
	user, _ := args.Get(0).(*tutortime.User)
	return user, args.Error(1)
}

func (m *MockUsers) TrackAttemptedLogin(ctx context.Context, user *tutortime.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) TrackSuccessfulLogin(ctx context.Context, user *tutortime.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUsers) Register(ctx context.Context, user *tutortime.User) (*tutortime.User, error) {
	args := m.Called(ctx, user)
	record, _ := args.Get(0).(*tutortime.User)
	return record, args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *tutortime.User) (*tutortime.User, error) {
	args := m.Called(ctx, tx, user)
	record, _ := args.Get(0).(*tutortime.User)
	return record, args.Error(1)
}

func (m *MockUsers) ListByRole(ctx context.Context, role tutortime.UserRole) ([]*tutortime.User, error) {
	args := m.Called(ctx, role)
	records, _ := args.Get(0).([]*tutortime.User)
	return records, args.Error(1)
}

func (m *MockUsers) ListPendingStudents(ctx context.Context) ([]*tutortime.User, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*tutortime.User)
	return records, args.Error(1)
}

func (m *MockUsers) ApproveAdmission(ctx context.Context, id uuid.UUID) (*tutortime.User, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*tutortime.User)
	return record, args.Error(1)
}

func (m *MockUsers) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUsers) Remove(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) RemoveTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// MockAppointments implements the slot specific surface of
// tutortime.Appointments.
type MockAppointments struct {
	mock.Mock
	tutortime.Appointments
}

var _ tutortime.Appointments = (*MockAppointments)(nil)

func (m *MockAppointments) Schedule(ctx context.Context, record *tutortime.Appointment) (*tutortime.Appointment, error) {
	args := m.Called(ctx, record)
	slot, _ := args.Get(0).(*tutortime.Appointment)
	return slot, args.Error(1)
}

func (m *MockAppointments) Book(ctx context.Context, slotID, studentID uuid.UUID) (*tutortime.Appointment, error) {
	args := m.Called(ctx, slotID, studentID)
	slot, _ := args.Get(0).(*tutortime.Appointment)
	return slot, args.Error(1)
}

func (m *MockAppointments) Approve(ctx context.Context, slotID, teacherID, studentID uuid.UUID) (*tutortime.Appointment, error) {
	args := m.Called(ctx, slotID, teacherID, studentID)
	slot, _ := args.Get(0).(*tutortime.Appointment)
	return slot, args.Error(1)
}

func (m *MockAppointments) Reject(ctx context.Context, slotID, teacherID, studentID uuid.UUID) (*tutortime.Appointment, error) {
	args := m.Called(ctx, slotID, teacherID, studentID)
	slot, _ := args.Get(0).(*tutortime.Appointment)
	return slot, args.Error(1)
}

func (m *MockAppointments) DeleteOpen(ctx context.Context, slotID, teacherID uuid.UUID) error {
	args := m.Called(ctx, slotID, teacherID)
	return args.Error(0)
}

func (m *MockAppointments) ListByTeacher(ctx context.Context, teacherID uuid.UUID) ([]*tutortime.Appointment, error) {
	args := m.Called(ctx, teacherID)
	slots, _ := args.Get(0).([]*tutortime.Appointment)
	return slots, args.Error(1)
}

func (m *MockAppointments) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*tutortime.Appointment, error) {
	args := m.Called(ctx, studentID)
	slots, _ := args.Get(0).([]*tutortime.Appointment)
	return slots, args.Error(1)
}

func (m *MockAppointments) ListAll(ctx context.Context) ([]*tutortime.Appointment, error) {
	args := m.Called(ctx)
	slots, _ := args.Get(0).([]*tutortime.Appointment)
	return slots, args.Error(1)
}

func (m *MockAppointments) DeleteByTeacherEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	args := m.Called(ctx, tx, email)
	return args.Error(0)
}

// MockMessages implements the mailbox surface of tutortime.Messages.
type MockMessages struct {
	mock.Mock
	tutortime.Messages
}

var _ tutortime.Messages = (*MockMessages)(nil)

func (m *MockMessages) Send(ctx context.Context, record *tutortime.Message) (*tutortime.Message, error) {
	args := m.Called(ctx, record)
	msg, _ := args.Get(0).(*tutortime.Message)
	return msg, args.Error(1)
}

func (m *MockMessages) Inbox(ctx context.Context, email string) ([]*tutortime.Message, error) {
	args := m.Called(ctx, email)
	msgs, _ := args.Get(0).([]*tutortime.Message)
	return msgs, args.Error(1)
}

func (m *MockMessages) Sent(ctx context.Context, email string) ([]*tutortime.Message, error) {
	args := m.Called(ctx, email)
	msgs, _ := args.Get(0).([]*tutortime.Message)
	return msgs, args.Error(1)
}

func (m *MockMessages) DeleteOwned(ctx context.Context, id uuid.UUID, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

func (m *MockMessages) DeleteByEmailTx(ctx context.Context, tx bun.IDB, email string) error {
	args := m.Called(ctx, tx, email)
	return args.Error(0)
}

// MockRepositoryManager implements tutortime.RepositoryManager
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

// RunInTx runs the callback against a zero transaction handle so command
// handlers can be tested without a database. Repository mocks accept any
// bun.IDB argument, the handle is never dereferenced.
func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	var tx bun.Tx
	return f(ctx, tx)
}

func (m *MockRepositoryManager) Users() tutortime.Users {
	args := m.Called()
	return args.Get(0).(tutortime.Users)
}

func (m *MockRepositoryManager) Appointments() tutortime.Appointments {
	args := m.Called()
	return args.Get(0).(tutortime.Appointments)
}

func (m *MockRepositoryManager) Messages() tutortime.Messages {
	args := m.Called()
	return args.Get(0).(tutortime.Messages)
}

// MockActivitySink implements tutortime.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event tutortime.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockMailer implements tutortime.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	args := m.Called(ctx, to, subject, htmlBody)
	return args.Error(0)
}

// MockIdentityProvider implements tutortime.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (tutortime.Identity, error) {
	args := m.Called(ctx, identifier, password)
	identity, _ := args.Get(0).(tutortime.Identity)
	return identity, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (tutortime.Identity, error) {
	args := m.Called(ctx, identifier)
	identity, _ := args.Get(0).(tutortime.Identity)
	return identity, args.Error(1)
}

// testConfig is a plain Config stub with sane defaults for tests.
type testConfig struct {
	signingKey      string
	resetSigningKey string
	tokenExpiration int
	resetDuration   int
}

func newTestConfig() testConfig {
	return testConfig{
		signingKey:      "test-signing-key",
		resetSigningKey: "test-reset-signing-key",
		tokenExpiration: 24,
		resetDuration:   10,
	}
}

func (c testConfig) GetSigningKey() string      { return c.signingKey }
func (c testConfig) GetResetSigningKey() string { return c.resetSigningKey }
func (c testConfig) GetSigningMethod() string   { return "HS256" }
func (c testConfig) GetContextKey() string      { return "user" }
func (c testConfig) GetTokenExpiration() int    { return c.tokenExpiration }
func (c testConfig) GetResetTokenDuration() int { return c.resetDuration }
func (c testConfig) GetTokenLookup() string     { return "header:Authorization" }
func (c testConfig) GetAuthScheme() string      { return "Bearer" }
func (c testConfig) GetIssuer() string          { return "test-issuer" }
func (c testConfig) GetAudience() []string      { return []string{"test:audience"} }

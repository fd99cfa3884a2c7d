package tutortime

import (
	"github.com/goliatone/go-router"
)

// RouteDeps carries everything the HTTP surface needs wired in.
type RouteDeps struct {
	Logger Logger
	Config Config
	Repo   RepositoryManager
	Auther Authenticator
	Slots  SlotStateMachine
	Mailer Mailer
}

// RegisterRoutes mounts the whole API. Token middleware gates everything
// past the auth endpoints; role requirements are enforced per group.
func RegisterRoutes[T any](app router.Router[T], deps RouteDeps) {
	logger := deps.Logger
	if logger == nil {
		logger = defLogger{}
	}

	sessions := deps.Auther.TokenService()

	anyRole := Protected(deps.Config, sessions)
	adminOnly := Protected(deps.Config, sessions, RoleAdmin)
	teacherOnly := Protected(deps.Config, sessions, RoleTeacher)
	studentOnly := Protected(deps.Config, sessions, RoleStudent)

	authCtrl := NewAuthController(
		WithControllerRepo(deps.Repo),
		WithControllerAuther(deps.Auther),
		WithControllerMailer(deps.Mailer),
		WithControllerConfig(deps.Config),
		WithControllerLogger(logger),
	)

	app.Post("/api/auth/register", authCtrl.Register).SetName("auth.register")
	app.Post("/api/auth/login", authCtrl.Login).SetName("auth.login")
	app.Post("/api/auth/forgot-password", authCtrl.ForgotPassword).SetName("auth.pwd-forgot")
	app.Post("/api/auth/reset-password", authCtrl.ResetPassword).SetName("auth.pwd-reset")
	app.Post("/api/auth/update-password", authCtrl.UpdatePassword, anyRole).SetName("auth.pwd-update")
	app.Get("/api/me", authCtrl.Me, anyRole).SetName("auth.me")

	adminCtrl := NewAdminController(deps.Repo, deps.Mailer, deps.Config).
		WithLogger(logger)

	app.Post("/api/admin/teachers", adminCtrl.CreateTeacher, adminOnly).SetName("admin.teachers.create")
	app.Get("/api/admin/teachers", adminCtrl.ListTeachers, adminOnly).SetName("admin.teachers.list")
	app.Get("/api/admin/teachers/:id", adminCtrl.GetTeacher, adminOnly).SetName("admin.teachers.get")
	app.Put("/api/admin/teachers/:id", adminCtrl.UpdateTeacher, adminOnly).SetName("admin.teachers.update")
	app.Delete("/api/admin/teachers/:id", adminCtrl.DeleteTeacher, adminOnly).SetName("admin.teachers.delete")

	app.Get("/api/admin/appointments", adminCtrl.ListAppointments, adminOnly).SetName("admin.appointments.list")

	app.Get("/api/admin/admissions", adminCtrl.ListPendingStudents, adminOnly).SetName("admin.admissions.list")
	app.Post("/api/admin/admissions/:id/approve", adminCtrl.ApproveStudent, adminOnly).SetName("admin.admissions.approve")
	app.Delete("/api/admin/admissions/:id", adminCtrl.RejectStudent, adminOnly).SetName("admin.admissions.reject")
	app.Delete("/api/admin/students/:id", adminCtrl.DeleteStudent, adminOnly).SetName("admin.students.delete")

	teacherCtrl := NewTeacherController(deps.Repo, deps.Slots, deps.Config).
		WithLogger(logger)

	app.Post("/api/teacher/slots", teacherCtrl.CreateSlot, teacherOnly).SetName("teacher.slots.create")
	app.Get("/api/teacher/slots", teacherCtrl.ListSlots, teacherOnly).SetName("teacher.slots.list")
	app.Post("/api/teacher/slots/:id/review", teacherCtrl.ReviewBooking, teacherOnly).SetName("teacher.slots.review")
	app.Delete("/api/teacher/slots/:id", teacherCtrl.DeleteSlot, teacherOnly).SetName("teacher.slots.delete")

	studentCtrl := NewStudentController(deps.Repo, deps.Slots, deps.Config).
		WithLogger(logger)

	app.Get("/api/teachers", studentCtrl.ListTeachers, anyRole).SetName("teachers.list")
	app.Get("/api/teachers/:id/slots", studentCtrl.ListTeacherSlots, anyRole).SetName("teachers.slots.list")
	app.Post("/api/slots/:id/book", studentCtrl.BookSlot, studentOnly).SetName("slots.book")
	app.Get("/api/student/appointments", studentCtrl.ListAppointments, studentOnly).SetName("student.appointments")
	app.Post("/api/student/profile", studentCtrl.UpdateProfile, studentOnly).SetName("student.profile.update")

	messageCtrl := NewMessageController(deps.Repo, deps.Config).
		WithLogger(logger)

	app.Post("/api/messages", messageCtrl.Send, anyRole).SetName("messages.send")
	app.Get("/api/messages/inbox", messageCtrl.Inbox, anyRole).SetName("messages.inbox")
	app.Get("/api/messages/sent", messageCtrl.Sent, anyRole).SetName("messages.sent")
	app.Delete("/api/messages/:id", messageCtrl.Delete, anyRole).SetName("messages.delete")
}

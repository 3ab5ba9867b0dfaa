package rest

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/activity"
	"github.com/frahmantamala/hr-management/internal/attendance"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/dashboard"
	"github.com/frahmantamala/hr-management/internal/discussion"
	"github.com/frahmantamala/hr-management/internal/employee"
	"github.com/frahmantamala/hr-management/internal/fee"
	"github.com/frahmantamala/hr-management/internal/interview"
	"github.com/frahmantamala/hr-management/internal/leave"
	"github.com/frahmantamala/hr-management/internal/project"
	"github.com/frahmantamala/hr-management/internal/transport/middleware"
	"github.com/frahmantamala/hr-management/internal/transport/swagger"
	"github.com/go-chi/chi"
)

// Handlers holds every module handler. A nil handler leaves its routes unmounted.
type Handlers struct {
	Auth       *auth.Handler
	Employee   *employee.Handler
	Attendance *attendance.Handler
	Leave      *leave.Handler
	Project    *project.Handler
	Interview  *interview.Handler
	Discussion *discussion.Handler
	Fee        *fee.Handler
	Activity   *activity.Handler
	Dashboard  *dashboard.Handler
	Realtime   http.Handler
	Health     *HealthHandler
}

type Options struct {
	AllowedOrigins string
	LoginLimiter   *middleware.IPRateLimiter
	TrustedProxies []*net.IPNet
	Spec           *swagger.Spec
}

var (
	staffPolicy   = auth.AnyOf(auth.RoleAdmin, auth.RoleHR)
	managerPolicy = auth.AnyOf(auth.RoleAdmin, auth.RoleHR, auth.RoleProjectManager)
	projectPolicy = auth.AnyOf(auth.RoleAdmin, auth.RoleProjectManager)
)

// RegisterAllRoutes mounts the same API twice: /api for same-origin browsers
// and /api/mobile behind CORS with the mobile variant tagged on the context.
func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) {
	rbac := auth.NewRBACAuthorization(logger)

	router.Use(middleware.RequestID)
	router.Use(middleware.TrustedRealIP(opts.TrustedProxies))
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if opts.Spec != nil {
		router.Handle(swagger.SpecRoute, opts.Spec)
		router.Handle("/swagger/*", swagger.Handler())
	}
	if h.Realtime != nil {
		router.Handle("/ws", h.Realtime)
	}

	router.Route("/api/mobile", func(r chi.Router) {
		r.Use(middleware.CORS(opts.AllowedOrigins))
		r.Use(middleware.ClientVariant(internal.VariantMobile))
		mountAPI(r, h, opts, rbac)
	})
	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.ClientVariant(internal.VariantBrowser))
		if h.Health != nil {
			r.Get("/health", h.Health.health)
			r.Get("/ping", h.Health.ping)
		}
		mountAPI(r, h, opts, rbac)
	})
}

func mountAPI(r chi.Router, h Handlers, opts Options, rbac *auth.RBACAuthorization) {
	if h.Auth == nil {
		return
	}

	r.Route("/auth", func(ar chi.Router) {
		login := http.Handler(http.HandlerFunc(h.Auth.Login))
		if opts.LoginLimiter != nil {
			login = opts.LoginLimiter.Middleware(login)
		}
		ar.Method(http.MethodPost, "/login", login)
		ar.Post("/refresh", h.Auth.RefreshToken)
		ar.Post("/logout", h.Auth.Logout)
		ar.With(h.Auth.AuthMiddleware).Get("/me", h.Auth.Me)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.Auth.AuthMiddleware)

		if h.Realtime != nil {
			pr.Handle("/ws", h.Realtime)
		}

		if h.Employee != nil {
			eh := h.Employee
			pr.Route("/employees", func(er chi.Router) {
				er.Get("/me", eh.Me)
				er.Put("/me", eh.UpdateMe)
				er.With(rbac.Require(staffPolicy)).Post("/", eh.Register)
				er.With(rbac.Require(managerPolicy)).Get("/", eh.List)
				er.Get("/{id}", eh.Get)
				er.With(rbac.Require(staffPolicy)).Put("/{id}", eh.Update)
				er.With(rbac.Require(staffPolicy)).Patch("/{id}/active", eh.SetActive)
				er.With(rbac.RequireRoles(auth.RoleAdmin)).Delete("/{id}", eh.Delete)
			})
		}

		if h.Attendance != nil {
			ah := h.Attendance
			pr.Route("/attendance", func(atr chi.Router) {
				atr.Post("/clock-in", ah.ClockIn)
				atr.Post("/clock-out", ah.ClockOut)
				atr.Get("/today", ah.Today)
				atr.Get("/me", ah.ListMine)
				atr.With(rbac.Require(staffPolicy)).Get("/", ah.List)
			})
		}

		if h.Leave != nil {
			lh := h.Leave
			pr.Route("/leave", func(lr chi.Router) {
				lr.Get("/types", lh.ListLeaveTypes)
				lr.With(rbac.Require(staffPolicy)).Post("/types", lh.CreateLeaveType)
				lr.Get("/balances/me", lh.MyBalances)
				lr.With(rbac.Require(staffPolicy)).Get("/balances/{employeeId}", lh.EmployeeBalances)
				lr.With(rbac.Require(staffPolicy)).Put("/balances", lh.SetBalance)

				lr.Post("/applications", lh.Apply)
				lr.Get("/applications/me", lh.ListMine)
				lr.With(rbac.Require(managerPolicy)).Get("/applications", lh.ListAll)
				lr.Get("/applications/{id}", lh.Get)
				lr.With(rbac.RequireMinimumRole(auth.RoleProjectManager)).Patch("/applications/{id}/approve", lh.Approve)
				lr.With(rbac.RequireMinimumRole(auth.RoleProjectManager)).Patch("/applications/{id}/reject", lh.Reject)
				lr.Patch("/applications/{id}/cancel", lh.Cancel)
			})
		}

		if h.Project != nil {
			ph := h.Project
			pr.Route("/projects", func(prr chi.Router) {
				prr.Get("/", ph.ListProjects)
				prr.With(rbac.Require(projectPolicy)).Post("/", ph.CreateProject)
				prr.Get("/{id}", ph.GetProject)
				prr.With(rbac.Require(projectPolicy)).Put("/{id}", ph.UpdateProject)
				prr.Get("/{id}/tasks", ph.ListTasks)
				prr.With(rbac.Require(projectPolicy)).Post("/{id}/tasks", ph.CreateTask)
			})
			pr.Route("/tasks", func(tr chi.Router) {
				tr.Get("/me", ph.MyTasks)
				tr.Patch("/{taskId}", ph.UpdateTask)
				tr.With(rbac.Require(projectPolicy)).Delete("/{taskId}", ph.DeleteTask)
			})
		}

		if h.Interview != nil {
			ih := h.Interview
			pr.Route("/interviews", func(ir chi.Router) {
				ir.Get("/", ih.List)
				ir.With(rbac.Require(interview.RecruiterPolicy)).Post("/", ih.Schedule)
				ir.Get("/{id}", ih.Get)
				ir.Post("/{id}/feedback", ih.RecordFeedback)
				ir.With(rbac.Require(interview.RecruiterPolicy)).Patch("/{id}/cancel", ih.Cancel)
			})
		}

		if h.Discussion != nil {
			dh := h.Discussion
			pr.Route("/discussions", func(dr chi.Router) {
				dr.Get("/", dh.ListChannels)
				dr.With(rbac.Require(discussion.ModeratorPolicy)).Post("/", dh.CreateChannel)
				dr.Get("/{id}", dh.GetChannel)
				dr.Post("/{id}/members", dh.AddMembers)
				dr.Get("/{id}/messages", dh.ListMessages)
				dr.Post("/{id}/messages", dh.PostMessage)
			})
		}

		if h.Fee != nil {
			fh := h.Fee
			pr.Route("/fees", func(fr chi.Router) {
				fr.Get("/me", fh.ListMine)
				fr.With(rbac.Require(fee.BillingPolicy)).Get("/", fh.List)
				fr.With(rbac.Require(fee.BillingPolicy)).Post("/", fh.Create)
				fr.Get("/{id}", fh.Get)
				fr.With(rbac.Require(fee.BillingPolicy)).Post("/{id}/payments", fh.RecordPayment)
			})
		}

		if h.Activity != nil {
			pr.With(rbac.RequireRoles(auth.RoleAdmin)).Get("/activity", h.Activity.List)
		}

		if h.Dashboard != nil {
			pr.With(rbac.Require(staffPolicy)).Get("/dashboard", h.Dashboard.Summary)
		}
	})
}

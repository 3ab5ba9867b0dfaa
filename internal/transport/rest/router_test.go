package rest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/auth"
	"github.com/frahmantamala/hr-management/internal/dashboard"
	"github.com/frahmantamala/hr-management/internal/transport/middleware"
	"github.com/frahmantamala/hr-management/internal/transport/rest"
	"github.com/frahmantamala/hr-management/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubAuth struct {
	users       map[string]*auth.User
	lastVariant internal.Variant
}

func (s *stubAuth) Login(_ context.Context, dto auth.LoginDTO, variant internal.Variant) (*auth.Session, error) {
	s.lastVariant = variant
	return &auth.Session{
		TokenPair:    auth.TokenPair{AccessToken: "a", RefreshToken: "r"},
		SessionToken: "m",
		User:         &auth.User{ID: 1, Email: dto.Email, Role: auth.RoleEmployee},
	}, nil
}

func (s *stubAuth) ResolveUser(_ context.Context, token string) (*auth.User, error) {
	if u, ok := s.users[token]; ok {
		return u, nil
	}
	return nil, internal.ErrSessionExpired
}

func (s *stubAuth) RefreshTokens(context.Context, string) (*auth.TokenPair, error) {
	return nil, errors.New("not used")
}

func (s *stubAuth) ValidateAccessToken(string) (*auth.Claims, error) {
	return nil, errors.New("not used")
}

type stubDashboard struct{}

func (stubDashboard) Summary(context.Context) (*dashboard.Summary, error) {
	return &dashboard.Summary{Date: "2026-01-05", ActiveEmployees: 3}, nil
}

var _ = Describe("Router", func() {
	var (
		authSvc *stubAuth
		router  *chi.Mux
	)

	BeforeEach(func() {
		authSvc = &stubAuth{users: map[string]*auth.User{
			"intern": {ID: 10, Role: auth.RoleIntern, IsActive: true},
			"hr":     {ID: 11, Role: auth.RoleHR, IsActive: true},
		}}
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Auth:      auth.NewHandler(authSvc),
			Dashboard: dashboard.NewHandler(stubDashboard{}),
			Health:    rest.NewHealthHandler(map[string]rest.Checker{"database": func(context.Context) error { return nil }}),
		}, rest.Options{
			AllowedOrigins: "*",
			LoginLimiter:   middleware.NewIPRateLimiter(0.001, 1, logger.Discard()),
		}, logger.Discard())
	})

	serve := func(method, path, token string, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	It("requires a bearer token on protected routes", func() {
		Expect(serve(http.MethodGet, "/api/dashboard", "", "").Code).To(Equal(http.StatusUnauthorized))
	})

	It("reports a superseded session as 401 with sessionExpired", func() {
		rec := serve(http.MethodGet, "/api/dashboard", "stale", "")
		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(rec.Body.String()).To(ContainSubstring("sessionExpired"))
	})

	It("rejects roles outside the allow-list with 403", func() {
		Expect(serve(http.MethodGet, "/api/dashboard", "intern", "").Code).To(Equal(http.StatusForbidden))
	})

	It("serves the same handler on both mounts", func() {
		Expect(serve(http.MethodGet, "/api/dashboard", "hr", "").Code).To(Equal(http.StatusOK))
		rec := serve(http.MethodGet, "/api/mobile/dashboard", "hr", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("*"))
	})

	It("adds CORS only to the mobile mount", func() {
		rec := serve(http.MethodOptions, "/api/mobile/auth/login", "", "")
		Expect(rec.Code).To(Equal(http.StatusNoContent))

		rec = serve(http.MethodGet, "/api/dashboard", "hr", "")
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(BeEmpty())
	})

	It("tags login with the variant of the mount", func() {
		rec := serve(http.MethodPost, "/api/mobile/auth/login", "", `{"email":"a@b.c","password":"secret"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(authSvc.lastVariant).To(Equal(internal.VariantMobile))
	})

	It("rate limits login per client address", func() {
		Expect(serve(http.MethodPost, "/api/auth/login", "", `{"email":"a@b.c","password":"x"}`).Code).To(Equal(http.StatusOK))
		Expect(serve(http.MethodPost, "/api/auth/login", "", `{"email":"a@b.c","password":"x"}`).Code).To(Equal(http.StatusTooManyRequests))
	})

	It("exposes health and ping", func() {
		Expect(serve(http.MethodGet, "/api/ping", "", "").Code).To(Equal(http.StatusOK))
		rec := serve(http.MethodGet, "/api/health", "", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(rec.Body.String()).To(ContainSubstring(`"database"`))
	})
})

var _ = Describe("HealthHandler", func() {
	It("returns 503 when a dependency fails", func() {
		router := chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.Handlers{
			Health: rest.NewHealthHandler(map[string]rest.Checker{
				"database": func(context.Context) error { return errors.New("connection refused") },
			}),
		}, rest.Options{}, logger.Discard())

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
		Expect(rec.Body.String()).To(ContainSubstring("connection refused"))
	})
})

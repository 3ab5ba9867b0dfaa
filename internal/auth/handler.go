package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/hr-management/internal"
	"github.com/frahmantamala/hr-management/internal/transport"
	"github.com/frahmantamala/hr-management/pkg/logger"
)

type ServiceAPI interface {
	Login(ctx context.Context, dto LoginDTO, variant internal.Variant) (*Session, error)
	ResolveUser(ctx context.Context, token string) (*User, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	session, err := h.Service.Login(r.Context(), dto, internal.VariantFromContext(r.Context()))
	if err != nil {
		h.Logger.Info("login failed", "email", dto.Email, "error", err)
		h.HandleServiceError(w, err)
		return
	}

	body := map[string]interface{}{
		"token":                    session.AccessToken,
		"refreshToken":             session.RefreshToken,
		"sessionToken":             session.SessionToken,
		"previousSessionLoggedOut": session.PreviousMarkerExisted,
		"user":                     session.User,
	}
	if session.Location != nil {
		body["location"] = session.Location
	}
	h.WriteSuccess(w, http.StatusOK, body)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.Logger.Info("token refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{
		"token":        tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

// Logout only validates the token; the stored session marker is left untouched
// and the client discards its tokens.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		h.HandleServiceError(w, internal.ErrAuthRequired)
		return
	}

	claims, err := h.Service.ValidateAccessToken(token)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("user logged out", "user_id", claims.UserID)
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"message": "Logged out successfully"})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrAuthRequired)
		return
	}
	h.WriteSuccess(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.HandleServiceError(w, internal.ErrAuthRequired)
			return
		}

		user, err := h.Service.ResolveUser(r.Context(), token)
		if err != nil {
			h.Logger.Debug("auth middleware: token rejected", "error", err)
			h.HandleServiceError(w, err)
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = logger.With(ctx, "user_id", user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

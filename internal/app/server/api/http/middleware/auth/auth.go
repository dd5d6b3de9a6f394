package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"golang.org/x/exp/slog"

	"tripkeeper/internal/domain/session"
)

// Machine-readable 401 codes. Expired means a refresh will help; invalid
// means only a fresh login will.
const (
	CodeCredentialExpired = "credential_expired"
	CodeCredentialInvalid = "credential_invalid"
)

type Auth struct {
	session session.Servicer
	log     *slog.Logger
}

func New(session session.Servicer, log *slog.Logger) *Auth {
	return &Auth{
		session: session,
		log:     log.With("component", "auth_middleware"),
	}
}

type contextKey string

const OwnerIDKey contextKey = "ownerID"

// Middleware validates the bearer token and stores the owner ID in the
// request context. Every failure answers 401; an expired token carries code
// "credential_expired" so clients refresh and retry once, anything else
// carries "credential_invalid".
func (a *Auth) Middleware() func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		header := ctx.Header("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			a.reject(ctx, CodeCredentialInvalid)
			return
		}

		ownerID, err := a.session.Validate(ctx.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			a.log.Debug("token rejected", "error", err)
			code := CodeCredentialInvalid
			if errors.Is(err, session.ErrTokenExpired) {
				code = CodeCredentialExpired
			}
			a.reject(ctx, code)
			return
		}

		newCtx := context.WithValue(ctx.Context(), OwnerIDKey, ownerID)
		next(huma.WithContext(ctx, newCtx))
	}
}

func (a *Auth) reject(ctx huma.Context, code string) {
	ctx.SetStatus(http.StatusUnauthorized)
	ctx.SetHeader("Content-Type", "application/json")
	_ = json.NewEncoder(ctx.BodyWriter()).Encode(map[string]string{
		"code":  code,
		"error": "unauthorized",
	})
}

// GetOwnerID extracts the authenticated owner from the request context.
func GetOwnerID(ctx context.Context) (string, bool) {
	ownerID, ok := ctx.Value(OwnerIDKey).(string)
	return ownerID, ok
}

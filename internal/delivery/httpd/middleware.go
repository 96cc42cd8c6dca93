package httpd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Erkin33/Platform-sub000/internal/models"
	"github.com/Erkin33/Platform-sub000/pkg/utils"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	loggerKey
)

func RequestLogger(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			reqID := middleware.GetReqID(r.Context())
			if reqID == "" {
				reqID = "unknown"
			}

			requestLog := log.With().
				Str("request_id", reqID).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			r = r.WithContext(context.WithValue(r.Context(), loggerKey, requestLog))

			defer func() {
				requestLog.Info().
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Str("query", r.URL.RawQuery).
					Str("ip", r.RemoteAddr).
					Str("user_agent", r.UserAgent()).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("HTTP request")
			}()

			next.ServeHTTP(ww, r)
		}
		return http.HandlerFunc(fn)
	}
}

func LoggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// ActorResolver extracts the current user from a request. It returns nil, nil
// for anonymous requests and an error for bad credentials.
type ActorResolver func(r *http.Request) (*models.Actor, error)

var errBadCredentials = errors.New("invalid credentials")

// HeaderActor trusts X-User-ID and X-User-Role as set by an upstream gateway.
func HeaderActor(r *http.Request) (*models.Actor, error) {
	id := strings.TrimSpace(r.Header.Get("X-User-ID"))
	role := strings.TrimSpace(r.Header.Get("X-User-Role"))
	if id == "" && role == "" {
		return nil, nil
	}
	if id == "" || !models.IsValidRole(role) {
		return nil, errBadCredentials
	}
	return &models.Actor{ID: id, Role: models.Role(role)}, nil
}

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTActor reads an HS256 bearer token; the subject is the user id.
func JWTActor(secret []byte) ActorResolver {
	return func(r *http.Request) (*models.Actor, error) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			return nil, nil
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return nil, errBadCredentials
		}

		token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return nil, fmt.Errorf("%w: %v", errBadCredentials, err)
		}

		claims, ok := token.Claims.(*Claims)
		if !ok || claims.Subject == "" || !models.IsValidRole(claims.Role) {
			return nil, errBadCredentials
		}

		return &models.Actor{ID: claims.Subject, Role: models.Role(claims.Role)}, nil
	}
}

// WithActor stores the resolved actor in the request context.
func WithActor(resolve ActorResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := resolve(r)
			if err != nil {
				logger := LoggerFromContext(r.Context())
				logger.Warn().Err(err).Msg("Rejected credentials")
				utils.ErrorResponse(w, http.StatusUnauthorized, "Invalid or expired credentials")
				return
			}
			if actor != nil {
				r = r.WithContext(context.WithValue(r.Context(), actorKey, *actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func ActorFromContext(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

// RequireRoles lets through authenticated actors holding one of roles, or any
// authenticated actor when roles is empty.
func RequireRoles(roles ...models.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())
			if !ok {
				utils.ErrorResponse(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			if len(roles) > 0 {
				allowed := false
				for _, role := range roles {
					if actor.Role == role {
						allowed = true
						break
					}
				}
				if !allowed {
					utils.ErrorResponse(w, http.StatusForbidden, "Insufficient permissions")
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

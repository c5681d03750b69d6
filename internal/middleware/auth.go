package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/frotadev/fleet-manager/internal/auth"
	"github.com/frotadev/fleet-manager/internal/models"
)

// contextKey keeps request context values from colliding with other packages.
type contextKey string

// UserContextKey holds the session claims of the authenticated account.
const UserContextKey contextKey = "user"

// publicPaths are reachable without a session: the login surface, the
// health check and the Prometheus scrape endpoint.
var publicPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/health",
	"/metrics",
}

// AuthMiddleware gates the API behind dashboard session tokens.
type AuthMiddleware struct {
	authService *auth.Service
}

// NewAuthMiddleware creates a new session middleware.
func NewAuthMiddleware(authService *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// Authenticate verifies the session token and stores its claims on the
// request context. Public paths pass through untouched.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Authorization required", http.StatusUnauthorized)
			return
		}

		claims, err := m.authService.ValidateToken(header)
		if err != nil {
			http.Error(w, "Invalid or expired session", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole admits only the given role. Admins always pass.
func (m *AuthMiddleware) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			if claims.Role != role && claims.Role != models.RoleAdmin {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission admits only sessions whose role grants the action.
func (m *AuthMiddleware) RequirePermission(action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				http.Error(w, "Authentication required", http.StatusUnauthorized)
				return
			}
			account := models.User{Role: claims.Role}
			if !account.HasPermission(action) {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUserFromContext returns the session claims stored by Authenticate.
func GetUserFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RateLimitMiddleware throttles clients by IP over a sliding window.
type RateLimitMiddleware struct {
	mu    sync.Mutex
	seen  map[string][]time.Time
	nowFn func() time.Time
}

// NewRateLimitMiddleware creates a new rate limiter.
func NewRateLimitMiddleware() *RateLimitMiddleware {
	return &RateLimitMiddleware{
		seen:  make(map[string][]time.Time),
		nowFn: time.Now,
	}
}

// RateLimit allows at most limit requests per client IP inside the window.
func (m *RateLimitMiddleware) RateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := m.nowFn()
			cutoff := now.Add(-window)

			m.mu.Lock()
			recent := m.seen[ip][:0]
			for _, ts := range m.seen[ip] {
				if ts.After(cutoff) {
					recent = append(recent, ts)
				}
			}
			if len(recent) >= limit {
				m.seen[ip] = recent
				m.mu.Unlock()
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			m.seen[ip] = append(recent, now)
			m.mu.Unlock()

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

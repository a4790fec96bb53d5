package mockserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/Shuvo786/Nexway-API/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

// metricsSkipPaths are excluded from request metrics.
var metricsSkipPaths = map[string]struct{}{
	"/metrics": {},
	"/healthz": {},
}

// RequestLog logs every request with a request ID, generating one when the
// caller did not send X-Request-ID.
func RequestLog(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			reqID := c.Request().Header.Get(requestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			c.Set("request_id", reqID)
			c.Response().Header().Set(requestIDHeader, reqID)

			err := next(c)

			log.Info("request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			)

			return err
		}
	}
}

// Recovery turns a handler panic into a 500 JSON response.
func Recovery(log *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					buf := make([]byte, 4096)
					n := runtime.Stack(buf, false)

					log.Error("panic recovered",
						"error", fmt.Sprint(r),
						"method", c.Request().Method,
						"path", c.Request().URL.Path,
						"stack", string(buf[:n]),
					)

					err = c.JSON(http.StatusInternalServerError, apiError{
						Code:    http.StatusInternalServerError,
						Message: "internal server error",
					})
				}
			}()
			return next(c)
		}
	}
}

// Metrics records request count and duration by route.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			if _, skip := metricsSkipPaths[path]; skip {
				return next(c)
			}

			start := time.Now()
			err := next(c)

			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method
			metrics.MockHTTPRequestDuration.
				WithLabelValues(method, path, status).
				Observe(time.Since(start).Seconds())
			metrics.MockHTTPRequestsTotal.
				WithLabelValues(method, path, status).
				Inc()

			return err
		}
	}
}

// Throttle rejects requests with 429 once limiter has no tokens left, the
// way the live API answers bursts.
func Throttle(limiter *rate.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusTooManyRequests, apiError{
					Code:    http.StatusTooManyRequests,
					Message: "rate limit exceeded",
				})
			}
			return next(c)
		}
	}
}

// requireAPIAuth checks the bearer token and the partner secret on /connect
// routes. The secret header may be omitted only where optionalSecret allows.
func (s *Server) requireAPIAuth(optionalSecret map[string]struct{}) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			bearer, ok := bearerToken(c.Request())
			if !ok || !s.state.validAccess(bearer) {
				return c.JSON(http.StatusUnauthorized, apiError{
					Code:    http.StatusUnauthorized,
					Message: "invalid or missing bearer token",
				})
			}

			secret := c.Request().Header.Get("secret")
			_, optional := optionalSecret[c.Request().Method+" "+c.Path()]
			if (secret == "" && !optional) || (secret != "" && secret != s.cfg.Secret) {
				return c.JSON(http.StatusForbidden, apiError{
					Code:    http.StatusForbidden,
					Message: "invalid partner secret",
				})
			}

			return next(c)
		}
	}
}

func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	return token, token != ""
}

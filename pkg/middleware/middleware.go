package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"

	"locallibrary/pkg/auth"
	"locallibrary/pkg/logger"
)

// SessionAuth authenticates the request from the session cookie. Requests
// without a valid session are redirected to the login page with a next
// parameter carrying the original path.
func SessionAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(auth.SessionCookieName)
		if err != nil || cookie.Value == "" {
			return redirectToLogin(c)
		}
		claims, err := auth.ParseSessionToken(cookie.Value)
		if err != nil {
			return redirectToLogin(c)
		}

		req := c.Request()
		ctx := auth.SetAuthContext(req.Context(), claims.Profile.Username, claims.Profile.Role)
		c.SetRequest(req.WithContext(ctx))

		return next(c)
	}
}

// RequireLibrarian gates handlers on the librarian role. Must run after
// SessionAuth.
func RequireLibrarian(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := auth.FromContext(c.Request().Context())
		if err != nil {
			return redirectToLogin(c)
		}
		if !user.IsLibrarian() {
			return echo.NewHTTPError(http.StatusForbidden, "permission denied")
		}
		return next(c)
	}
}

func redirectToLogin(c echo.Context) error {
	return c.Redirect(http.StatusFound, auth.LoginPath+"?next="+c.Request().URL.Path)
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig() middleware.RequestLoggerConfig {
	cfg := logger.Log{LogLevel: zapcore.DebugLevel, Sink: ""}
	log := logger.NewLogger(cfg, "echo")
	c := middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
	return c
}

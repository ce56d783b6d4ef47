package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aimatch/portal/internal/core/domain"
)

// ContextSession is the echo context key holding the loaded domain.Session.
const ContextSession = "session"

// SessionResolver loads sessions and reacts to marketplace failures.
type SessionResolver interface {
	Current(ctx context.Context, sessionID string) (domain.Session, error)
	HandleRemoteError(ctx context.Context, sessionID string, err error) bool
}

// Session loads the session named by the token and stores it in the
// context. When the handler fails because the marketplace rejected the
// session's credential, the session is torn down before the error is
// rendered.
func Session(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sid, _ := c.Get(ContextSessionID).(string)
			if sid == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session")
			}

			ctx := c.Request().Context()
			sess, err := sessions.Current(ctx, sid)
			if err != nil {
				return err
			}
			c.Set(ContextSession, sess)

			err = next(c)
			if err != nil {
				sessions.HandleRemoteError(context.WithoutCancel(ctx), sid, err)
			}
			return err
		}
	}
}

// SessionFrom returns the session loaded by the Session middleware.
func SessionFrom(c echo.Context) (domain.Session, bool) {
	sess, ok := c.Get(ContextSession).(domain.Session)
	return sess, ok
}

package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"auth-service/internal/domain"
	resp "auth-service/internal/transport/http/response"
)

type Binder string

const (
	BindJSON  Binder = "json"
	BindQuery Binder = "query"
	BindNone  Binder = "none"
)

// Context keys set by middleware.
const (
	KeyRequestID = "X-Request-ID"
	KeyUserID    = "userId"
	KeyRole      = "role"
	KeyClaims    = "claims"
)

// AErr carries a response code and a client-safe message. Err is only logged.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// MapError turns service errors into client-facing ones. Storage, key and
// hashing failures all become a bare 500 so internals never leak.
func MapError(err error) *AErr {
	var ae *AErr
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, domain.ErrConflict):
		return &AErr{Code: resp.CodeConflict, Msg: domain.ErrConflict.Error()}
	case errors.Is(err, domain.ErrInvalidCredentials):
		return &AErr{Code: resp.CodeUnauthorized, Msg: domain.ErrInvalidCredentials.Error()}
	case errors.Is(err, domain.ErrInvalidToken):
		return &AErr{Code: resp.CodeUnauthorized, Msg: domain.ErrInvalidToken.Error()}
	default:
		return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
	}
}

// Action describes one endpoint: I is the bound input, O the envelope data.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int      // success status, 200 when zero
	Auth    bool     // require KeyUserID from the auth middleware
	Roles   []string // allowed roles, any when empty
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](g *gin.RouterGroup, l *zap.Logger, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth {
			if c.GetString(KeyUserID) == "" {
				resp.Abort(c, resp.CodeUnauthorized, "unauthorized")
				return
			}
			if len(a.Roles) > 0 && !hasRole(c.GetString(KeyRole), a.Roles) {
				resp.Abort(c, resp.CodeForbidden, "forbidden")
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			resp.Abort(c, resp.CodeBadRequest, bindErr.Error())
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			ae := MapError(err)
			if ae.Code >= http.StatusInternalServerError {
				l.Error("action failed",
					zap.String("path", a.Path),
					zap.String("rid", c.GetString(KeyRequestID)),
					zap.Error(err),
				)
			}
			_ = c.Error(err)
			resp.Abort(c, ae.Code, ae.Msg)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		g.GET(a.Path, h)
	case http.MethodPut:
		g.PUT(a.Path, h)
	case http.MethodDelete:
		g.DELETE(a.Path, h)
	default:
		g.POST(a.Path, h)
	}
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

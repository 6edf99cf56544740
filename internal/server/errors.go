package server

import (
	"errors"
	"fmt"
	"net/http"
	"storefront/internal/dto"
	"storefront/internal/service"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var kindStatus = map[service.Kind]int{
	service.KindInvalid:      http.StatusBadRequest,
	service.KindUnauthorized: http.StatusUnauthorized,
	service.KindNotFound:     http.StatusNotFound,
	service.KindUnavailable:  http.StatusServiceUnavailable,
}

// newErrorHandler renders every error as {"error": "..."}. Internal failures
// are logged and reported, and their text never reaches the client.
func newErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("path", c.Path()),
				zap.Int("status", status),
				zap.Error(err))
			sentry.CaptureException(err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}

func errorResponse(err error) (int, dto.ErrorResponse) {
	if e, ok := service.AsError(err); ok {
		status, known := kindStatus[e.Kind]
		if !known {
			status = http.StatusInternalServerError
		}
		return status, dto.ErrorResponse{Error: e.Message, Details: detailsBeyondMessage(e)}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, ok := he.Message.(string)
		if !ok {
			msg = fmt.Sprint(he.Message)
		}
		if he.Code >= http.StatusInternalServerError {
			msg = http.StatusText(he.Code)
		}
		return he.Code, dto.ErrorResponse{Error: msg}
	}

	return http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"}
}

// detailsBeyondMessage drops details that only repeat the message.
func detailsBeyondMessage(e *service.Error) []string {
	if len(e.Details) == 1 && e.Details[0] == e.Message {
		return nil
	}
	return e.Details
}

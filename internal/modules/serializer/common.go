package serializer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/framekeep/framekeep/internal/pkg/apperr"
	"github.com/gin-gonic/gin"
)

// Response envelope for every JSON reply.
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}

// FromError maps the service error taxonomy onto HTTP statuses.
func FromError(err error) (int, Response) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, Err(http.StatusNotFound, "not found", err)
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden, Err(http.StatusForbidden, "forbidden", err)
	case errors.Is(err, apperr.ErrInvalidRequest):
		return http.StatusBadRequest, Err(http.StatusBadRequest, "invalid request", err)
	default:
		return http.StatusInternalServerError, Err(http.StatusInternalServerError, "internal error", err)
	}
}

package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/tick/internal/db"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errInvalidID          = errors.New("invalid id")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	// ActiveSessionID points at the running session on a start conflict.
	ActiveSessionID uint `json:"active_session_id,omitempty"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	body := gin.H{"error": err.Message}
	if err.ActiveSessionID != 0 {
		body["active_session_id"] = err.ActiveSessionID
	}
	c.AbortWithStatusJSON(err.Code, body)
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

// storeError maps a storage layer error onto its HTTP form.
func storeError(err error) apiError {
	var active *db.ActiveSessionError
	switch {
	case errors.As(err, &active):
		e := newConflictError(active.Error())
		e.ActiveSessionID = active.Session.ID
		return e
	case errors.Is(err, db.ErrConflict):
		return newConflictError(err.Error())
	case errors.Is(err, db.ErrNotFound):
		return newNotFoundError(err.Error())
	case errors.Is(err, db.ErrInvalidArgs):
		return newBadRequestError(err.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voyagekit/tripcraft-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondServiceError maps the service error sentinels onto HTTP statuses.
func RespondServiceError(c *gin.Context, code string, err error) {
	ae := apierr.FromError(code, err)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}

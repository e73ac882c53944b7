package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/mastery-engine/internal/domain"
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

// RespondDomainError maps the engine's error taxonomy onto HTTP statuses.
// Validation failures are the caller's fault; unavailable dependencies are
// retryable; everything else is a plain 500.
func RespondDomainError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := string(domain.CodeInternal)

	var de *domain.Error
	if errors.As(err, &de) {
		code = string(de.Code)
		switch de.Code {
		case domain.CodeValidation:
			status = http.StatusBadRequest
		case domain.CodeNotFound:
			status = http.StatusNotFound
		case domain.CodeDependencyUnavailable:
			status = http.StatusServiceUnavailable
		}
	}
	RespondError(c, status, code, err)
}

package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/romyseb/wedding/pkg/errors"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo is the client-visible part of an AppError.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Success writes data with statusCode.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Response{Success: true, Data: data})
}

// Error writes err. Errors that are not AppErrors are reported as a bare 500.
func Error(c *gin.Context, err error) {
	c.JSON(render(err))
}

// ErrorWithField writes err pointing at the offending input field.
func ErrorWithField(c *gin.Context, err error, field string) {
	if err == nil {
		err = appErrors.ErrInternalServer
	}
	Error(c, appErrors.FromError(err).WithField(field))
}

// Abort writes err and stops the handler chain. Used by middleware.
func Abort(c *gin.Context, err error) {
	c.AbortWithStatusJSON(render(err))
}

func render(err error) (int, Response) {
	appErr := appErrors.FromError(err)
	if appErr == nil {
		appErr = appErrors.ErrInternalServer
	}
	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, Response{
		Error: &ErrorInfo{Code: appErr.Code, Message: appErr.Message, Field: appErr.Field},
	}
}

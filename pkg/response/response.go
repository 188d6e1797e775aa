package response

import (
	"errors"
	"net/http"

	"digital-wallet-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// OK sends a 200 response merging the given fields into the standard
// success envelope: {"ok": true, ...}.
func OK(c *gin.Context, fields gin.H) {
	body := gin.H{"ok": true}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// ErrorBody is the standard error envelope: {"error": "...", "code": "..."}.
type ErrorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Error sends an error response. If err is an *apperror.AppError its status
// and client message are used; anything else becomes an opaque 500.
func Error(c *gin.Context, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.HTTPStatus, ErrorBody{
			Error: appErr.Message,
			Code:  appErr.Code,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, ErrorBody{
		Error: "Internal server error",
		Code:  "SYS_000",
	})
}

// Abort sends an error response and aborts the gin handler chain.
// Used by middleware.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

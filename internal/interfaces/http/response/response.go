package response

import (
	"github.com/gin-gonic/gin"
	domainerrors "tapmove.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps a domain error to its HTTP status. Anything that is not an
// AppError is treated as an internal error without leaking its message.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !domainerrors.As(err, &appErr) {
		appErr = domainerrors.InternalError(err)
	}

	c.JSON(appErr.Code, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	})
}

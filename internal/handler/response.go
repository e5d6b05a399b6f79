package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kerbside/service-booking/internal/domain"
)

// statusForCode maps domain error codes to HTTP statuses.
var statusForCode = map[domain.ErrorCode]int{
	domain.CodeValidation:           http.StatusBadRequest,
	domain.CodeConflict:             http.StatusConflict,
	domain.CodeInvalidState:         http.StatusConflict,
	domain.CodePaymentRequired:      http.StatusPaymentRequired,
	domain.CodeIncompleteInspection: http.StatusUnprocessableEntity,
	domain.CodeNotFound:             http.StatusNotFound,
	domain.CodeForbidden:            http.StatusForbidden,
	domain.CodeStorage:              http.StatusServiceUnavailable,
}

func respondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
		"code":    domain.CodeValidation,
		"message": message,
	}})
}

// respondError maps a domain error to its HTTP status; anything untyped becomes a
// 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	status, ok := statusForCode[code]
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": gin.H{
			"code":    "INTERNAL",
			"message": "internal server error",
		}})
		return
	}

	message := err.Error()
	if code == domain.CodeStorage {
		// Do not expose driver errors to clients.
		message = "storage temporarily unavailable"
	}
	c.JSON(status, gin.H{"error": gin.H{
		"code":    code,
		"message": message,
	}})
}

package controllers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes shared across the API. Clients branch on these, not on the
// human-readable message.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeInvalidSchoolID = "INVALID_SCHOOL_ID"
	CodeInvalidAdoption = "INVALID_ADOPTION_TYPE"
	CodeSchoolNotFound  = "SCHOOL_NOT_FOUND"
	CodeAlreadyAdopted  = "ALREADY_ADOPTED"
	CodeRateLimited     = "RATE_LIMIT_EXCEEDED"
	CodePartialFailure  = "PARTIAL_FAILURE"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeServerError     = "SERVER_ERROR"
)

// respondSuccess wraps data in the uniform response envelope.
func respondSuccess(c *gin.Context, status int, data gin.H) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondError wraps an error code/message in the uniform envelope.
func respondError(c *gin.Context, status int, code string, message string) {
	c.JSON(status, gin.H{"success": false, "error": gin.H{"code": code, "message": message}})
}

// respondServerError logs the underlying error and returns a redacted 500.
// The raw error only reaches the client in debug mode.
func respondServerError(c *gin.Context, err error, message string) {
	log.Printf("%s: %v", message, err)

	body := gin.H{"code": CodeServerError, "message": message}
	if gin.Mode() == gin.DebugMode && err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": body})
}

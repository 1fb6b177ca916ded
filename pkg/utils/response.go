package utils

import "github.com/gin-gonic/gin"

// SuccessResponse writes {"message": message} merged with the given fields.
func SuccessResponse(c *gin.Context, status int, message string, fields gin.H) {
	body := gin.H{}
	if message != "" {
		body["message"] = message
	}
	for k, v := range fields {
		body[k] = v
	}
	c.JSON(status, body)
}

func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

package server

import "github.com/gin-gonic/gin"

// APIResponse is the envelope of every JSON reply
type APIResponse struct {
	Message         string `json:"message"`
	Data            any    `json:"data,omitempty"`
	Error           bool   `json:"error,omitempty"`
	RequestedEntity string `json:"requested_entity,omitempty"`
}

func requested(c *gin.Context) string {
	if c == nil || c.Request == nil {
		return ""
	}
	return c.Request.Method + " " + c.FullPath()
}

// SuccessResponse wraps data in the envelope
func SuccessResponse(c *gin.Context, message string, data any) APIResponse {
	return APIResponse{
		Message:         message,
		Data:            data,
		RequestedEntity: requested(c),
	}
}

// ErrorResponse builds an error envelope
func ErrorResponse(c *gin.Context, message string) APIResponse {
	return APIResponse{
		Message:         message,
		Error:           true,
		RequestedEntity: requested(c),
	}
}

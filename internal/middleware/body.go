package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 10 << 20

// RequireBody rejects POST, PUT and PATCH requests whose body is missing,
// blank or an empty JSON object.
func RequireBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			var err error
			body, err = io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
			if err != nil {
				abort(c, http.StatusRequestEntityTooLarge, "Request body is too large")
				return
			}
		}

		if isEmptyBody(body) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Request body is required",
				"errors":  []gin.H{{"field": "body", "message": "Request body cannot be empty"}},
			})
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		c.Next()
	}
}

func isEmptyBody(body []byte) bool {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return true
	}
	if trimmed[0] != '{' {
		return false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		// Malformed JSON is reported by the handler.
		return false
	}
	return len(fields) == 0
}

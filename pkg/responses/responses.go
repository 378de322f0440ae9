package responses

import "github.com/gin-gonic/gin"

// Message writes the `{"msg": ...}` body every non-document response uses.
// Document payloads are sent bare for wire compatibility with existing
// clients, so there is no success envelope.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"msg": msg})
}

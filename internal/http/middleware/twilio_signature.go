package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/novo-contact-backend/internal/clients/twilio"
	"github.com/yungbote/novo-contact-backend/internal/pkg/logger"
)

// CallSIDKey is where webhook middleware stores the provider call id.
const CallSIDKey = "call_sid"

// TwilioWebhook parses the provider form, records the call id and, when
// authToken is set, rejects requests whose signature does not match
// baseURL plus the request URI.
func TwilioWebhook(log *logger.Logger, baseURL, authToken string) gin.HandlerFunc {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	log = log.With("middleware", "TwilioWebhook")
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"message": "invalid form", "code": "invalid_form"},
			})
			return
		}
		c.Set(CallSIDKey, c.Request.PostForm.Get("CallSid"))

		if authToken != "" && c.Request.Method == http.MethodPost {
			fullURL := baseURL + c.Request.URL.RequestURI()
			sig := c.GetHeader(twilio.SignatureHeader)
			if !twilio.ValidSignature(authToken, fullURL, c.Request.PostForm, sig) {
				log.Warn("Webhook signature mismatch", "path", c.Request.URL.Path)
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error": gin.H{"message": "invalid signature", "code": "invalid_signature"},
				})
				return
			}
		}
		c.Next()
	}
}

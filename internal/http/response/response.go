package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/novo-contact-backend/internal/pkg/apierr"
	"github.com/yungbote/novo-contact-backend/internal/pkg/twiml"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError renders any service error. Internal errors keep their
// message out of the response.
func RespondAPIError(c *gin.Context, err error) {
	ae := apierr.From(err)
	if ae.Status >= http.StatusInternalServerError && ae.Code == "internal" {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errInternal)
		return
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondTwiML(c *gin.Context, doc *twiml.Response) {
	body, err := doc.Marshal()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "twiml", err)
		return
	}
	c.Data(http.StatusOK, twiml.ContentType, body)
}

type internalError struct{}

func (internalError) Error() string { return "internal server error" }

var errInternal error = internalError{}

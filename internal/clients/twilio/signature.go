package twilio

import (
	"net/url"

	twclient "github.com/twilio/twilio-go/client"
)

const SignatureHeader = "X-Twilio-Signature"

// ValidSignature reports whether signature is the provider's signature for a
// POST of form to fullURL. Repeated form keys are reduced to their first
// value.
func ValidSignature(authToken, fullURL string, form url.Values, signature string) bool {
	if authToken == "" || signature == "" {
		return false
	}
	params := make(map[string]string, len(form))
	for k, vs := range form {
		if len(vs) > 0 {
			params[k] = vs[0]
		}
	}
	v := twclient.NewRequestValidator(authToken)
	return v.Validate(fullURL, params, signature)
}

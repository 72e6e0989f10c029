package payload

import "encoding/json"

// ResendVerificationRequest is decoded leniently: unknown fields, a missing
// email or an email of the wrong type still get the uniform success response.
type ResendVerificationRequest struct {
	Email string `json:"email"`
}

// ParseResendVerification reads the email out of any syntactically valid JSON
// body. Anything that is not a string email yields an empty request.
func ParseResendVerification(raw json.RawMessage) ResendVerificationRequest {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return ResendVerificationRequest{}
	}

	var req ResendVerificationRequest
	if err := json.Unmarshal(fields["email"], &req.Email); err != nil {
		return ResendVerificationRequest{}
	}

	return req
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

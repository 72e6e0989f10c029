package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

var verificationTmpl = template.Must(template.New("verification").Parse(`
<p>Hi {{.Name}},</p>
<p>Use the code below to verify your PitchIt email address:</p>
<p style="font-size:24px;font-weight:bold;letter-spacing:4px">{{.Code}}</p>
<p>The code expires in {{.ExpiresIn}}. If you did not create an account, you can ignore this email.</p>
<p>The PitchIt Team</p>
`))

var passwordResetTmpl = template.Must(template.New("password_reset").Parse(`
<p>Hi,</p>
<p>We received a request to reset the password for your PitchIt account.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>This link will expire in {{.ExpiresIn}}. If you did not request a reset, no action is needed.</p>
<p>The PitchIt Team</p>
`))

// VerificationEmail builds the message carrying a one-time verification code.
func VerificationEmail(to, name, code string, expiresIn time.Duration) (Email, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, map[string]string{
		"Name":      name,
		"Code":      code,
		"ExpiresIn": humanDuration(expiresIn),
	}); err != nil {
		return Email{}, err
	}

	return Email{
		To:       []string{to},
		Subject:  "Verify your PitchIt email",
		HTMLBody: buf.String(),
		Body: fmt.Sprintf("Your PitchIt verification code is %s. It expires in %s.",
			code, humanDuration(expiresIn)),
	}, nil
}

// PasswordResetEmail builds the message carrying a password reset link.
func PasswordResetEmail(to, link string, expiresIn time.Duration) (Email, error) {
	var buf bytes.Buffer
	if err := passwordResetTmpl.Execute(&buf, map[string]string{
		"Link":      link,
		"ExpiresIn": humanDuration(expiresIn),
	}); err != nil {
		return Email{}, err
	}

	return Email{
		To:       []string{to},
		Subject:  "Password Reset Request",
		HTMLBody: buf.String(),
		Body:     fmt.Sprintf("Reset your PitchIt password: %s (expires in %s)", link, humanDuration(expiresIn)),
	}, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	case d >= time.Minute && d%time.Minute == 0:
		m := int(d / time.Minute)
		if m == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", m)
	default:
		return d.String()
	}
}

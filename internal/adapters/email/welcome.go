package email

import (
	"bytes"
	"html/template"
)

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<p>Kia ora {{.Name}},</p>
<p>Welcome to GymHub. Your {{.Role}} account is ready.</p>
<p>Sign in any time at <a href="{{.SignInURL}}">{{.SignInURL}}</a>.</p>
`))

// WelcomeData fills the welcome email template.
type WelcomeData struct {
	Name      string
	Role      string
	SignInURL string
}

// WelcomeSubject is the subject line of the sign-up email.
const WelcomeSubject = "Welcome to GymHub"

// RenderWelcome renders the sign-up email body. Values are HTML-escaped.
func RenderWelcome(d WelcomeData) (string, error) {
	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}

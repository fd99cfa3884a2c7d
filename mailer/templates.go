package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// Template wraps a parsed email body template.
type Template struct {
	tmpl *template.Template
}

// NewTemplate parses an HTML template string.
func NewTemplate(htmlContent string) (*Template, error) {
	tmpl, err := template.New("email").Parse(htmlContent)
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Template{tmpl: tmpl}, nil
}

// Render executes the template against data.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template: %w", err)
	}
	return buf.String(), nil
}

const admissionApprovedTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #4CAF50; color: white; padding: 20px; text-align: center; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Welcome to TutorTime</h1>
        </div>
        <div class="content">
            <p>Hi {{.Name}},</p>
            <p>Your student account has been approved. You can now sign in,
            browse teachers, and book appointment slots.</p>
        </div>
        <div class="footer">
            <p>TutorTime &middot; this is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>`

const passwordResetTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #2196F3; color: white; padding: 20px; text-align: center; }
        .content { background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; }
        .link { word-break: break-all; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Password Reset</h1>
        </div>
        <div class="content">
            <p>Hi {{.Name}},</p>
            <p>We received a request to reset your password. The link below is
            valid for {{.ExpireMinutes}} minutes:</p>
            <p class="link"><a href="{{.Link}}">{{.Link}}</a></p>
            <p>If this was not you, ignore this email and your password stays
            unchanged.</p>
        </div>
        <div class="footer">
            <p>TutorTime &middot; this is an automated message, please do not reply.</p>
        </div>
    </div>
</body>
</html>`

// AdmissionApprovedBody renders the admission approval notification.
func AdmissionApprovedBody(name string) (string, error) {
	tmpl, err := NewTemplate(admissionApprovedTemplate)
	if err != nil {
		return "", err
	}
	return tmpl.Render(map[string]any{"Name": name})
}

// PasswordResetBody renders the reset link notification.
func PasswordResetBody(name, link string, expireMinutes int) (string, error) {
	tmpl, err := NewTemplate(passwordResetTemplate)
	if err != nil {
		return "", err
	}
	return tmpl.Render(map[string]any{
		"Name":          name,
		"Link":          link,
		"ExpireMinutes": expireMinutes,
	})
}

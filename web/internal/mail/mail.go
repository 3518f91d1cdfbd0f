package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"gopkg.in/gomail.v2"
)

// WelcomeSubject is the subject line of the welcome mail
const WelcomeSubject = "Welcome to PixelPlaylistAI!"

// Welcome is the data for a welcome mail
type Welcome struct {
	To   string `json:"to"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

var welcomeHTML = htmltemplate.Must(htmltemplate.New("welcome").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <p>Hi {{.Name}},</p>
  <p>Welcome to PixelPlaylistAI! We're excited to have you on board.</p>
  <p>Click the button below to get started:</p>
  <p><a href="{{.URL}}" style="display: inline-block; padding: 12px 24px; background-color: #3869D4; color: #fff; text-decoration: none; border-radius: 4px;">Get Started</a></p>
  <p>Need help? Just reply to this email.</p>
</body>
</html>
`))

var welcomeText = texttemplate.Must(texttemplate.New("welcome").Parse(`Hi {{.Name}},

Welcome to PixelPlaylistAI! We're excited to have you on board.

Get started: {{.URL}}

Need help? Just reply to this email.
`))

// renderWelcome returns the HTML and plain text bodies of the welcome mail
func renderWelcome(w Welcome) (string, string, error) {
	var html, text bytes.Buffer
	if err := welcomeHTML.Execute(&html, w); err != nil {
		return "", "", fmt.Errorf("failed to render welcome mail: %w", err)
	}
	if err := welcomeText.Execute(&text, w); err != nil {
		return "", "", fmt.Errorf("failed to render welcome mail: %w", err)
	}
	return html.String(), text.String(), nil
}

// Mailer sends transactional mail
type Mailer struct {
	from   string
	dialer *gomail.Dialer
	sender gomail.Sender
}

// NewSMTPMailer sends through an SMTP relay, dialing once per message
func NewSMTPMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{
		from:   from,
		dialer: gomail.NewDialer(host, port, username, password),
	}
}

// NewMailer sends through an existing sender
func NewMailer(from string, sender gomail.Sender) *Mailer {
	return &Mailer{from: from, sender: sender}
}

// SendWelcome sends the welcome mail with plain text and HTML parts
func (m *Mailer) SendWelcome(w Welcome) error {
	html, text, err := renderWelcome(w)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", w.To)
	msg.SetHeader("Subject", WelcomeSubject)
	msg.SetBody("text/plain", text)
	msg.AddAlternative("text/html", html)

	if m.dialer != nil {
		err = m.dialer.DialAndSend(msg)
	} else {
		err = gomail.Send(m.sender, msg)
	}
	if err != nil {
		return fmt.Errorf("failed to send welcome mail: %w", err)
	}
	return nil
}

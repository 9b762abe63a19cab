package mail

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"portfolio/internal/config"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// ContactMessage is what a visitor submitted through the contact form.
type ContactMessage struct {
	Name    string
	Email   string
	Subject string
	Message string
}

type Notifier interface {
	Notify(ctx context.Context, msg ContactMessage) error
}

// New returns an SMTP notifier, or a Nop one when SMTP is not configured.
func New(cfg *config.Config, log *zap.Logger) Notifier {
	if !cfg.SMTPConfigured() {
		log.Warn("email configuration incomplete, contact notifications will not be sent")
		return NopNotifier{log: log}
	}
	return NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.Recipient())
}

type SMTPNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

func NewSMTP(host string, port int, user, pass, to string) *SMTPNotifier {
	d := gomail.NewDialer(host, port, user, pass)
	// 465 is implicit TLS, anything else upgrades with STARTTLS
	d.SSL = port == 465
	return &SMTPNotifier{dialer: d, from: user, to: to}
}

func (n *SMTPNotifier) Notify(ctx context.Context, msg ContactMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := compose(n.from, n.to, msg)
	if err != nil {
		return err
	}
	// gomail has no read or write deadlines, so a stalled server would block
	// forever. The send is abandoned when ctx ends; the goroutine exits once
	// the server closes the connection.
	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()
	select {
	case err := <-done:
		return errors.Wrap(err, "send contact email")
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "send contact email")
	}
}

func compose(from, to string, msg ContactMessage) (*gomail.Message, error) {
	text, html, err := render(msg)
	if err != nil {
		return nil, err
	}
	m := gomail.NewMessage()
	m.SetAddressHeader("From", from, "Portfolio Contact")
	m.SetHeader("To", to)
	m.SetHeader("Reply-To", msg.Email)
	m.SetHeader("Subject", "[Portfolio] "+msg.Subject)
	m.SetBody("text/plain", text)
	m.AddAlternative("text/html", html)
	return m, nil
}

type NopNotifier struct {
	log *zap.Logger
}

func (n NopNotifier) Notify(_ context.Context, msg ContactMessage) error {
	n.log.Info("email transport not configured, skipping contact email", zap.String("from", msg.Email))
	return nil
}

var textBody = texttemplate.Must(texttemplate.New("text").Parse(`New contact form submission:

Name: {{.Name}}
Email: {{.Email}}
Subject: {{.Subject}}

Message:
{{.Message}}

---
Sent from portfolio contact form`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Funcs(htmltemplate.FuncMap{
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}).Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="utf-8"><title>New Contact Form Submission</title></head>
  <body style="margin:0;padding:0;background-color:#f9f7f4;font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,Arial,sans-serif;">
    <table cellpadding="0" cellspacing="0" width="100%" style="max-width:600px;margin:40px auto;background-color:#ffffff;border-radius:8px;">
      <tr><td style="padding:40px;border-bottom:1px solid #e8e6e3;">
        <h1 style="margin:0;font-size:24px;font-weight:500;color:#1a1916;">New Contact Submission</h1>
      </td></tr>
      <tr><td style="padding:40px;">
        <p style="margin:0 0 4px;font-size:12px;text-transform:uppercase;color:#7a7774;">Name</p>
        <p style="margin:0 0 20px;font-size:16px;color:#1a1916;">{{.Name}}</p>
        <p style="margin:0 0 4px;font-size:12px;text-transform:uppercase;color:#7a7774;">Email</p>
        <p style="margin:0 0 20px;font-size:16px;"><a href="mailto:{{.Email}}" style="color:#c4956a;text-decoration:none;">{{.Email}}</a></p>
        <p style="margin:0 0 4px;font-size:12px;text-transform:uppercase;color:#7a7774;">Subject</p>
        <p style="margin:0 0 20px;font-size:16px;color:#1a1916;">{{.Subject}}</p>
        <p style="margin:0 0 4px;font-size:12px;text-transform:uppercase;color:#7a7774;">Message</p>
        <div style="padding:20px;font-size:16px;line-height:1.6;color:#4a4845;background-color:#f9f7f4;border-radius:4px;">
          {{range $i, $line := lines .Message}}{{if $i}}<br>{{end}}{{$line}}{{end}}
        </div>
      </td></tr>
      <tr><td style="padding:20px 40px;border-top:1px solid #e8e6e3;font-size:12px;color:#7a7774;">
        Sent from portfolio contact form
      </td></tr>
    </table>
  </body>
</html>`))

func render(msg ContactMessage) (string, string, error) {
	var text, html bytes.Buffer
	if err := textBody.Execute(&text, msg); err != nil {
		return "", "", errors.Wrap(err, "render text body")
	}
	if err := htmlBody.Execute(&html, msg); err != nil {
		return "", "", errors.Wrap(err, "render html body")
	}
	return text.String(), html.String(), nil
}

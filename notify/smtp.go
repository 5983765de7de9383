package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

const (
	gmailHost = "smtp.gmail.com"
	gmailPort = 587
	fromName  = "CACV Bulletin"

	pdfContentType mail.ContentType = "application/pdf"
)

// SMTPSender sends through Gmail with an app password.
type SMTPSender struct {
	client *mail.Client
}

// NewGmailSender returns nil when either credential is missing, which the
// Notifier treats as email disabled.
func NewGmailSender(user, appPassword string) (*SMTPSender, error) {
	if user == "" || appPassword == "" {
		return nil, nil
	}
	return NewSMTPSender(gmailHost, gmailPort, user, appPassword)
}

func NewSMTPSender(host string, port int, user, password string) (*SMTPSender, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(user),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := buildMsg(msg)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildMsg(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.FromFormat(fromName, msg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
	}
	if msg.AttachmentPath != "" {
		m.AttachFile(msg.AttachmentPath, mail.WithFileName(msg.AttachmentName), mail.WithFileContentType(pdfContentType))
	}
	return m, nil
}

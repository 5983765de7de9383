// Package notify emails the bulletin maintainers after each run.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// ErrSkipped is returned when no email was attempted.
var ErrSkipped = errors.New("notification skipped")

// Message is one outgoing email.
type Message struct {
	From           string
	To             []string
	Subject        string
	Text           string
	HTML           string
	AttachmentPath string
	AttachmentName string
}

// Sender delivers a Message. Implementations must be safe to reuse across runs.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type Notifier struct {
	sender Sender
	from   string
	logger *zap.Logger
}

// New returns a Notifier. A nil sender disables email; every call then
// returns ErrSkipped.
func New(sender Sender, from string, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, from: from, logger: logger}
}

const footerHTML = `<hr style="margin:24px 0;border:none;border-top:1px solid #eee;">
<p style="color:#999;font-size:12px;">CACV Bulletin Automation</p>
</div>`

// NotifyFailures sends the list of issues found for serviceDate.
func (n *Notifier) NotifyFailures(ctx context.Context, to []string, serviceDate, liveURL string, issues []string) error {
	var text, items strings.Builder
	fmt.Fprintf(&text, "The bulletin for %s was generated but has the following issues:\n\n", serviceDate)
	for _, issue := range issues {
		text.WriteString("• " + issue + "\n")
		items.WriteString("<li>" + html.EscapeString(issue) + "</li>\n")
	}
	fmt.Fprintf(&text, "\nPlease review the bulletin at: %s\n", liveURL)
	text.WriteString("Some content may still be in Chinese or missing. Update the sheet and regenerate if needed.")

	body := fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;padding:24px;">
<h2 style="color:#7C3C3C;margin-bottom:8px;">⚠️ Bulletin Issues · %s</h2>
<p>The bulletin was generated but has the following issues:</p>
<ul style="margin:12px 0;padding-left:20px;line-height:1.8;">
%s</ul>
<p>Please <a href="%s">review the bulletin</a> and update the sheet if needed, then regenerate.</p>
%s`, html.EscapeString(serviceDate), items.String(), html.EscapeString(liveURL), footerHTML)

	return n.send(ctx, Message{
		To:      to,
		Subject: "⚠️ CACV Bulletin issues · " + serviceDate,
		Text:    text.String(),
		HTML:    body,
	})
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// AttachmentName is the file name the print PDF is sent under.
func AttachmentName(serviceDate string) string {
	return "cacv-bulletin-" + unsafeFileChars.ReplaceAllString(serviceDate, "-") + ".pdf"
}

// NotifySuccess announces a clean run and attaches pdfPath when the file exists.
func (n *Notifier) NotifySuccess(ctx context.Context, to []string, serviceDate, liveURL, pdfPath string) error {
	msg := Message{
		To:      to,
		Subject: "✓ CACV Bulletin is live · " + serviceDate,
	}
	pdfNote, pdfNoteHTML := "", ""
	if pdfPath != "" {
		if _, err := os.Stat(pdfPath); err == nil {
			msg.AttachmentPath = pdfPath
			msg.AttachmentName = AttachmentName(serviceDate)
			pdfNote = "\n\nThe print-ready PDF is attached. Please print before Sunday."
			pdfNoteHTML = `<p style="margin-top:12px;">The print-ready PDF is attached. Please print before Sunday.</p>` + "\n"
		}
	}

	msg.Text = fmt.Sprintf("The bulletin for %s has been published successfully.\n\nView it at: %s%s", serviceDate, liveURL, pdfNote)
	msg.HTML = fmt.Sprintf(`<div style="font-family:sans-serif;max-width:600px;padding:24px;">
<h2 style="color:#3D4A2A;margin-bottom:8px;">✓ Bulletin Live · %s</h2>
<p>The bulletin has been published successfully.</p>
<p><a href="%s" style="color:#5C6B48;">View the bulletin →</a></p>
%s%s`, html.EscapeString(serviceDate), html.EscapeString(liveURL), pdfNoteHTML, footerHTML)

	return n.send(ctx, msg)
}

func (n *Notifier) send(ctx context.Context, msg Message) error {
	if n.sender == nil {
		n.logger.Warn("⚠️  Email notification skipped, GMAIL_USER or GMAIL_APP_PASSWORD not set")
		return fmt.Errorf("%w: email not configured", ErrSkipped)
	}
	if len(msg.To) == 0 {
		n.logger.Warn("⚠️  Email notification skipped, no notification emails configured in Settings tab")
		return fmt.Errorf("%w: no recipients", ErrSkipped)
	}
	msg.From = n.from
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.Warn("⚠️  Failed to send notification email", zap.Error(err))
		return fmt.Errorf("send notification: %w", err)
	}
	n.logger.Info("✅ Notification sent", zap.Strings("to", msg.To))
	return nil
}

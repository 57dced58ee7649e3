package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"

	"github.com/csihub/codefest-api/internal/config"
	"github.com/csihub/codefest-api/internal/domain"
)

// Mailer sends outbound mail over SMTP. It carries no business logic;
// the registration and admin workflows decide when to call it.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	domain string
}

func NewMailer(conf *config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(conf.Host, conf.Port, conf.Email, conf.Password),
		from:   conf.Email,
		domain: conf.Domain,
	}
}

// Send delivers an HTML email. A non-nil inlinePNG is embedded as
// cid:qrcode so templates can reference it inline.
func (m *Mailer) Send(to, subject, html string, inlinePNG []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("Message-ID", generateMessageID(m.domain))
	msg.SetHeader("Date", time.Now().Format(time.RFC1123Z))
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if inlinePNG != nil {
		msg.Embed("qrcode.png", gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(inlinePNG)
			return err
		}))
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("dialer.DialAndSend -> %w", err)
	}

	return nil
}

func generateMessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.New().String(), domain)
}

// ConfirmationEmail builds the mail sent right after a registration is
// created.
func ConfirmationEmail(reg domain.Registration) (subject, html string) {
	subject = "Codefest registration received"

	var rounds string
	if len(reg.ParticipationDetails.Rounds) > 0 {
		rounds = fmt.Sprintf("<p>Rounds: %s</p>", strings.Join(reg.ParticipationDetails.Rounds, ", "))
	}

	html = fmt.Sprintf(`<h2>Hi %s,</h2>
<p>We received your Codefest registration (<b>%s</b>).</p>
%s<p>Amount: &#8377;%d</p>
<p>Your entry is pending review. You will get another email once it is approved.</p>
<p>&mdash; CSI Codefest Team</p>`,
		reg.PersonalInfo.Name, reg.ID, rounds, reg.ParticipationDetails.TotalPrice)

	return subject, html
}

// StatusEmail builds the mail sent when an admin approves or rejects a
// registration. Transitions back to pending send nothing.
func StatusEmail(reg domain.Registration) (subject, html string, ok bool) {
	switch reg.Status {
	case domain.StatusApproved:
		subject = "Codefest registration approved"
		html = fmt.Sprintf(`<h2>Hi %s,</h2>
<p>Your Codefest registration <b>%s</b> has been approved. See you at the event!</p>
<p>Carry your QR pass for check-in at the venue.</p>
<p>&mdash; CSI Codefest Team</p>`,
			reg.PersonalInfo.Name, reg.ID)
		return subject, html, true
	case domain.StatusRejected:
		subject = "Codefest registration update"
		html = fmt.Sprintf(`<h2>Hi %s,</h2>
<p>We could not verify your Codefest registration <b>%s</b> and it has been rejected.</p>
<p>If you believe this is a mistake, reply to this email with your payment details.</p>
<p>&mdash; CSI Codefest Team</p>`,
			reg.PersonalInfo.Name, reg.ID)
		return subject, html, true
	default:
		return "", "", false
	}
}

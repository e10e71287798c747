// Package mail sends purchase confirmation emails with an attached PDF
// invoice. Failures here are a downstream concern: they are logged by
// callers and never roll back into the purchase that triggered them.
package mail

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"gopkg.in/gomail.v2"
)

// ConfirmationDetails is everything a confirmation message needs.
type ConfirmationDetails struct {
	RouteName     string
	BusName       string
	Origin        string
	Destination   string
	DepartureTime string
	SeatNumbers   []string
	TotalPrice    float64
	Email         string
	ConfirmedAt   string
}

// Mailer delivers confirmation emails over SMTP. A zero-host mailer is
// disabled; callers check Enabled and fall back to their own sink.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewMailer builds a Mailer. host may be empty to disable delivery.
func NewMailer(host string, port int, username, password, from string) *Mailer {
	return &Mailer{host: host, port: port, username: username, password: password, from: from}
}

// Enabled reports whether the mailer has an SMTP endpoint configured.
func (m *Mailer) Enabled() bool { return m.host != "" }

// SendConfirmation renders the invoice and emails it to the buyer.
func (m *Mailer) SendConfirmation(d ConfirmationDetails) error {
	invoice, err := Invoice(d)
	if err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "Bus Ticketing")
	msg.SetHeader("To", d.Email)
	msg.SetHeader("Subject", fmt.Sprintf("Booking Confirmation for %s", d.RouteName))
	msg.SetBody("text/html", confirmationBody(d))
	msg.Attach("invoice.pdf",
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := io.Copy(w, bytes.NewReader(invoice))
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {"application/pdf"}}),
	)

	d2 := gomail.NewDialer(m.host, m.port, m.username, m.password)
	return d2.DialAndSend(msg)
}

func confirmationBody(d ConfirmationDetails) string {
	return fmt.Sprintf(`<h1>Your Booking is Confirmed!</h1>
<p>Thank you for your purchase.</p>
<p><strong>Route:</strong> %s</p>
<p><strong>Bus:</strong> %s</p>
<p><strong>Seats:</strong> %s</p>
<p><strong>Total Price:</strong> %.2f</p>
<p>Your invoice is attached.</p>`,
		d.RouteName, d.BusName, strings.Join(d.SeatNumbers, ", "), d.TotalPrice)
}

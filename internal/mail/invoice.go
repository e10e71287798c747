package mail

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Invoice renders the PDF attached to a confirmation email. The layout
// is intentionally plain: route summary, one line per seat, total.
func Invoice(d ConfirmationDetails) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Booking Invoice")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Route: %s", d.RouteName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Bus: %s", d.BusName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("From %s to %s, departing %s", d.Origin, d.Destination, d.DepartureTime))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(60, 8, "Seat")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 12)
	for _, n := range d.SeatNumbers {
		pdf.Cell(60, 8, n)
		pdf.Ln(8)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", d.TotalPrice))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Seats %s confirmed at %s.", strings.Join(d.SeatNumbers, ", "), d.ConfirmedAt))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice: %w", err)
	}
	return buf.Bytes(), nil
}

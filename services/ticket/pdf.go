package ticket

import (
	"bytes"
	"fmt"

	"tripbot/models"

	"github.com/phpdave11/gofpdf"
)

func buildTicketPDF(t *models.Ticket) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Trip Ticket", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "TRIP TICKET", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking Reference : %s", t.Reference),
		fmt.Sprintf("Trip Type         : %s", t.TripType),
		fmt.Sprintf("Route             : %s -> %s", t.Source, t.Destination),
		fmt.Sprintf("Departure         : %s", t.DepartureTime),
		fmt.Sprintf("Carrier           : %s", orDash(t.Carrier)),
		fmt.Sprintf("Total Passengers  : %d", len(t.Passengers)),
		fmt.Sprintf("Total Price       : %.2f %s", t.Price, t.Currency),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Passengers")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	for i, p := range t.Passengers {
		seat := p.Seat
		if seat == "" {
			seat = "unassigned"
		}
		pdf.Cell(0, 6, fmt.Sprintf("%d. %s, age %d, seat %s", i+1, p.Name, p.Age, seat))
		pdf.Ln(6)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, "Please present this ticket at boarding. Valid for the listed passengers only.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

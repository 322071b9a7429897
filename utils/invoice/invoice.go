package invoice

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// GenerateInvoiceNumber builds a tenant-prefixed invoice number:
// INV-<first 8 hex of org id>-<YYYYMMDD>-<6 random digits>.
// Uniqueness is enforced by the bookings table; on the vanishingly rare
// collision the insert fails and the caller generates again.
func GenerateInvoiceNumber(organizationID uuid.UUID) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("failed to generate invoice suffix: %w", err)
	}
	orgPart := strings.ToUpper(strings.ReplaceAll(organizationID.String(), "-", "")[:8])
	return fmt.Sprintf("INV-%s-%s-%06d", orgPart, time.Now().Format("20060102"), n.Int64()), nil
}

// Data carries everything a rendered invoice shows.
type Data struct {
	InvoiceNumber string
	BookingID     uuid.UUID
	CustomerName  string
	VenueName     string
	CourtName     string
	StartTime     time.Time
	EndTime       time.Time
	TotalPrice    float64
	Currency      string
}

// GeneratePDF renders the invoice as a PDF with a QR code carrying the
// booking reference.
func GeneratePDF(d Data) ([]byte, error) {
	qrPNG, err := qrcode.Encode(fmt.Sprintf("%s|%s", d.InvoiceNumber, d.BookingID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "Booking Invoice")
	pdf.Ln(16)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice: %s", d.InvoiceNumber))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Customer: %s", d.CustomerName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Venue: %s", d.VenueName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Court: %s", d.CourtName))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", d.StartTime.Format("Monday, 02 Jan 2006")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Time: %s - %s", d.StartTime.Format("15:04"), d.EndTime.Format("15:04")))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Total: %.2f %s", d.TotalPrice, d.Currency))

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 30, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return buf.Bytes(), nil
}

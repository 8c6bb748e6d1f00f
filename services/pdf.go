package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// GeneratePlanPDF renders the plan's itinerary text as an A4 document. The
// flights table is rebuilt from the text with ParseItinerary.
func GeneratePlanPDF(plan *Plan) ([]byte, error) {
	narrative, flights := ParseItinerary(plan.Text())

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 25)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(150, 150, 150)
		pdf.CellFormat(0, 8, "Generated by Wanderplan - Not a booking confirmation - Prices subject to change", "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "Wanderplan", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "AI-Powered Travel Itinerary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Disclaimer ───────────────────────────────────────────
	if plan.FlightsSynthetic {
		pdf.SetFillColor(255, 248, 225)
		pdf.SetDrawColor(212, 168, 67)
		pdf.SetTextColor(130, 90, 20)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetLineWidth(0.4)
		y := pdf.GetY()
		pdf.Rect(20, y, 170, 10, "FD")
		pdf.SetXY(23, y+2)
		pdf.MultiCell(164, 4, "ESTIMATED FLIGHTS - live flight search was unavailable. The options below are sample data, not bookable offers.", "", "C", false)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetLineWidth(0.2)
		pdf.Ln(6)
	}

	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+title, "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, label, "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, tr(value), "", 1, "L", false, 0, "")
	}

	// ── Trip Overview ─────────────────────────────────────────
	prefs := plan.Preferences
	sectionHeader("Trip Overview")
	row("Route", fmt.Sprintf("%s - %s", prefs.Source, prefs.Destination))
	row("Dates", fmt.Sprintf("%s to %s", fmtDateReadable(prefs.StartDate), fmtDateReadable(prefs.EndDate)))
	row("Travelers", fmt.Sprintf("%d", prefs.Travelers))
	if prefs.Budget != "" {
		row("Budget", prefs.Budget)
	}
	if prefs.Interests != "" {
		row("Interests", prefs.Interests)
	}
	row("Generated", plan.CreatedAt.Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Itinerary ─────────────────────────────────────────────
	sectionHeader("Itinerary")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(40, 40, 40)
	pdf.MultiCell(170, 5, tr(plainText(narrative)), "", "L", false)
	pdf.Ln(4)

	// ── Flights ───────────────────────────────────────────────
	if len(flights) > 0 {
		sectionHeader("Available Flights")

		widths := []float64{14, 22, 24, 50, 60}
		headers := []string{"#", "Price", "Duration", "Airline", "Flight Number"}

		pdf.SetFont("Helvetica", "B", 9)
		pdf.SetFillColor(235, 235, 235)
		for i, h := range headers {
			pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, f := range flights {
			price := ""
			if f.Price != "" {
				price = "$" + f.Price
			}
			cells := []string{fmt.Sprintf("%d", f.Option), price, f.DurationLabel(), f.Airline, f.FlightNumber}
			for i, c := range cells {
				pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}

// plainText drops the markdown markers the model tends to emit.
func plainText(md string) string {
	lines := strings.Split(md, "\n")
	for i, l := range lines {
		l = strings.TrimLeft(l, "# ")
		l = strings.ReplaceAll(l, "**", "")
		lines[i] = l
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

package services

import (
	"fmt"
	"strings"
)

type TravelPreferences struct {
	Source                string `json:"source" binding:"required"`
	Destination           string `json:"destination" binding:"required"`
	StartDate             string `json:"start_date" binding:"required"`
	EndDate               string `json:"end_date" binding:"required"`
	Budget                string `json:"budget"`
	Travelers             int    `json:"travelers" binding:"required,gte=1"`
	Interests             string `json:"interests"`
	IncludeTransportation bool   `json:"include_transportation"`
}

const transportationRequest = "6. Transportation options and recommendations"

// BuildPrompt renders the itinerary request sent to the text model.
func BuildPrompt(p TravelPreferences) string {
	var b strings.Builder

	b.WriteString("Act as a travel planning expert. Create a detailed travel itinerary based on the following preferences:\n")
	fmt.Fprintf(&b, "- Traveling from: %s\n", p.Source)
	fmt.Fprintf(&b, "- Destination: %s\n", p.Destination)
	fmt.Fprintf(&b, "- Dates: %s to %s\n", p.StartDate, p.EndDate)
	fmt.Fprintf(&b, "- Budget: %s\n", p.Budget)
	fmt.Fprintf(&b, "- Number of Travelers: %d\n", p.Travelers)
	fmt.Fprintf(&b, "- Interests: %s\n", p.Interests)

	b.WriteString("\nPlease provide:\n")
	b.WriteString("1. Daily itinerary with timings\n")
	b.WriteString("2. Estimated costs for activities\n")
	b.WriteString("3. Recommended accommodations\n")
	b.WriteString("4. Travel tips and recommendations\n")
	b.WriteString("5. Must-visit places based on interests\n")
	if p.IncludeTransportation {
		b.WriteString(transportationRequest + "\n")
	}

	b.WriteString("\nFormat the response in a clear, organized way.")
	return b.String()
}

package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ParsedFlight holds the fields recovered from one "### Option N" block.
// Fields that could not be matched are left empty.
type ParsedFlight struct {
	Option       int    `json:"option"`
	Price        string `json:"price"`
	Duration     string `json:"duration"`
	Airline      string `json:"airline"`
	FlightNumber string `json:"flight_number"`
	BookingToken string `json:"booking_token"`
}

var (
	optionRe       = regexp.MustCompile(`Option (\d+)`)
	priceRe        = regexp.MustCompile(`Price: \$(\d+(?:\.\d+)?)`)
	durationRe     = regexp.MustCompile(`Duration: (\d+)`)
	airlineRe      = regexp.MustCompile(`Airline: ([^\r\n]*)`)
	flightNumberRe = regexp.MustCompile(`Flight Number: ([^\r\n]*)`)
	bookingTokenRe = regexp.MustCompile(`booking_token: ([^\r\n]*)`)
)

// SplitItinerary splits text on the first flights separator. ok is false when
// the text has no flights section.
func SplitItinerary(text string) (narrative, flights string, ok bool) {
	narrative, flights, ok = strings.Cut(text, FlightsSeparator)
	return narrative, flights, ok
}

// ParseFlightOptions extracts every option block from a flights section.
func ParseFlightOptions(section string) []ParsedFlight {
	locs := optionRe.FindAllStringSubmatchIndex(section, -1)
	if len(locs) == 0 {
		return nil
	}

	out := make([]ParsedFlight, 0, len(locs))
	for i, loc := range locs {
		end := len(section)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		block := section[loc[1]:end]

		n, _ := strconv.Atoi(section[loc[2]:loc[3]])
		out = append(out, ParsedFlight{
			Option:       n,
			Price:        firstGroup(priceRe, block),
			Duration:     firstGroup(durationRe, block),
			Airline:      strings.TrimSpace(firstGroup(airlineRe, block)),
			FlightNumber: strings.TrimSpace(firstGroup(flightNumberRe, block)),
			BookingToken: strings.TrimSpace(firstGroup(bookingTokenRe, block)),
		})
	}
	return out
}

// ParseItinerary is SplitItinerary followed by ParseFlightOptions.
func ParseItinerary(text string) (string, []ParsedFlight) {
	narrative, section, ok := SplitItinerary(text)
	if !ok {
		return narrative, nil
	}
	return narrative, ParseFlightOptions(section)
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// DurationLabel renders a parsed minute count as "8h 10m"; anything that is
// not a number is returned as is.
func (f ParsedFlight) DurationLabel() string {
	minutes, err := strconv.Atoi(f.Duration)
	if err != nil {
		return f.Duration
	}
	return formatDurationMin(minutes)
}

// ─── Itinerary Q&A ────────────────────────────────────────────────────────────

var (
	destinationRe = regexp.MustCompile(`(?i)\b(?:visiting|in|to)\s+[A-Za-z\s,]+`)
	activityRe    = regexp.MustCompile(`(?i)\b(?:activities|visit|explore|enjoy)\s+[^.]+`)
	dateRe        = regexp.MustCompile(`(?i)\b(?:from|between|on)\s+[A-Za-z]+\s+\d{1,2}(?:st|nd|rd|th)?(?:,?\s+\d{4})?`)
)

// AnswerQuestion gives a short keyword-driven answer about an itinerary
// without calling the model.
func AnswerQuestion(itinerary, question string) string {
	narrative, _, _ := SplitItinerary(itinerary)

	destination := orDefault(destinationRe.FindString(narrative), "visiting several locations")
	activity := orDefault(activityRe.FindString(narrative), "explore various attractions")

	words := strings.FieldsFunc(strings.ToLower(question), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
	has := func(keys ...string) bool {
		for _, w := range words {
			for _, k := range keys {
				if w == k {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("activities", "activity", "do"):
		return fmt.Sprintf("Based on your itinerary, you can %s. Would you like more detail on any particular activity?", activity)
	case has("where", "destination", "destinations"):
		return fmt.Sprintf("According to your itinerary, you'll be %s. Which location would you like to know more about?", destination)
	case has("time", "when"):
		dates := orDefault(dateRe.FindString(narrative), "the dates specified in your itinerary")
		return fmt.Sprintf("Your trip is scheduled for %s. Would you like to know more about the schedule?", dates)
	}

	return fmt.Sprintf("You asked about %q. Your itinerary includes %s with activities like %s. Which part would you like to know more about?",
		strings.TrimSpace(question), destination, activity)
}

func orDefault(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

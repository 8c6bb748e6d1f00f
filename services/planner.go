package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// FlightsSeparator divides the narrative from the flight options in an
// itinerary text. It appears at most once.
const FlightsSeparator = "## Available Flights"

// narrativeFlightsHeading replaces any separator the model writes itself.
const narrativeFlightsHeading = "## Flight Suggestions"

// Plan is the structured result of one generation. Text renders it into the
// itinerary text format consumed by ParseFlightOptions.
type Plan struct {
	ID               string            `json:"id"`
	Preferences      TravelPreferences `json:"preferences"`
	Narrative        string            `json:"narrative"`
	Flights          []FlightOffer     `json:"flights,omitempty"`
	FlightsSynthetic bool              `json:"flights_synthetic"`
	CreatedAt        time.Time         `json:"created_at"`
}

func (p *Plan) Text() string {
	narrative := strings.ReplaceAll(p.Narrative, FlightsSeparator, narrativeFlightsHeading)
	if !p.Preferences.IncludeTransportation {
		return narrative
	}
	return narrative + "\n\n" + FlightsSeparator + "\n\n" + FormatFlightOptions(p.Flights)
}

// FormatFlightOptions writes one "### Option N" block per offer, numbered
// from 1, using the first leg for airline and flight number.
func FormatFlightOptions(offers []FlightOffer) string {
	var b strings.Builder
	for i, offer := range offers {
		leg := offer.FirstLeg()
		fmt.Fprintf(&b, "### Option %d\n", i+1)
		fmt.Fprintf(&b, "- Price: $%s\n", formatPrice(offer.Price))
		fmt.Fprintf(&b, "- Duration: %d\n", offer.TotalDuration)
		fmt.Fprintf(&b, "- Airline: %s\n", leg.Airline)
		fmt.Fprintf(&b, "- Flight Number: %s\n", leg.FlightNumber)
		fmt.Fprintf(&b, "- booking_token: %s\n\n", offer.BookingToken)
	}
	return b.String()
}

func formatPrice(price float64) string {
	return strconv.FormatFloat(price, 'f', -1, 64)
}

// ─── Planner ──────────────────────────────────────────────────────────────────

type Planner struct {
	settings      SettingsStore
	generator     TextGenerator
	flights       FlightSearcher
	aiTimeout     time.Duration
	flightTimeout time.Duration
}

type PlannerOption func(p *Planner)

func WithAITimeout(d time.Duration) PlannerOption {
	return func(p *Planner) {
		p.aiTimeout = d
	}
}

func WithFlightSearchTimeout(d time.Duration) PlannerOption {
	return func(p *Planner) {
		p.flightTimeout = d
	}
}

func NewPlanner(settings SettingsStore, generator TextGenerator, flights FlightSearcher, opts ...PlannerOption) *Planner {
	p := &Planner{
		settings:      settings,
		generator:     generator,
		flights:       flights,
		aiTimeout:     60 * time.Second,
		flightTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Compose generates the itinerary for prefs. It fails only with a
// CredentialError for the AI key or a GenerationError; flight lookup problems
// are replaced with fallback data.
func (p *Planner) Compose(ctx context.Context, prefs TravelPreferences) (*Plan, error) {
	apiKey, err := requireSetting(ctx, p.settings, AIKeySetting)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(prefs)

	var (
		narrative string
		flights   FlightResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := p.generate(gctx, apiKey, prompt)
		if err != nil {
			return &GenerationError{Err: err}
		}
		narrative = text
		return nil
	})
	if prefs.IncludeTransportation {
		g.Go(func() error {
			flights = p.searchFlights(gctx, prefs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Printf("❌ Plan generation failed: %v", err)
		return nil, err
	}

	plan := &Plan{
		ID:          uuid.New().String(),
		Preferences: prefs,
		Narrative:   narrative,
		CreatedAt:   time.Now().UTC(),
	}
	if prefs.IncludeTransportation {
		plan.Flights = flights.Offers
		plan.FlightsSynthetic = flights.Synthetic
	}
	return plan, nil
}

func (p *Planner) generate(ctx context.Context, apiKey, prompt string) (string, error) {
	if p.generator == nil {
		return "", fmt.Errorf("no text generator configured")
	}
	if p.aiTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.aiTimeout)
		defer cancel()
	}
	text, err := p.generator.Generate(ctx, apiKey, prompt)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return text, err
}

func (p *Planner) searchFlights(ctx context.Context, prefs TravelPreferences) (result FlightResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Flight search panicked: %v — using fallback data", r)
			result = FlightResult{Offers: FallbackFlights(), Synthetic: true}
		}
	}()

	if p.flights == nil {
		return FlightResult{Offers: FallbackFlights(), Synthetic: true}
	}

	if p.flightTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.flightTimeout)
		defer cancel()
	}

	result, err := p.flights.SearchFlights(ctx, prefs.Source, prefs.Destination, prefs.StartDate)
	if err != nil {
		log.Printf("⚠️  Flight lookup failed: %v — using fallback data", err)
		return FlightResult{Offers: FallbackFlights(), Synthetic: true}
	}
	return result
}

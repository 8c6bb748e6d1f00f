package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ─── Types ────────────────────────────────────────────────────────────────────

type Airport struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	Time string `json:"time"`
}

type FlightLeg struct {
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Duration         int     `json:"duration"`
	Airplane         string  `json:"airplane,omitempty"`
	Airline          string  `json:"airline"`
	TravelClass      string  `json:"travel_class,omitempty"`
	FlightNumber     string  `json:"flight_number"`
	Overnight        bool    `json:"overnight,omitempty"`
}

// FlightOffer is one bookable option; a connecting itinerary has several legs.
type FlightOffer struct {
	Price         float64     `json:"price"`
	TotalDuration int         `json:"total_duration"`
	Flights       []FlightLeg `json:"flights"`
	Type          string      `json:"type,omitempty"`
	BookingToken  string      `json:"booking_token"`
}

// FirstLeg returns the leg whose airline and flight number describe the offer.
func (o FlightOffer) FirstLeg() FlightLeg {
	if len(o.Flights) == 0 {
		return FlightLeg{}
	}
	return o.Flights[0]
}

// FlightResult carries the offers and whether they are demo data.
type FlightResult struct {
	Offers    []FlightOffer
	Synthetic bool
}

// FlightSearcher is the planner's view of the flight fetcher.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, source, destination, date string) (FlightResult, error)
}

// ─── Airport codes ────────────────────────────────────────────────────────────

var airportCodes = map[string]string{
	"delhi":     "DEL",
	"new delhi": "DEL",
	"hanoi":     "HAN",
	"new york":  "JFK",
	"paris":     "CDG",
	"london":    "LHR",
	"dubai":     "DXB",
	"istanbul":  "IST",
	"frankfurt": "FRA",
	"berlin":    "BER",
	"singapore": "SIN",
	"bangkok":   "BKK",
	"mumbai":    "BOM",
	"kolkata":   "CCU",
}

// AirportCode maps a city name to its main airport; unknown names are
// returned uppercased so IATA codes pass straight through.
func AirportCode(name string) string {
	if code, ok := airportCodes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return code
	}
	return strings.ToUpper(strings.TrimSpace(name))
}

// ─── Client ───────────────────────────────────────────────────────────────────

type FlightClient struct {
	settings   SettingsStore
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	timeout    time.Duration
}

type FlightClientOption func(c *FlightClient)

func WithFlightBaseURL(baseURL string) FlightClientOption {
	return func(c *FlightClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithFlightHTTPClient(httpClient *http.Client) FlightClientOption {
	return func(c *FlightClient) {
		c.httpClient = httpClient
	}
}

func WithFlightRateLimiter(limiter *rate.Limiter) FlightClientOption {
	return func(c *FlightClient) {
		c.limiter = limiter
	}
}

func WithFlightTimeout(timeout time.Duration) FlightClientOption {
	return func(c *FlightClient) {
		c.timeout = timeout
	}
}

func NewFlightClient(settings SettingsStore, opts ...FlightClientOption) *FlightClient {
	c := &FlightClient{
		settings:   settings,
		baseURL:    "https://serpapi.com",
		httpClient: &http.Client{},
		timeout:    30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchFlights looks up one-way offers for the given cities and date.
// A missing API key is returned as an error; every other failure is logged
// and answered with FallbackFlights.
func (c *FlightClient) SearchFlights(ctx context.Context, source, destination, date string) (FlightResult, error) {
	apiKey, err := requireSetting(ctx, c.settings, FlightKeySetting)
	if err != nil {
		return FlightResult{}, err
	}

	depCode := AirportCode(source)
	arrCode := AirportCode(destination)

	offers, err := c.fetch(ctx, apiKey, depCode, arrCode, date)
	if err != nil {
		log.Printf("⚠️  Flight search %s→%s failed: %v — using fallback data", depCode, arrCode, err)
		return FlightResult{Offers: FallbackFlights(), Synthetic: true}, nil
	}

	log.Printf("✅ Flight search %s→%s: %d offers", depCode, arrCode, len(offers))
	return FlightResult{Offers: offers}, nil
}

type flightSearchResponse struct {
	BestFlights  []FlightOffer `json:"best_flights"`
	OtherFlights []FlightOffer `json:"other_flights"`
	Error        string        `json:"error"`
}

func (c *FlightClient) fetch(ctx context.Context, apiKey, depCode, arrCode, date string) ([]FlightOffer, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	q := url.Values{}
	q.Set("engine", "google_flights")
	q.Set("type", "2")
	q.Set("departure_id", depCode)
	q.Set("arrival_id", arrCode)
	q.Set("outbound_date", date)
	q.Set("currency", "USD")
	q.Set("hl", "en")
	q.Set("api_key", apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result flightSearchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}
	if result.Error != "" {
		return nil, errors.New(result.Error)
	}

	if len(result.BestFlights) > 0 {
		return result.BestFlights, nil
	}
	if result.OtherFlights != nil {
		return result.OtherFlights, nil
	}
	return []FlightOffer{}, nil
}

// ─── Fallback ─────────────────────────────────────────────────────────────────

// FallbackFlights is the fixed demo list served when the search API cannot be
// reached. Callers must flag it as estimated data.
func FallbackFlights() []FlightOffer {
	return []FlightOffer{
		{
			Price:         298,
			TotalDuration: 240,
			Flights: []FlightLeg{
				{Airline: "Vietjet", FlightNumber: "VJ 972"},
			},
			BookingToken: "WyJDalJJVjFORk5VWlpPSEZwTWsxQlFrcDZhSGRDUnkwdExTMHRMUzB0TFhaMGJuY3lNRUZCUVVGQlIyVnJXWFJOVFdKdmNEUkJFZ1ZXU2prM01ob0xDTm5vQVJBQ0dnTlZVMFE0SEhEWjZBRT0iLFtbIkRFTCIsIjIwMjUtMDItMDciLCJIQU4iLG51bGwsIlZKIiwiOTcyIl1dXQ==",
		},
		{
			Price:         416,
			TotalDuration: 490,
			Type:          "One way",
			Flights: []FlightLeg{
				{
					DepartureAirport: Airport{Name: "Indira Gandhi International Airport", ID: "DEL", Time: "2025-02-07 16:30"},
					ArrivalAirport:   Airport{Name: "Netaji Subhash Chandra Bose International Airport", ID: "CCU", Time: "2025-02-07 18:35"},
					Duration:         125,
					Airplane:         "Airbus A321neo",
					Airline:          "IndiGo",
					TravelClass:      "Economy",
					FlightNumber:     "6E 529",
				},
				{
					DepartureAirport: Airport{Name: "Netaji Subhash Chandra Bose International Airport", ID: "CCU", Time: "2025-02-07 22:05"},
					ArrivalAirport:   Airport{Name: "Noi Bai International Airport", ID: "HAN", Time: "2025-02-08 02:10"},
					Duration:         155,
					Airplane:         "Airbus A321neo",
					Airline:          "IndiGo",
					TravelClass:      "Economy",
					FlightNumber:     "6E 1631",
					Overnight:        true,
				},
			},
			BookingToken: "WyJDalJJVjFORk5VWlpPSEZwTWsxQlFrcDZhSGRDUnkwdExTMHRMUzB0TFhaMGJuY3lNRUZCUVVGQlIyVnJXWFJOVFdKdmNEUkJFZ3cyUlRVeU9YdzJSVEUyTXpFYUN3alB4QUlRQWhvRFZWTkVPQnh3ejhRQyIsW1siREVMIiwiMjAyNS0wMi0wNyIsIkNDVSIsbnVsbCwiNkUiLCI1MjkiXSxbIkNDVSIsIjIwMjUtMDItMDciLCJIQU4iLG51bGwsIjZFIiwiMTYzMSJdXV0=",
		},
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

// formatDurationMin converts minutes to a readable "4h 10m".
func formatDurationMin(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	if m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dh", h)
}

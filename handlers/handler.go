package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"wanderplan/database"
	"wanderplan/services"

	"github.com/gin-gonic/gin"
)

type PlanStore interface {
	Ping(ctx context.Context) error
	SavePlan(ctx context.Context, p *database.Plan) error
	GetPlan(ctx context.Context, id string) (*database.Plan, error)
	UpdatePlanPDF(ctx context.Context, id string, pdfData []byte) error
}

type Composer interface {
	Compose(ctx context.Context, prefs services.TravelPreferences) (*services.Plan, error)
}

type Handler struct {
	plans    PlanStore
	planner  Composer
	settings services.SettingsStore
}

func New(plans PlanStore, planner Composer, settings services.SettingsStore) *Handler {
	return &Handler{plans: plans, planner: planner, settings: settings}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	r.POST("/plans", h.CreatePlan)
	r.GET("/plans/:id", h.GetPlan)
	r.GET("/plans/:id/pdf", h.DownloadPDF)
	r.POST("/plans/:id/chat", h.Chat)
}

// ─── Conversion ───────────────────────────────────────────────────────────────

func toRecord(p *services.Plan) (*database.Plan, error) {
	flightsJSON, err := json.Marshal(p.Flights)
	if err != nil {
		return nil, err
	}
	prefs := p.Preferences
	return &database.Plan{
		ID:                    p.ID,
		Source:                prefs.Source,
		Destination:           prefs.Destination,
		StartDate:             prefs.StartDate,
		EndDate:               prefs.EndDate,
		Budget:                prefs.Budget,
		Travelers:             prefs.Travelers,
		Interests:             prefs.Interests,
		IncludeTransportation: prefs.IncludeTransportation,
		Narrative:             p.Narrative,
		FlightsJSON:           string(flightsJSON),
		FlightsSynthetic:      p.FlightsSynthetic,
		ItineraryText:         p.Text(),
		CreatedAt:             p.CreatedAt,
	}, nil
}

func fromRecord(r *database.Plan) (*services.Plan, error) {
	p := &services.Plan{
		ID: r.ID,
		Preferences: services.TravelPreferences{
			Source:                r.Source,
			Destination:           r.Destination,
			StartDate:             r.StartDate,
			EndDate:               r.EndDate,
			Budget:                r.Budget,
			Travelers:             r.Travelers,
			Interests:             r.Interests,
			IncludeTransportation: r.IncludeTransportation,
		},
		Narrative:        r.Narrative,
		FlightsSynthetic: r.FlightsSynthetic,
		CreatedAt:        r.CreatedAt,
	}
	if r.FlightsJSON != "" && r.FlightsJSON != "null" {
		if err := json.Unmarshal([]byte(r.FlightsJSON), &p.Flights); err != nil {
			return nil, fmt.Errorf("failed to parse stored flight data: %w", err)
		}
	}
	return p, nil
}

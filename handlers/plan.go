package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"wanderplan/database"
	"wanderplan/services"

	"github.com/gin-gonic/gin"
)

type PlanResponse struct {
	PlanID    string                  `json:"plan_id"`
	Itinerary string                  `json:"itinerary"`
	Narrative string                  `json:"narrative"`
	Flights   []services.ParsedFlight `json:"flights"`
	Source    string                  `json:"source,omitempty"` // "live" or "estimated"
	PDFURL    string                  `json:"pdf_url"`
	CreatedAt time.Time               `json:"created_at"`
}

func newPlanResponse(id, text string, synthetic, withFlights bool, createdAt time.Time) PlanResponse {
	narrative, flights := services.ParseItinerary(text)
	resp := PlanResponse{
		PlanID:    id,
		Itinerary: text,
		Narrative: narrative,
		Flights:   flights,
		PDFURL:    "/api/plans/" + id + "/pdf",
		CreatedAt: createdAt,
	}
	if resp.Flights == nil {
		resp.Flights = []services.ParsedFlight{}
	}
	if withFlights {
		resp.Source = "live"
		if synthetic {
			resp.Source = "estimated"
		}
	}
	return resp
}

func (h *Handler) CreatePlan(c *gin.Context) {
	var req services.TravelPreferences
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid start date format. Use YYYY-MM-DD"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end date format. Use YYYY-MM-DD"})
		return
	}
	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "End date must not be before start date"})
		return
	}

	plan, err := h.planner.Compose(c.Request.Context(), req)
	if err != nil {
		var genErr *services.GenerationError
		switch {
		case errors.Is(err, services.ErrMissingCredential):
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": "API key required. Please add your Gemini API key in settings to continue."})
		case errors.As(err, &genErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate travel plan. Please try again."})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate travel plan"})
		}
		return
	}

	record, err := toRecord(plan)
	if err != nil {
		log.Printf("❌ Failed to encode plan %s: %v", plan.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save plan"})
		return
	}
	if err := h.plans.SavePlan(c.Request.Context(), record); err != nil {
		log.Printf("❌ Failed to save plan %s: %v", plan.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save plan"})
		return
	}

	log.Printf("✅ Plan %s generated (%s → %s, %d flight options)", plan.ID,
		req.Source, req.Destination, len(plan.Flights))

	c.JSON(http.StatusOK, newPlanResponse(plan.ID, record.ItineraryText,
		plan.FlightsSynthetic, req.IncludeTransportation, plan.CreatedAt))
}

func (h *Handler) GetPlan(c *gin.Context) {
	record, ok := h.loadPlan(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newPlanResponse(record.ID, record.ItineraryText,
		record.FlightsSynthetic, record.IncludeTransportation, record.CreatedAt))
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (h *Handler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	record, ok := h.loadPlan(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"role":    "assistant",
		"content": services.AnswerQuestion(record.ItineraryText, req.Message),
	})
}

func (h *Handler) loadPlan(c *gin.Context) (*database.Plan, bool) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing plan ID"})
		return nil, false
	}

	record, err := h.plans.GetPlan(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return nil, false
	}
	if err != nil {
		log.Printf("❌ Failed to load plan %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plan"})
		return nil, false
	}
	return record, true
}

package handlers

import (
	"log"
	"net/http"

	"wanderplan/services"

	"github.com/gin-gonic/gin"
)

// DownloadPDF renders the plan on first request and caches the bytes in the
// plans table.
func (h *Handler) DownloadPDF(c *gin.Context) {
	record, ok := h.loadPlan(c)
	if !ok {
		return
	}

	pdfData := record.PDFData
	if len(pdfData) == 0 {
		plan, err := fromRecord(record)
		if err != nil {
			log.Printf("❌ Plan %s: %v", record.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse stored plan"})
			return
		}

		pdfData, err = services.GeneratePlanPDF(plan)
		if err != nil {
			log.Printf("❌ PDF generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
			return
		}

		if err := h.plans.UpdatePlanPDF(c.Request.Context(), record.ID, pdfData); err != nil {
			log.Printf("⚠️  Failed to cache PDF for plan %s: %v", record.ID, err)
		} else {
			log.Printf("✅ PDF generated for plan %s (%d bytes)", record.ID, len(pdfData))
		}
	}

	c.Header("Content-Disposition", "attachment; filename=wanderplan-itinerary.pdf")
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfData)
}

func (h *Handler) Health(c *gin.Context) {
	dbStatus := "ok"
	if h.plans == nil {
		dbStatus = "not initialized"
	} else if err := h.plans.Ping(c.Request.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  "Wanderplan API",
		"database": dbStatus,
	})
}

package handlers

import (
	"errors"
	"log"
	"net/http"
	"slices"
	"strings"

	"wanderplan/services"

	"github.com/gin-gonic/gin"
)

// GetSettings reports which credentials are configured; values are never
// returned.
func (h *Handler) GetSettings(c *gin.Context) {
	configured := make(map[string]bool, len(services.SettingsKeys))
	for _, key := range services.SettingsKeys {
		v, err := h.settings.Get(c.Request.Context(), key)
		if err != nil {
			log.Printf("❌ Failed to read setting %s: %v", key, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read settings"})
			return
		}
		configured[key] = strings.TrimSpace(v) != ""
	}
	c.JSON(http.StatusOK, gin.H{"configured": configured})
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req map[string]string
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if len(req) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No settings provided"})
		return
	}
	for key := range req {
		if !slices.Contains(services.SettingsKeys, key) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown setting: " + key})
			return
		}
	}

	for _, key := range services.SettingsKeys {
		value, ok := req[key]
		if !ok {
			continue
		}
		if err := h.settings.Set(c.Request.Context(), key, strings.TrimSpace(value)); err != nil {
			if errors.Is(err, services.ErrReadOnlySettings) {
				c.JSON(http.StatusConflict, gin.H{"error": "Settings are read-only in this deployment"})
				return
			}
			log.Printf("❌ Failed to save setting %s: %v", key, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Settings saved"})
}

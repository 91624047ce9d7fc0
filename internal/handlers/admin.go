package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"pricing-compliance-portal/internal/cleanup"
	"pricing-compliance-portal/internal/models"
	"pricing-compliance-portal/internal/scheduler"
)

// AdminHandler handles operator-facing requests (statistics, maintenance)
type AdminHandler struct {
	db             *gorm.DB
	scheduler      *scheduler.Scheduler
	cleanupService *cleanup.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{
		db:             db,
		scheduler:      sched,
		cleanupService: cleanup.NewService(db),
	}
}

// GetStats returns system statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	var projectCount, unitCount int64
	h.db.Model(&models.Project{}).Count(&projectCount)
	h.db.Model(&models.Unit{}).Count(&unitCount)

	var soldCount, availableCount int64
	h.db.Model(&models.Unit{}).Where("status = ?", models.UnitStatusSold).Count(&soldCount)
	h.db.Model(&models.Unit{}).Where("status = ?", models.UnitStatusAvailable).Count(&availableCount)

	stats["projects"] = projectCount
	stats["units"] = map[string]interface{}{
		"total":     unitCount,
		"sold":      soldCount,
		"available": availableCount,
	}

	// Upload activity (last 24 hours / 7 days) and rejection totals
	last24h := time.Now().AddDate(0, 0, -1)
	last7days := time.Now().AddDate(0, 0, -7)
	var uploads24h, uploads7d int64
	h.db.Model(&models.UploadLog{}).Where("created_at >= ?", last24h).Count(&uploads24h)
	h.db.Model(&models.UploadLog{}).Where("created_at >= ?", last7days).Count(&uploads7d)

	var totals struct {
		Accepted int64
		Rejected int64
	}
	h.db.Model(&models.UploadLog{}).
		Select("COALESCE(SUM(accepted_count),0) as accepted, COALESCE(SUM(rejected_count),0) as rejected").
		Where("created_at >= ?", last7days).
		Scan(&totals)

	stats["uploads"] = map[string]interface{}{
		"last_24h":         uploads24h,
		"last_7_days":      uploads7d,
		"rows_accepted_7d": totals.Accepted,
		"rows_rejected_7d": totals.Rejected,
	}

	// Dialect distribution over the last 7 days
	var dialectCounts []struct {
		Dialect string
		Count   int64
	}
	h.db.Model(&models.UploadLog{}).
		Select("dialect, count(*) as count").
		Where("created_at >= ?", last7days).
		Group("dialect").
		Scan(&dialectCounts)

	dialects := make(map[string]int64)
	for _, dc := range dialectCounts {
		dialects[dc.Dialect] = dc.Count
	}
	stats["dialects_7d"] = dialects

	c.JSON(http.StatusOK, stats)
}

// RunMaintenance manually triggers the maintenance job
func (h *AdminHandler) RunMaintenance(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available (MySQL/GORM required)",
		})
		return
	}

	log.Println("Admin: Manual maintenance trigger requested")

	// Run in goroutine to avoid blocking
	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			log.Printf("Admin: Manual maintenance failed: %v", err)
		} else {
			log.Println("Admin: Manual maintenance completed successfully")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Maintenance job started in background",
		"status":  "running",
	})
}

// RunCleanup runs retention cleanup, optionally as a dry run
func (h *AdminHandler) RunCleanup(c *gin.Context) {
	cfg := cleanup.DefaultConfig()
	cfg.DryRun = c.Query("dry_run") == "true"

	result, err := h.cleanupService.Run(cfg)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

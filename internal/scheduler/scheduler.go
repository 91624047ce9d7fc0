package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"pricing-compliance-portal/internal/cleanup"
	"pricing-compliance-portal/internal/config"
	"pricing-compliance-portal/internal/database"
	"pricing-compliance-portal/internal/search"
)

// Scheduler runs the nightly maintenance job: upload-log retention,
// orphaned-unit sweep and a full search reindex.
type Scheduler struct {
	cron      *cron.Cron
	db        *gorm.DB
	cleanup   *cleanup.Service
	search    *search.SearchClient
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler. search may be nil when no search
// backend is configured.
func NewScheduler(db *gorm.DB, searchClient *search.SearchClient, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		db:      db,
		cleanup: cleanup.NewService(db),
		search:  searchClient,
		config:  cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Maintenance.DailyRunEnabled {
		log.Println("Scheduler: Daily maintenance is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Maintenance.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting daily maintenance job...")
		if err := s.runMaintenance(); err != nil {
			log.Printf("Scheduler: Daily maintenance failed: %v", err)
		} else {
			log.Println("Scheduler: Daily maintenance completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with daily run at %s (cron: %s)", s.config.Maintenance.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// runMaintenance executes retention cleanup followed by a search reindex
func (s *Scheduler) runMaintenance() error {
	cfg := cleanup.DefaultConfig()
	if s.config.Maintenance.RetentionDays > 0 {
		cfg.RetentionDays = s.config.Maintenance.RetentionDays
	}

	result, err := s.cleanup.Run(cfg)
	if err != nil {
		return err
	}
	log.Printf("Scheduler: Cleanup removed %d upload logs, %d orphaned units",
		result.DeletedLogs, result.DeletedUnits)

	if s.search == nil {
		return nil
	}

	units, err := database.NewGormDBFromDB(s.db).AllUnits()
	if err != nil {
		return err
	}

	// Reindex project by project so a failing project doesn't abort the rest
	reindexed, failed := 0, 0
	byProject := make(map[string]int)
	for _, u := range units {
		byProject[u.ProjectID]++
	}
	for projectID := range byProject {
		var projectUnits = units[:0:0]
		for _, u := range units {
			if u.ProjectID == projectID {
				projectUnits = append(projectUnits, u)
			}
		}
		if err := s.search.ReplaceProjectUnits(projectID, projectUnits); err != nil {
			log.Printf("Scheduler: Failed to reindex project %s: %v", projectID, err)
			failed++
			continue
		}
		reindexed++
	}
	log.Printf("Scheduler: Reindex complete. Projects: %d ok, %d failed, %d units total",
		reindexed, failed, len(units))

	return nil
}

// RunNow immediately executes the maintenance job (for manual trigger)
func (s *Scheduler) RunNow() error {
	log.Println("Scheduler: Manual trigger - starting maintenance job...")
	return s.runMaintenance()
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 3:00 AM if parsing fails
	log.Printf("Scheduler: Failed to parse time '%s', using default 03:00", timeStr)
	return "0 3 * * *"
}

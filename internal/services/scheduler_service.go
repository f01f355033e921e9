package services

import (
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
)

// SchedulerService enqueues the periodic batch jobs. The worker consumes them;
// each job is idempotent per period so a duplicate enqueue is harmless.
type SchedulerService struct {
	Client *asynq.Client
}

func NewSchedulerService(client *asynq.Client) *SchedulerService {
	return &SchedulerService{Client: client}
}

// StartScheduler registers the recurring jobs:
//   - daily at 01:00: lock-in maturity sweep
//   - monthly on the 1st: team volume recompute + bonuses for the closed month,
//     then commission payments
func (s *SchedulerService) StartScheduler() {
	c := cron.New()

	if _, err := c.AddFunc("0 1 * * *", func() {
		s.enqueue("maturity-sweep", map[string]interface{}{"at": time.Now().UTC()})
	}); err != nil {
		log.Printf("Error scheduling maturity sweep: %v", err)
		return
	}

	if _, err := c.AddFunc("30 1 1 * *", func() {
		period := time.Now().UTC().AddDate(0, -1, 0).Format("2006-01")
		s.enqueue("team-volume-recompute", map[string]interface{}{"period": period})
		s.enqueue("commission-payments", map[string]interface{}{"limit": 0})
	}); err != nil {
		log.Printf("Error scheduling team volume recompute: %v", err)
		return
	}

	c.Start()
	log.Println("Engine scheduler started (daily sweep at 01:00, monthly recompute on the 1st)")
}

func (s *SchedulerService) enqueue(taskType string, payload map[string]interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s payload: %v", taskType, err)
		return
	}
	if _, err := s.Client.Enqueue(asynq.NewTask(taskType, data)); err != nil {
		log.Printf("Failed to enqueue %s: %v", taskType, err)
	}
}

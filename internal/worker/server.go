package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"mygrownet-engine/internal/services"
	"mygrownet-engine/pkg/common"

	"github.com/hibiken/asynq"
)

type Worker struct {
	TeamVolume   *services.TeamVolumeService
	Commission   *services.CommissionService
	Distribution *services.DistributionService
	Withdrawal   *services.WithdrawalService
}

func NewWorker(teamVolume *services.TeamVolumeService, commission *services.CommissionService,
	distribution *services.DistributionService, withdrawal *services.WithdrawalService) *Worker {
	return &Worker{
		TeamVolume:   teamVolume,
		Commission:   commission,
		Distribution: distribution,
		Withdrawal:   withdrawal,
	}
}

func (w *Worker) HandleTeamVolumeRecompute(ctx context.Context, t *asynq.Task) error {
	var p TeamVolumePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	result, err := w.TeamVolume.RecomputeTeamVolumes(p.Period)
	if err != nil {
		return err
	}
	logBatch("team volume recompute", p.Period, result)

	result, err = w.TeamVolume.AwardPeriodBonuses(p.Period)
	if err != nil {
		return err
	}
	logBatch("period bonuses", p.Period, result)
	return nil
}

func (w *Worker) HandleCommissionPayments(ctx context.Context, t *asynq.Task) error {
	var p CommissionPaymentsPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	result, err := w.Commission.ProcessCommissionPayments(p.Limit)
	if err != nil {
		return err
	}
	logBatch("commission payments", "", result)
	return nil
}

func (w *Worker) HandleAnnualDistribution(ctx context.Context, t *asynq.Task) error {
	var p DistributionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	cycle, err := w.Distribution.RunAnnualDistribution(p.Period, p.Pool, p.At)
	if err == services.ErrCycleAlreadyRun {
		log.Printf("annual distribution %s already completed, skipping", p.Period)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("annual distribution %s completed, cycle %s", p.Period, cycle.Reference)
	return nil
}

func (w *Worker) HandleQuarterlyDistribution(ctx context.Context, t *asynq.Task) error {
	var p DistributionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	cycle, err := w.Distribution.RunQuarterlyDistribution(p.Period, p.Pool, p.At)
	if err == services.ErrCycleAlreadyRun {
		log.Printf("quarterly distribution %s already completed, skipping", p.Period)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("quarterly distribution %s completed, cycle %s", p.Period, cycle.Reference)
	return nil
}

func (w *Worker) HandleMaturitySweep(ctx context.Context, t *asynq.Task) error {
	var p MaturitySweepPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("json.Unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	result, err := w.Withdrawal.SweepMaturedPositions(p.At)
	if err != nil {
		return err
	}
	logBatch("maturity sweep", "", result)
	return nil
}

func logBatch(job, period string, result *common.BatchResult) {
	log.Printf("%s %s finished: processed=%d skipped=%d failed=%d",
		job, period, result.Processed, result.Skipped, result.Failed)
	for _, failure := range result.Failures {
		log.Printf("%s record %d failed: %s", job, failure.RecordID, failure.Reason)
	}
}

func StartWorker(redisOpt asynq.RedisClientOpt, w *Worker) {
	srv := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeTeamVolumeRecompute, w.HandleTeamVolumeRecompute)
	mux.HandleFunc(TypeCommissionPayments, w.HandleCommissionPayments)
	mux.HandleFunc(TypeAnnualDistribution, w.HandleAnnualDistribution)
	mux.HandleFunc(TypeQuarterlyDistribution, w.HandleQuarterlyDistribution)
	mux.HandleFunc(TypeMaturitySweep, w.HandleMaturitySweep)

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}

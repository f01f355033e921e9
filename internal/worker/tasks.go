package worker

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task Types
const (
	TypeTeamVolumeRecompute   = "team-volume-recompute"
	TypeCommissionPayments    = "commission-payments"
	TypeAnnualDistribution    = "annual-distribution"
	TypeQuarterlyDistribution = "quarterly-distribution"
	TypeMaturitySweep         = "maturity-sweep"
)

type TeamVolumePayload struct {
	Period string `json:"period"`
}

type CommissionPaymentsPayload struct {
	Limit int `json:"limit"`
}

type DistributionPayload struct {
	Period string    `json:"period"`
	Pool   int64     `json:"pool"`
	At     time.Time `json:"at"`
}

type MaturitySweepPayload struct {
	At time.Time `json:"at"`
}

// Task Creators

func NewTeamVolumeRecomputeTask(payload TeamVolumePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTeamVolumeRecompute, data), nil
}

func NewCommissionPaymentsTask(payload CommissionPaymentsPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeCommissionPayments, data), nil
}

func NewAnnualDistributionTask(payload DistributionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAnnualDistribution, data), nil
}

func NewQuarterlyDistributionTask(payload DistributionPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeQuarterlyDistribution, data), nil
}

func NewMaturitySweepTask(payload MaturitySweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeMaturitySweep, data), nil
}

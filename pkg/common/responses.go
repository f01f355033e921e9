package common

import (
	"fmt"
	"net/http"
)

type SuccessResponse struct {
	Status  int         `json:"status"`
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

type ErrorResponse struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}, message string) SuccessResponse {
	return SuccessResponse{
		Status:  http.StatusOK,
		Success: true,
		Message: message,
		Data:    data,
	}
}

func NewErrorResponse(message string, data interface{}, status int) ErrorResponse {
	return ErrorResponse{
		Status:  status,
		Success: false,
		Message: message,
		Data:    data,
	}
}

// BatchFailure records a single failed record in a batch sweep.
type BatchFailure struct {
	RecordID uint   `json:"record_id"`
	Reason   string `json:"reason"`
}

// BatchResult is the aggregate outcome of a batch job. A failed record never
// aborts the batch; it is appended here and the sweep continues.
type BatchResult struct {
	Processed int            `json:"processed"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
	Failures  []BatchFailure `json:"failures,omitempty"`
}

func (r *BatchResult) AddFailure(recordID uint, reason string) {
	r.Failed++
	r.Failures = append(r.Failures, BatchFailure{RecordID: recordID, Reason: reason})
}

func (r *BatchResult) AddFailuref(recordID uint, format string, args ...interface{}) {
	r.AddFailure(recordID, fmt.Sprintf(format, args...))
}

package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "ERROR"

	QueryInit      InternalStatus = "Init"
	StorageCall    InternalStatus = "Storage"
	RephraseCall   InternalStatus = "Rephrase"
	ExtractionCall InternalStatus = "Extraction"
	Error          InternalStatus = "Error"
	Complete       InternalStatus = "Complete"

	JobTypeQuery JobType = "Query"
)

// Job is an asynchronous query request and its outcome. Records are cached
// with a TTL only; losing one loses nothing durable.
type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

type JobPayload struct {
	FileId   string                   `json:"file_id"`
	Queries  []string                 `json:"queries"`
	Rephrase bool                     `json:"rephrase"`
	Results  []queryModel.QueryResult `json:"results,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

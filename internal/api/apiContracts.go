package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "ERROR"
)

type BoundingBox struct {
	Left   float64 `json:"Left" example:"0.12"`
	Top    float64 `json:"Top" example:"0.34"`
	Width  float64 `json:"Width" example:"0.2"`
	Height float64 `json:"Height" example:"0.03"`
}

type ImagePayload struct {
	Content     string `json:"content"`
	ContentType string `json:"content_type" example:"image/png"`
}

type UploadResponse struct {
	Message  string `json:"message" example:"File uploaded successfully"`
	FileId   string `json:"file_id" example:"3f0c2a4e-8a7b-4c1d-9e6f-1b2c3d4e5f60"`
	Filename string `json:"filename" example:"ticket.png"`
}

// QueryResponse is the single query shape kept for existing clients.
type QueryResponse struct {
	Query      string        `json:"query" example:"ticket creator"`
	Answer     string        `json:"answer" example:"Jane Doe"`
	Confidence float64       `json:"confidence" example:"97.4"`
	Image      *ImagePayload `json:"image,omitempty"`
}

type QueryResult struct {
	Query      string        `json:"query"`
	Answer     string        `json:"answer"`
	Confidence float64       `json:"confidence"`
	Geometry   *BoundingBox  `json:"geometry"`
	QueryId    string        `json:"query_id"`
	Image      *ImagePayload `json:"image,omitempty"`
}

type BatchQueryResponse struct {
	FileId  string        `json:"file_id"`
	Results []QueryResult `json:"results"`
}

type DeleteResponse struct {
	Message string `json:"message" example:"Document deleted"`
	FileId  string `json:"file_id"`
	Deleted int    `json:"deleted_objects"`
}

type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Sweeper string `json:"sweeper" example:"running"`
}

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status  string        `json:"status"`
	FileId  string        `json:"file_id,omitempty"`
	Results []QueryResult `json:"results,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

// requests---------------------

type AsyncQueryRequest struct {
	FileId   string   `json:"file_id" validate:"required"`
	Queries  []string `json:"queries" validate:"required"`
	Rephrase bool     `json:"rephrase"`
}

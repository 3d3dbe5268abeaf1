package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/api"
	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
	"github.com/akolanti/DocQueryAPI/internal/domain/jobModel"
	"github.com/akolanti/DocQueryAPI/internal/domain/queryModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	return api.JobResponse{
		Id:        job.Id,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result: api.Result{
			Status:  string(job.Status),
			FileId:  job.JobPayload.FileId,
			Results: ToAPIResults(job.JobPayload.Results),
		},
	}
}

func ToAPIResults(results []queryModel.QueryResult) []api.QueryResult {
	if len(results) == 0 {
		return nil
	}
	out := make([]api.QueryResult, len(results))
	for i, r := range results {
		out[i] = ToAPIResult(r)
	}
	return out
}

func ToAPIResult(r queryModel.QueryResult) api.QueryResult {
	return api.QueryResult{
		Query:      r.Query,
		Answer:     r.Answer,
		Confidence: r.Confidence,
		Geometry:   toAPIBox(r.Geometry),
		QueryId:    r.QueryId,
	}
}

func ToQueryResponse(r queryModel.QueryResult, image *api.ImagePayload) api.QueryResponse {
	return api.QueryResponse{
		Query:      r.Query,
		Answer:     r.Answer,
		Confidence: r.Confidence,
		Image:      image,
	}
}

func ToUploadResponse(ref commonModels.DocumentRef) api.UploadResponse {
	return api.UploadResponse{
		Message:  "File uploaded successfully",
		FileId:   ref.FileId,
		Filename: ref.Filename,
	}
}

func toAPIBox(b *queryModel.BoundingBox) *api.BoundingBox {
	if b == nil {
		return nil
	}
	return &api.BoundingBox{Left: b.Left, Top: b.Top, Width: b.Width, Height: b.Height}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}

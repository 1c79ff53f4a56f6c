package api

import (
	"time"

	"github.com/Leewodls/ko-analysis/internal/queue"
)

// AnalysisRequest asks for a full analysis of one recorded answer.
type AnalysisRequest struct {
	UserID      string `json:"user_id"`
	QuestionNum int    `json:"question_num"`
	S3AudioURL  string `json:"s3_audio_url"`
	Gender      string `json:"gender"`
}

// AnalysisResponse acknowledges an accepted analysis request.
type AnalysisResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ItemID  int64  `json:"item_id,omitempty"`
	Status  string `json:"status,omitempty"`
}

// CommunicationRequest is the callback payload the interview server sends.
type CommunicationRequest struct {
	S3ObjectKey string `json:"s3ObjectKey"`
}

// CommunicationResponse is the result-code envelope the interview server
// expects. Code 0000 means accepted; 4xxx request errors; 5xxx server errors.
type CommunicationResponse struct {
	ResultCode    string `json:"resultCode"`
	ResultMessage string `json:"resultMessage"`
}

// StageStatus reports the readiness of one pipeline stage.
type StageStatus struct {
	Name   string `json:"name"`
	Ready  bool   `json:"ready"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse summarizes daemon health.
type HealthResponse struct {
	Status string         `json:"status"`
	Queue  map[string]int `json:"queue,omitempty"`
	Stages []StageStatus  `json:"stages,omitempty"`
}

// ItemView is the JSON projection of a queue item.
type ItemView struct {
	ID              int64     `json:"id"`
	ObjectKey       string    `json:"object_key"`
	UserID          string    `json:"user_id"`
	QuestionNum     int       `json:"question_num"`
	Gender          string    `json:"gender"`
	Status          string    `json:"status"`
	ProgressStage   string    `json:"progress_stage,omitempty"`
	ProgressPercent float64   `json:"progress_percent"`
	ProgressMessage string    `json:"progress_message,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	NeedsReview     bool      `json:"needs_review,omitempty"`
	ReviewReason    string    `json:"review_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func itemView(item *queue.Item) ItemView {
	return ItemView{
		ID:              item.ID,
		ObjectKey:       item.ObjectKey,
		UserID:          item.UserID,
		QuestionNum:     item.QuestionNum,
		Gender:          item.Gender,
		Status:          string(item.Status),
		ProgressStage:   item.ProgressStage,
		ProgressPercent: item.ProgressPercent,
		ProgressMessage: item.ProgressMessage,
		ErrorMessage:    item.ErrorMessage,
		NeedsReview:     item.NeedsReview,
		ReviewReason:    item.ReviewReason,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

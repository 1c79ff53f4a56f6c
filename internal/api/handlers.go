package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Leewodls/ko-analysis/internal/logging"
	"github.com/Leewodls/ko-analysis/internal/queue"
	"github.com/Leewodls/ko-analysis/internal/services/s3"
)

const defaultGender = "female"

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Korean Voice Analysis API",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "healthy"}

	if summary, err := s.store.Stats(r.Context()); err == nil {
		counts := make(map[string]int, len(summary))
		for status, count := range summary {
			counts[string(status)] = count
		}
		resp.Queue = counts
	} else {
		resp.Status = "degraded"
	}

	if s.health != nil {
		for _, entry := range s.health.StageHealth(r.Context()) {
			resp.Stages = append(resp.Stages, StageStatus{Name: entry.Name, Ready: entry.Ready, Detail: entry.Detail})
			if !entry.Ready {
				resp.Status = "degraded"
			}
		}
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// handleCreateAnalysis enqueues a full analysis for one recorded answer.
// Processing is asynchronous; the response carries the queue item to poll.
func (s *Server) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req AnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, AnalysisResponse{Success: false, Message: "invalid request body"})
		return
	}
	if strings.TrimSpace(req.S3AudioURL) == "" {
		writeJSON(w, http.StatusBadRequest, AnalysisResponse{Success: false, Message: "s3_audio_url is required"})
		return
	}
	if strings.TrimSpace(req.UserID) == "" || req.QuestionNum <= 0 {
		writeJSON(w, http.StatusBadRequest, AnalysisResponse{Success: false, Message: "user_id and question_num are required"})
		return
	}
	gender := strings.TrimSpace(req.Gender)
	if gender == "" {
		gender = defaultGender
	}

	item, err := s.store.NewAnalysis(r.Context(), req.S3AudioURL, req.UserID, req.QuestionNum, gender)
	if err != nil {
		s.logger.Error("failed to enqueue analysis", logging.Error(err))
		writeJSON(w, http.StatusInternalServerError, AnalysisResponse{Success: false, Message: "failed to enqueue analysis"})
		return
	}

	s.logger.Info("analysis enqueued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String(logging.FieldUserID, item.UserID),
		logging.Int(logging.FieldQuestion, item.QuestionNum),
	)
	writeJSON(w, http.StatusAccepted, AnalysisResponse{
		Success: true,
		Message: "analysis queued",
		ItemID:  item.ID,
		Status:  string(item.Status),
	})
}

// handleCommunication accepts the interview server callback. The payload
// carries only an object key; identity is derived from the key during the
// fetch stage when it cannot be parsed here.
func (s *Server) handleCommunication(w http.ResponseWriter, r *http.Request) {
	var req CommunicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusOK, CommunicationResponse{ResultCode: "4000", ResultMessage: "유효하지 않은 요청 본문"})
		return
	}
	objectKey := strings.TrimSpace(req.S3ObjectKey)
	if objectKey == "" {
		writeJSON(w, http.StatusOK, CommunicationResponse{ResultCode: "4000", ResultMessage: "유효하지 않은 S3 Object Key"})
		return
	}

	userID, questionNum, _ := s3.ExtractUserInfo(objectKey)

	item, err := s.store.NewAnalysis(r.Context(), objectKey, userID, questionNum, defaultGender)
	if err != nil {
		s.logger.Error("failed to enqueue communication analysis", logging.Error(err))
		writeJSON(w, http.StatusOK, CommunicationResponse{ResultCode: "5000", ResultMessage: "분석 요청 처리 중 오류 발생"})
		return
	}

	s.logger.Info("communication analysis enqueued",
		logging.Int64(logging.FieldItemID, item.ID),
		logging.String("object_key", objectKey),
	)
	writeJSON(w, http.StatusOK, CommunicationResponse{ResultCode: "0000", ResultMessage: "의사소통 분석 요청 완료"})
}

func (s *Server) handleQueueList(w http.ResponseWriter, r *http.Request) {
	var statuses []queue.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, candidate := range strings.Split(raw, ",") {
			status, ok := queue.ParseStatus(candidate)
			if !ok {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown status " + candidate})
				return
			}
			statuses = append(statuses, status)
		}
	}

	items, err := s.store.List(r.Context(), statuses...)
	if err != nil {
		s.logger.Error("failed to list queue items", logging.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list queue items"})
		return
	}

	views := make([]ItemView, 0, len(items))
	for _, item := range items {
		views = append(views, itemView(item))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleQueueItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item id"})
		return
	}

	item, err := s.store.GetByID(r.Context(), id)
	if err != nil {
		s.logger.Error("failed to load queue item", logging.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load queue item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}
	writeJSON(w, http.StatusOK, itemView(item))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

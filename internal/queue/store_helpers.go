package queue

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, object_key, audio_url, user_id, question_num, gender, status, source_file, wav_file, transcript, transcript_json, voice_score_json, text_score_json, error_message, created_at, updated_at, progress_stage, progress_percent, progress_message, last_heartbeat, needs_review, review_reason"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		objectKey        string
		audioURL         sql.NullString
		userID           sql.NullString
		questionNum      sql.NullInt64
		gender           sql.NullString
		statusStr        string
		sourceFile       sql.NullString
		wavFile          sql.NullString
		transcript       sql.NullString
		transcriptJSON   sql.NullString
		voiceScoreJSON   sql.NullString
		textScoreJSON    sql.NullString
		errorMessage     sql.NullString
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
		progressStage    sql.NullString
		progressPercent  sql.NullFloat64
		progressMessage  sql.NullString
		lastHeartbeatRaw sql.NullString
		needsReview      sql.NullInt64
		reviewReason     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&objectKey,
		&audioURL,
		&userID,
		&questionNum,
		&gender,
		&statusStr,
		&sourceFile,
		&wavFile,
		&transcript,
		&transcriptJSON,
		&voiceScoreJSON,
		&textScoreJSON,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&progressStage,
		&progressPercent,
		&progressMessage,
		&lastHeartbeatRaw,
		&needsReview,
		&reviewReason,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		ObjectKey:       objectKey,
		AudioURL:        audioURL.String,
		UserID:          userID.String,
		QuestionNum:     int(questionNum.Int64),
		Gender:          gender.String,
		Status:          Status(statusStr),
		SourceFile:      sourceFile.String,
		WAVFile:         wavFile.String,
		Transcript:      transcript.String,
		TranscriptJSON:  transcriptJSON.String,
		VoiceScoreJSON:  voiceScoreJSON.String,
		TextScoreJSON:   textScoreJSON.String,
		ErrorMessage:    errorMessage.String,
		ProgressStage:   progressStage.String,
		ProgressPercent: progressPercent.Float64,
		ProgressMessage: progressMessage.String,
	}
	if needsReview.Valid {
		item.NeedsReview = needsReview.Int64 != 0
	}
	item.ReviewReason = reviewReason.String

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	if lastHeartbeatRaw.Valid {
		if heartbeat, err := parseTimeString(lastHeartbeatRaw.String); err == nil {
			item.LastHeartbeat = &heartbeat
		}
	}
	return item, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	v := value.UTC().Format(time.RFC3339Nano)
	return v
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}

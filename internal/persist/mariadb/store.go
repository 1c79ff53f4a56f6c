package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/services"
)

const defaultConnectTimeout = 10 * time.Second

// CategoryScore is one rubric category row for an answer.
type CategoryScore struct {
	Code     string
	Score    float64
	Strength string
	Weakness string
}

// AnswerEvaluation is the full set of rows persisted for one answer.
type AnswerEvaluation struct {
	UserID      string
	QuestionNum int
	Summary     string
	Categories  []CategoryScore
}

// Store wraps the MariaDB connection used for evaluation rows.
type Store struct {
	db *sql.DB
}

// Open connects to MariaDB and ensures the evaluation tables exist.
func Open(ctx context.Context, cfg config.MariaDB) (*Store, error) {
	if cfg.DSN == "" {
		return nil, services.Wrap(services.ErrConfiguration, "persist", "mariadb", "dsn is required", nil)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "persist", "mariadb", "open connection", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, services.Wrap(services.ErrTransient, "persist", "mariadb", "ping", err)
	}

	store := &Store{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS interview_answer (
		INTV_ANS_ID BIGINT NOT NULL AUTO_INCREMENT,
		INTV_Q_ASSIGN_ID BIGINT NOT NULL,
		ANS_TXT TEXT DEFAULT NULL,
		USER_ID VARCHAR(100) DEFAULT NULL,
		QUESTION_NUM INT DEFAULT NULL,
		RGS_DTM TIMESTAMP NULL DEFAULT NULL,
		UPD_DTM TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (INTV_ANS_ID),
		KEY INTV_Q_ASSIGN_ID (INTV_Q_ASSIGN_ID)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS answer_score (
		ANS_SCORE_ID BIGINT NOT NULL,
		INTV_ANS_ID BIGINT NOT NULL,
		ANS_SUMMARY TEXT NULL,
		EVAL_SUMMARY TEXT NULL,
		INCOMPLETE_ANSWER BOOLEAN NULL DEFAULT FALSE,
		INSUFFICIENT_CONTENT BOOLEAN NULL DEFAULT FALSE,
		SUSPECTED_COPYING BOOLEAN NULL DEFAULT FALSE,
		SUSPECTED_IMPERSONATION BOOLEAN NULL DEFAULT FALSE,
		RGS_DTM TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP,
		UPD_DTM TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (ANS_SCORE_ID),
		INDEX idx_intv_ans_id (INTV_ANS_ID)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS answer_category_result (
		ANS_CAT_RESULT_ID BIGINT NOT NULL,
		EVAL_CAT_CD VARCHAR(20) NOT NULL,
		ANS_SCORE_ID BIGINT NOT NULL,
		ANS_CAT_SCORE DOUBLE NULL,
		STRENGTH_KEYWORD TEXT NULL,
		WEAKNESS_KEYWORD TEXT NULL,
		RGS_DTM TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP,
		UPD_DTM TIMESTAMP NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (ANS_CAT_RESULT_ID),
		INDEX idx_ans_score_id (ANS_SCORE_ID),
		INDEX idx_eval_cat_cd (EVAL_CAT_CD)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return services.Wrap(services.ErrTransient, "persist", "mariadb", "ensure schema", err)
		}
	}
	return nil
}

// SaveEvaluation upserts the answer summary and category rows for one answer
// in a single transaction. Re-running an item replaces its previous rows.
func (s *Store) SaveEvaluation(ctx context.Context, eval AnswerEvaluation) error {
	if eval.UserID == "" || eval.QuestionNum <= 0 {
		return services.Wrap(services.ErrValidation, "persist", "mariadb", "user id and question number are required", nil)
	}
	scoreID := evaluationID(eval.UserID, eval.QuestionNum, 0)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return services.Wrap(services.ErrTransient, "persist", "mariadb", "begin transaction", err)
	}
	defer tx.Rollback()

	// The answer row may not exist yet when the platform has not synced, so
	// seed a minimal one keyed by the same generated id.
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO interview_answer (INTV_ANS_ID, INTV_Q_ASSIGN_ID, USER_ID, QUESTION_NUM, RGS_DTM)
		 VALUES (?, 1, ?, ?, NOW())
		 ON DUPLICATE KEY UPDATE UPD_DTM = NOW()`,
		scoreID, eval.UserID, eval.QuestionNum); err != nil {
		return services.Wrap(services.ErrTransient, "persist", "mariadb", "ensure interview answer", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO answer_score (ANS_SCORE_ID, INTV_ANS_ID, ANS_SUMMARY)
		 VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE ANS_SUMMARY = VALUES(ANS_SUMMARY), UPD_DTM = CURRENT_TIMESTAMP`,
		scoreID, scoreID, eval.Summary); err != nil {
		return services.Wrap(services.ErrTransient, "persist", "mariadb", "upsert answer score", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM answer_category_result WHERE ANS_SCORE_ID = ?`, scoreID); err != nil {
		return services.Wrap(services.ErrTransient, "persist", "mariadb", "clear category rows", err)
	}
	for i, category := range eval.Categories {
		catID := evaluationID(eval.UserID, eval.QuestionNum, i+1)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO answer_category_result
			 (ANS_CAT_RESULT_ID, EVAL_CAT_CD, ANS_SCORE_ID, ANS_CAT_SCORE, STRENGTH_KEYWORD, WEAKNESS_KEYWORD)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			catID, category.Code, scoreID, category.Score, category.Strength, category.Weakness); err != nil {
			return services.Wrap(services.ErrTransient, "persist", "mariadb",
				fmt.Sprintf("insert category %s", category.Code), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return services.Wrap(services.ErrTransient, "persist", "mariadb", "commit", err)
	}
	return nil
}

// CategoryRow is one joined evaluation row returned by UserEvaluations.
type CategoryRow struct {
	ScoreID  int64
	Code     string
	Score    float64
	Strength string
	Weakness string
}

// UserEvaluations returns the category rows stored for a user, most recent
// answer ids first within each question.
func (s *Store) UserEvaluations(ctx context.Context, userID string) ([]CategoryRow, error) {
	pattern := fmt.Sprintf("%d0%%", normalizeUserID(userID))
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.ANS_SCORE_ID, c.EVAL_CAT_CD, c.ANS_CAT_SCORE, c.STRENGTH_KEYWORD, c.WEAKNESS_KEYWORD
		 FROM answer_score a
		 JOIN answer_category_result c ON a.ANS_SCORE_ID = c.ANS_SCORE_ID
		 WHERE a.INTV_ANS_ID LIKE ?
		 ORDER BY a.ANS_SCORE_ID, c.EVAL_CAT_CD`, pattern)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "persist", "mariadb", "query evaluations", err)
	}
	defer rows.Close()

	var results []CategoryRow
	for rows.Next() {
		var row CategoryRow
		var score sql.NullFloat64
		var strength, weakness sql.NullString
		if err := rows.Scan(&row.ScoreID, &row.Code, &score, &strength, &weakness); err != nil {
			return nil, services.Wrap(services.ErrTransient, "persist", "mariadb", "scan evaluation row", err)
		}
		row.Score = score.Float64
		row.Strength = strength.String
		row.Weakness = weakness.String
		results = append(results, row)
	}
	return results, rows.Err()
}

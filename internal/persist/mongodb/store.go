package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Leewodls/ko-analysis/internal/config"
	"github.com/Leewodls/ko-analysis/internal/services"
	"github.com/Leewodls/ko-analysis/internal/voicescore"
)

const (
	// DefaultDatabase holds the analysis collections when none is configured.
	DefaultDatabase = "audio_analysis"

	// DefaultCollection receives the combined score documents.
	DefaultCollection = "analysis_comprehensive_scores"

	defaultConnectTimeout = 5 * time.Second
)

// VoiceAnalysis is the acoustic portion of a score document.
type VoiceAnalysis struct {
	TotalScore       float64                     `bson:"total_score" json:"total_score"`
	IndividualScores voicescore.IndividualScores `bson:"individual_scores" json:"individual_scores"`
	Details          voicescore.ScoreDetails     `bson:"details" json:"details"`
}

// TextAnalysis is the rubric portion of a score document.
type TextAnalysis struct {
	TotalScore float64            `bson:"total_score" json:"total_score"`
	Categories map[string]float64 `bson:"categories" json:"categories"`
	Summary    string             `bson:"summary" json:"summary"`
}

// ScoreDocument is the combined result for one answer, upserted by the
// (user_id, question_num) identity.
type ScoreDocument struct {
	UserID            string        `bson:"user_id" json:"user_id"`
	QuestionNum       int           `bson:"question_num" json:"question_num"`
	TotalScore        float64       `bson:"total_score" json:"total_score"`
	Transcript        string        `bson:"stt_text" json:"stt_text"`
	VoiceAnalysis     VoiceAnalysis `bson:"voice_analysis" json:"voice_analysis"`
	TextAnalysis      TextAnalysis  `bson:"text_analysis" json:"text_analysis"`
	AnalysisTimestamp time.Time     `bson:"analysis_timestamp" json:"analysis_timestamp"`
	CreatedAt         time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `bson:"updated_at" json:"updated_at"`
}

// Store wraps the MongoDB collection holding score documents.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// Connect opens the MongoDB client, verifies connectivity and ensures the
// identity index exists.
func Connect(ctx context.Context, cfg config.MongoDB) (*Store, error) {
	if cfg.URI == "" {
		return nil, services.Wrap(services.ErrConfiguration, "persist", "mongodb", "uri is required", nil)
	}
	database := cfg.Database
	if database == "" {
		database = DefaultDatabase
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	connectCtx, cancel := context.WithTimeout(ctx, defaultConnectTimeout)
	defer cancel()
	client, err := mongo.Connect(connectCtx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(defaultConnectTimeout))
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "persist", "mongodb", "connect", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, services.Wrap(services.ErrTransient, "persist", "mongodb", "ping", err)
	}

	store := &Store{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}
	if err := store.ensureIndex(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return store, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Ping verifies connectivity for health checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) ensureIndex(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "question_num", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return services.Wrap(services.ErrTransient, "persist", "mongodb", "ensure identity index", err)
	}
	return nil
}

// SaveScores upserts the score document for its interview identity.
func (s *Store) SaveScores(ctx context.Context, doc ScoreDocument) error {
	if doc.UserID == "" || doc.QuestionNum <= 0 {
		return services.Wrap(services.ErrValidation, "persist", "mongodb", "user id and question number are required", nil)
	}
	now := time.Now().UTC()
	doc.AnalysisTimestamp = now
	doc.UpdatedAt = now
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}

	filter := bson.D{{Key: "user_id", Value: doc.UserID}, {Key: "question_num", Value: doc.QuestionNum}}
	_, err := s.collection.ReplaceOne(ctx, filter, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return services.Wrap(services.ErrTransient, "persist", "mongodb", "upsert score document", err)
	}
	return nil
}

// GetScores returns the stored document for one answer, or nil when absent.
func (s *Store) GetScores(ctx context.Context, userID string, questionNum int) (*ScoreDocument, error) {
	filter := bson.D{{Key: "user_id", Value: userID}, {Key: "question_num", Value: questionNum}}
	var doc ScoreDocument
	err := s.collection.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "persist", "mongodb", "find score document", err)
	}
	return &doc, nil
}

// UserHistory returns every stored document for a user ordered by question.
func (s *Store) UserHistory(ctx context.Context, userID string) ([]ScoreDocument, error) {
	cursor, err := s.collection.Find(ctx,
		bson.D{{Key: "user_id", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "question_num", Value: 1}}))
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "persist", "mongodb", "find user history", err)
	}
	defer cursor.Close(ctx)

	var docs []ScoreDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, services.Wrap(services.ErrTransient, "persist", "mongodb", "decode user history", err)
	}
	return docs, nil
}

// DeleteScores removes the document for one answer. It reports whether a
// document was deleted.
func (s *Store) DeleteScores(ctx context.Context, userID string, questionNum int) (bool, error) {
	filter := bson.D{{Key: "user_id", Value: userID}, {Key: "question_num", Value: questionNum}}
	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, services.Wrap(services.ErrTransient, "persist", "mongodb", "delete score document", err)
	}
	return result.DeletedCount > 0, nil
}

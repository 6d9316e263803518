package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"careerpath-backend/models/profile"
	"careerpath-backend/models/recommend"
)

// ErrGenerationInFlight means a generation for the same user is already
// running. The caller retries after it finishes; runs are never queued.
var ErrGenerationInFlight = errors.New("recommendation generation already in progress")

// StoreError wraps a persistence failure after a successful generation, so
// callers can tell "the model worked but the write failed" apart from
// upstream and parse failures.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return "failed to save recommendations: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// RecommendationStore is the persistence boundary of the pipeline.
type RecommendationStore interface {
	Save(userID uint, artifact *recommend.Artifact) error
}

// Pipeline runs one recommendation generation end to end: prompt, gateway
// call, extraction, persistence. Stages run strictly in order; nothing is
// persisted on any failure.
type Pipeline struct {
	Gateway *GatewayClient
	Store   RecommendationStore
	Log     *zap.SugaredLogger

	inFlight sync.Map // user id -> struct{}
}

func NewPipeline(gateway *GatewayClient, store RecommendationStore, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{Gateway: gateway, Store: store, Log: log}
}

// Generate produces and persists a fresh recommendation set for the user.
// Concurrent calls for the same user are rejected with
// ErrGenerationInFlight; the guard is released on every exit path.
func (p *Pipeline) Generate(ctx context.Context, userID uint, prof *profile.Profile) error {
	if _, running := p.inFlight.LoadOrStore(userID, struct{}{}); running {
		return ErrGenerationInFlight
	}
	defer p.inFlight.Delete(userID)

	userPrompt := BuildUserPrompt(prof)
	p.Log.Infow("generating career recommendations", "user_id", userID)

	content, err := p.Gateway.Complete(ctx, SystemPrompt, userPrompt)
	if err != nil {
		return err
	}

	artifact, err := ExtractArtifact(content)
	if err != nil {
		// Raw text is kept out of user-facing errors but logged for
		// diagnosis.
		p.Log.Errorw("unparseable model output", "user_id", userID, "raw", content)
		return err
	}

	if violations := artifact.Validate(); len(violations) > 0 {
		p.Log.Warnw("model output violates generation contract", "user_id", userID, "violations", violations)
	}

	if err := p.Store.Save(userID, artifact); err != nil {
		return &StoreError{Err: err}
	}

	p.Log.Infow("career recommendations saved", "user_id", userID,
		"careers", len(artifact.Recommendations),
		"gap_items", len(artifact.SkillGapAnalysis),
		"roadmap_stages", len(artifact.LearningRoadmap))
	return nil
}

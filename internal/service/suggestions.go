package service

import (
	"context"
	"fmt"

	"github.com/dcimring/pickleball-ratings/internal/models"
	"github.com/dcimring/pickleball-ratings/internal/suggestion"
	"github.com/dcimring/pickleball-ratings/internal/worker"

	"go.uber.org/zap"
)

// InsertQueue accepts feature requests for asynchronous persistence
type InsertQueue interface {
	Submit(task worker.InsertTask) error
}

// SuggestionService validates feature suggestions and hands them to the
// insert queue
type SuggestionService struct {
	queue     InsertQueue
	validator *suggestion.Validator
	logger    *zap.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(queue InsertQueue, logger *zap.Logger) *SuggestionService {
	return &SuggestionService{
		queue:     queue,
		validator: suggestion.NewValidator(),
		logger:    logger.Named("suggestions"),
	}
}

// Submit stores a suggestion and waits for the insert to finish.
// Submissions with the honeypot filled in succeed without being stored.
// Validation failures are returned as *suggestion.ValidationError.
func (s *SuggestionService) Submit(ctx context.Context, req suggestion.Request) error {
	if suggestion.IsBot(req) {
		s.logger.Info("dropping honeypot submission")
		return nil
	}

	clean, err := s.validator.Validate(req)
	if err != nil {
		return err
	}

	result := make(chan error, 1)
	task := worker.InsertTask{
		Request: models.FeatureRequest{UserName: clean.UserName, Details: clean.Details},
		Result:  result,
	}
	if err := s.queue.Submit(task); err != nil {
		return fmt.Errorf("queue feature request: %w", err)
	}

	select {
	case err := <-result:
		if err != nil {
			return fmt.Errorf("insert feature request: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/model"
	"github.com/yourorg/tagpack-service/internal/repository"
)

// ActorService handles actor lookups
type ActorService struct {
	actors ActorStore
	logger *zap.Logger
}

// NewActorService creates a new actor service
func NewActorService(actors ActorStore, logger *zap.Logger) *ActorService {
	return &ActorService{
		actors: actors,
		logger: logger,
	}
}

// GetActor retrieves an actor by id
func (s *ActorService) GetActor(ctx context.Context, id string) (*model.Actor, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("%w: actor id is empty", ErrNotFound)
	}

	actor, err := s.actors.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("actor %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return actor, nil
}

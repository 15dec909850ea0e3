package service

import (
	"context"
	"errors"

	"github.com/yourorg/tagpack-service/internal/events"
	"github.com/yourorg/tagpack-service/internal/model"
	"github.com/yourorg/tagpack-service/internal/repository"
	"github.com/yourorg/tagpack-service/internal/tagpack"
)

var (
	// ErrInvalidSubject is returned for an empty or malformed subject identifier
	ErrInvalidSubject = errors.New("invalid subject")
	// ErrNotFound is returned when a requested record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInvalidPack wraps every TagPack or ActorPack validation failure
	ErrInvalidPack = tagpack.ErrInvalidPack
)

// TagStore is the tag persistence used by the services
type TagStore interface {
	ListBySubject(ctx context.Context, q repository.TagQuery) ([]model.TagRecord, error)
	CountBySubject(ctx context.Context, q repository.TagQuery) (int, error)
	InsertTagPack(ctx context.Context, uri, title, creator string, isPublic bool, tags []model.TagRecord) (int, error)
}

// ActorStore is the actor persistence used by the services
type ActorStore interface {
	GetByID(ctx context.Context, id string) (*model.Actor, error)
	InsertActorPack(ctx context.Context, uri, title, creator string, actors []model.Actor) (int, error)
}

// Cache stores serialized digests. Implementations swallow their own errors.
type Cache interface {
	Key(identifier, network string, groups []string) string
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	Flush(ctx context.Context) error
}

// Publisher announces loaded packs
type Publisher interface {
	PublishPackEvent(ctx context.Context, topic string, ev events.PackEvent) error
}

package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/events"
	"github.com/yourorg/tagpack-service/internal/model"
	"github.com/yourorg/tagpack-service/internal/tagpack"
)

// IngestService validates TagPacks and ActorPacks and loads them into the store
type IngestService struct {
	loader    *tagpack.Loader
	tags      TagStore
	actors    ActorStore
	cache     Cache
	publisher Publisher
	topic     string
	logger    *zap.Logger
}

// NewIngestService creates a new ingest service. cache and publisher may be nil.
func NewIngestService(
	loader *tagpack.Loader,
	tags TagStore,
	actors ActorStore,
	cache Cache,
	publisher Publisher,
	topic string,
	logger *zap.Logger,
) *IngestService {
	return &IngestService{
		loader:    loader,
		tags:      tags,
		actors:    actors,
		cache:     cache,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}
}

// Ingest detects the pack kind of data and loads it
func (s *IngestService) Ingest(ctx context.Context, uri string, data []byte) (*model.IngestResult, error) {
	kind, err := tagpack.DetectKind(data)
	if err != nil {
		return nil, err
	}

	if kind == tagpack.KindActorPack {
		return s.IngestActorPack(ctx, uri, data)
	}
	return s.IngestTagPack(ctx, uri, data)
}

// IngestTagPack validates a TagPack and replaces the tags stored under uri
func (s *IngestService) IngestTagPack(ctx context.Context, uri string, data []byte) (*model.IngestResult, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: pack uri is required", ErrInvalidPack)
	}

	tp, err := s.loader.ParseTagPack(uri, data)
	if err != nil {
		return nil, err
	}

	records, skipped, err := s.loader.Records(tp)
	if err != nil {
		return nil, err
	}

	inserted, err := s.tags.InsertTagPack(ctx, uri, tp.Title, tp.Creator, tp.IsPublic, records)
	if err != nil {
		return nil, fmt.Errorf("failed to insert tagpack: %w", err)
	}

	s.logger.Info("Inserted tagpack",
		zap.String("uri", uri),
		zap.Int("inserted", inserted),
		zap.Int("skipped", skipped))

	s.afterInsert(ctx, events.TypeTagPackInserted, uri, inserted)

	return &model.IngestResult{
		URI:      uri,
		Kind:     string(tagpack.KindTagPack),
		Inserted: inserted,
		Skipped:  skipped,
	}, nil
}

// IngestActorPack validates an ActorPack and upserts its actors
func (s *IngestService) IngestActorPack(ctx context.Context, uri string, data []byte) (*model.IngestResult, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: pack uri is required", ErrInvalidPack)
	}

	ap, err := s.loader.ParseActorPack(uri, data)
	if err != nil {
		return nil, err
	}

	inserted, err := s.actors.InsertActorPack(ctx, uri, ap.Title, ap.Creator, ap.ActorRecords())
	if err != nil {
		return nil, fmt.Errorf("failed to insert actorpack: %w", err)
	}

	s.logger.Info("Inserted actorpack", zap.String("uri", uri), zap.Int("inserted", inserted))

	s.afterInsert(ctx, events.TypeActorPackInserted, uri, inserted)

	return &model.IngestResult{
		URI:      uri,
		Kind:     string(tagpack.KindActorPack),
		Inserted: inserted,
	}, nil
}

// afterInsert drops cached digests and announces the pack. Failures are
// logged and never undo the insert.
func (s *IngestService) afterInsert(ctx context.Context, eventType, uri string, count int) {
	if s.cache != nil {
		if err := s.cache.Flush(ctx); err != nil {
			s.logger.Warn("Failed to flush digest cache", zap.Error(err))
		}
	}

	if s.publisher == nil {
		return
	}
	ev := events.NewPackEvent(eventType, uri, count)
	if err := s.publisher.PublishPackEvent(ctx, s.topic, ev); err != nil {
		s.logger.Warn("Failed to publish pack event",
			zap.String("event_id", ev.ID),
			zap.String("uri", uri),
			zap.Error(err))
	}
}

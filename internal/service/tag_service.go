package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/model"
	"github.com/yourorg/tagpack-service/internal/repository"
)

// TagService lists the raw tags of a subject
type TagService struct {
	tags   TagStore
	logger *zap.Logger
}

// NewTagService creates a new tag service
func NewTagService(tags TagStore, logger *zap.Logger) *TagService {
	return &TagService{
		tags:   tags,
		logger: logger,
	}
}

// ListTags returns one page of the tags on identifier and the total count
func (s *TagService) ListTags(ctx context.Context, identifier, network string, groups []string, page, limit int) ([]model.TagRecord, int, error) {
	identifier, network, err := normalizeSubject(identifier, network)
	if err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	q := repository.TagQuery{
		Identifier: identifier,
		Network:    network,
		Groups:     groups,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}

	total, err := s.tags.CountBySubject(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 || q.Offset >= total {
		return []model.TagRecord{}, total, nil
	}

	tags, err := s.tags.ListBySubject(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	return tags, total, nil
}

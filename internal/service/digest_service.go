package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/yourorg/tagpack-service/internal/digest"
	"github.com/yourorg/tagpack-service/internal/repository"
)

const maxIdentifierLength = 256

// DigestService computes tag digests for subjects
type DigestService struct {
	tags   TagStore
	cache  Cache
	opts   []digest.Option
	logger *zap.Logger
}

// NewDigestService creates a new digest service. cache may be nil.
func NewDigestService(tags TagStore, cache Cache, strictTokenMatch bool, logger *zap.Logger) *DigestService {
	return &DigestService{
		tags:   tags,
		cache:  cache,
		opts:   []digest.Option{digest.WithStrictTokenMatch(strictTokenMatch)},
		logger: logger,
	}
}

// GetDigest returns the JSON encoded digest of every tag on identifier
// visible to groups. An empty network matches every network.
func (s *DigestService) GetDigest(ctx context.Context, identifier, network string, groups []string) (json.RawMessage, error) {
	identifier, network, err := normalizeSubject(identifier, network)
	if err != nil {
		return nil, err
	}

	var key string
	if s.cache != nil {
		key = s.cache.Key(identifier, network, groups)
		if body, ok := s.cache.Get(ctx, key); ok {
			return body, nil
		}
	}

	tags, err := s.tags.ListBySubject(ctx, repository.TagQuery{
		Identifier: identifier,
		Network:    network,
		Groups:     groups,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}

	d := digest.Compute(tags, s.opts...)
	body, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode digest: %w", err)
	}

	s.logger.Debug("Computed tag digest",
		zap.String("identifier", identifier),
		zap.String("network", network),
		zap.Int("nr_tags", d.NrTags))

	if s.cache != nil {
		s.cache.Set(ctx, key, body)
	}

	return body, nil
}

// normalizeSubject trims the identifier and uppercases the network
func normalizeSubject(identifier, network string) (string, string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", "", fmt.Errorf("%w: identifier is empty", ErrInvalidSubject)
	}
	if len(identifier) > maxIdentifierLength {
		return "", "", fmt.Errorf("%w: identifier exceeds %d characters", ErrInvalidSubject, maxIdentifierLength)
	}
	if strings.IndexFunc(identifier, unicode.IsSpace) >= 0 {
		return "", "", fmt.Errorf("%w: identifier contains whitespace", ErrInvalidSubject)
	}

	network = strings.ToUpper(strings.TrimSpace(network))
	for _, r := range network {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", "", fmt.Errorf("%w: network %q", ErrInvalidSubject, network)
		}
	}

	return identifier, network, nil
}

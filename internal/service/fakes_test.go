package service

import (
	"context"
	"errors"

	"github.com/yourorg/tagpack-service/internal/cache"
	"github.com/yourorg/tagpack-service/internal/events"
	"github.com/yourorg/tagpack-service/internal/model"
	"github.com/yourorg/tagpack-service/internal/repository"
)

type fakeTagStore struct {
	tags      []model.TagRecord
	err       error
	listCalls int
	queries   []repository.TagQuery

	insertedURI  string
	insertedTags []model.TagRecord
}

func (f *fakeTagStore) ListBySubject(_ context.Context, q repository.TagQuery) ([]model.TagRecord, error) {
	f.listCalls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	if q.Limit == 0 {
		return f.tags, nil
	}
	end := q.Offset + q.Limit
	if end > len(f.tags) {
		end = len(f.tags)
	}
	return f.tags[q.Offset:end], nil
}

func (f *fakeTagStore) CountBySubject(_ context.Context, _ repository.TagQuery) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	return len(f.tags), nil
}

func (f *fakeTagStore) InsertTagPack(_ context.Context, uri, _, _ string, _ bool, tags []model.TagRecord) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.insertedURI = uri
	f.insertedTags = tags
	return len(tags), nil
}

type fakeActorStore struct {
	actors   map[string]model.Actor
	err      error
	inserted []model.Actor
}

func (f *fakeActorStore) GetByID(_ context.Context, id string) (*model.Actor, error) {
	if f.err != nil {
		return nil, f.err
	}
	a, ok := f.actors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (f *fakeActorStore) InsertActorPack(_ context.Context, _, _, _ string, actors []model.Actor) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.inserted = actors
	return len(actors), nil
}

type memoryCache struct {
	entries map[string][]byte
	flushes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Key(identifier, network string, groups []string) string {
	return cache.DigestKey("test", identifier, network, groups)
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	body, ok := m.entries[key]
	return body, ok
}

func (m *memoryCache) Set(_ context.Context, key string, body []byte) {
	m.entries[key] = body
}

func (m *memoryCache) Flush(_ context.Context) error {
	m.flushes++
	m.entries = make(map[string][]byte)
	return nil
}

type recordingPublisher struct {
	topics []string
	events []events.PackEvent
	err    error
}

func (p *recordingPublisher) PublishPackEvent(_ context.Context, topic string, ev events.PackEvent) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, ev)
	return p.err
}

var errDatabaseDown = errors.New("database down")

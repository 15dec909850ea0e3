package events

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewPackEvent(t *testing.T) {
	ev := NewPackEvent(TypeTagPackInserted, "packs/a.yaml", 12)

	_, err := uuid.Parse(ev.ID)
	require.NoError(t, err)
	assert.Equal(t, TypeTagPackInserted, ev.Type)
	assert.Equal(t, "packs/a.yaml", ev.URI)
	assert.Equal(t, 12, ev.TagCount)
	assert.False(t, ev.At.IsZero())
	assert.NotEqual(t, ev.ID, NewPackEvent(TypeTagPackInserted, "packs/a.yaml", 12).ID)
}

func TestPackEventJSON(t *testing.T) {
	ev := NewPackEvent(TypeActorPackInserted, "actors.yaml", 3)

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.ElementsMatch(t, []string{"id", "type", "uri", "tag_count", "at"}, keys(fields))
	assert.Equal(t, "actorpack.inserted", fields["type"])
}

func TestProducerReusesWriters(t *testing.T) {
	p := NewProducer([]string{"localhost:9092"}, "tagpack-service", zap.NewNop())

	first := p.getWriter("tagpack-events")
	assert.Same(t, first, p.getWriter("tagpack-events"))
	assert.NotSame(t, first, p.getWriter("other"))
	assert.Len(t, p.writers, 2)

	assert.NoError(t, p.Close())
	assert.Empty(t, p.writers)
}

func keys(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

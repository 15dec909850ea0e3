// Package digest condenses all tags known about one subject into a single
// summary: the most likely actor and label, a broad category, and weighted
// label and concept distributions.
//
// Everything here is a pure function of its input; each call builds its own
// counters, so Compute is safe to run concurrently for different subjects.
package digest

import (
	"github.com/yourorg/tagpack-service/internal/model"
)

const (
	BroadConceptExchange = "exchange"
	BroadConceptEntity   = "entity"
	BroadConceptUser     = "user"
)

// TagDigest summarizes every tag known about one subject
type TagDigest struct {
	BroadConcept    string       `json:"broad_concept"`
	NrTags          int          `json:"nr_tags"`
	BestActor       *string      `json:"best_actor"`
	BestLabel       *string      `json:"best_label"`
	LabelDigest     *LabelDigest `json:"label_digest"`
	ConceptTagCloud *TagCloud    `json:"concept_tag_cloud"`
}

// LabelDigestEntry describes one normalized label of a subject
type LabelDigestEntry struct {
	Label         string               `json:"label"`
	Count         int                  `json:"count"`
	Confidence    float64              `json:"confidence"`
	Relevance     float64              `json:"relevance"`
	Creators      []string             `json:"creators"`
	Sources       []string             `json:"sources"`
	Concepts      []string             `json:"concepts"`
	LastMod       int64                `json:"lastmod"`
	InheritedFrom *model.InheritedFrom `json:"inherited_from"`
}

// LabelDigest maps normalized labels to their entries in first-seen order
type LabelDigest struct {
	keys    []string
	entries map[string]LabelDigestEntry
}

func newLabelDigest() *LabelDigest {
	return &LabelDigest{entries: make(map[string]LabelDigestEntry)}
}

func (l *LabelDigest) set(key string, e LabelDigestEntry) {
	if _, ok := l.entries[key]; !ok {
		l.keys = append(l.keys, key)
	}
	l.entries[key] = e
}

// Keys returns the normalized labels in first-seen order
func (l *LabelDigest) Keys() []string {
	keys := make([]string, len(l.keys))
	copy(keys, l.keys)
	return keys
}

// Get returns the entry of a normalized label
func (l *LabelDigest) Get(key string) (LabelDigestEntry, bool) {
	e, ok := l.entries[key]
	return e, ok
}

// Len returns the number of distinct normalized labels
func (l *LabelDigest) Len() int {
	return len(l.keys)
}

// MarshalJSON writes the digest as an object keeping key order
func (l *LabelDigest) MarshalJSON() ([]byte, error) {
	return marshalOrdered(l.keys, func(k string) any { return l.entries[k] })
}

type options struct {
	strictTokenMatch bool
}

// Option configures Compute
type Option func(*options)

// WithStrictTokenMatch makes relevance scoring match whole label tokens
// instead of substrings of the normalized label.
func WithStrictTokenMatch(strict bool) Option {
	return func(o *options) {
		o.strictTokenMatch = strict
	}
}

// Compute builds the digest of all tags known about one subject
func Compute(tags []model.TagRecord, opts ...Option) *TagDigest {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	state := Aggregate(tags)

	d := &TagDigest{
		BroadConcept: BroadConceptUser,
		NrTags:       state.TagsCount,
		LabelDigest:  newLabelDigest(),
	}

	if actor, ok := state.ActorCounter.Top(true); ok {
		d.BestActor = &actor
		if label, ok := state.ActorLabelCounters[actor].Top(true); ok {
			d.BestLabel = &label
		}
	} else if label, ok := state.FullLabelCounter.Top(true); ok {
		titled := TitleLabel(label)
		d.BestLabel = &titled
	}

	if concept, ok := state.ConceptCounter.Top(true); ok {
		d.BroadConcept = classifyConcept(concept)
	}

	scored := ScoreRelevance(state.FullLabelCounter, state.WordCounter, state.TotalWords, o.strictTokenMatch)
	labelCloud := NewTagCloud(scored, 0)
	d.ConceptTagCloud = NewTagCloud(state.ConceptCounter, 0)

	for _, key := range state.SummaryKeys() {
		summary, _ := state.Summary(key)
		entry := LabelDigestEntry{
			Label:      summary.Label,
			Count:      summary.Count,
			Confidence: summary.SumConfidence / float64(summary.Count*100),
			Creators:   summary.Creators.Items(),
			Sources:    summary.Sources.Items(),
			Concepts:   summary.Concepts.Items(),
			LastMod:    summary.LastMod,
		}
		if share, ok := labelCloud.Get(key); ok {
			entry.Relevance = share.Weighted
		}
		if summary.Inherited {
			inherited := model.InheritedCluster
			entry.InheritedFrom = &inherited
		}
		d.LabelDigest.set(key, entry)
	}

	return d
}

func classifyConcept(concept string) string {
	if concept == BroadConceptExchange {
		return BroadConceptExchange
	}
	return BroadConceptEntity
}

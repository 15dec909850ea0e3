package digest

import "github.com/yourorg/tagpack-service/internal/model"

// defaultConfidence is the weight of a tag without a confidence level
const defaultConfidence = 0.1

// conceptWeights scales the contribution of individual concepts
var conceptWeights = map[string]float64{
	"defi": 0.5,
}

func conceptWeight(concept string) float64 {
	if w, ok := conceptWeights[concept]; ok {
		return w
	}
	return 1.0
}

// LabelSummary aggregates all tags sharing one normalized label
type LabelSummary struct {
	Label         string
	Count         int
	Sources       *OrderedSet
	Creators      *OrderedSet
	Concepts      *OrderedSet
	LastMod       int64
	SumConfidence float64
	Inherited     bool
}

func newLabelSummary() *LabelSummary {
	return &LabelSummary{
		Sources:   NewOrderedSet(),
		Creators:  NewOrderedSet(),
		Concepts:  NewOrderedSet(),
		Inherited: true,
	}
}

// AggregationState holds every tally produced by one pass over a subject's tags
type AggregationState struct {
	ActorCounter       *Counter
	ActorLabelCounters map[string]*Counter
	ConceptCounter     *Counter
	FullLabelCounter   *Counter
	WordCounter        *Counter
	TagsCount          int
	TotalWords         int

	summaryIndex map[string]*LabelSummary
	summaryOrder []string
}

func newAggregationState() *AggregationState {
	return &AggregationState{
		ActorCounter:       NewCounter(),
		ActorLabelCounters: make(map[string]*Counter),
		ConceptCounter:     NewCounter(),
		FullLabelCounter:   NewCounter(),
		WordCounter:        NewCounter(),
		summaryIndex:       make(map[string]*LabelSummary),
	}
}

// Summary returns the label summary for a normalized label
func (s *AggregationState) Summary(normalized string) (*LabelSummary, bool) {
	ls, ok := s.summaryIndex[normalized]
	return ls, ok
}

// SummaryKeys returns the normalized labels in first-seen order
func (s *AggregationState) SummaryKeys() []string {
	keys := make([]string, len(s.summaryOrder))
	copy(keys, s.summaryOrder)
	return keys
}

func (s *AggregationState) summaryFor(normalized string) *LabelSummary {
	if ls, ok := s.summaryIndex[normalized]; ok {
		return ls
	}
	ls := newLabelSummary()
	s.summaryIndex[normalized] = ls
	s.summaryOrder = append(s.summaryOrder, normalized)
	return ls
}

func (s *AggregationState) actorLabels(actor string) *Counter {
	c, ok := s.ActorLabelCounters[actor]
	if !ok {
		c = NewCounter()
		s.ActorLabelCounters[actor] = c
	}
	return c
}

// effectiveConfidence maps a missing or zero confidence level to the default weight
func effectiveConfidence(t *model.TagRecord) float64 {
	if t.ConfidenceLevel == nil || *t.ConfidenceLevel == 0 {
		return defaultConfidence
	}
	return float64(*t.ConfidenceLevel)
}

// skipTag decides whether a tag takes part in the digest. Every tag does today.
func skipTag(*model.TagRecord) bool {
	return false
}

// Aggregate tallies labels, actors, concepts and words of tags in one pass
func Aggregate(tags []model.TagRecord) *AggregationState {
	state := newAggregationState()

	for i := range tags {
		tag := &tags[i]
		if skipTag(tag) {
			continue
		}
		state.add(tag)
	}

	return state
}

func (s *AggregationState) add(tag *model.TagRecord) {
	s.TagsCount++
	confidence := effectiveConfidence(tag)

	words := Tokenize(tag.Label)
	for _, w := range words {
		s.WordCounter.Add(w, 1)
	}
	s.TotalWords += len(words)

	normalized := NormalizeLabel(tag.Label)
	summary := s.summaryFor(normalized)
	s.FullLabelCounter.Add(normalized, confidence)

	if tag.HasActor() {
		actor := *tag.Actor
		s.ActorCounter.Add(actor, confidence)
		s.actorLabels(actor).Add(tag.Label, confidence)
		s.addConcepts(summary, tag.ActorCategories, confidence)
	} else {
		s.addConcepts(summary, tag.Concepts, confidence)
	}

	summary.Count++
	summary.Label = tag.Label
	summary.Sources.Add(tag.Source)
	summary.Creators.Add(tag.Creator)
	if tag.LastMod > summary.LastMod {
		summary.LastMod = tag.LastMod
	}
	summary.SumConfidence += confidence
	// TODO: only clear when tag.InheritedFrom != model.InheritedCluster once
	// inherited cluster tags are stored with their provenance.
	summary.Inherited = false
}

func (s *AggregationState) addConcepts(summary *LabelSummary, concepts []string, confidence float64) {
	for _, c := range concepts {
		s.ConceptCounter.Add(c, confidence*conceptWeight(c))
		summary.Concepts.Add(c)
	}
}

// OrderedSet is a set of strings that remembers insertion order
type OrderedSet struct {
	seen  map[string]struct{}
	items []string
}

// NewOrderedSet creates an empty set
func NewOrderedSet() *OrderedSet {
	return &OrderedSet{seen: make(map[string]struct{})}
}

// Add inserts v if it is not present yet
func (o *OrderedSet) Add(v string) {
	if _, ok := o.seen[v]; ok {
		return
	}
	o.seen[v] = struct{}{}
	o.items = append(o.items, v)
}

// Items returns the members in insertion order
func (o *OrderedSet) Items() []string {
	items := make([]string, len(o.items))
	copy(items, o.items)
	return items
}

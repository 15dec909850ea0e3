package digest

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ScoreRelevance re-weights every normalized label by how often its words
// recur across the other labels of the subject. A word counts towards a label
// when it occurs more than once overall and is a substring of the label; with
// strict set it must be one of the label's tokens instead.
func ScoreRelevance(fullLabels, words *Counter, totalWords int, strict bool) *Counter {
	scored := NewCounter()
	recurring := words.MostCommon(0, false)

	for _, label := range fullLabels.Entries() {
		var tokens map[string]struct{}
		if strict {
			tokens = make(map[string]struct{})
			for _, t := range Tokenize(label.Key) {
				tokens[t] = struct{}{}
			}
		}

		multiplier := 0
		for _, w := range recurring {
			if w.Count <= 1 {
				continue
			}
			if strict {
				if _, ok := tokens[w.Key]; !ok {
					continue
				}
			} else if !strings.Contains(label.Key, w.Key) {
				continue
			}
			multiplier += w.Count
		}

		n := 1.0
		if totalWords > 0 {
			n += float64(multiplier) / float64(totalWords)
		}
		scored.Add(label.Key, label.Weight*n)
	}

	return scored
}

// CloudEntry is the share of one key in a tag cloud
type CloudEntry struct {
	Count    int     `json:"count"`
	Weighted float64 `json:"weighted_share"`
}

// TagCloud is a normalized weight distribution, ordered by descending share
type TagCloud struct {
	keys    []string
	entries map[string]CloudEntry
}

// NewTagCloud builds a cloud from the top limit keys of c (all when limit <= 0)
func NewTagCloud(c *Counter, limit int) *TagCloud {
	cloud := &TagCloud{entries: make(map[string]CloudEntry)}
	total := c.Total(true)

	for _, e := range c.MostCommon(limit, true) {
		share := 0.0
		if total > 0 {
			share = e.Weight / total
		}
		cloud.keys = append(cloud.keys, e.Key)
		cloud.entries[e.Key] = CloudEntry{Count: e.Count, Weighted: share}
	}

	return cloud
}

// Keys returns the cloud keys, highest share first
func (t *TagCloud) Keys() []string {
	keys := make([]string, len(t.keys))
	copy(keys, t.keys)
	return keys
}

// Get returns the entry for key
func (t *TagCloud) Get(key string) (CloudEntry, bool) {
	e, ok := t.entries[key]
	return e, ok
}

// Len returns the number of keys
func (t *TagCloud) Len() int {
	return len(t.keys)
}

// MarshalJSON writes the cloud as an object keeping key order
func (t *TagCloud) MarshalJSON() ([]byte, error) {
	return marshalOrdered(t.keys, func(k string) any { return t.entries[k] })
}

func marshalOrdered(keys []string, value func(string) any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(value(k))
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

package digest

import "sort"

// Counter tracks a plain occurrence count and a weighted sum per key.
// Keys remember their first insertion position, which breaks ranking ties.
type Counter struct {
	index   map[string]int
	entries []CounterEntry
}

// CounterEntry is one key of a Counter
type CounterEntry struct {
	Key    string
	Count  int
	Weight float64
}

// NewCounter creates an empty counter
func NewCounter() *Counter {
	return &Counter{index: make(map[string]int)}
}

// Add increments the count of key by one and its weight by weight
func (c *Counter) Add(key string, weight float64) {
	i, ok := c.index[key]
	if !ok {
		i = len(c.entries)
		c.index[key] = i
		c.entries = append(c.entries, CounterEntry{Key: key})
	}
	c.entries[i].Count++
	c.entries[i].Weight += weight
}

// Count returns the plain count of key
func (c *Counter) Count(key string) int {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Count
	}
	return 0
}

// Weight returns the weighted sum of key
func (c *Counter) Weight(key string) float64 {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Weight
	}
	return 0
}

// Len returns the number of distinct keys
func (c *Counter) Len() int {
	return len(c.entries)
}

// Entries returns all entries in first insertion order
func (c *Counter) Entries() []CounterEntry {
	entries := make([]CounterEntry, len(c.entries))
	copy(entries, c.entries)
	return entries
}

// MostCommon returns the top n entries, highest first. n <= 0 returns all.
// Ranking uses the weighted sum when weighted is set, the plain count otherwise.
func (c *Counter) MostCommon(n int, weighted bool) []CounterEntry {
	ranked := c.Entries()
	sort.SliceStable(ranked, func(i, j int) bool {
		if weighted {
			return ranked[i].Weight > ranked[j].Weight
		}
		return ranked[i].Count > ranked[j].Count
	})

	if n > 0 && n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

// Top returns the highest ranked key, or false if the counter is empty
func (c *Counter) Top(weighted bool) (string, bool) {
	top := c.MostCommon(1, weighted)
	if len(top) == 0 {
		return "", false
	}
	return top[0].Key, true
}

// Total sums weights (or counts) over all keys
func (c *Counter) Total(weighted bool) float64 {
	var total float64
	for _, e := range c.entries {
		if weighted {
			total += e.Weight
		} else {
			total += float64(e.Count)
		}
	}
	return total
}

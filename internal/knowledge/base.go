package knowledge

import (
	"sort"
	"strings"
	"sync"

	"github.com/seoforge/seoforge/internal/cache"
)

// Entry is one knowledge-base article the competitor-analysis step can cite.
type Entry struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Source  string   `json:"source"`
	Snippet string   `json:"snippet"`
	Topics  []string `json:"topics"`
}

type scored struct {
	entry Entry
	score float64
}

// Base indexes entries by term frequency for keyword lookup. Lookups are
// cached; the index is rebuilt on refresh.
type Base struct {
	mu      sync.RWMutex
	entries []Entry
	terms   map[string]map[string]int
	lookups cache.Cache
}

func NewBase(entries []Entry, cacheSize int) *Base {
	b := &Base{lookups: cache.NewLRU(cacheSize)}
	b.Refresh(entries)
	return b
}

// NewDefaultBase builds a base over the bundled guidance corpus.
func NewDefaultBase() *Base {
	return NewBase(defaultEntries, 128)
}

// Refresh replaces the indexed entries.
func (b *Base) Refresh(entries []Entry) {
	terms := make(map[string]map[string]int, len(entries))
	for _, entry := range entries {
		freq := make(map[string]int)
		for _, token := range tokenize(entry.Title + " " + entry.Snippet + " " + strings.Join(entry.Topics, " ")) {
			freq[token]++
		}
		terms[entry.ID] = freq
	}
	b.mu.Lock()
	b.entries = append([]Entry(nil), entries...)
	b.terms = terms
	b.mu.Unlock()
	if b.lookups != nil {
		b.lookups.Purge()
	}
}

// Lookup returns the entries best matching the query keywords, strongest
// first. Topic matches weigh more than body matches.
func (b *Base) Lookup(query string, limit int) []Entry {
	if limit <= 0 {
		limit = 3
	}
	key := strings.ToLower(strings.TrimSpace(query))
	if key == "" {
		return nil
	}
	// the full scored list is cached so a later caller with a larger limit
	// is not pinned to an earlier caller's truncation
	if cached, ok := b.lookups.Get(key); ok {
		if entries, ok := cached.([]Entry); ok {
			if len(entries) > limit {
				entries = entries[:limit]
			}
			return entries
		}
	}
	tokens := tokenize(key)
	if len(tokens) == 0 {
		return nil
	}
	b.mu.RLock()
	results := make([]scored, 0, len(b.entries))
	for _, entry := range b.entries {
		freq := b.terms[entry.ID]
		var score float64
		for _, token := range tokens {
			if count, ok := freq[token]; ok {
				score += float64(count)
			}
			for _, topic := range entry.Topics {
				if strings.Contains(strings.ToLower(topic), token) {
					score += 2
				}
			}
		}
		if score > 0 {
			results = append(results, scored{entry: entry, score: score})
		}
	}
	b.mu.RUnlock()
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})
	entries := make([]Entry, 0, len(results))
	for _, res := range results {
		entries = append(entries, res.entry)
	}
	b.lookups.Set(key, entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

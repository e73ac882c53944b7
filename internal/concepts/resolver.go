package concepts

import (
	"sort"
	"strings"

	"github.com/lumenlearn/mastery-engine/internal/graph"
)

// aliasTable maps common shorthand tags to their canonical form and back.
// Entries are symmetric so either spelling resolves to the other.
var aliasTable = map[string]string{
	"js":               "javascript",
	"javascript":       "js",
	"py":               "python",
	"python":           "py",
	"ml":               "machine_learning",
	"machine_learning": "ml",
	"ai":               "artificial_intelligence",
	"artificial_intelligence": "ai",
	"api":  "apis",
	"apis": "api",
	"db":   "database",
	"database": "db",
	"k8s":        "kubernetes",
	"kubernetes": "k8s",
	"ts":         "typescript",
	"typescript": "ts",
}

var strippableSuffixes = []string{"ing", "tion", "s"}

// Resolver maps free-form content tags onto canonical concept IDs from the
// graph catalog. Resolution is deterministic and pure: the same tags and
// catalog always produce the same result, and a tag with no match is
// dropped rather than treated as an error.
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve attempts, per tag and in order: exact id/label match, bidirectional
// substring containment, the fixed alias table, then suffix-stripped root
// comparison. The returned IDs are deduplicated and sorted.
func (r *Resolver) Resolve(tags []string, catalog map[string]graph.ConceptInfo) []string {
	if len(tags) == 0 || len(catalog) == 0 {
		return nil
	}

	idx := buildIndex(catalog)
	matched := make(map[string]struct{})
	for _, tag := range tags {
		norm := Normalize(tag)
		if norm == "" {
			continue
		}
		if id, ok := r.resolveOne(norm, idx); ok {
			matched[id] = struct{}{}
		}
	}

	if len(matched) == 0 {
		return nil
	}
	out := make([]string, 0, len(matched))
	for id := range matched {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Normalize lowercases a tag and collapses whitespace and hyphens to
// underscores so "Machine Learning" and "machine-learning" compare equal.
func Normalize(tag string) string {
	s := strings.ToLower(strings.TrimSpace(tag))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}

// index holds the normalized view of the catalog: every normalized id,
// label, and alias mapped back to its concept ID.
type index struct {
	terms map[string]string
	// insertion-ordered is not needed; iteration over terms is only used
	// for substring and suffix passes, where ties break by smallest ID.
}

func buildIndex(catalog map[string]graph.ConceptInfo) *index {
	idx := &index{terms: make(map[string]string, len(catalog)*2)}
	add := func(term, id string) {
		if term == "" {
			return
		}
		if prev, ok := idx.terms[term]; !ok || id < prev {
			idx.terms[term] = id
		}
	}
	for id, info := range catalog {
		add(Normalize(id), id)
		add(Normalize(info.Label), id)
		for _, a := range info.Aliases {
			add(Normalize(a), id)
		}
	}
	return idx
}

func (r *Resolver) resolveOne(norm string, idx *index) (string, bool) {
	// (a) exact match against id, label, or catalog alias.
	if id, ok := idx.terms[norm]; ok {
		return id, true
	}

	// (b) bidirectional substring containment; "react" matches "reactjs"
	// and vice versa. Short tags are excluded to keep "s" from matching
	// everything.
	if len(norm) >= 3 {
		if id, ok := substringMatch(norm, idx); ok {
			return id, true
		}
	}

	// (c) fixed alias table, then exact match on the canonical form.
	if canon, ok := aliasTable[norm]; ok {
		if id, ok := idx.terms[canon]; ok {
			return id, true
		}
	}

	// (d) suffix-stripped root comparison on both sides.
	return suffixMatch(norm, idx)
}

func substringMatch(norm string, idx *index) (string, bool) {
	best := ""
	for term, id := range idx.terms {
		if len(term) < 3 {
			continue
		}
		if strings.Contains(term, norm) || strings.Contains(norm, term) {
			if best == "" || id < best {
				best = id
			}
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

func suffixMatch(norm string, idx *index) (string, bool) {
	root := stripSuffix(norm)
	best := ""
	for term, id := range idx.terms {
		if stripSuffix(term) == root {
			if best == "" || id < best {
				best = id
			}
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

func stripSuffix(s string) string {
	for _, suf := range strippableSuffixes {
		if strings.HasSuffix(s, suf) && len(s) > len(suf)+2 {
			return strings.TrimSuffix(s, suf)
		}
	}
	return s
}

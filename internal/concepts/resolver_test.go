package concepts

import (
	"reflect"
	"testing"

	"github.com/lumenlearn/mastery-engine/internal/graph"
)

func catalogOf(ids ...string) map[string]graph.ConceptInfo {
	c := make(map[string]graph.ConceptInfo, len(ids))
	for _, id := range ids {
		c[id] = graph.ConceptInfo{Label: id}
	}
	return c
}

func TestResolveExactMatch(t *testing.T) {
	r := NewResolver()
	got := r.Resolve([]string{"javascript"}, catalogOf("javascript", "python"))
	want := []string{"javascript"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolveNormalization(t *testing.T) {
	r := NewResolver()
	got := r.Resolve([]string{"Machine Learning", "machine-learning"}, catalogOf("machine_learning"))
	want := []string{"machine_learning"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolveSubstringBidirectional(t *testing.T) {
	r := NewResolver()
	cat := catalogOf("reactjs")

	if got := r.Resolve([]string{"react"}, cat); !reflect.DeepEqual(got, []string{"reactjs"}) {
		t.Fatalf("tag shorter than concept: got %v", got)
	}
	if got := r.Resolve([]string{"reactjs_hooks"}, cat); !reflect.DeepEqual(got, []string{"reactjs"}) {
		t.Fatalf("tag longer than concept: got %v", got)
	}
}

func TestResolveAliasTable(t *testing.T) {
	r := NewResolver()
	got := r.Resolve([]string{"js"}, catalogOf("javascript"))
	want := []string{"javascript"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve([js]) = %v, want %v", got, want)
	}

	got = r.Resolve([]string{"py"}, catalogOf("python", "javascript"))
	if !reflect.DeepEqual(got, []string{"python"}) {
		t.Fatalf("Resolve([py]) = %v, want [python]", got)
	}
}

func TestResolveSuffixStripped(t *testing.T) {
	r := NewResolver()
	got := r.Resolve([]string{"debugging"}, catalogOf("debug"))
	want := []string{"debug"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve([debugging]) = %v, want %v", got, want)
	}
}

func TestResolveNoMatchIsDroppedSilently(t *testing.T) {
	r := NewResolver()
	got := r.Resolve([]string{"quantum_foo"}, catalogOf("javascript"))
	if len(got) != 0 {
		t.Fatalf("Resolve([quantum_foo]) = %v, want empty", got)
	}
}

func TestResolveMixedTagsDeduplicated(t *testing.T) {
	r := NewResolver()
	got := r.Resolve([]string{"js", "javascript", "py", "nope_at_all"}, catalogOf("javascript", "python"))
	want := []string{"javascript", "python"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolveCatalogAliases(t *testing.T) {
	r := NewResolver()
	cat := map[string]graph.ConceptInfo{
		"golang": {Label: "Go", Aliases: []string{"go-lang"}},
	}
	got := r.Resolve([]string{"go_lang"}, cat)
	want := []string{"golang"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver()
	cat := catalogOf("javascript", "java", "python")
	first := r.Resolve([]string{"java", "py"}, cat)
	for i := 0; i < 20; i++ {
		if got := r.Resolve([]string{"java", "py"}, cat); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: Resolve() = %v, want %v", i, got, first)
		}
	}
}

func TestResolveEmptyInputs(t *testing.T) {
	r := NewResolver()
	if got := r.Resolve(nil, catalogOf("javascript")); got != nil {
		t.Fatalf("nil tags: got %v", got)
	}
	if got := r.Resolve([]string{"javascript"}, nil); got != nil {
		t.Fatalf("nil catalog: got %v", got)
	}
}

package synthetic

import (
	"context"
	"math"
	"testing"

	"github.com/dell/dpais-chat-reference-app-sub000/internal/core/ports"
)

func TestEmbedIsDeterministic(t *testing.T) {
	e := New(32, nil)

	a, err := e.Embed(context.Background(), []string{"same text"}, ports.EmbedQuery)
	if err != nil {
		t.Fatalf("Embed error = %v", err)
	}
	b, err := e.Embed(context.Background(), []string{"same text"}, ports.EmbedQuery)
	if err != nil {
		t.Fatalf("Embed error = %v", err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestEmbedModeChangesVector(t *testing.T) {
	e := New(32, nil)

	query, _ := e.Embed(context.Background(), []string{"text"}, ports.EmbedQuery)
	document, _ := e.Embed(context.Background(), []string{"text"}, ports.EmbedDocument)

	same := true
	for i := range query[0] {
		if query[0][i] != document[0][i] {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("query and document vectors must differ for the same text")
	}
}

func TestEmbedVectorsAreUnitLength(t *testing.T) {
	e := New(64, nil)
	vectors, err := e.Embed(context.Background(), []string{"some text"}, ports.EmbedDocument)
	if err != nil {
		t.Fatalf("Embed error = %v", err)
	}

	var norm float64
	for _, v := range vectors[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-3 {
		t.Fatalf("norm = %v, want 1", math.Sqrt(norm))
	}
}

func TestNewDefaultsDimension(t *testing.T) {
	e := New(0, nil)
	vector, err := e.EmbedQuery(context.Background(), "q")
	if err != nil {
		t.Fatalf("EmbedQuery error = %v", err)
	}
	if len(vector) != 768 {
		t.Fatalf("dimension = %d, want 768", len(vector))
	}
}

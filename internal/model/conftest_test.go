package model

import (
	"testing"
	"time"

	"github.com/kailas-cloud/wisata/internal/corpus"
	"github.com/kailas-cloud/wisata/internal/domain/destination"
	"github.com/kailas-cloud/wisata/internal/textnorm"
)

var fixedTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func bromoKuta() corpus.Corpus {
	return corpus.Build([]destination.Destination{
		destination.Reconstruct("A", destination.Attributes{
			Category: "Alam", Name: "Gunung Bromo",
			Description: "wisata alam pegunungan sejuk",
		}),
		destination.Reconstruct("B", destination.Attributes{
			Category: "Pantai", Name: "Pantai Kuta",
			Description: "pasir putih laut biru", Facilities: "toilet parkir",
		}),
	})
}

func mustFit(t *testing.T, c corpus.Corpus) *Generation {
	t.Helper()
	g, err := FitAt(c, fixedTime)
	if err != nil {
		t.Fatalf("FitAt: %v", err)
	}
	return g
}

func rank(g *Generation, query string) []Hit {
	return g.Rank(textnorm.Normalize(query), 0.05, 30)
}

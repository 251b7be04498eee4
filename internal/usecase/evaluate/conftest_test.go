package evaluate

import (
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/wisata/internal/corpus"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
	"github.com/kailas-cloud/wisata/internal/model"
)

func bromoKuta() corpus.Corpus {
	return corpus.Build([]domdest.Destination{
		domdest.Reconstruct("A", domdest.Attributes{
			Category: "Alam", Name: "Gunung Bromo", Description: "wisata alam pegunungan sejuk",
		}),
		domdest.Reconstruct("B", domdest.Attributes{
			Category: "Pantai", Name: "Pantai Kuta",
			Description: "pasir putih laut biru", Facilities: "toilet parkir",
		}),
	})
}

// labeledCorpus has n documents per category with category-specific vocabulary.
func labeledCorpus(n int) corpus.Corpus {
	vocab := map[string]string{
		"Alam":   "gunung hutan sejuk pendakian kabut",
		"Pantai": "pantai pasir ombak laut karang",
		"Budaya": "candi sejarah museum prasasti kuno",
	}
	var recs []domdest.Destination
	for _, cat := range []string{"Alam", "Pantai", "Budaya"} {
		for i := 0; i < n; i++ {
			recs = append(recs, domdest.Reconstruct(fmt.Sprintf("%s-%d", cat, i), domdest.Attributes{
				Category:    cat,
				Name:        fmt.Sprintf("%s tempat %c", cat, 'a'+rune(i)),
				Description: vocab[cat],
			}))
		}
	}
	return corpus.Build(recs)
}

func fit(t *testing.T, c corpus.Corpus) *model.Generation {
	t.Helper()
	g, err := model.FitAt(c, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FitAt: %v", err)
	}
	return g
}

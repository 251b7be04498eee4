package recommend

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/wisata/internal/corpus"
	"github.com/kailas-cloud/wisata/internal/domain"
	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
	"github.com/kailas-cloud/wisata/internal/model"
)

const (
	idBromo = "0b8f4c1e-7d59-4a7e-9a43-5f1c2a9d6e10"
	idKuta  = "1c2d3e4f-5a6b-4c7d-8e9f-a0b1c2d3e4f5"
	idSanur = "2d3e4f5a-6b7c-4d8e-9fa0-b1c2d3e4f5a6"
	idIjen  = "3e4f5a6b-7c8d-4e9f-a0b1-c2d3e4f5a6b7"
	idGhost = "4f5a6b7c-8d9e-4fa0-b1c2-d3e4f5a6b7c8"
)

// sanurDescription is longer than both description limits.
const sanurDescription = "pasir putih ombak tenang cocok berenang bersama keluarga sambil menikmati " +
	"matahari terbit pagi hari deretan hotel restoran kafe jalan setapak tepi pantai ramai " +
	"wisatawan mancanegara lokal sepanjang tahun terutama musim liburan sekolah"

func destinations() []domdest.Destination {
	return []domdest.Destination{
		domdest.Reconstruct(idBromo, domdest.Attributes{
			Name: "Gunung Bromo", Category: "Alam",
			Description: "wisata alam pegunungan sejuk",
			Rating:      4.7, ReviewCount: 1200, Coordinates: "-7.9425,112.9530",
		}),
		domdest.Reconstruct(idKuta, domdest.Attributes{
			Name: "Pantai Kuta", Category: "Pantai",
			Description: "pasir putih laut biru", Facilities: "toilet parkir",
			Rating: 4.2, ReviewCount: 5400, Coordinates: "-8.7180,115.1686",
		}),
		domdest.Reconstruct(idSanur, domdest.Attributes{
			Name: "Pantai Sanur", Category: "Pantai",
			Description: sanurDescription,
			Rating:      4.5, ReviewCount: 2100,
		}),
		domdest.Reconstruct(idIjen, domdest.Attributes{
			Name: "Kawah Ijen", Category: "Alam",
			Description: "wisata alam pegunungan kawah api biru",
			Rating:      4.8, ReviewCount: 900, Coordinates: "-8.0583,114.2417",
		}),
	}
}

func fitted(t *testing.T) *model.Generation {
	t.Helper()
	g, err := model.FitAt(corpus.Build(destinations()), time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("FitAt: %v", err)
	}
	return g
}

// --- Mocks ---

type fakeLoader struct {
	mu    sync.Mutex
	gen   *model.Generation
	err   error
	calls int
}

func (f *fakeLoader) Load(_ context.Context) (*model.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.gen, nil
}

func (f *fakeLoader) set(g *model.Generation, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gen, f.err = g, err
}

func (f *fakeLoader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeDest struct {
	records map[string]domdest.Destination
	errs    map[string]error
}

func newFakeDest() *fakeDest {
	f := &fakeDest{records: map[string]domdest.Destination{}, errs: map[string]error{}}
	for _, d := range destinations() {
		f.records[d.ID()] = d
	}
	return f
}

func (f *fakeDest) Get(_ context.Context, id string) (domdest.Destination, error) {
	if err, ok := f.errs[id]; ok {
		return domdest.Destination{}, err
	}
	d, ok := f.records[id]
	if !ok {
		return domdest.Destination{}, domain.ErrNotFound
	}
	return d, nil
}

type panicModels struct{}

func (panicModels) Generation(_ context.Context) (*model.Generation, error) {
	return &model.Generation{}, nil
}

func newService(t *testing.T, dest DestinationReader, m QueryMetrics) (*Service, *fakeLoader) {
	t.Helper()
	loader := &fakeLoader{gen: fitted(t)}
	engine := NewEngine(loader, EngineMetrics{}, zap.NewNop())
	return New(engine, dest, DefaultSettings(), m, zap.NewNop()), loader
}

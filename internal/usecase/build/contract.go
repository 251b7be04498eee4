package build

import (
	"context"

	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
	"github.com/kailas-cloud/wisata/internal/model"
)

// DestinationLister reads every destination record in a stable order.
type DestinationLister interface {
	List(ctx context.Context) ([]domdest.Destination, error)
}

// GenerationStore persists fitted generations.
type GenerationStore interface {
	Save(ctx context.Context, g *model.Generation) error
	Prune(keep int) ([]string, error)
}

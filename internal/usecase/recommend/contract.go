package recommend

import (
	"context"

	domdest "github.com/kailas-cloud/wisata/internal/domain/destination"
	"github.com/kailas-cloud/wisata/internal/model"
)

// Loader reads the current model generation from artifact storage.
type Loader interface {
	Load(ctx context.Context) (*model.Generation, error)
}

// DestinationReader resolves ranked identifiers to destination records.
type DestinationReader interface {
	Get(ctx context.Context, id string) (domdest.Destination, error)
}

// Models hands out the generation a query runs against.
type Models interface {
	Generation(ctx context.Context) (*model.Generation, error)
}

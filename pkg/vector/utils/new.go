package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/talentlens/semmatch/pkg/vector"
	"github.com/talentlens/semmatch/pkg/vector/chroma"
	"github.com/talentlens/semmatch/pkg/vector/flat"
	"github.com/talentlens/semmatch/pkg/vector/qdrantvec"
	"github.com/talentlens/semmatch/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string
	TargetURL    string
	Host         string
	Port         int
	DBPath       string
	Collection   string
	Dimensions   uint
	APIKey       string
	Logger       *zap.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "flat", "":
		return flat.New(o.Logger), nil
	case "sqlitevec":
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.DBPath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "chroma":
		return chroma.NewChromaDriver(chroma.Config{
			URL:            o.TargetURL,
			CollectionName: o.Collection,
		}, o.Logger)
	case "qdrant":
		return qdrantvec.NewQdrantDriver(ctx, qdrantvec.Config{
			Host:           o.Host,
			Port:           o.Port,
			CollectionName: o.Collection,
			Dimensions:     uint64(o.Dimensions),
			APIKey:         o.APIKey,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

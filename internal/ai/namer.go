package ai

import (
	"context"

	"github.com/jobradar/job-radar/internal/cluster"
)

// Namer produces a human-readable label for a cluster from its insight
// summary. Cluster ids stay opaque; the label is annotation only and never
// feeds back into clustering or matching.
type Namer interface {
	NameCluster(ctx context.Context, insight *cluster.Insight) (string, error)
}

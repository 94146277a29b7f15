package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/urfave/cli/v3"

	"github.com/eudai-lab/eudaimon/pkg/content"
	"github.com/eudai-lab/eudaimon/pkg/service/retrieval"
	"github.com/eudai-lab/eudaimon/pkg/utils/logging"
)

// Retrieval holds CLI flags for the retrieval index
type Retrieval struct {
	backend string
	topK    int
}

// Flags returns CLI flags for retrieval configuration
func (r *Retrieval) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "retrieval-backend",
			Usage:       "Retrieval backend (sparse or embedding)",
			Value:       "sparse",
			Sources:     cli.EnvVars("EUDAIMON_RETRIEVAL_BACKEND"),
			Destination: &r.backend,
		},
		&cli.IntFlag{
			Name:        "retrieval-topk",
			Usage:       "Number of candidates returned by retrieval",
			Value:       retrieval.DefaultTopK,
			Sources:     cli.EnvVars("EUDAIMON_RETRIEVAL_TOPK"),
			Destination: &r.topK,
		},
	}
}

// TopK returns the configured candidate count
func (r *Retrieval) TopK() int {
	return r.topK
}

// Configure builds the retrieval index over the library. The embedding
// backend requires an LLM client; without one it degrades to sparse with
// a warning rather than failing startup.
func (r *Retrieval) Configure(ctx context.Context, lib *content.Library, llm gollem.LLMClient) (*retrieval.Index, error) {
	var vectorizer retrieval.Vectorizer

	switch r.backend {
	case "embedding":
		if llm == nil {
			logging.Default().Warn("embedding retrieval requires an LLM client, falling back to sparse")
			vectorizer = retrieval.NewTFIDFVectorizer()
			break
		}
		v, err := retrieval.NewEmbeddingVectorizer(llm, retrieval.DefaultEmbeddingDimension)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create embedding vectorizer")
		}
		vectorizer = v

	case "sparse":
		vectorizer = retrieval.NewTFIDFVectorizer()

	default:
		return nil, goerr.New("invalid retrieval backend", goerr.V("backend", r.backend))
	}

	index, err := retrieval.NewIndex(ctx, lib, vectorizer)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build retrieval index")
	}

	logging.Default().Info("Retrieval index ready", "backend", r.backend, "items", lib.Len())
	return index, nil
}

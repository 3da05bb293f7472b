package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

// Milvus column layout. Metadata is stored as a JSON-encoded varchar so the
// index stays schema-free with respect to metadata keys.
const (
	milvusFieldID        = "ID"
	milvusFieldEmbedding = "Embedding"
	milvusFieldMetadata  = "Metadata"

	milvusIDMaxLength       = 512
	milvusMetadataMaxLength = 65535
)

// MilvusIndex implements VectorIndex against a hosted Milvus deployment.
type MilvusIndex struct {
	client client.Client
	cfg    *Config
}

func newMilvusIndex(cfg *Config) (*MilvusIndex, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: milvus index requires an address", ErrInvalidConfiguration)
	}
	return &MilvusIndex{cfg: cfg}, nil
}

// Connect dials Milvus and bootstraps the collection if it does not exist:
// schema, HNSW index under the cosine metric, and load.
func (m *MilvusIndex) Connect(ctx context.Context) error {
	c, err := client.NewClient(ctx, client.Config{
		Address: m.cfg.Address,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to milvus: %w", err)
	}
	m.client = c
	return m.ensureCollection(ctx)
}

func (m *MilvusIndex) ensureCollection(ctx context.Context) error {
	exists, err := m.client.HasCollection(ctx, m.cfg.Collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if exists {
		return m.client.LoadCollection(ctx, m.cfg.Collection, false)
	}

	schema := entity.NewSchema().
		WithName(m.cfg.Collection).
		WithField(entity.NewField().
			WithName(milvusFieldID).
			WithDataType(entity.FieldTypeVarChar).
			WithIsPrimaryKey(true).
			WithMaxLength(milvusIDMaxLength)).
		WithField(entity.NewField().
			WithName(milvusFieldEmbedding).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(m.cfg.Dimension))).
		WithField(entity.NewField().
			WithName(milvusFieldMetadata).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(milvusMetadataMaxLength))

	if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexHNSW(entity.COSINE, 16, 256)
	if err != nil {
		return fmt.Errorf("failed to build index definition: %w", err)
	}
	if err := m.client.CreateIndex(ctx, m.cfg.Collection, milvusFieldEmbedding, idx, false); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	return m.client.LoadCollection(ctx, m.cfg.Collection, false)
}

func (m *MilvusIndex) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

// Upsert writes records by primary key. Milvus upsert semantics make
// re-writing an existing id an overwrite, never a duplicate.
func (m *MilvusIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, 0, len(records))
	vectors := make([][]float32, 0, len(records))
	metas := make([]string, 0, len(records))

	for _, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", r.ID, err)
		}
		ids = append(ids, r.ID)
		vectors = append(vectors, toFloat32(r.Vector))
		metas = append(metas, string(meta))
	}

	_, err := m.client.Upsert(ctx, m.cfg.Collection, "",
		entity.NewColumnVarChar(milvusFieldID, ids),
		entity.NewColumnFloatVector(milvusFieldEmbedding, m.cfg.Dimension, vectors),
		entity.NewColumnVarChar(milvusFieldMetadata, metas),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert records: %w", err)
	}
	return nil
}

// Query runs a cosine k-NN search and returns matches in the similarity
// order Milvus reports.
func (m *MilvusIndex) Query(ctx context.Context, vector Vector, topK int, includeMetadata bool) ([]Match, error) {
	var outputFields []string
	if includeMetadata {
		outputFields = []string{milvusFieldMetadata}
	}

	sp, err := entity.NewIndexHNSWSearchParam(64)
	if err != nil {
		return nil, fmt.Errorf("failed to build search param: %w", err)
	}

	results, err := m.client.Search(ctx, m.cfg.Collection, nil, "", outputFields,
		[]entity.Vector{entity.FloatVector(toFloat32(vector))},
		milvusFieldEmbedding, entity.COSINE, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	var matches []Match
	for _, rs := range results {
		for i := 0; i < rs.ResultCount; i++ {
			id, err := rs.IDs.GetAsString(i)
			if err != nil {
				continue
			}
			match := Match{
				ID:    id,
				Score: float64(rs.Scores[i]),
			}
			if includeMetadata {
				if col := rs.Fields.GetColumn(milvusFieldMetadata); col != nil {
					if raw, err := col.GetAsString(i); err == nil {
						var meta Metadata
						if err := json.Unmarshal([]byte(raw), &meta); err == nil {
							match.Metadata = meta
						}
					}
				}
			}
			matches = append(matches, match)
		}
	}
	return matches, nil
}

// Stats reads the collection row count.
func (m *MilvusIndex) Stats(ctx context.Context) (Stats, error) {
	stats, err := m.client.GetCollectionStatistics(ctx, m.cfg.Collection)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to read collection statistics: %w", err)
	}
	count, _ := strconv.ParseInt(stats["row_count"], 10, 64)
	return Stats{TotalCount: count}, nil
}

func toFloat32(v Vector) []float32 {
	out := make([]float32, len(v))
	for i, f := range v {
		out[i] = float32(f)
	}
	return out
}

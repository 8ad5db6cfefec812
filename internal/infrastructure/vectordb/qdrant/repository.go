// Package qdrant provides a VectorDB implementation using Qdrant.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ersonp/storygraph/internal/domain/entities"
	"github.com/ersonp/storygraph/internal/domain/ports"
	"github.com/ersonp/storygraph/internal/infrastructure/config"
)

// Repository implements the VectorDB interface using Qdrant.
type Repository struct {
	client     pb.CollectionsClient
	points     pb.PointsClient
	collection string
	conn       *grpc.ClientConn
}

// NewRepository creates a new Qdrant repository.
func NewRepository(cfg config.QdrantConfig) (*Repository, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("connecting to qdrant: %w", err)
	}

	return &Repository{
		client:     pb.NewCollectionsClient(conn),
		points:     pb.NewPointsClient(conn),
		collection: cfg.Collection,
		conn:       conn,
	}, nil
}

// Close closes the gRPC connection.
func (r *Repository) Close() error {
	if r.conn != nil {
		return r.conn.Close()
	}
	return nil
}

// EnsureCollection creates the collection if it doesn't exist.
func (r *Repository) EnsureCollection(ctx context.Context, vectorSize uint64) error {
	_, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err == nil {
		return nil
	}

	_, err = r.client.Create(ctx, &pb.CreateCollection{
		CollectionName: r.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     vectorSize,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("creating collection: %w", err)
	}

	return nil
}

// UpsertBatch stores entity records, replacing existing points by ID.
func (r *Repository) UpsertBatch(ctx context.Context, records []ports.EntityRecord) error {
	if len(records) == 0 {
		return nil
	}

	points := make([]*pb.PointStruct, 0, len(records))
	for _, rec := range records {
		points = append(points, &pb.PointStruct{
			Id: &pb.PointId{
				PointIdOptions: &pb.PointId_Uuid{
					Uuid: pointID(rec.ID),
				},
			},
			Vectors: &pb.Vectors{
				VectorsOptions: &pb.Vectors_Vector{
					Vector: &pb.Vector{
						Data: rec.Embedding,
					},
				},
			},
			Payload: map[string]*pb.Value{
				"node_id":     {Kind: &pb.Value_StringValue{StringValue: rec.ID}},
				"story_id":    {Kind: &pb.Value_StringValue{StringValue: rec.StoryID}},
				"kind":        {Kind: &pb.Value_StringValue{StringValue: string(rec.Kind)}},
				"name":        {Kind: &pb.Value_StringValue{StringValue: rec.Name}},
				"description": {Kind: &pb.Value_StringValue{StringValue: rec.Description}},
			},
		})
	}

	_, err := r.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: r.collection,
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	return nil
}

// Search performs a semantic search within a story.
func (r *Repository) Search(ctx context.Context, storyID string, embedding []float32, limit int) ([]ports.EntityRecord, error) {
	return r.search(ctx, embedding, limit, &pb.Filter{
		Must: []*pb.Condition{keywordCondition("story_id", storyID)},
	})
}

// SearchByKind performs a semantic search filtered by story and node kind.
func (r *Repository) SearchByKind(ctx context.Context, storyID string, kind entities.NodeKind, embedding []float32, limit int) ([]ports.EntityRecord, error) {
	return r.search(ctx, embedding, limit, &pb.Filter{
		Must: []*pb.Condition{
			keywordCondition("story_id", storyID),
			keywordCondition("kind", string(kind)),
		},
	})
}

func (r *Repository) search(ctx context.Context, embedding []float32, limit int, filter *pb.Filter) ([]ports.EntityRecord, error) {
	resp, err := r.points.Search(ctx, &pb.SearchPoints{
		CollectionName: r.collection,
		Vector:         embedding,
		Limit:          uint64(limit),
		Filter:         filter,
		WithPayload: &pb.WithPayloadSelector{
			SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("searching points: %w", err)
	}

	records := make([]ports.EntityRecord, 0, len(resp.Result))
	for _, point := range resp.Result {
		rec := payloadToRecord(point.Payload)
		rec.Score = point.Score
		records = append(records, rec)
	}

	return records, nil
}

// Delete removes a record by its node ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{
					Ids: []*pb.PointId{
						{PointIdOptions: &pb.PointId_Uuid{Uuid: pointID(id)}},
					},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting point: %w", err)
	}

	return nil
}

// DeleteByStory removes every record belonging to a story.
func (r *Repository) DeleteByStory(ctx context.Context, storyID string) error {
	_, err := r.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: r.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{keywordCondition("story_id", storyID)},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("deleting points by story: %w", err)
	}

	return nil
}

// Count returns the total number of indexed records.
func (r *Repository) Count(ctx context.Context) (uint64, error) {
	resp, err := r.client.Get(ctx, &pb.GetCollectionInfoRequest{
		CollectionName: r.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("getting collection info: %w", err)
	}

	if resp.Result.PointsCount == nil {
		return 0, nil
	}

	return *resp.Result.PointsCount, nil
}

// pointID derives a deterministic UUID point ID from a graph node ID, so
// re-indexing the same node replaces its point.
func pointID(nodeID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(nodeID)).String()
}

func keywordCondition(key, value string) *pb.Condition {
	return &pb.Condition{
		ConditionOneOf: &pb.Condition_Field{
			Field: &pb.FieldCondition{
				Key: key,
				Match: &pb.Match{
					MatchValue: &pb.Match_Keyword{
						Keyword: value,
					},
				},
			},
		},
	}
}

func payloadToRecord(payload map[string]*pb.Value) ports.EntityRecord {
	return ports.EntityRecord{
		ID:          getStringValue(payload, "node_id"),
		StoryID:     getStringValue(payload, "story_id"),
		Kind:        entities.NodeKind(getStringValue(payload, "kind")),
		Name:        getStringValue(payload, "name"),
		Description: getStringValue(payload, "description"),
	}
}

func getStringValue(payload map[string]*pb.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

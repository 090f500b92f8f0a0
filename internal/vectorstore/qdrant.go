package vectorstore

import (
	"context"
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// QdrantConfig holds connection settings for a Qdrant instance.
type QdrantConfig struct {
	Host       string `json:"host"`
	Port       int    `json:"port"`
	Collection string `json:"collection"`
}

// DefaultCollection is used when the config leaves Collection empty.
const DefaultCollection = "memories"

// Configured reports whether a Qdrant host is set.
func (c QdrantConfig) Configured() bool {
	return c.Host != ""
}

// indexedFields are the payload keys searches filter on.
var indexedFields = map[string]pb.FieldType{
	memory.FieldUserID:      pb.FieldType_FieldTypeKeyword,
	memory.FieldPrivacy:     pb.FieldType_FieldTypeKeyword,
	memory.FieldTags:        pb.FieldType_FieldTypeKeyword,
	memory.FieldCategory:    pb.FieldType_FieldTypeKeyword,
	memory.FieldMemoryType:  pb.FieldType_FieldTypeKeyword,
	memory.FieldContentHash: pb.FieldType_FieldTypeKeyword,
	memory.FieldImportance:  pb.FieldType_FieldTypeInteger,
}

// Index is a Qdrant collection holding memory vectors. It implements
// memory.VectorIndex.
type Index struct {
	conn        *grpc.ClientConn
	collections pb.CollectionsClient
	points      pb.PointsClient
	collection  string
	logger      *zap.Logger
}

var _ memory.VectorIndex = (*Index)(nil)

// Open dials the Qdrant gRPC endpoint. The connection is lazy; the first
// call reports an unreachable server.
func Open(cfg QdrantConfig, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect %s: %w", addr, err)
	}
	collection := cfg.Collection
	if collection == "" {
		collection = DefaultCollection
	}
	return &Index{
		conn:        conn,
		collections: pb.NewCollectionsClient(conn),
		points:      pb.NewPointsClient(conn),
		collection:  collection,
		logger:      logger,
	}, nil
}

// Collection returns the collection name.
func (x *Index) Collection() string {
	return x.collection
}

// EnsureCollection creates the collection if it does not already exist and
// indexes every filtered payload field.
func (x *Index) EnsureCollection(ctx context.Context, dimension uint64) error {
	if _, err := x.collections.Get(ctx, &pb.GetCollectionInfoRequest{CollectionName: x.collection}); err == nil {
		return nil
	}
	_, err := x.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: x.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     dimension,
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create collection %s: %w", x.collection, err)
	}

	wait := true
	for field, ft := range indexedFields {
		_, err := x.points.CreateFieldIndex(ctx, &pb.CreateFieldIndexCollection{
			CollectionName: x.collection,
			FieldName:      field,
			FieldType:      ft.Enum(),
			Wait:           &wait,
		})
		if err != nil {
			return fmt.Errorf("index field %s on %s: %w", field, x.collection, err)
		}
	}
	x.logger.Info("qdrant collection created",
		zap.String("collection", x.collection),
		zap.Uint64("dimension", dimension))
	return nil
}

// Upsert inserts or replaces a single point.
func (x *Index) Upsert(ctx context.Context, id string, vector []float32, meta memory.Metadata) error {
	wait := true
	_, err := x.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: x.collection,
		Wait:           &wait,
		Points: []*pb.PointStruct{
			{
				Id:      pointID(id),
				Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: vector}}},
				Payload: encodePayload(meta),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("upsert point %s: %w", id, err)
	}
	return nil
}

// Query runs a filtered nearest-neighbor search.
func (x *Index) Query(ctx context.Context, vector []float32, filter memory.Predicate, topK int) ([]memory.Match, error) {
	f, err := toFilter(filter)
	if err != nil {
		return nil, err
	}
	resp, err := x.points.Search(ctx, &pb.SearchPoints{
		CollectionName: x.collection,
		Vector:         vector,
		Filter:         f,
		Limit:          uint64(topK),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", x.collection, err)
	}
	matches := make([]memory.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, memory.Match{
			ID:       r.Id.GetUuid(),
			Score:    float64(r.Score),
			Metadata: decodePayload(r.Payload),
		})
	}
	return matches, nil
}

// Delete removes a point by id. Deleting a missing point is not an error.
func (x *Index) Delete(ctx context.Context, id string) error {
	wait := true
	_, err := x.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: x.collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: []*pb.PointId{pointID(id)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("delete point %s: %w", id, err)
	}
	return nil
}

// Close tears down the underlying gRPC connection.
func (x *Index) Close() error {
	return x.conn.Close()
}

func pointID(id string) *pb.PointId {
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: id}}
}

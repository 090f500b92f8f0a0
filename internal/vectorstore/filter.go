package vectorstore

import (
	"fmt"

	pb "github.com/qdrant/go-client/qdrant"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// toFilter translates a memory predicate into a Qdrant filter. A nil
// predicate yields a nil filter.
func toFilter(p memory.Predicate) (*pb.Filter, error) {
	switch p := p.(type) {
	case nil:
		return nil, nil
	case memory.And:
		conds, err := conditions(p)
		if err != nil {
			return nil, err
		}
		return &pb.Filter{Must: conds}, nil
	case memory.Or:
		conds, err := conditions(p)
		if err != nil {
			return nil, err
		}
		return &pb.Filter{Should: conds}, nil
	default:
		c, err := condition(p)
		if err != nil {
			return nil, err
		}
		return &pb.Filter{Must: []*pb.Condition{c}}, nil
	}
}

func conditions(ps []memory.Predicate) ([]*pb.Condition, error) {
	out := make([]*pb.Condition, 0, len(ps))
	for _, p := range ps {
		c, err := condition(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func condition(p memory.Predicate) (*pb.Condition, error) {
	switch p := p.(type) {
	case memory.Eq:
		return fieldCondition(&pb.FieldCondition{
			Key:   p.Field,
			Match: &pb.Match{MatchValue: &pb.Match_Keyword{Keyword: p.Value}},
		}), nil
	case memory.In:
		return fieldCondition(&pb.FieldCondition{
			Key: p.Field,
			Match: &pb.Match{MatchValue: &pb.Match_Keywords{
				Keywords: &pb.RepeatedStrings{Strings: p.Values},
			}},
		}), nil
	case memory.Gte:
		gte := float64(p.Value)
		return fieldCondition(&pb.FieldCondition{
			Key:   p.Field,
			Range: &pb.Range{Gte: &gte},
		}), nil
	case memory.And, memory.Or:
		nested, err := toFilter(p)
		if err != nil {
			return nil, err
		}
		return &pb.Condition{ConditionOneOf: &pb.Condition_Filter{Filter: nested}}, nil
	default:
		return nil, fmt.Errorf("qdrant filter: unsupported predicate %T", p)
	}
}

func fieldCondition(fc *pb.FieldCondition) *pb.Condition {
	return &pb.Condition{ConditionOneOf: &pb.Condition_Field{Field: fc}}
}

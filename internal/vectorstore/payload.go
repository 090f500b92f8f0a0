package vectorstore

import (
	"time"

	pb "github.com/qdrant/go-client/qdrant"

	"github.com/nidhogg/nuka-memory/internal/memory"
)

// Payload keys not shared with the filter.
const (
	keyChatID       = "chat_id"
	keyContent      = "content"
	keyStrength     = "strength"
	keyDecayRate    = "decay_rate"
	keyIsPermanent  = "is_permanent"
	keyRequiresAuth = "requires_auth"
	keyCreatedAt    = "created_at"
)

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}

func intValue(i int) *pb.Value {
	return &pb.Value{Kind: &pb.Value_IntegerValue{IntegerValue: int64(i)}}
}

func boolValue(b bool) *pb.Value {
	return &pb.Value{Kind: &pb.Value_BoolValue{BoolValue: b}}
}

func encodePayload(m memory.Metadata) map[string]*pb.Value {
	tags := make([]*pb.Value, len(m.Tags))
	for i, t := range m.Tags {
		tags[i] = stringValue(t)
	}
	p := map[string]*pb.Value{
		memory.FieldUserID:      stringValue(m.UserID),
		memory.FieldContentHash: stringValue(m.ContentHash),
		memory.FieldMemoryType:  stringValue(string(m.MemoryType)),
		memory.FieldPrivacy:     stringValue(string(m.PrivacyLevel)),
		memory.FieldTags:        {Kind: &pb.Value_ListValue{ListValue: &pb.ListValue{Values: tags}}},
		memory.FieldImportance:  intValue(m.Importance),
		keyContent:              stringValue(m.Content),
		keyStrength:             intValue(m.Strength),
		keyDecayRate:            intValue(m.DecayRate),
		keyIsPermanent:          boolValue(m.IsPermanent),
		keyRequiresAuth:         boolValue(m.RequiresAuth),
		keyCreatedAt:            stringValue(m.CreatedAt.UTC().Format(time.RFC3339Nano)),
	}
	// Absent rather than empty so category filters never match "".
	if m.Category != "" {
		p[memory.FieldCategory] = stringValue(m.Category)
	}
	if m.ChatID != "" {
		p[keyChatID] = stringValue(m.ChatID)
	}
	return p
}

func decodePayload(p map[string]*pb.Value) memory.Metadata {
	m := memory.Metadata{
		UserID:       p[memory.FieldUserID].GetStringValue(),
		ChatID:       p[keyChatID].GetStringValue(),
		Content:      p[keyContent].GetStringValue(),
		ContentHash:  p[memory.FieldContentHash].GetStringValue(),
		MemoryType:   memory.MemoryType(p[memory.FieldMemoryType].GetStringValue()),
		PrivacyLevel: memory.PrivacyLevel(p[memory.FieldPrivacy].GetStringValue()),
		Category:     p[memory.FieldCategory].GetStringValue(),
		Importance:   int(p[memory.FieldImportance].GetIntegerValue()),
		Strength:     int(p[keyStrength].GetIntegerValue()),
		DecayRate:    int(p[keyDecayRate].GetIntegerValue()),
		IsPermanent:  p[keyIsPermanent].GetBoolValue(),
		RequiresAuth: p[keyRequiresAuth].GetBoolValue(),
	}
	for _, v := range p[memory.FieldTags].GetListValue().GetValues() {
		if s := v.GetStringValue(); s != "" {
			m.Tags = append(m.Tags, s)
		}
	}
	if ts := p[keyCreatedAt].GetStringValue(); ts != "" {
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			m.CreatedAt = t
		}
	}
	return m
}

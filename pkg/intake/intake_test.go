package intake

import (
	"testing"
	"time"
)

func TestNewEnvelopeStampsReceivedAt(t *testing.T) {
	env := NewEnvelope("hello", Metadata{Source: "email"})

	if env.Metadata.ReceivedAt.IsZero() {
		t.Error("NewEnvelope() did not stamp ReceivedAt")
	}
	if env.Metadata.ReceivedAt.Location() != time.UTC {
		t.Errorf("ReceivedAt location = %v, want UTC", env.Metadata.ReceivedAt.Location())
	}
}

func TestNewEnvelopePreservesReceivedAt(t *testing.T) {
	at := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	env := NewEnvelope("hello", Metadata{ReceivedAt: at})

	if !env.Metadata.ReceivedAt.Equal(at) {
		t.Errorf("ReceivedAt = %v, want %v", env.Metadata.ReceivedAt, at)
	}
}

func TestEnvelopeEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{name: "empty string", raw: "", want: true},
		{name: "whitespace only", raw: "   \n\t  ", want: true},
		{name: "has content", raw: "fire in warehouse", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := NewEnvelope(tt.raw, Metadata{})
			if got := env.Empty(); got != tt.want {
				t.Errorf("Empty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMetadataFromMap(t *testing.T) {
	md := MetadataFromMap(map[string]any{
		"source":        "webform",
		"submitted_by":  "j.doe",
		"business_unit": "plant-7",
		"received_at":   "2025-01-01T10:00:00Z",
		"shift":         "night",
		"priority":      2,
	})

	if md.Source != "webform" {
		t.Errorf("Source = %q, want %q", md.Source, "webform")
	}
	if md.SubmittedBy != "j.doe" {
		t.Errorf("SubmittedBy = %q, want %q", md.SubmittedBy, "j.doe")
	}
	if md.BusinessUnit != "plant-7" {
		t.Errorf("BusinessUnit = %q, want %q", md.BusinessUnit, "plant-7")
	}
	want := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if !md.ReceivedAt.Equal(want) {
		t.Errorf("ReceivedAt = %v, want %v", md.ReceivedAt, want)
	}
	if len(md.Extra) != 2 {
		t.Fatalf("Extra has %d keys, want 2", len(md.Extra))
	}
	if md.Extra["shift"] != "night" {
		t.Errorf("Extra[shift] = %v, want night", md.Extra["shift"])
	}
}

func TestMetadataFromMapNil(t *testing.T) {
	md := MetadataFromMap(nil)
	if md.Source != "" || md.Extra != nil {
		t.Errorf("MetadataFromMap(nil) = %+v, want zero value", md)
	}
}

func TestMetadataFromMapBadTypes(t *testing.T) {
	md := MetadataFromMap(map[string]any{
		"source":      42,
		"received_at": "not-a-time",
	})
	if md.Source != "" {
		t.Errorf("Source = %q, want empty for non-string value", md.Source)
	}
	if !md.ReceivedAt.IsZero() {
		t.Errorf("ReceivedAt = %v, want zero for unparsable value", md.ReceivedAt)
	}
}

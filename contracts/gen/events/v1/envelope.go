package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the versioned event envelope shared by cardsync services.
// Fields are append-only; consumers must ignore what they do not understand.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	SourceService string          `json:"source_service"`
	SourceID      string          `json:"source_instance_id"`
	SchemaVersion int             `json:"schema_version"`
	PartitionKey  string          `json:"partition_key"`
	Fingerprint   string          `json:"fingerprint,omitempty"`
	Data          json.RawMessage `json:"data"`
}

// Package contract defines the Kafka topics, CloudEvent types and payloads exchanged with other services.
package contract

import "time"

const (
	TopicCatalogEvents  = "catalog.events"
	TopicCatalogImports = "catalog.imports"
	TopicMatchEvents    = "match.events"
)

const (
	ApartmentCreated  = "apartment.created"
	ApartmentUpdated  = "apartment.updated"
	ApartmentDeleted  = "apartment.deleted"
	ApartmentImported = "apartment.imported"
	MatchCompleted    = "match.completed"
)

// Image mirrors the catalog image reference.
type Image struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Video mirrors the catalog video reference.
type Video struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ApartmentPayload is the apartment shape on the wire and in seed files.
// ID is optional on import; a blank ID allocates the next one.
type ApartmentPayload struct {
	ID       string  `json:"id,omitempty"`
	Name     string  `json:"name"`
	MinPrice int     `json:"minPrice"`
	MaxPrice int     `json:"maxPrice"`
	Address  string  `json:"address"`
	District string  `json:"district"`
	Remarks  string  `json:"remarks"`
	Images   []Image `json:"images"`
	Videos   []Video `json:"videos"`
}

// ApartmentChangedEvent is published on create and update.
type ApartmentChangedEvent struct {
	ApartmentID string    `json:"apartment_id"`
	Name        string    `json:"name"`
	District    string    `json:"district"`
	MinPrice    int       `json:"min_price"`
	MaxPrice    int       `json:"max_price"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ApartmentDeletedEvent is published when an apartment is removed.
type ApartmentDeletedEvent struct {
	ApartmentID string    `json:"apartment_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// ApartmentImportedEvent asks the catalog to upsert one apartment.
type ApartmentImportedEvent struct {
	Apartment ApartmentPayload `json:"apartment"`
	Source    string           `json:"source"`
}

// MatchCompletedEvent summarizes one matching run.
type MatchCompletedEvent struct {
	WorkAddress    string    `json:"work_address"`
	CommuteTime    int       `json:"commute_time"`
	Budget         int       `json:"budget"`
	ResultCount    int       `json:"result_count"`
	CatalogSize    int       `json:"catalog_size"`
	LookupFailures int       `json:"lookup_failures"`
	WorkLat        *float64  `json:"work_lat,omitempty"`
	WorkLng        *float64  `json:"work_lng,omitempty"`
	DurationMillis int64     `json:"duration_ms"`
	UserID         string    `json:"user_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

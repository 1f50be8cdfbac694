// Package commute resolves addresses and transit commutes through the map provider,
// memoizing both for the life of the process.
package commute

import (
	"context"

	commuteDomain "github.com/rent-home/service-matching/internal/domain/commute"
)

// Provider is the external map service.
type Provider interface {
	// Configured reports whether an API key is present.
	Configured() bool

	// Geocode resolves one address. A provider-side rejection is a *commuteDomain.GeocodeError.
	Geocode(ctx context.Context, address string) (commuteDomain.Coordinate, error)

	// Transit plans a public-transit trip departing at departureUnix, best route first.
	Transit(ctx context.Context, from, to commuteDomain.Coordinate, departureUnix int64) ([]TransitRoute, error)

	// Suggest returns address completions for keyword within region.
	Suggest(ctx context.Context, keyword, region string) ([]Suggestion, error)
}

// TransitRoute is one itinerary as reported by the provider.
// Duration is in minutes and Distance in meters.
type TransitRoute struct {
	Duration float64       `json:"duration"`
	Distance float64       `json:"distance"`
	Steps    []TransitStep `json:"steps"`
}

// TransitStep is either a ride on a named vehicle or a plain instruction (walking, transfer).
type TransitStep struct {
	Instruction string   `json:"instruction,omitempty"`
	Vehicle     *Vehicle `json:"vehicle,omitempty"`
}

// Vehicle is a bus or subway line ridden for Stations stops.
type Vehicle struct {
	Title    string `json:"title"`
	Stations int    `json:"stations"`
}

// Suggestion is one autocomplete entry.
type Suggestion struct {
	ID       string                   `json:"id"`
	Title    string                   `json:"title"`
	Address  string                   `json:"address"`
	Province string                   `json:"province,omitempty"`
	City     string                   `json:"city,omitempty"`
	District string                   `json:"district,omitempty"`
	Location commuteDomain.Coordinate `json:"location"`
}

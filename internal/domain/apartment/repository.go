// Package apartment is the catalog aggregate read by the matcher and edited by admins.
package apartment

import "context"

// ApartmentRepository defines persistence operations for the catalog.
type ApartmentRepository interface {
	// FindByID retrieves an apartment by its APT#### identifier.
	FindByID(ctx context.Context, id string) (*Apartment, error)

	// ListAll returns the catalog in ID order, which is the order a matching run walks it.
	ListAll(ctx context.Context) ([]*Apartment, error)

	// Count returns the catalog size.
	Count(ctx context.Context) (int64, error)

	// ListIDs returns every apartment ID, used to allocate the next one.
	ListIDs(ctx context.Context) ([]string, error)

	// ExistsByNameAndDistrict reports whether another apartment (not excludeID) has the same name and district.
	ExistsByNameAndDistrict(ctx context.Context, name, district, excludeID string) (bool, error)

	// ListDistricts returns the distinct non-empty districts, sorted.
	ListDistricts(ctx context.Context) ([]string, error)

	// Save persists a new apartment.
	Save(ctx context.Context, apt *Apartment) error

	// Update persists changes to an existing apartment.
	Update(ctx context.Context, apt *Apartment) error

	// Upsert creates or replaces an apartment by ID.
	Upsert(ctx context.Context, apt *Apartment) error

	// Delete removes an apartment.
	Delete(ctx context.Context, id string) error
}

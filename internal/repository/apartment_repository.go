package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apartmentDomain "github.com/rent-home/service-matching/internal/domain/apartment"
	"github.com/rent-home/service-matching/internal/platform/domain"
)

// ApartmentModel is the GORM model for the apartments table.
type ApartmentModel struct {
	ID        string          `gorm:"primaryKey;size:20"`
	Name      string          `gorm:"not null;size:200;uniqueIndex:idx_apartments_name_district"`
	MinPrice  int             `gorm:"not null"`
	MaxPrice  int             `gorm:"not null"`
	Address   string          `gorm:"not null;size:500"`
	District  string          `gorm:"not null;size:50;default:'';uniqueIndex:idx_apartments_name_district;index"`
	Remarks   string          `gorm:"type:text"`
	Images    json.RawMessage `gorm:"type:jsonb;not null"`
	Videos    json.RawMessage `gorm:"type:jsonb;not null"`
	CreatedAt time.Time       `gorm:"not null"`
	UpdatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ApartmentModel) TableName() string {
	return "apartments"
}

// GormApartmentRepository is the GORM-based implementation of ApartmentRepository.
type GormApartmentRepository struct {
	db *gorm.DB
}

// NewGormApartmentRepository creates a new GormApartmentRepository.
func NewGormApartmentRepository(db *gorm.DB) *GormApartmentRepository {
	return &GormApartmentRepository{db: db}
}

// FindByID retrieves an apartment by its identifier.
func (r *GormApartmentRepository) FindByID(ctx context.Context, id string) (*apartmentDomain.Apartment, error) {
	var model ApartmentModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Apartment", id)
		}
		return nil, fmt.Errorf("failed to find apartment by ID: %w", err)
	}
	return toDomainApartment(&model)
}

// ListAll returns the catalog ordered by numeric ID.
func (r *GormApartmentRepository) ListAll(ctx context.Context) ([]*apartmentDomain.Apartment, error) {
	var models []ApartmentModel
	if err := r.db.WithContext(ctx).
		Order("length(id) ASC, id ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}

	apartments := make([]*apartmentDomain.Apartment, len(models))
	for i := range models {
		apt, err := toDomainApartment(&models[i])
		if err != nil {
			return nil, err
		}
		apartments[i] = apt
	}
	return apartments, nil
}

// Count returns the number of apartments.
func (r *GormApartmentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ApartmentModel{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count apartments: %w", err)
	}
	return total, nil
}

// ListIDs returns every apartment ID.
func (r *GormApartmentRepository) ListIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&ApartmentModel{}).Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list apartment IDs: %w", err)
	}
	return ids, nil
}

// ExistsByNameAndDistrict reports whether another apartment has the same name and district.
func (r *GormApartmentRepository) ExistsByNameAndDistrict(ctx context.Context, name, district, excludeID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&ApartmentModel{}).Where("name = ? AND district = ?", name, district)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check apartment name: %w", err)
	}
	return count > 0, nil
}

// ListDistricts returns distinct non-empty districts in order.
func (r *GormApartmentRepository) ListDistricts(ctx context.Context) ([]string, error) {
	var districts []string
	if err := r.db.WithContext(ctx).
		Model(&ApartmentModel{}).
		Where("district <> ''").
		Distinct("district").
		Order("district ASC").
		Pluck("district", &districts).Error; err != nil {
		return nil, fmt.Errorf("failed to list districts: %w", err)
	}
	return districts, nil
}

// Save persists a new apartment.
func (r *GormApartmentRepository) Save(ctx context.Context, apt *apartmentDomain.Apartment) error {
	model, err := toApartmentModel(apt)
	if err != nil {
		return fmt.Errorf("failed to convert apartment to model: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save apartment: %w", err)
	}
	return nil
}

// Update persists changes to an existing apartment.
func (r *GormApartmentRepository) Update(ctx context.Context, apt *apartmentDomain.Apartment) error {
	model, err := toApartmentModel(apt)
	if err != nil {
		return fmt.Errorf("failed to convert apartment to model: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&ApartmentModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]interface{}{
			"name":       model.Name,
			"min_price":  model.MinPrice,
			"max_price":  model.MaxPrice,
			"address":    model.Address,
			"district":   model.District,
			"remarks":    model.Remarks,
			"images":     model.Images,
			"videos":     model.Videos,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update apartment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Apartment", model.ID)
	}
	return nil
}

// Upsert inserts the apartment or replaces every column of the existing row.
func (r *GormApartmentRepository) Upsert(ctx context.Context, apt *apartmentDomain.Apartment) error {
	model, err := toApartmentModel(apt)
	if err != nil {
		return fmt.Errorf("failed to convert apartment to model: %w", err)
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "min_price", "max_price", "address", "district", "remarks", "images", "videos", "updated_at"}),
		}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to upsert apartment: %w", err)
	}
	return nil
}

// Delete removes an apartment by ID.
func (r *GormApartmentRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&ApartmentModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete apartment: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Apartment", id)
	}
	return nil
}

// --- Conversion Helpers ---

func toApartmentModel(apt *apartmentDomain.Apartment) (*ApartmentModel, error) {
	images, err := json.Marshal(apt.Images())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal images: %w", err)
	}
	videos, err := json.Marshal(apt.Videos())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal videos: %w", err)
	}

	return &ApartmentModel{
		ID:        apt.ID(),
		Name:      apt.Name(),
		MinPrice:  apt.MinPrice(),
		MaxPrice:  apt.MaxPrice(),
		Address:   apt.Address(),
		District:  apt.District(),
		Remarks:   apt.Remarks(),
		Images:    images,
		Videos:    videos,
		CreatedAt: apt.CreatedAt(),
		UpdatedAt: apt.UpdatedAt(),
	}, nil
}

func toDomainApartment(m *ApartmentModel) (*apartmentDomain.Apartment, error) {
	images := []apartmentDomain.Image{}
	if len(m.Images) > 0 {
		if err := json.Unmarshal(m.Images, &images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal images: %w", err)
		}
	}
	videos := []apartmentDomain.Video{}
	if len(m.Videos) > 0 {
		if err := json.Unmarshal(m.Videos, &videos); err != nil {
			return nil, fmt.Errorf("failed to unmarshal videos: %w", err)
		}
	}

	return apartmentDomain.Reconstruct(m.ID, apartmentDomain.Attributes{
		Name:     m.Name,
		MinPrice: m.MinPrice,
		MaxPrice: m.MaxPrice,
		Address:  m.Address,
		District: m.District,
		Remarks:  m.Remarks,
		Images:   images,
		Videos:   videos,
	}, m.CreatedAt, m.UpdatedAt), nil
}

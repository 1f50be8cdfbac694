package application

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rent-home/service-matching/internal/contract"
	apartmentDomain "github.com/rent-home/service-matching/internal/domain/apartment"
	"github.com/rent-home/service-matching/internal/platform/domain"
)

const duplicateNameMessage = "公寓名称重复，同一区域内不能重名"

// ApartmentRequest is the body of admin create and update calls.
type ApartmentRequest struct {
	Name     string                  `json:"name" binding:"required"`
	MinPrice int                     `json:"minPrice" binding:"min=0"`
	MaxPrice int                     `json:"maxPrice" binding:"min=0"`
	Address  string                  `json:"address" binding:"required"`
	District string                  `json:"district"`
	Remarks  string                  `json:"remarks"`
	Images   []apartmentDomain.Image `json:"images"`
	Videos   []apartmentDomain.Video `json:"videos"`
}

// CheckNameRequest asks whether a name is already taken in a district.
type CheckNameRequest struct {
	Name     string `json:"name" binding:"required"`
	District string `json:"district"`
	ID       string `json:"id"`
}

// ApartmentDTO is the response representation of an apartment.
type ApartmentDTO struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	MinPrice  int                     `json:"minPrice"`
	MaxPrice  int                     `json:"maxPrice"`
	Address   string                  `json:"address"`
	District  string                  `json:"district"`
	Remarks   string                  `json:"remarks"`
	Images    []apartmentDomain.Image `json:"images"`
	Videos    []apartmentDomain.Video `json:"videos"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// ApartmentService is the application service for the apartment catalog.
type ApartmentService struct {
	repo     apartmentDomain.ApartmentRepository
	producer EventPublisher
	logger   *zap.Logger
}

// NewApartmentService creates a new ApartmentService.
func NewApartmentService(repo apartmentDomain.ApartmentRepository, producer EventPublisher, logger *zap.Logger) *ApartmentService {
	return &ApartmentService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// ListApartments returns the full catalog.
func (s *ApartmentService) ListApartments(ctx context.Context) ([]ApartmentDTO, error) {
	apts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]ApartmentDTO, len(apts))
	for i, apt := range apts {
		dtos[i] = toApartmentDTO(apt)
	}
	return dtos, nil
}

// CountApartments returns the catalog size.
func (s *ApartmentService) CountApartments(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// GetApartment returns one apartment.
func (s *ApartmentService) GetApartment(ctx context.Context, id string) (*ApartmentDTO, error) {
	apt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toApartmentDTO(apt)
	return &dto, nil
}

// CreateApartment adds an apartment under the next free APT#### ID.
func (s *ApartmentService) CreateApartment(ctx context.Context, req ApartmentRequest) (*ApartmentDTO, error) {
	if err := s.ensureUniqueName(ctx, req.Name, req.District, ""); err != nil {
		return nil, err
	}

	ids, err := s.repo.ListIDs(ctx)
	if err != nil {
		return nil, err
	}

	apt, err := apartmentDomain.NewApartment(apartmentDomain.NextID(ids), req.attributes())
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Save(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to save apartment: %w", err)
	}

	s.logger.Info("apartment created",
		zap.String("apartment_id", apt.ID()),
		zap.String("name", apt.Name()),
	)
	s.publishChanged(ctx, contract.ApartmentCreated, apt)

	dto := toApartmentDTO(apt)
	return &dto, nil
}

// UpdateApartment replaces every editable field of an apartment.
func (s *ApartmentService) UpdateApartment(ctx context.Context, id string, req ApartmentRequest) (*ApartmentDTO, error) {
	apt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.ensureUniqueName(ctx, req.Name, req.District, id); err != nil {
		return nil, err
	}

	if err := apt.Replace(req.attributes()); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, err
	}

	s.logger.Info("apartment updated", zap.String("apartment_id", id))
	s.publishChanged(ctx, contract.ApartmentUpdated, apt)

	dto := toApartmentDTO(apt)
	return &dto, nil
}

// DeleteApartment removes an apartment.
func (s *ApartmentService) DeleteApartment(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("apartment deleted", zap.String("apartment_id", id))
	publishEvent(ctx, s.producer, s.logger, contract.TopicCatalogEvents, contract.ApartmentDeleted, contract.ApartmentDeletedEvent{
		ApartmentID: id,
		OccurredAt:  time.Now().UTC(),
	})
	return nil
}

// CheckName reports whether another apartment in the district already uses the name.
func (s *ApartmentService) CheckName(ctx context.Context, req CheckNameRequest) (bool, error) {
	name := trimmed(req.Name)
	if name == "" {
		return false, domain.NewValidationError("公寓名称不能为空")
	}
	return s.repo.ExistsByNameAndDistrict(ctx, name, trimmed(req.District), req.ID)
}

// ListDistricts returns the districts in use.
func (s *ApartmentService) ListDistricts(ctx context.Context) ([]string, error) {
	districts, err := s.repo.ListDistricts(ctx)
	if err != nil {
		return nil, err
	}
	if districts == nil {
		districts = []string{}
	}
	return districts, nil
}

// ImportApartment upserts an apartment from an external feed. A blank ID allocates the next one.
func (s *ApartmentService) ImportApartment(ctx context.Context, payload contract.ApartmentPayload) (*ApartmentDTO, error) {
	id := payload.ID
	if id == "" {
		ids, err := s.repo.ListIDs(ctx)
		if err != nil {
			return nil, err
		}
		id = apartmentDomain.NextID(ids)
	}

	apt, err := apartmentDomain.NewApartment(id, attributesFromPayload(payload))
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	if err := s.repo.Upsert(ctx, apt); err != nil {
		return nil, err
	}

	s.logger.Info("apartment imported", zap.String("apartment_id", apt.ID()))
	dto := toApartmentDTO(apt)
	return &dto, nil
}

// SeedFromFile imports a JSON array of apartments when the catalog is empty.
// It returns the number of apartments imported.
func (s *ApartmentService) SeedFromFile(ctx context.Context, path string) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.logger.Info("catalog already populated, skipping seed", zap.Int64("apartments", count))
		return 0, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}
	var payloads []contract.ApartmentPayload
	if err := json.Unmarshal(raw, &payloads); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	imported := 0
	for _, p := range payloads {
		if _, err := s.ImportApartment(ctx, p); err != nil {
			s.logger.Warn("skipping seed apartment",
				zap.String("apartment_id", p.ID),
				zap.String("name", p.Name),
				zap.Error(err),
			)
			continue
		}
		imported++
	}

	s.logger.Info("catalog seeded", zap.String("file", path), zap.Int("apartments", imported))
	return imported, nil
}

func (s *ApartmentService) ensureUniqueName(ctx context.Context, name, district, excludeID string) error {
	exists, err := s.repo.ExistsByNameAndDistrict(ctx, trimmed(name), trimmed(district), excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.NewConflictError(duplicateNameMessage)
	}
	return nil
}

func (s *ApartmentService) publishChanged(ctx context.Context, eventType string, apt *apartmentDomain.Apartment) {
	publishEvent(ctx, s.producer, s.logger, contract.TopicCatalogEvents, eventType, contract.ApartmentChangedEvent{
		ApartmentID: apt.ID(),
		Name:        apt.Name(),
		District:    apt.District(),
		MinPrice:    apt.MinPrice(),
		MaxPrice:    apt.MaxPrice(),
		OccurredAt:  time.Now().UTC(),
	})
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

func (r ApartmentRequest) attributes() apartmentDomain.Attributes {
	return apartmentDomain.Attributes{
		Name:     r.Name,
		MinPrice: r.MinPrice,
		MaxPrice: r.MaxPrice,
		Address:  r.Address,
		District: r.District,
		Remarks:  r.Remarks,
		Images:   r.Images,
		Videos:   r.Videos,
	}
}

func attributesFromPayload(p contract.ApartmentPayload) apartmentDomain.Attributes {
	images := make([]apartmentDomain.Image, len(p.Images))
	for i, img := range p.Images {
		images[i] = apartmentDomain.Image{URL: img.URL, Title: img.Title}
	}
	videos := make([]apartmentDomain.Video, len(p.Videos))
	for i, v := range p.Videos {
		videos[i] = apartmentDomain.Video{URL: v.URL, Title: v.Title, Description: v.Description}
	}
	return apartmentDomain.Attributes{
		Name:     p.Name,
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		Address:  p.Address,
		District: p.District,
		Remarks:  p.Remarks,
		Images:   images,
		Videos:   videos,
	}
}

func toApartmentDTO(apt *apartmentDomain.Apartment) ApartmentDTO {
	return ApartmentDTO{
		ID:        apt.ID(),
		Name:      apt.Name(),
		MinPrice:  apt.MinPrice(),
		MaxPrice:  apt.MaxPrice(),
		Address:   apt.Address(),
		District:  apt.District(),
		Remarks:   apt.Remarks(),
		Images:    apt.Images(),
		Videos:    apt.Videos(),
		CreatedAt: apt.CreatedAt(),
		UpdatedAt: apt.UpdatedAt(),
	}
}

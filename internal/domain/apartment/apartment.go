package apartment

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var idPattern = regexp.MustCompile(`^APT(\d{4,})$`)

// Image is a catalog image reference.
type Image struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Video is a catalog video reference.
type Video struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Attributes are the editable fields of an apartment.
type Attributes struct {
	Name     string
	MinPrice int
	MaxPrice int
	Address  string
	District string
	Remarks  string
	Images   []Image
	Videos   []Video
}

// Apartment is the aggregate root for a catalog entry.
type Apartment struct {
	id        string
	name      string
	minPrice  int
	maxPrice  int
	address   string
	district  string
	remarks   string
	images    []Image
	videos    []Video
	createdAt time.Time
	updatedAt time.Time
}

// NewApartment creates an apartment with a validated ID and attributes.
func NewApartment(id string, attrs Attributes) (*Apartment, error) {
	if !IsValidID(id) {
		return nil, fmt.Errorf("invalid apartment ID: %q", id)
	}
	attrs = normalize(attrs)
	if err := validate(attrs); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Apartment{
		id:        id,
		name:      attrs.Name,
		minPrice:  attrs.MinPrice,
		maxPrice:  attrs.MaxPrice,
		address:   attrs.Address,
		district:  attrs.District,
		remarks:   attrs.Remarks,
		images:    attrs.Images,
		videos:    attrs.Videos,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct rebuilds an Apartment from persistence data (no validation).
func Reconstruct(id string, attrs Attributes, createdAt, updatedAt time.Time) *Apartment {
	return &Apartment{
		id:        id,
		name:      attrs.Name,
		minPrice:  attrs.MinPrice,
		maxPrice:  attrs.MaxPrice,
		address:   attrs.Address,
		district:  attrs.District,
		remarks:   attrs.Remarks,
		images:    attrs.Images,
		videos:    attrs.Videos,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// --- Getters ---

func (a *Apartment) ID() string           { return a.id }
func (a *Apartment) Name() string         { return a.name }
func (a *Apartment) MinPrice() int        { return a.minPrice }
func (a *Apartment) MaxPrice() int        { return a.maxPrice }
func (a *Apartment) Address() string      { return a.address }
func (a *Apartment) District() string     { return a.district }
func (a *Apartment) Remarks() string      { return a.remarks }
func (a *Apartment) Images() []Image      { return a.images }
func (a *Apartment) Videos() []Video      { return a.videos }
func (a *Apartment) CreatedAt() time.Time { return a.createdAt }
func (a *Apartment) UpdatedAt() time.Time { return a.updatedAt }

// Attributes returns a copy of the editable fields.
func (a *Apartment) Attributes() Attributes {
	return Attributes{
		Name:     a.name,
		MinPrice: a.minPrice,
		MaxPrice: a.maxPrice,
		Address:  a.address,
		District: a.district,
		Remarks:  a.remarks,
		Images:   append([]Image(nil), a.images...),
		Videos:   append([]Video(nil), a.videos...),
	}
}

// --- Behavior ---

// Replace overwrites every editable field after validation.
func (a *Apartment) Replace(attrs Attributes) error {
	attrs = normalize(attrs)
	if err := validate(attrs); err != nil {
		return err
	}
	a.name = attrs.Name
	a.minPrice = attrs.MinPrice
	a.maxPrice = attrs.MaxPrice
	a.address = attrs.Address
	a.district = attrs.District
	a.remarks = attrs.Remarks
	a.images = attrs.Images
	a.videos = attrs.Videos
	a.updatedAt = time.Now().UTC()
	return nil
}

// WithinBudget reports whether the cheapest unit fits the budget.
func (a *Apartment) WithinBudget(budget int) bool {
	return a.minPrice <= budget
}

// HasPriceRange reports whether the apartment lists more than one price.
func (a *Apartment) HasPriceRange() bool {
	return a.maxPrice > a.minPrice
}

// IsValidID reports whether id has the APT#### shape.
func IsValidID(id string) bool {
	return idPattern.MatchString(id)
}

// NextID returns the ID after the highest APT number in existing.
func NextID(existing []string) string {
	highest := 0
	for _, id := range existing {
		m := idPattern.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("APT%04d", highest+1)
}

func normalize(attrs Attributes) Attributes {
	attrs.Name = strings.TrimSpace(attrs.Name)
	attrs.Address = strings.TrimSpace(attrs.Address)
	attrs.District = strings.TrimSpace(attrs.District)
	attrs.Remarks = strings.TrimSpace(attrs.Remarks)
	if attrs.Images == nil {
		attrs.Images = []Image{}
	}
	if attrs.Videos == nil {
		attrs.Videos = []Video{}
	}
	return attrs
}

func validate(attrs Attributes) error {
	if attrs.Name == "" {
		return fmt.Errorf("apartment name is required")
	}
	if attrs.Address == "" {
		return fmt.Errorf("apartment address is required")
	}
	if attrs.MinPrice < 0 || attrs.MaxPrice < 0 {
		return fmt.Errorf("prices cannot be negative")
	}
	if attrs.MinPrice > attrs.MaxPrice {
		return fmt.Errorf("minPrice %d exceeds maxPrice %d", attrs.MinPrice, attrs.MaxPrice)
	}
	return nil
}

package entity

import (
	"strings"
	"time"
)

const (
	// DefaultMachineryDescription is used when machinery is listed without a description.
	DefaultMachineryDescription = "Professional farm equipment."
	// DefaultMachineryImageURL is the placeholder photo for machinery without an image.
	DefaultMachineryImageURL = "https://images.unsplash.com/photo-1592982537447-6f2a6a0c3c1b?w=400"
)

// Machinery is a piece of farm equipment in the catalog.
type Machinery struct {
	ID          int64
	Name        string
	Price       float64
	Description string
	ImageURL    string
	CreatedAt   time.Time
}

// ApplyDefaults fills optional fields left empty by the caller.
func (m *Machinery) ApplyDefaults() {
	m.Name = strings.TrimSpace(m.Name)
	if strings.TrimSpace(m.Description) == "" {
		m.Description = DefaultMachineryDescription
	}
	if strings.TrimSpace(m.ImageURL) == "" {
		m.ImageURL = DefaultMachineryImageURL
	}
}

// Validate checks field presence and the image URL.
func (m *Machinery) Validate() error {
	if err := validateName("name", m.Name); err != nil {
		return err
	}
	if err := validatePrice(m.Price); err != nil {
		return err
	}
	return ValidateURL("imageUrl", m.ImageURL)
}

package channel

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds the credentials and addressing for one channel account.
type Config struct {
	// APIKey authenticates against the provider (user name for basic auth providers).
	APIKey string `json:"api_key" validate:"required"`
	// APISecret is the optional second credential (password for basic auth providers).
	APISecret string `json:"api_secret,omitempty"`
	// PropertyID is the property identifier on the provider side.
	PropertyID string `json:"property_id" validate:"required"`
	// Endpoint overrides the provider's default base URL.
	Endpoint string `json:"endpoint,omitempty" validate:"omitempty,url"`
	// HotelID is a secondary identifier some providers require next to PropertyID.
	HotelID string `json:"hotel_id,omitempty"`
}

// Validate checks the required fields.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// BaseURL returns the configured endpoint, or def when none is set.
func (c Config) BaseURL(def string) string {
	if strings.TrimSpace(c.Endpoint) != "" {
		return strings.TrimRight(c.Endpoint, "/")
	}
	return strings.TrimRight(def, "/")
}

// HotelOrProperty returns HotelID when set, PropertyID otherwise.
func (c Config) HotelOrProperty() string {
	if c.HotelID != "" {
		return c.HotelID
	}
	return c.PropertyID
}

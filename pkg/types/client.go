package types

import (
	"strings"
	"time"
)

// Client is a person or organization the practice represents.
type Client struct {
	ClientID  string    `json:"client_id"`
	Name      string    `json:"name"`
	IDNumber  string    `json:"id_number"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the client's required fields and contact formats.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}
	if err := ValidateEmail(c.Email); err != nil {
		return err
	}
	return ValidatePhone(c.Phone)
}

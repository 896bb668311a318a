package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"", true},
		{"ana@bufete.mx", true},
		{"ana.lopez+casos@correo.example.com", true},
		{"ana", false},
		{"@bufete.mx", false},
		{"ana@", false},
		{"ana@@bufete.mx", false},
		{"ana lopez@bufete.mx", false},
		{"ana@.mx", false},
		{"ana@bufete.", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidEmail)
			}
		})
	}
}

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"", true},
		{"5551234", true},
		{"+52 (55) 1234-5678", true},
		{"55.1234.5678", true},
		{"123456", false},
		{"1234567890123456", false},
		{"55-1234-ABCD", false},
		{"55+12345678", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidPhone)
			}
		})
	}
}

func TestClientValidate(t *testing.T) {
	assert.ErrorIs(t, (&Client{Name: "  "}).Validate(), ErrInvalidName)
	assert.ErrorIs(t, (&Client{Name: "Ana", Email: "nope"}).Validate(), ErrInvalidEmail)
	assert.ErrorIs(t, (&Client{Name: "Ana", Phone: "12"}).Validate(), ErrInvalidPhone)
	assert.NoError(t, (&Client{Name: "Ana", Email: "ana@bufete.mx", Phone: "5551234567"}).Validate())
}

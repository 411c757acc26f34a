package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	s := New()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"email", "contact anita.sharma@example.com now", "contact [FILTERED_EMAIL] now"},
		{"intl phone", "call +91 98200 12345", "call [FILTERED_PHONE]"},
		{"labelled phone", "Phone: 0871234567", "Phone: [FILTERED_PHONE]"},
		{"passport", "Passport Number: Z1234567", "Passport Number: [FILTERED_PASSPORT]"},
		{"dob", "Date of Birth 17/04/1990", "Date of Birth [FILTERED_DOB]"},
		{"address", "Address: 12 MG Road, Pune", "Address: [FILTERED_ADDRESS]"},
		{"eircode", "Dublin D02 X285", "Dublin [FILTERED_ADDRESS]"},
		{"application number kept", "Your application number is 12345678", "Your application number is 12345678"},
		{"plain text", "Short Stay 'C'", "Short Stay 'C'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Sanitize(tt.in))
		})
	}
}

func TestSanitizeValue(t *testing.T) {
	s := New()

	assert.Equal(t, "Z***[FILTERED]", s.SanitizeValue("passport_number", "Z1234567"))
	assert.Equal(t, "1***[FILTERED]", s.SanitizeValue("date_of_birth", "17/04/1990"))
	assert.Equal(t, "[FILTERED]", s.SanitizeValue("phone", "12"))
	assert.Equal(t, "Sharma", s.SanitizeValue("surname", "Sharma"))
	assert.Equal(t, "", s.SanitizeValue("email", ""))
}

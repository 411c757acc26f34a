package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSelector(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		want     string
		modified bool
	}{
		{"contains double", `a:contains("Apply")`, `a:has-text("Apply")`, true},
		{"contains single", `a:contains('Retrieve')`, `a:has-text('Retrieve')`, true},
		{"contains bare", `span:contains(Next)`, `span:has-text("Next")`, true},
		{"colon space", `button: Continue`, `button:has-text("Continue")`, true},
		{"valid pseudo", `input:checked`, `input:checked`, false},
		{"aspnet id", `#ctl00_ContentPlaceHolder1_btnNext`, `#ctl00_ContentPlaceHolder1_btnNext`, false},
		{"name suffix", `[name$='$txtSurname']`, `[name$='$txtSurname']`, false},
		{"xpath untouched", `xpath=//label[contains(., 'Surname')]/following::input[1]`, `xpath=//label[contains(., 'Surname')]/following::input[1]`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := NormalizeSelector(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.modified, changed)
		})
	}
}

func TestValidateSelector(t *testing.T) {
	assert.NoError(t, ValidateSelector("#ctl00_ContentPlaceHolder1_txtSurname"))
	assert.Error(t, ValidateSelector("   "))
	assert.Error(t, ValidateSelector("https://www.visas.inis.gov.ie/avats/OnlineHome.aspx"))
	assert.Error(t, ValidateSelector("file://tmp/x"))
}

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, "'Surname'", XPathLiteral("Surname"))
	assert.Equal(t, `"Applicant's name"`, XPathLiteral("Applicant's name"))
	assert.Equal(t, `concat('a', "'", 'b"c')`, XPathLiteral(`a'b"c`))
}

func TestNotLaunchedBrowser(t *testing.T) {
	b := New(Config{})

	assert.ErrorIs(t, b.Click(t.Context(), "#x"), ErrNotLaunched)
	assert.ErrorIs(t, b.Navigate(t.Context(), "https://example.com"), ErrNotLaunched)
	_, err := b.GetPageSnapshot(t.Context())
	assert.ErrorIs(t, err, ErrNotLaunched)
	assert.Equal(t, "", b.CurrentURL())
	assert.NoError(t, b.Close())
}

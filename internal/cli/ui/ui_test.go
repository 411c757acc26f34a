package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatStatus(t *testing.T) {
	icon, color, text := FormatStatus("ready")
	assert.Equal(t, IconDocument, icon)
	assert.Equal(t, ColorBlue, color)
	assert.Contains(t, text, "заполнена")

	_, _, text = FormatStatus("archived")
	assert.Equal(t, "archived", text)
}

func TestFormatPage(t *testing.T) {
	assert.Equal(t, "страница 3 из 10", FormatPage("form:3"))
	assert.Equal(t, "страница ошибки", FormatPage("error"))
	assert.Equal(t, "-", FormatPage(""))
	assert.Equal(t, "something", FormatPage("something"))
}

func TestPrintHint(t *testing.T) {
	var buf bytes.Buffer
	PrintHint(&buf, "61234567")
	assert.Contains(t, buf.String(), "visa resume 61234567")
}

func TestPaint(t *testing.T) {
	assert.Equal(t, ColorRed+"ошибка"+ColorReset, Paint(ColorRed, "ошибка"))
}

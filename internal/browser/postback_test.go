package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostbackMode(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want postbackMode
	}{
		{"autopostback select", map[string]any{"handler": true, "doPostBack": true, "target": "ctl00$ContentPlaceHolder1$ddlVisaType"}, postbackHandler},
		{"radio without handler", map[string]any{"handler": false, "doPostBack": true, "target": "ctl00$ContentPlaceHolder1$rblRefusedVisa"}, postbackForced},
		{"no __doPostBack on page", map[string]any{"handler": false, "doPostBack": false, "target": "x"}, postbackNone},
		{"no target", map[string]any{"handler": false, "doPostBack": true, "target": ""}, postbackNone},
		{"garbage", "oops", postbackNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePostbackInfo(tt.raw).mode())
		})
	}
}

func TestPostbackScriptsDoNotDispatchChange(t *testing.T) {
	// событие change шлют SelectOption и Click, скрипты его не повторяют
	assert.NotContains(t, postbackInfoScript, "dispatchEvent")
	assert.NotContains(t, forcePostbackScript, "dispatchEvent")
}

package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const formPageHTML = `<html><head><title>AVATS - Online Visa Application</title>
<script>function __doPostBack(t, a) { document.forms[0].submit(); }</script>
<style>.x { color: red }</style></head>
<body>
<form id="aspnetForm">
<input type="hidden" name="__VIEWSTATE" value="dDwtMTA4MTY0NjQ0Njs7Pg==" />
<h2>Personal Details</h2>
<p>Page&nbsp;2 of   10</p>
<div class="validation-summary-errors"><ul><li>Surname is required</li><li>Surname is required</li></ul></div>
<span id="ctl00_ContentPlaceHolder1_rfvForename" style="color:Red;display:none;">Forename is required</span>
<span id="ctl00_ContentPlaceHolder1_rfvGender" style="color:Red;visibility:visible;">Gender is required</span>
<label for="txtSurname">Surname</label><input id="txtSurname" />
</form>
</body></html>`

func TestFromHTML(t *testing.T) {
	snap, err := FromHTML("https://example.test/avats/OnlineForm.aspx", formPageHTML)
	require.NoError(t, err)

	assert.Equal(t, "AVATS - Online Visa Application", snap.Title)
	assert.Equal(t, []string{"Personal Details"}, snap.Headings)
	assert.Contains(t, snap.Text, "Page 2 of 10")
	assert.NotContains(t, snap.Text, "__doPostBack")
	assert.NotContains(t, snap.Text, "color: red")
	assert.NotContains(t, snap.Text, "Forename is required")

	assert.Equal(t, []string{"Surname is required", "Gender is required"}, snap.ValidationErrors)
}

func TestFromHTMLWithoutErrors(t *testing.T) {
	snap, err := FromHTML("about:blank", "<p>Hello <b>world</b></p>")
	require.NoError(t, err)

	assert.Equal(t, "Hello world", snap.Text)
	assert.Empty(t, snap.ValidationErrors)
	assert.Empty(t, snap.Title)
}

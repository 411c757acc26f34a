package form_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visaAgent/internal/config"
	"visaAgent/internal/form"
	"visaAgent/internal/form/formtest"
	"visaAgent/internal/logger"
	"visaAgent/internal/site"
)

func newFiller(t *testing.T, number string) (*formtest.AVATS, *form.Filler) {
	t.Helper()
	s := formtest.New(formtest.Applicant(), number)
	require.NoError(t, s.Launch(context.Background()))
	return s, form.NewFiller(s, logger.NewNop(), form.Options{})
}

func page(t *testing.T, n int) form.Page {
	t.Helper()
	p, ok := form.PageByNumber(form.Catalog(), n)
	require.True(t, ok)
	return p
}

func TestCatalogShape(t *testing.T) {
	pages := form.Catalog()
	require.Len(t, pages, site.FormPages)

	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
		assert.NotEmpty(t, p.Next, "page %d", p.Number)
		assert.GreaterOrEqual(t, len(p.Markers), 2, "page %d", p.Number)

		names := map[string]bool{}
		for _, f := range p.Fields {
			assert.False(t, names[f.Name], "duplicate field %s", f.Name)
			names[f.Name] = true
			assert.NotEmpty(t, f.Selectors, f.Name)
			assert.True(t, strings.HasPrefix(f.Selectors[0], "#"+form.IDPrefix), f.Name)
			if f.Kind == form.Radio {
				assert.Contains(t, f.Selectors[0], form.ValuePlaceholder)
				assert.NotContains(t, f.SelectorsFor("No")[0], form.ValuePlaceholder)
			}
		}
	}
}

func TestSignaturesDetectEveryPage(t *testing.T) {
	pages := form.Catalog()
	detector := site.NewDetector(config.DefaultHomeURL, form.Signatures(pages))
	s := formtest.New(formtest.Applicant(), "")
	require.NoError(t, s.Launch(context.Background()))

	for _, p := range pages {
		require.NoError(t, s.Navigate(context.Background(), formtest.PageURL(p.Number)))
		snapshot, err := s.GetPageSnapshot(context.Background())
		require.NoError(t, err)
		assert.Equal(t, site.State{Kind: site.KindForm, Page: p.Number}, detector.Detect(snapshot.URL, snapshot.Text))

		// без счетчика страниц распознаем по маркерам и URL
		markersOnly := strings.Join(p.Markers, " ")
		assert.True(t, detector.Detect(formtest.PageURL(p.Number), markersOnly).IsForm(p.Number), "page %d", p.Number)
	}
}

func TestFillPersonalDetails(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()
	require.NoError(t, s.Navigate(ctx, formtest.PageURL(2)))

	report, err := filler.FillPage(ctx, page(t, 2), formtest.Applicant(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Page)
	assert.Contains(t, report.Filled, "surname")
	assert.Contains(t, report.Filled, "date_of_birth")
	assert.Contains(t, report.Skipped, "other_names")
	assert.Contains(t, report.Skipped, "marital_status")

	assert.Equal(t, "Sharma", s.Filled[form.IDPrefix+"txtSurname"])
	assert.Equal(t, "17/04/1990", s.Filled[form.IDPrefix+"txtDateOfBirth"])
	assert.Equal(t, "F", s.Filled[form.IDPrefix+"ddlGender"])
	assert.Equal(t, "India", s.Filled[form.IDPrefix+"ddlCountryOfBirth"])
}

func TestFillRadioWithPostbackAndCondition(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()
	require.NoError(t, s.Navigate(ctx, formtest.PageURL(6)))

	report, err := filler.FillPage(ctx, page(t, 6), formtest.Applicant(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Yes", s.Filled[form.NamePrefix+"rblRefusedVisa"])
	assert.Equal(t, "No", s.Filled[form.NamePrefix+"rblPreviousVisa"])
	assert.Contains(t, s.Postbacks, form.IDPrefix+"rblRefusedVisa_0")
	assert.Contains(t, s.Postbacks, form.IDPrefix+"rblPreviousVisa_1")
	assert.Contains(t, report.Filled, "refusal_details")
	assert.Contains(t, report.Skipped, "previous_visa_details")
}

func TestFillSelectPostback(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()
	require.NoError(t, s.Navigate(ctx, formtest.PageURL(1)))

	_, err := filler.FillPage(ctx, page(t, 1), formtest.Applicant(), nil)
	require.NoError(t, err)

	assert.Equal(t, "Short Stay 'C'", s.Filled[form.IDPrefix+"ddlVisaType"])
	assert.Equal(t, "India", s.Filled[form.IDPrefix+"ddlLocationApplyingFrom"])
	assert.Equal(t, []string{
		form.IDPrefix + "ddlCountryOfNationality",
		form.IDPrefix + "ddlVisaType",
		form.IDPrefix + "ddlPurposeOfTravel",
	}, s.Postbacks)
}

func TestFillPageMissingRequiredControl(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()

	html := s.Pages[formtest.PageURL(2)]
	html = strings.Replace(html, `id="ctl00_ContentPlaceHolder1_txtPlaceOfBirth" name="ctl00$ContentPlaceHolder1$txtPlaceOfBirth"`, `id="other"`, 1)
	s.SetPage(formtest.PageURL(2), html)
	require.NoError(t, s.Navigate(ctx, formtest.PageURL(2)))

	report, err := filler.FillPage(ctx, page(t, 2), formtest.Applicant(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, form.ErrNoSelectorMatched)
	assert.Contains(t, err.Error(), "place_of_birth")
	assert.Contains(t, report.Filled, "surname")
}

func TestFillPageEmptyRequiredValue(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()
	require.NoError(t, s.Navigate(ctx, formtest.PageURL(3)))

	a := formtest.Applicant()
	a.Contact.City = ""
	a.Contact.AddressLine2 = ""

	report, err := filler.FillPage(ctx, page(t, 3), a, nil)
	require.ErrorIs(t, err, form.ErrMissingValue)
	assert.Contains(t, err.Error(), "city")
	assert.Equal(t, []string{"address_line1"}, report.Filled)
	assert.Equal(t, []string{"address_line2"}, report.Skipped)
	assert.NotContains(t, s.Filled, form.IDPrefix+"txtCity")

	// без номера заявки страницу восстановления не отправляем
	require.NoError(t, s.Navigate(ctx, formtest.RetrieveURL))
	_, err = filler.FillPage(ctx, form.RetrievePage(), formtest.Applicant(), nil)
	require.ErrorIs(t, err, form.ErrMissingValue)
	assert.Contains(t, err.Error(), form.FieldApplicationNumber)
}

func TestResolveSkipsHiddenElements(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()
	s.SetPage(formtest.HomeURL, formtest.Layout("Test", `
		<input type="text" id="ctl00_ContentPlaceHolder1_txtX" style="display:none">
		<input type="text" id="alt" name="ctl00$Other$txtX">`))
	require.NoError(t, s.Navigate(ctx, formtest.HomeURL))

	selector, err := filler.Resolve(ctx, []string{
		"#ctl00_ContentPlaceHolder1_txtX",
		"xpath=//label[contains(., 'X')]",
		"[name$='$txtX']",
	})
	require.NoError(t, err)
	assert.Equal(t, "[name$='$txtX']", selector)

	_, err = filler.Resolve(ctx, []string{"#missing"})
	assert.ErrorIs(t, err, form.ErrNoSelectorMatched)
}

func TestSubmitFollowsNextButton(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()
	require.NoError(t, s.Navigate(ctx, formtest.PageURL(4)))

	require.NoError(t, filler.Submit(ctx, page(t, 4).Next))
	assert.Equal(t, formtest.PageURL(5), s.CurrentURL())

	require.NoError(t, s.Navigate(ctx, formtest.PageURL(10)))
	require.NoError(t, filler.Submit(ctx, page(t, 10).Next))
	assert.Equal(t, formtest.ConfirmationURL, s.CurrentURL())
}

func TestValidate(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, formtest.PageURL(3)))
	assert.NoError(t, filler.Validate(ctx))

	s.FailValidation(3, "Email Address is required")
	err := filler.Validate(ctx)
	require.ErrorIs(t, err, form.ErrValidationFailed)
	assert.Contains(t, err.Error(), "Email Address is required")
	assert.NotContains(t, err.Error(), "Hidden validator")
	assert.Equal(t, 1, strings.Count(err.Error(), "Email Address is required"))
}

func TestValidateRunsClientValidators(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()
	require.NoError(t, s.Navigate(ctx, formtest.PageURL(10)))

	assert.NoError(t, filler.Validate(ctx))
	assert.Equal(t, 1, s.Validations)

	// до Page_ClientValidate сообщение в разметке не видно
	s.ClientErrors[formtest.PageURL(10)] = []string{"You must accept the declaration"}
	snapshot, err := s.GetPageSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snapshot.ValidationErrors)

	err = filler.Validate(ctx)
	require.ErrorIs(t, err, form.ErrValidationFailed)
	assert.Contains(t, err.Error(), "You must accept the declaration")
	assert.Equal(t, 2, s.Validations)
}

func TestConsentAndRetrievePages(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()

	require.NoError(t, s.Navigate(ctx, formtest.ConsentURL))
	_, err := filler.FillPage(ctx, form.ConsentPage(), formtest.Applicant(), nil)
	require.NoError(t, err)
	assert.True(t, s.Checked[form.IDPrefix+"chkConsent"])
	require.NoError(t, filler.Submit(ctx, form.ConsentPage().Next))
	assert.Equal(t, formtest.PageURL(1), s.CurrentURL())

	require.NoError(t, s.Navigate(ctx, formtest.RetrieveURL))
	report, err := filler.FillPage(ctx, form.RetrievePage(), formtest.Applicant(),
		map[string]string{form.FieldApplicationNumber: "61234567"})
	require.NoError(t, err)
	assert.Equal(t, []string{form.FieldApplicationNumber, "retrieve_passport_number"}, report.Filled)
	assert.Equal(t, "61234567", s.Filled[form.IDPrefix+"txtApplicationNumber"])
	assert.Equal(t, "Z1234567", s.Filled[form.IDPrefix+"txtPassportNo"])
}

func TestFillDateRejectsBadFormat(t *testing.T) {
	s, filler := newFiller(t, "")
	ctx := context.Background()
	require.NoError(t, s.Navigate(ctx, formtest.PageURL(5)))

	p := page(t, 5)
	err := filler.FillField(ctx, p.Fields[0], "2026-12-10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DD/MM/YYYY")
}

func TestFillPageHonoursContext(t *testing.T) {
	s, filler := newFiller(t, "")
	require.NoError(t, s.Navigate(context.Background(), formtest.PageURL(2)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := filler.FillPage(ctx, page(t, 2), formtest.Applicant(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

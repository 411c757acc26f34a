// Package formtest собирает из каталога form модель сайта AVATS поверх browsertest.Site.
package formtest

import (
	"fmt"
	"html"
	"strings"

	"visaAgent/internal/browser/browsertest"
	"visaAgent/internal/form"
	"visaAgent/internal/profile"
)

const (
	Base            = "https://www.visas.inis.gov.ie/avats/"
	HomeURL         = Base + "OnlineHome.aspx"
	ConsentURL      = Base + "OnlineHome2.aspx"
	RetrieveURL     = Base + "RetrieveApplication.aspx"
	ConfirmationURL = Base + "Confirmation.aspx"
	ErrorURL        = Base + "Error.aspx"
)

func PageURL(n int) string {
	return fmt.Sprintf("%sPage%d.aspx", Base, n)
}

// ApplicantYAML - анкета, под которую отрисованы списки выбора сайта.
const ApplicantYAML = `
visa:
  country_of_nationality: India
  visa_type: "Short Stay 'C'"
  journey_type: Single
  purpose_of_travel: Tourism
personal:
  surname: Sharma
  forename: Anita
  gender: F
  date_of_birth: 1990-04-17
  place_of_birth: Pune
  country_of_birth: India
contact:
  address_line1: 12 MG Road
  city: Pune
  phone: "+91 98200 12345"
  email: anita.sharma@example.com
passport:
  number: Z1234567
  issuing_authority: Passport Office Pune
  issue_date: 2019-06-01
  expiry_date: 2029-05-31
travel:
  arrival_date: 2026-12-10
  departure_date: 2026-12-24
  address_in_ireland: 27 St Stephen's Green, Dublin 2
history:
  refused_visa: true
  refusal_details: UK visitor visa refused in 2018
family:
  father_name: Rajesh Sharma
  mother_name: Sunita Sharma
employment:
  status: Employed
  occupation: Engineer
  employer: Acme Software
  employer_address: Hinjewadi, Pune
declaration:
  agree: true
`

// Applicant возвращает заполненную анкету для тестов.
func Applicant() *profile.Applicant {
	a, err := profile.Parse([]byte(ApplicantYAML))
	if err != nil {
		panic(err)
	}
	return a
}

type AVATS struct {
	*browsertest.Site
	Applicant *profile.Applicant
	// Number показывается в шапке страниц анкеты начиная со второй.
	Number string
}

// New строит сайт: главная, согласие, восстановление, десять страниц, подтверждение, ошибка.
func New(a *profile.Applicant, number string) *AVATS {
	s := &AVATS{
		Site:      browsertest.New(make(map[string]string)),
		Applicant: a,
		Number:    number,
	}

	s.SetPage(HomeURL, Layout("Online Visa Applications", `
		<h1>Apply for a Visa</h1>
		<p>Welcome to AVATS, the Irish online visa application facility.</p>
		<a id="ctl00_ContentPlaceHolder1_btnApply" href="#" data-href="OnlineHome2.aspx">Apply Now</a>
		<a id="ctl00_ContentPlaceHolder1_lnkRetrieve" href="#" data-href="RetrieveApplication.aspx">Retrieve Application</a>`))

	s.SetPage(ConsentURL, Layout("Data Protection", `
		<h2>Data Protection</h2>
		<p>Privacy Statement. Please confirm that you have read the notice below.</p>
		<input type="checkbox" id="ctl00_ContentPlaceHolder1_chkConsent" name="ctl00$ContentPlaceHolder1$chkConsent">
		<label for="ctl00_ContentPlaceHolder1_chkConsent">I have read and understood the data protection notice</label>
		<input type="submit" id="ctl00_ContentPlaceHolder1_btnContinue" name="ctl00$ContentPlaceHolder1$btnContinue" value="Continue" data-href="Page1.aspx">`))

	s.SetPage(RetrieveURL, Layout("Retrieve Application", `
		<h2>Retrieve your application</h2>
		<p>Enter your application number and passport number.</p>
		<input type="text" id="ctl00_ContentPlaceHolder1_txtApplicationNumber" name="ctl00$ContentPlaceHolder1$txtApplicationNumber">
		<input type="text" id="ctl00_ContentPlaceHolder1_txtPassportNo" name="ctl00$ContentPlaceHolder1$txtPassportNo">
		<input type="submit" id="ctl00_ContentPlaceHolder1_btnRetrieve" name="ctl00$ContentPlaceHolder1$btnRetrieve" value="Retrieve" data-href="Page1.aspx">`))

	for _, p := range form.Catalog() {
		next := fmt.Sprintf("Page%d.aspx", p.Number+1)
		if p.Number == 10 {
			next = "Confirmation.aspx"
		}
		s.SetPage(PageURL(p.Number), s.RenderPage(p, next, ""))
	}

	s.SetPage(ConfirmationURL, Layout("Application Submitted", fmt.Sprintf(`
		<h2>Thank you</h2>
		<p>Your application has been submitted.</p>
		<p>Application Number: <span id="ctl00_ContentPlaceHolder1_lblApplicationNumber">%s</span></p>`, number)))

	s.SetPage(ErrorURL, `<html><head><title>Runtime Error</title></head><body>
		<h1>Server Error in '/avats' Application.</h1><h2><i>Runtime Error</i></h2></body></html>`)

	return s
}

// Layout оборачивает тело в мастер-страницу AVATS с формой aspnetForm.
func Layout(title, body string) string {
	return fmt.Sprintf(`<html><head><title>%s</title>
<script type="text/javascript">function __doPostBack(t, a) {}</script></head>
<body><form id="aspnetForm" name="aspnetForm" method="post">
<input type="hidden" name="__VIEWSTATE" value="dDwtMTA4NzY2Mzg0Nzs7Pg==">
<div id="header">Irish Naturalisation and Immigration Service</div>
%s
</form></body></html>`, html.EscapeString(title), body)
}

// RenderPage рисует страницу анкеты. validation - текст сообщения валидатора (пусто - без ошибок).
func (s *AVATS) RenderPage(p form.Page, next, validation string) string {
	var b strings.Builder

	if p.Number >= 2 && s.Number != "" {
		fmt.Fprintf(&b, `<div>Application No: <span id="ctl00_lblAppNo">%s</span></div>`, s.Number)
	}
	fmt.Fprintf(&b, "<h2>%s</h2>\n<p>Page %d of 10</p>\n", html.EscapeString(p.Title), p.Number)
	fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(strings.Join(p.Markers, ". ")))

	if validation != "" {
		fmt.Fprintf(&b, `<div id="ctl00_ContentPlaceHolder1_ValidationSummary1" class="validation-summary-errors"><ul><li>%s</li></ul></div>`,
			html.EscapeString(validation))
	}
	b.WriteString(`<span id="ctl00_ContentPlaceHolder1_rfvHidden" style="color:Red;display:none;">Hidden validator</span>`)

	for _, f := range p.Fields {
		b.WriteString(s.renderField(f))
	}

	ctrl := "btnNext"
	caption := "Next"
	if p.Number == 10 {
		ctrl, caption = "btnSubmit", "Submit Application"
	}
	fmt.Fprintf(&b, `<input type="submit" id="%s%s" name="%s%s" value="%s" data-href="%s">`,
		form.IDPrefix, ctrl, form.NamePrefix, ctrl, caption, next)

	return Layout(p.Title, b.String())
}

func (s *AVATS) renderField(f form.Field) string {
	id := form.IDPrefix + f.Control
	name := form.NamePrefix + f.Control

	switch f.Kind {
	case form.Select:
		var opts strings.Builder
		opts.WriteString(`<option value="">-- Select --</option>`)
		if f.Value != nil {
			if v := f.Value(s.Applicant); v != "" {
				fmt.Fprintf(&opts, `<option value="%s">%s</option>`, html.EscapeString(v), html.EscapeString(v))
			}
		}
		opts.WriteString(`<option value="Other">Other</option>`)
		onchange := ""
		if f.Postback {
			onchange = fmt.Sprintf(` onchange="javascript:setTimeout('__doPostBack(\'%s\',\'\')', 0)"`, name)
		}
		return fmt.Sprintf(`<label for="%s">%s</label><select id="%s" name="%s"%s>%s</select>`+"\n",
			id, f.Name, id, name, onchange, opts.String())
	case form.Radio:
		return fmt.Sprintf(`<span>%s</span><table id="%s"><tr>
			<td><input type="radio" id="%s_0" name="%s" value="Yes"><label for="%s_0">Yes</label></td>
			<td><input type="radio" id="%s_1" name="%s" value="No"><label for="%s_1">No</label></td>
			</tr></table>`+"\n", f.Name, id, id, name, id, id, name, id)
	case form.Checkbox:
		return fmt.Sprintf(`<input type="checkbox" id="%s" name="%s"><label for="%s">%s</label>`+"\n", id, name, id, f.Name)
	default:
		return fmt.Sprintf(`<label for="%s">%s</label><input type="text" id="%s" name="%s">`+"\n", id, f.Name, id, name)
	}
}

// FailValidation заменяет страницу n версией с сообщением валидатора.
func (s *AVATS) FailValidation(n int, message string) {
	p, _ := form.PageByNumber(form.Catalog(), n)
	next := fmt.Sprintf("Page%d.aspx", n)
	s.SetPage(PageURL(n), s.RenderPage(p, next, message))
}

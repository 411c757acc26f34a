package form

import (
	"fmt"
	"strings"

	"visaAgent/internal/profile"
)

// Имена полей, значения которых приходят не из анкеты, а снаружи (см. FillPage).
const (
	FieldApplicationNumber = "application_number"
	FieldConsent           = "consent"
)

func pageHint(n int) []string {
	return []string{fmt.Sprintf("page%d.aspx", n)}
}

func nextButton() []string {
	return buttonChain("btnNext", "Next", "Save and Continue")
}

func hasHost(a *profile.Applicant) bool {
	return a.Host.Present()
}

func employed(a *profile.Applicant) bool {
	return a.Employment.Employed()
}

// Catalog возвращает десять страниц анкеты в порядке прохождения.
func Catalog() []Page {
	return []Page{
		{
			Number:   1,
			Title:    "Visa Type",
			URLHints: pageHint(1),
			Markers:  []string{"visa type", "purpose of travel", "country of nationality", "journey type"},
			Fields: []Field{
				choice("country_of_nationality", "ddlCountryOfNationality", "Country of Nationality",
					func(a *profile.Applicant) string { return a.Visa.CountryOfNationality }).postback(),
				choice("location_applying_from", "ddlLocationApplyingFrom", "Location applying from",
					func(a *profile.Applicant) string {
						if a.Visa.LocationApplyingFrom == "" {
							return a.Visa.CountryOfNationality
						}
						return a.Visa.LocationApplyingFrom
					}),
				choice("visa_type", "ddlVisaType", "Visa Type",
					func(a *profile.Applicant) string { return a.Visa.VisaType }).postback(),
				choice("journey_type", "ddlJourneyType", "Journey Type",
					func(a *profile.Applicant) string { return a.Visa.JourneyType }),
				choice("purpose_of_travel", "ddlPurposeOfTravel", "Purpose of Travel",
					func(a *profile.Applicant) string { return a.Visa.PurposeOfTravel }).postback(),
				text("purpose_detail", "txtPurposeDetail", "Purpose details",
					func(a *profile.Applicant) string { return a.Visa.PurposeDetail }).optional(),
			},
			Next: nextButton(),
		},
		{
			Number:   2,
			Title:    "Personal Details",
			URLHints: pageHint(2),
			Markers:  []string{"personal details", "surname", "date of birth", "place of birth"},
			Fields: []Field{
				text("surname", "txtSurname", "Surname",
					func(a *profile.Applicant) string { return a.Personal.Surname }),
				text("forename", "txtForename", "Forename",
					func(a *profile.Applicant) string { return a.Personal.Forename }),
				text("other_names", "txtOtherNames", "Other names",
					func(a *profile.Applicant) string { return a.Personal.OtherNames }).optional(),
				choice("gender", "ddlGender", "Gender",
					func(a *profile.Applicant) string { return strings.ToUpper(a.Personal.Gender) }),
				date("date_of_birth", "txtDateOfBirth", "Date of Birth",
					func(a *profile.Applicant) profile.Date { return a.Personal.DateOfBirth }),
				text("place_of_birth", "txtPlaceOfBirth", "Place of Birth",
					func(a *profile.Applicant) string { return a.Personal.PlaceOfBirth }),
				choice("country_of_birth", "ddlCountryOfBirth", "Country of Birth",
					func(a *profile.Applicant) string { return a.Personal.CountryOfBirth }),
				choice("marital_status", "ddlMaritalStatus", "Marital Status",
					func(a *profile.Applicant) string { return a.Personal.MaritalStatus }).optional(),
				text("national_id", "txtNationalID", "National Identity",
					func(a *profile.Applicant) string { return a.Personal.NationalID }).optional(),
			},
			Next: nextButton(),
		},
		{
			Number:   3,
			Title:    "Contact Details",
			URLHints: pageHint(3),
			Markers:  []string{"contact details", "home address", "email address", "phone number"},
			Fields: []Field{
				text("address_line1", "txtAddress1", "Address Line 1",
					func(a *profile.Applicant) string { return a.Contact.AddressLine1 }),
				text("address_line2", "txtAddress2", "Address Line 2",
					func(a *profile.Applicant) string { return a.Contact.AddressLine2 }).optional(),
				text("city", "txtCity", "Town / City",
					func(a *profile.Applicant) string { return a.Contact.City }),
				choice("address_country", "ddlCountry", "Country",
					func(a *profile.Applicant) string {
						if a.Contact.Country == "" {
							return a.Visa.CountryOfNationality
						}
						return a.Contact.Country
					}),
				text("phone", "txtPhone", "Phone",
					func(a *profile.Applicant) string { return a.Contact.Phone }),
				text("email", "txtEmail", "Email Address",
					func(a *profile.Applicant) string { return a.Contact.Email }),
				text("email_confirm", "txtEmailConfirm", "Confirm Email",
					func(a *profile.Applicant) string { return a.Contact.Email }),
			},
			Next: nextButton(),
		},
		{
			Number:   4,
			Title:    "Passport Details",
			URLHints: pageHint(4),
			Markers:  []string{"passport details", "passport number", "date of issue", "date of expiry"},
			Fields: []Field{
				choice("passport_type", "ddlPassportType", "Passport Type",
					func(a *profile.Applicant) string { return a.Passport.PassportType }).optional(),
				text("passport_number", "txtPassportNumber", "Passport Number",
					func(a *profile.Applicant) string { return a.Passport.Number }),
				text("passport_authority", "txtIssuingAuthority", "Issuing Authority",
					func(a *profile.Applicant) string { return a.Passport.IssuingAuthority }),
				date("passport_issue_date", "txtIssueDate", "Date of Issue",
					func(a *profile.Applicant) profile.Date { return a.Passport.IssueDate }),
				date("passport_expiry_date", "txtExpiryDate", "Date of Expiry",
					func(a *profile.Applicant) profile.Date { return a.Passport.ExpiryDate }),
			},
			Next: nextButton(),
		},
		{
			Number:   5,
			Title:    "Travel Details",
			URLHints: pageHint(5),
			Markers:  []string{"travel details", "proposed dates", "arrival date", "address in ireland"},
			Fields: []Field{
				date("arrival_date", "txtArrivalDate", "Arrival Date",
					func(a *profile.Applicant) profile.Date { return a.Travel.ArrivalDate }),
				date("departure_date", "txtDepartureDate", "Departure Date",
					func(a *profile.Applicant) profile.Date { return a.Travel.DepartureDate }),
				text("address_in_ireland", "txtAddressInIreland", "Address in Ireland",
					func(a *profile.Applicant) string { return a.Travel.AddressInIreland }),
				choice("accommodation", "ddlAccommodation", "Accommodation",
					func(a *profile.Applicant) string { return a.Travel.Accommodation }).optional(),
			},
			Next: nextButton(),
		},
		{
			Number:   6,
			Title:    "Visa History",
			URLHints: pageHint(6),
			Markers:  []string{"visa history", "previously been issued", "refused a visa", "been to ireland"},
			Fields: []Field{
				radio("previous_irish_visa", "rblPreviousVisa", "previously been issued",
					func(a *profile.Applicant) bool { return a.History.PreviousIrishVisa }).postback(),
				text("previous_visa_details", "txtPreviousVisaDetails", "Previous visa details",
					func(a *profile.Applicant) string { return a.History.PreviousVisaDetails }).
					when(func(a *profile.Applicant) bool { return a.History.PreviousIrishVisa }),
				radio("refused_visa", "rblRefusedVisa", "refused a visa",
					func(a *profile.Applicant) bool { return a.History.RefusedVisa }).postback(),
				text("refusal_details", "txtRefusalDetails", "Refusal details",
					func(a *profile.Applicant) string { return a.History.RefusalDetails }).
					when(func(a *profile.Applicant) bool { return a.History.RefusedVisa }),
				radio("visited_ireland", "rblVisitedIreland", "been to Ireland",
					func(a *profile.Applicant) bool { return a.History.VisitedIreland }),
			},
			Next: nextButton(),
		},
		{
			Number:   7,
			Title:    "Family Details",
			URLHints: pageHint(7),
			Markers:  []string{"family details", "father's name", "mother's name", "dependants"},
			Fields: []Field{
				text("father_name", "txtFatherName", "Father's Name",
					func(a *profile.Applicant) string { return a.Family.FatherName }),
				text("mother_name", "txtMotherName", "Mother's Name",
					func(a *profile.Applicant) string { return a.Family.MotherName }),
				text("spouse_name", "txtSpouseName", "Spouse",
					func(a *profile.Applicant) string { return a.Family.SpouseName }).optional(),
				text("dependants", "txtDependants", "dependants",
					func(a *profile.Applicant) string { return fmt.Sprint(a.Family.Dependants) }),
				radio("family_in_ireland", "rblFamilyInIreland", "family members in Ireland",
					func(a *profile.Applicant) bool { return a.Family.FamilyInIreland }).postback(),
				text("family_in_ireland_details", "txtFamilyDetails", "Family details",
					func(a *profile.Applicant) string { return a.Family.FamilyInIrelandDet }).
					when(func(a *profile.Applicant) bool { return a.Family.FamilyInIreland }),
			},
			Next: nextButton(),
		},
		{
			Number:   8,
			Title:    "Employment",
			URLHints: pageHint(8),
			Markers:  []string{"employment", "occupation", "employer", "monthly income"},
			Fields: []Field{
				choice("employment_status", "ddlEmploymentStatus", "Employment Status",
					func(a *profile.Applicant) string { return a.Employment.Status }).postback(),
				text("occupation", "txtOccupation", "Occupation",
					func(a *profile.Applicant) string { return a.Employment.Occupation }).optional(),
				text("employer", "txtEmployer", "Employer",
					func(a *profile.Applicant) string { return a.Employment.Employer }).
					when(employed),
				text("employer_address", "txtEmployerAddress", "Employer Address",
					func(a *profile.Applicant) string { return a.Employment.EmployerAddress }).
					when(employed),
				text("monthly_income", "txtMonthlyIncome", "Monthly Income",
					func(a *profile.Applicant) string { return a.Employment.MonthlyIncome }).optional(),
			},
			Next: nextButton(),
		},
		{
			Number:   9,
			Title:    "Contacts in Ireland",
			URLHints: pageHint(9),
			Markers:  []string{"contacts in ireland", "host in ireland", "relationship to you"},
			Fields: []Field{
				radio("has_host", "rblHasHost", "host in Ireland",
					hasHost).postback(),
				text("host_name", "txtHostName", "Host Name",
					func(a *profile.Applicant) string { return a.Host.Name }).
					when(hasHost),
				text("host_relationship", "txtHostRelationship", "Relationship to you",
					func(a *profile.Applicant) string { return a.Host.Relationship }).
					when(hasHost),
				text("host_address", "txtHostAddress", "Host Address",
					func(a *profile.Applicant) string { return a.Host.Address }).
					when(hasHost),
				text("host_phone", "txtHostPhone", "Host Phone",
					func(a *profile.Applicant) string { return a.Host.Phone }).
					optional().
					when(hasHost),
			},
			Next: nextButton(),
		},
		{
			Number:   10,
			Title:    "Declaration",
			URLHints: pageHint(10),
			Markers:  []string{"declaration", "criminal conviction", "i declare"},
			Fields: []Field{
				radio("criminal_conviction", "rblConviction", "criminal conviction",
					func(a *profile.Applicant) bool { return a.History.CriminalConviction }).postback(),
				text("conviction_details", "txtConvictionDetails", "Conviction details",
					func(a *profile.Applicant) string { return a.History.ConvictionDetails }).
					when(func(a *profile.Applicant) bool { return a.History.CriminalConviction }),
				checkbox("declaration", "chkDeclaration", "I declare",
					func(a *profile.Applicant) bool { return a.Declaration.Agree }),
			},
			Next: buttonChain("btnSubmit", "Submit Application", "Submit"),
		},
	}
}

// ConsentPage - промежуточная страница согласия между главной и анкетой.
func ConsentPage() Page {
	return Page{
		Title: "Data Protection",
		Fields: []Field{
			checkbox(FieldConsent, "chkConsent", "I have read and understood",
				func(*profile.Applicant) bool { return true }),
		},
		Next: buttonChain("btnContinue", "Continue", "I Agree"),
	}
}

// RetrievePage - страница восстановления заявки по номеру.
func RetrievePage() Page {
	return Page{
		Title: "Retrieve Application",
		Fields: []Field{
			{Name: FieldApplicationNumber, Kind: Text, Control: "txtApplicationNumber",
				Selectors: controlChain("txtApplicationNumber", "Application Number")},
			text("retrieve_passport_number", "txtPassportNo", "Passport Number",
				func(a *profile.Applicant) string { return a.Passport.Number }).optional(),
		},
		Next: buttonChain("btnRetrieve", "Retrieve"),
	}
}

// HomeApply - ссылки на новую заявку на главной.
func HomeApply() []string {
	return append(buttonChain("btnApply", "Apply Now", "Apply for a Visa"), "a[href*='OnlineHome2.aspx']")
}

// HomeRetrieve - ссылки на восстановление заявки на главной.
func HomeRetrieve() []string {
	return append(buttonChain("lnkRetrieve", "Retrieve Application"), "a[href*='Retrieve']")
}

// PageByNumber возвращает страницу каталога по номеру.
func PageByNumber(pages []Page, n int) (Page, bool) {
	for _, p := range pages {
		if p.Number == n {
			return p, true
		}
	}
	return Page{}, false
}

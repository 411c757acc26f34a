// Package profile описывает данные заявителя, которыми заполняется анкета AVATS.
// Данные читаются из YAML-файла (по умолчанию applicant.yaml).
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	dateLayout     = "2006-01-02"
	siteDateLayout = "02/01/2006"
)

// Date - календарная дата без времени. В YAML пишется как YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	value := strings.TrimSpace(node.Value)
	if value == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return fmt.Errorf("строка %d: дата %q должна быть в формате YYYY-MM-DD", node.Line, value)
	}
	d.Time = t
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(dateLayout), nil
}

// Site возвращает дату в формате полей AVATS (DD/MM/YYYY).
func (d Date) Site() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(siteDateLayout)
}

type Applicant struct {
	Visa        Visa        `yaml:"visa"`
	Personal    Personal    `yaml:"personal"`
	Contact     Contact     `yaml:"contact"`
	Passport    Passport    `yaml:"passport"`
	Travel      Travel      `yaml:"travel"`
	History     History     `yaml:"history"`
	Family      Family      `yaml:"family"`
	Employment  Employment  `yaml:"employment"`
	Host        Host        `yaml:"host"`
	Declaration Declaration `yaml:"declaration"`
}

type Visa struct {
	CountryOfNationality string `yaml:"country_of_nationality"`
	LocationApplyingFrom string `yaml:"location_applying_from"`
	VisaType             string `yaml:"visa_type"`    // Short Stay 'C' / Long Stay 'D'
	JourneyType          string `yaml:"journey_type"` // Single / Multiple
	PurposeOfTravel      string `yaml:"purpose_of_travel"`
	PurposeDetail        string `yaml:"purpose_detail"`
}

type Personal struct {
	Surname        string `yaml:"surname"`
	Forename       string `yaml:"forename"`
	OtherNames     string `yaml:"other_names"`
	Gender         string `yaml:"gender"` // M / F
	DateOfBirth    Date   `yaml:"date_of_birth"`
	PlaceOfBirth   string `yaml:"place_of_birth"`
	CountryOfBirth string `yaml:"country_of_birth"`
	MaritalStatus  string `yaml:"marital_status"`
	NationalID     string `yaml:"national_id"`
}

type Contact struct {
	AddressLine1 string `yaml:"address_line1"`
	AddressLine2 string `yaml:"address_line2"`
	City         string `yaml:"city"`
	Country      string `yaml:"country"`
	Phone        string `yaml:"phone"`
	Email        string `yaml:"email"`
}

type Passport struct {
	Number           string `yaml:"number"`
	IssuingAuthority string `yaml:"issuing_authority"`
	IssueDate        Date   `yaml:"issue_date"`
	ExpiryDate       Date   `yaml:"expiry_date"`
	PassportType     string `yaml:"passport_type"`
}

type Travel struct {
	ArrivalDate      Date   `yaml:"arrival_date"`
	DepartureDate    Date   `yaml:"departure_date"`
	AddressInIreland string `yaml:"address_in_ireland"`
	Accommodation    string `yaml:"accommodation"`
}

type History struct {
	PreviousIrishVisa   bool   `yaml:"previous_irish_visa"`
	PreviousVisaDetails string `yaml:"previous_visa_details"`
	RefusedVisa         bool   `yaml:"refused_visa"`
	RefusalDetails      string `yaml:"refusal_details"`
	VisitedIreland      bool   `yaml:"visited_ireland"`
	CriminalConviction  bool   `yaml:"criminal_conviction"`
	ConvictionDetails   string `yaml:"conviction_details"`
}

type Family struct {
	FatherName         string `yaml:"father_name"`
	MotherName         string `yaml:"mother_name"`
	SpouseName         string `yaml:"spouse_name"`
	Dependants         int    `yaml:"dependants"`
	FamilyInIreland    bool   `yaml:"family_in_ireland"`
	FamilyInIrelandDet string `yaml:"family_in_ireland_details"`
}

type Employment struct {
	Status          string `yaml:"status"` // Employed / Self-employed / Student / Unemployed / Retired
	Occupation      string `yaml:"occupation"`
	Employer        string `yaml:"employer"`
	EmployerAddress string `yaml:"employer_address"`
	MonthlyIncome   string `yaml:"monthly_income"`
}

// Employed: для работающих анкета спрашивает работодателя.
func (e Employment) Employed() bool {
	switch strings.ToLower(strings.TrimSpace(e.Status)) {
	case "employed", "self-employed":
		return true
	}
	return false
}

type Host struct {
	Name         string `yaml:"name"`
	Relationship string `yaml:"relationship"`
	Address      string `yaml:"address"`
	Phone        string `yaml:"phone"`
}

func (h Host) Present() bool {
	return strings.TrimSpace(h.Name) != ""
}

type Declaration struct {
	Agree bool `yaml:"agree"`
}

// Load читает и валидирует анкету из файла.
func Load(path string) (*Applicant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения анкеты %s: %w", path, err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("анкета %s: %w", path, err)
	}
	return a, nil
}

func Parse(data []byte) (*Applicant, error) {
	var a Applicant
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("ошибка разбора YAML: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate проверяет обязательные поля и возвращает все ошибки сразу.
func (a *Applicant) Validate() error {
	var errs []error
	require := func(value, name string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("не заполнено поле %s", name))
		}
	}
	requireDate := func(d Date, name string) {
		if d.IsZero() {
			errs = append(errs, fmt.Errorf("не заполнена дата %s", name))
		}
	}

	require(a.Visa.CountryOfNationality, "visa.country_of_nationality")
	require(a.Visa.VisaType, "visa.visa_type")
	require(a.Visa.JourneyType, "visa.journey_type")
	require(a.Visa.PurposeOfTravel, "visa.purpose_of_travel")
	require(a.Personal.Surname, "personal.surname")
	require(a.Personal.Forename, "personal.forename")
	require(a.Personal.Gender, "personal.gender")
	requireDate(a.Personal.DateOfBirth, "personal.date_of_birth")
	require(a.Personal.PlaceOfBirth, "personal.place_of_birth")
	require(a.Personal.CountryOfBirth, "personal.country_of_birth")
	require(a.Contact.AddressLine1, "contact.address_line1")
	require(a.Contact.City, "contact.city")
	require(a.Contact.Phone, "contact.phone")
	require(a.Contact.Email, "contact.email")
	require(a.Passport.Number, "passport.number")
	require(a.Passport.IssuingAuthority, "passport.issuing_authority")
	requireDate(a.Passport.IssueDate, "passport.issue_date")
	requireDate(a.Passport.ExpiryDate, "passport.expiry_date")
	requireDate(a.Travel.ArrivalDate, "travel.arrival_date")
	requireDate(a.Travel.DepartureDate, "travel.departure_date")
	require(a.Travel.AddressInIreland, "travel.address_in_ireland")
	require(a.Family.FatherName, "family.father_name")
	require(a.Family.MotherName, "family.mother_name")
	require(a.Employment.Status, "employment.status")

	// поля, которые анкета показывает только при ответе "Yes"
	if a.History.PreviousIrishVisa {
		require(a.History.PreviousVisaDetails, "history.previous_visa_details")
	}
	if a.History.RefusedVisa {
		require(a.History.RefusalDetails, "history.refusal_details")
	}
	if a.History.CriminalConviction {
		require(a.History.ConvictionDetails, "history.conviction_details")
	}
	if a.Family.FamilyInIreland {
		require(a.Family.FamilyInIrelandDet, "family.family_in_ireland_details")
	}
	if a.Employment.Employed() {
		require(a.Employment.Employer, "employment.employer")
		require(a.Employment.EmployerAddress, "employment.employer_address")
	}
	if a.Host.Present() {
		require(a.Host.Relationship, "host.relationship")
		require(a.Host.Address, "host.address")
	}

	if !a.Travel.ArrivalDate.IsZero() && !a.Travel.DepartureDate.IsZero() &&
		a.Travel.DepartureDate.Before(a.Travel.ArrivalDate.Time) {
		errs = append(errs, fmt.Errorf("travel.departure_date раньше travel.arrival_date"))
	}
	if !a.Passport.ExpiryDate.IsZero() && !a.Travel.DepartureDate.IsZero() &&
		a.Passport.ExpiryDate.Before(a.Travel.DepartureDate.Time) {
		errs = append(errs, fmt.Errorf("паспорт истекает до даты выезда"))
	}
	switch strings.ToUpper(a.Personal.Gender) {
	case "", "M", "F":
	default:
		errs = append(errs, fmt.Errorf("personal.gender должен быть M или F"))
	}

	return errors.Join(errs...)
}

// YesNo переводит bool в значения радиокнопок AVATS.
func YesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

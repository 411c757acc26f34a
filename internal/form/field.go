// Package form описывает страницы анкеты AVATS и заполняет их данными заявителя.
package form

import (
	"fmt"
	"strings"

	"visaAgent/internal/browser"
	"visaAgent/internal/profile"
	"visaAgent/internal/site"
)

type FieldKind int

const (
	Text FieldKind = iota
	Select
	Radio
	Checkbox
	Date
)

func (k FieldKind) String() string {
	switch k {
	case Select:
		return "select"
	case Radio:
		return "radio"
	case Checkbox:
		return "checkbox"
	case Date:
		return "date"
	default:
		return "text"
	}
}

// ValuePlaceholder подставляется в селекторы радиокнопок.
const ValuePlaceholder = "{value}"

type Field struct {
	Name      string
	Kind      FieldKind
	Control   string // ID контрола без префикса мастер-страницы
	Selectors []string
	Value     func(*profile.Applicant) string
	Optional  bool
	Postback  bool
	When      func(*profile.Applicant) bool
}

type Page struct {
	Number   int
	Title    string
	URLHints []string
	Markers  []string
	Fields   []Field
	Next     []string
}

const (
	// IDPrefix - префикс клиентских ID контролов внутри мастер-страницы AVATS.
	IDPrefix = "ctl00_ContentPlaceHolder1_"
	// NamePrefix - тот же префикс в UniqueID (атрибут name).
	NamePrefix = "ctl00$ContentPlaceHolder1$"
)

// controlChain строит цепочку селекторов от самого точного к самому общему.
func controlChain(ctrl, label string) []string {
	chain := []string{
		"#" + IDPrefix + ctrl,
		fmt.Sprintf("[id$='_%s']", ctrl),
		fmt.Sprintf("[name$='$%s']", ctrl),
	}
	if label != "" {
		chain = append(chain, fmt.Sprintf(
			"xpath=//label[contains(normalize-space(.), %s)]/following::*[self::input or self::select or self::textarea][1]",
			browser.XPathLiteral(label)))
	}
	return chain
}

func radioChain(ctrl, label string) []string {
	chain := []string{
		fmt.Sprintf("#%s%s input[value='%s']", IDPrefix, ctrl, ValuePlaceholder),
		fmt.Sprintf("input[name$='$%s'][value='%s']", ctrl, ValuePlaceholder),
	}
	if label != "" {
		chain = append(chain, fmt.Sprintf(
			"xpath=//*[contains(normalize-space(.), %s)]/following::input[@type='radio' and @value='%s'][1]",
			browser.XPathLiteral(label), ValuePlaceholder))
	}
	return chain
}

func buttonChain(ctrl string, captions ...string) []string {
	chain := []string{
		"#" + IDPrefix + ctrl,
		fmt.Sprintf("[id$='_%s']", ctrl),
		fmt.Sprintf("[name$='$%s']", ctrl),
	}
	for _, caption := range captions {
		chain = append(chain,
			fmt.Sprintf("input[type='submit'][value='%s']", caption),
			fmt.Sprintf("a:has-text('%s')", caption),
		)
	}
	return chain
}

func text(name, ctrl, label string, value func(*profile.Applicant) string) Field {
	return Field{Name: name, Kind: Text, Control: ctrl, Selectors: controlChain(ctrl, label), Value: value}
}

func date(name, ctrl, label string, value func(*profile.Applicant) profile.Date) Field {
	return Field{Name: name, Kind: Date, Control: ctrl, Selectors: controlChain(ctrl, label),
		Value: func(a *profile.Applicant) string { return value(a).Site() }}
}

func choice(name, ctrl, label string, value func(*profile.Applicant) string) Field {
	return Field{Name: name, Kind: Select, Control: ctrl, Selectors: controlChain(ctrl, label), Value: value}
}

func radio(name, ctrl, label string, value func(*profile.Applicant) bool) Field {
	return Field{Name: name, Kind: Radio, Control: ctrl, Selectors: radioChain(ctrl, label),
		Value: func(a *profile.Applicant) string { return profile.YesNo(value(a)) }}
}

func checkbox(name, ctrl, label string, value func(*profile.Applicant) bool) Field {
	return Field{Name: name, Kind: Checkbox, Control: ctrl, Selectors: controlChain(ctrl, label),
		Value: func(a *profile.Applicant) string { return profile.YesNo(value(a)) }}
}

func (f Field) optional() Field {
	f.Optional = true
	return f
}

func (f Field) postback() Field {
	f.Postback = true
	return f
}

func (f Field) when(cond func(*profile.Applicant) bool) Field {
	f.When = cond
	return f
}

// SelectorsFor подставляет значение в селекторы радиокнопок.
func (f Field) SelectorsFor(value string) []string {
	if f.Kind != Radio {
		return f.Selectors
	}
	out := make([]string, len(f.Selectors))
	for i, s := range f.Selectors {
		out[i] = strings.ReplaceAll(s, ValuePlaceholder, value)
	}
	return out
}

// Signatures переводит каталог в сигнатуры для site.Detector.
func Signatures(pages []Page) []site.Signature {
	sigs := make([]site.Signature, 0, len(pages))
	for _, p := range pages {
		sigs = append(sigs, site.Signature{
			Page:       p.Number,
			URLHints:   p.URLHints,
			Markers:    p.Markers,
			MinMarkers: 2,
		})
	}
	return sigs
}

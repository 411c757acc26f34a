// Package site распознает страницы AVATS по URL и тексту и извлекает номер заявки.
package site

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindHome
	KindConsent
	KindRetrieve
	KindForm
	KindError
	KindConfirmation
	KindOffsite
)

// FormPages - количество страниц анкеты.
const FormPages = 10

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindHome:         "home",
	KindConsent:      "consent",
	KindRetrieve:     "retrieve",
	KindForm:         "form",
	KindError:        "error",
	KindConfirmation: "confirmation",
	KindOffsite:      "offsite",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind разбирает имя состояния. Неизвестные имена дают KindUnknown.
func ParseKind(name string) Kind {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range kindNames {
		if n == name {
			return kind
		}
	}
	return KindUnknown
}

// State - распознанное состояние браузера. Page заполняется только для KindForm.
type State struct {
	Kind Kind
	Page int
}

func (s State) String() string {
	if s.Kind == KindForm {
		return fmt.Sprintf("form:%d", s.Page)
	}
	return s.Kind.String()
}

func (s State) IsForm(page int) bool {
	return s.Kind == KindForm && s.Page == page
}

// ParseState обратна String: "form:3" -> {KindForm, 3}.
func ParseState(text string) (State, error) {
	kindPart, pagePart, hasPage := strings.Cut(strings.TrimSpace(text), ":")
	kind := ParseKind(kindPart)
	if kind != KindForm {
		if hasPage {
			return State{}, fmt.Errorf("номер страницы допустим только для form: %q", text)
		}
		return State{Kind: kind}, nil
	}

	if !hasPage {
		return State{}, fmt.Errorf("не указан номер страницы: %q", text)
	}
	page, err := strconv.Atoi(pagePart)
	if err != nil || page < 1 || page > FormPages {
		return State{}, fmt.Errorf("некорректный номер страницы: %q", text)
	}
	return State{Kind: KindForm, Page: page}, nil
}

// Package browsertest содержит фейковый browser.Browser, который отдает HTML из памяти.
// Клики по элементам с атрибутом data-href переводят на другую страницу.
package browsertest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"visaAgent/internal/browser"
	"visaAgent/internal/extractor"
)

// Site - сайт в памяти. Pages индексируется полным URL.
type Site struct {
	mu sync.Mutex

	Pages map[string]string

	// Route вызывается при каждом переходе и может подменить целевой URL
	// (редирект, страница ошибки). from пуст при Navigate.
	Route func(from, to string) string
	// OnReload возвращает URL, который откроется после перезагрузки.
	OnReload func(current string) string
	// OnFill вызывается после ввода значения; key - id или name элемента.
	OnFill func(s *Site, key, value string)
	// ClientErrors - сообщения, которые покажут клиентские валидаторы страницы (по URL).
	ClientErrors map[string][]string

	launched bool
	current  string

	Filled      map[string]string
	Checked     map[string]bool
	Clicks      []string
	Postbacks   []string
	Navigations []string
	Screenshots []string
	Reloads     int
	Validations int
}

var _ browser.Browser = (*Site)(nil)

func New(pages map[string]string) *Site {
	return &Site{
		Pages:        pages,
		Filled:       make(map[string]string),
		Checked:      make(map[string]bool),
		ClientErrors: make(map[string][]string),
	}
}

// SetPage подменяет HTML страницы, в том числе текущей.
func (s *Site) SetPage(pageURL, html string) {
	s.Pages[pageURL] = html
}

func (s *Site) Launch(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launched = true
	s.current = "about:blank"
	return nil
}

func (s *Site) Navigate(ctx context.Context, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.launched {
		return browser.ErrNotLaunched
	}
	return s.goTo("", target)
}

func (s *Site) goTo(from, target string) error {
	if s.Route != nil {
		target = s.Route(from, target)
	}
	if _, ok := s.Pages[target]; !ok {
		return fmt.Errorf("страница %s не найдена", target)
	}
	s.current = target
	s.Navigations = append(s.Navigations, target)
	return nil
}

func (s *Site) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.launched {
		return browser.ErrNotLaunched
	}
	s.Reloads++
	if s.OnReload != nil {
		next := s.OnReload(s.current)
		if _, ok := s.Pages[next]; !ok {
			return fmt.Errorf("страница %s не найдена", next)
		}
		s.current = next
	}
	return nil
}

func (s *Site) CurrentURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *Site) html() string {
	return s.Pages[s.current]
}

func (s *Site) GetPageSnapshot(ctx context.Context) (*extractor.PageSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.launched {
		return nil, browser.ErrNotLaunched
	}
	return extractor.FromHTML(s.current, s.html())
}

// find ищет элемент на текущей странице. XPath и :has-text не поддерживаются и ничего не находят.
func (s *Site) find(selector string) (*goquery.Selection, error) {
	if !s.launched {
		return nil, browser.ErrNotLaunched
	}
	if err := browser.ValidateSelector(selector); err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.html()))
	if err != nil {
		return nil, err
	}
	return doc.Find(selector).First(), nil
}

func (s *Site) mustFind(selector string) (*goquery.Selection, error) {
	sel, err := s.find(selector)
	if err != nil {
		return nil, err
	}
	if sel.Length() == 0 {
		return nil, fmt.Errorf("элемент %s не найден", selector)
	}
	return sel, nil
}

func hidden(sel *goquery.Selection) bool {
	for node := sel; node.Length() > 0; node = node.Parent() {
		style, _ := node.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return true
		}
	}
	return false
}

func key(sel *goquery.Selection) string {
	if id, ok := sel.Attr("id"); ok && id != "" {
		return id
	}
	name, _ := sel.Attr("name")
	return name
}

func (s *Site) IsVisible(ctx context.Context, selector string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := s.find(selector)
	if err != nil {
		return false, err
	}
	return sel.Length() > 0 && !hidden(sel), nil
}

func (s *Site) WaitForSelector(ctx context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.mustFind(selector)
	return err
}

func (s *Site) WaitForLoadState(ctx context.Context, state string) error {
	return ctx.Err()
}

func (s *Site) Click(ctx context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := s.mustFind(selector)
	if err != nil {
		return err
	}
	s.Clicks = append(s.Clicks, key(sel))

	if sel.Is("input[type='radio'], input[type='checkbox']") {
		s.Checked[key(sel)] = true
		if v, ok := sel.Attr("value"); ok {
			name, _ := sel.Attr("name")
			s.Filled[name] = v
		}
	}

	href, ok := sel.Attr("data-href")
	if !ok {
		return nil
	}
	return s.goTo(s.current, s.resolve(href))
}

func (s *Site) resolve(href string) string {
	base, err := url.Parse(s.current)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func (s *Site) Type(ctx context.Context, selector, value string) error {
	s.mu.Lock()
	sel, err := s.mustFind(selector)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	k := key(sel)
	s.Filled[k] = value
	hook := s.OnFill
	s.mu.Unlock()

	if hook != nil {
		hook(s, k, value)
	}
	return nil
}

func (s *Site) SelectOption(ctx context.Context, selector, value string) error {
	s.mu.Lock()
	sel, err := s.mustFind(selector)
	if err != nil {
		s.mu.Unlock()
		return err
	}

	found := ""
	sel.Find("option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		v, _ := opt.Attr("value")
		if v == value || strings.TrimSpace(opt.Text()) == value {
			found = v
			return false
		}
		return true
	})
	if found == "" {
		s.mu.Unlock()
		return fmt.Errorf("пункт %q не найден в %s", value, selector)
	}

	k := key(sel)
	s.Filled[k] = found
	hook := s.OnFill
	s.mu.Unlock()

	if hook != nil {
		hook(s, k, found)
	}
	return nil
}

func (s *Site) SetChecked(ctx context.Context, selector string, checked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := s.mustFind(selector)
	if err != nil {
		return err
	}
	s.Checked[key(sel)] = checked
	return nil
}

func (s *Site) TriggerPostback(ctx context.Context, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sel, err := s.mustFind(selector)
	if err != nil {
		return err
	}
	s.Postbacks = append(s.Postbacks, key(sel))
	return nil
}

func (s *Site) ClosePopups(ctx context.Context) error {
	return nil
}

func (s *Site) ValidateForm(ctx context.Context, formSelector string) (bool, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.launched {
		return false, nil, browser.ErrNotLaunched
	}
	s.Validations++
	snapshot, err := extractor.FromHTML(s.current, s.html())
	if err != nil {
		return false, nil, err
	}
	messages := append(append([]string{}, snapshot.ValidationErrors...), s.ClientErrors[s.current]...)
	return len(messages) == 0, messages, nil
}

func (s *Site) Screenshot(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.launched {
		return browser.ErrNotLaunched
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	s.Screenshots = append(s.Screenshots, path)
	return os.WriteFile(path, []byte(s.html()), 0o644)
}

func (s *Site) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.launched = false
	return nil
}

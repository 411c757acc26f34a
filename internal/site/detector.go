package site

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Signature описывает, как узнать конкретную страницу анкеты.
type Signature struct {
	Page       int
	URLHints   []string // подстроки URL (регистр не важен)
	Markers    []string // фрагменты текста страницы
	MinMarkers int      // сколько маркеров должно совпасть; 0 означает 1
}

// Фрагменты URL и текста, по которым распознаются служебные страницы AVATS.
var (
	errorURLHints = []string{"error.aspx", "errorpage", "/error", "genericerror"}
	errorMarkers  = []string{
		"server error in",
		"runtime error",
		"service unavailable",
		"an error has occurred",
		"an unexpected error",
		"the page cannot be displayed",
		"your session has expired",
		"session has timed out",
		"http error 500",
		"http error 503",
		"bad request",
	}

	confirmationURLHints = []string{"confirmation.aspx", "submitted.aspx"}
	confirmationMarkers  = []string{
		"your application has been submitted",
		"application has been successfully submitted",
		"thank you for submitting",
		"summary of your application has been sent",
	}

	consentURLHints = []string{"onlinehome2.aspx", "dataprotection", "privacy.aspx"}
	consentMarkers  = []string{
		"data protection",
		"privacy statement",
		"i have read and understood",
		"i have read and understand",
		"i consent",
	}

	retrieveURLHints = []string{"retrieve", "onlinerecall"}
	retrieveMarkers  = []string{
		"retrieve an application",
		"retrieve your application",
		"enter your application number",
	}

	// Только фразы стартовой страницы: название сайта есть и на страницах-уведомлениях.
	homeMarkers = []string{
		"apply for a visa",
		"visa application - start",
	}
)

var pageOfPattern = regexp.MustCompile(`page\s+(\d{1,2})\s+of\s+` + strconv.Itoa(FormPages) + `\b`)

// Detector распознает состояние по URL и видимому тексту страницы.
type Detector struct {
	host     string
	homePath string
	forms    []Signature
}

func NewDetector(homeURL string, forms []Signature) *Detector {
	d := &Detector{forms: forms}
	if u, err := url.Parse(homeURL); err == nil {
		d.host = strings.ToLower(u.Hostname())
		d.homePath = strings.ToLower(u.Path)
	}
	return d
}

// Detect проверяет состояния в фиксированном порядке: ошибки важнее всего,
// затем уход с сайта, подтверждение, страницы анкеты, согласие, восстановление, главная.
func (d *Detector) Detect(pageURL, text string) State {
	lowerURL := strings.ToLower(pageURL)
	normalized := Normalize(text)

	if lowerURL == "" || lowerURL == "about:blank" {
		return State{Kind: KindUnknown}
	}

	if containsAny(lowerURL, errorURLHints) || containsAny(normalized, errorMarkers) {
		return State{Kind: KindError}
	}

	if d.offsite(pageURL) {
		return State{Kind: KindOffsite}
	}

	if containsAny(lowerURL, confirmationURLHints) || containsAny(normalized, confirmationMarkers) {
		return State{Kind: KindConfirmation}
	}

	if page, ok := d.detectForm(lowerURL, normalized); ok {
		return State{Kind: KindForm, Page: page}
	}

	if containsAny(lowerURL, consentURLHints) || countMarkers(normalized, consentMarkers) >= 2 {
		return State{Kind: KindConsent}
	}

	if containsAny(lowerURL, retrieveURLHints) || containsAny(normalized, retrieveMarkers) {
		return State{Kind: KindRetrieve}
	}

	if d.isHome(lowerURL) || containsAny(normalized, homeMarkers) {
		return State{Kind: KindHome}
	}

	return State{Kind: KindUnknown}
}

func (d *Detector) detectForm(lowerURL, normalized string) (int, bool) {
	if m := pageOfPattern.FindStringSubmatch(normalized); m != nil {
		if page, err := strconv.Atoi(m[1]); err == nil && page >= 1 && page <= FormPages {
			return page, true
		}
	}

	best, bestScore := 0, 0
	for _, sig := range d.forms {
		need := sig.MinMarkers
		if need <= 0 {
			need = 1
		}

		score := countMarkers(normalized, sig.Markers)
		if containsAny(lowerURL, sig.URLHints) {
			score++
		}
		if score < need {
			continue
		}
		// при равенстве выигрывает меньший номер: сайт чаще возвращает назад, чем вперед
		if score > bestScore || (score == bestScore && sig.Page < best) {
			best, bestScore = sig.Page, score
		}
	}

	return best, best > 0
}

func (d *Detector) offsite(pageURL string) bool {
	if d.host == "" {
		return false
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	base := strings.TrimPrefix(d.host, "www.")
	return host != base && !strings.HasSuffix(host, "."+base)
}

func (d *Detector) isHome(lowerURL string) bool {
	if d.homePath == "" || d.homePath == "/" {
		return false
	}
	u, err := url.Parse(lowerURL)
	if err != nil {
		return false
	}
	return u.Path == d.homePath
}

var quoteReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "“", `"`, "”", `"`,
	"–", "-", "—", "-",
)

// Normalize приводит текст к виду для нечеткого сравнения:
// нижний регистр, типографские кавычки и тире заменены, пробелы схлопнуты.
func Normalize(text string) string {
	text = quoteReplacer.Replace(strings.ToLower(text))
	return strings.Join(strings.Fields(text), " ")
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, Normalize(n)) {
			return true
		}
	}
	return false
}

func countMarkers(haystack string, markers []string) int {
	count := 0
	for _, m := range markers {
		if m != "" && strings.Contains(haystack, Normalize(m)) {
			count++
		}
	}
	return count
}

package handler

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/DukeRupert/boxoffice/internal/csrf"
	"github.com/DukeRupert/boxoffice/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateFuncs returns a FuncMap with custom template functions
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},

		// Date/Time functions
		"year": func() int {
			return time.Now().Year()
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("Jan 2, 2006")
		},

		// String functions
		"hasPrefix": func(s, prefix string) bool {
			return strings.HasPrefix(s, prefix)
		},
		"lower": func(s string) string {
			return strings.ToLower(s)
		},
		"title": func(v interface{}) string {
			s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
			return cases.Title(language.English).String(s)
		},
		"initials": func(s string) string {
			var out []rune
			for _, word := range strings.Fields(s) {
				out = append(out, []rune(strings.ToUpper(word))[0])
				if len(out) == 2 {
					break
				}
			}
			return string(out)
		},
		"default": func(defaultVal, val interface{}) interface{} {
			if val == nil || val == "" || val == 0 {
				return defaultVal
			}
			return val
		},

		// Form helpers
		"csrfField": func(token string) template.HTML {
			return template.HTML(fmt.Sprintf(`<input type="hidden" name="%s" value="%s">`,
				csrf.FormFieldName, template.HTMLEscapeString(token)))
		},

		"statusColor": func(status domain.EventStatus) string {
			switch status {
			case domain.EventStatusOnSale:
				return "badge-green"
			case domain.EventStatusUpcoming:
				return "badge-blue"
			case domain.EventStatusClosed:
				return "badge-zinc"
			default:
				return "badge-zinc"
			}
		},
	}
}

package render

import (
	"html/template"
	"strings"
	"time"

	"git.home.luguber.info/inful/pagesmith/internal/content"
)

func funcMap(baseURL string) template.FuncMap {
	return template.FuncMap{
		"title":      content.TitleCase,
		"lower":      strings.ToLower,
		"upper":      strings.ToUpper,
		"replaceAll": strings.ReplaceAll,
		"join":       strings.Join,
		"hasDate":    func(t time.Time) bool { return !t.IsZero() },
		"isoDate":    func(t time.Time) string { return t.UTC().Format("2006-01-02") },
		"formatDate": func(t time.Time) string { return t.UTC().Format("January 2, 2006") },
		"absURL": func(p string) string {
			if baseURL == "" || strings.Contains(p, "://") {
				return p
			}
			return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(p, "/")
		},
	}
}

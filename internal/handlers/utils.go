package handlers

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/sportbuddy/app/internal/models"
)

// Template helper functions
var funcMap = template.FuncMap{
	"FormatClock": FormatClock,
	"TimeAgo":     TimeAgo,
	"Rating":      Rating,
	"HasSport":    HasSport,
	"Join":        JoinSports,
}

// FormatClock formats a message time as "3:04 PM".
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("3:04 PM")
}

// TimeAgo renders how long ago t was, e.g. "just now", "30m ago", "2h ago".
func TimeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}

// Rating formats a star rating with one decimal.
func Rating(r float64) string {
	return fmt.Sprintf("★ %.1f", r)
}

// HasSport reports whether sport is in sports.
func HasSport(sports []models.Sport, sport models.Sport) bool {
	for _, s := range sports {
		if s == sport {
			return true
		}
	}
	return false
}

// JoinSports lists sports separated by commas.
func JoinSports(sports []models.Sport) string {
	names := make([]string, len(sports))
	for i, s := range sports {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// templates holds all parsed page templates keyed by file name,
// e.g. "feed.html". Partials (_*.html) are parsed into every page.
var (
	templates     map[string]*template.Template
	templatesOnce sync.Once
	templatesErr  error
)

// LoadTemplates parses layout.html, the partials and every page template
// found in dir of fsys. It should be called once at application startup;
// later calls return the first result.
func LoadTemplates(fsys fs.FS, dir string) error {
	templatesOnce.Do(func() {
		templatesErr = loadTemplates(fsys, dir)
	})
	return templatesErr
}

func loadTemplates(fsys fs.FS, dir string) error {
	layoutFile := path.Join(dir, "layout.html")
	if _, err := fs.Stat(fsys, layoutFile); err != nil {
		return fmt.Errorf("layout.html not found in %s: %w", dir, err)
	}

	partialFiles, err := fs.Glob(fsys, path.Join(dir, "_*.html"))
	if err != nil {
		return fmt.Errorf("error globbing partial templates: %w", err)
	}
	allFiles, err := fs.Glob(fsys, path.Join(dir, "*.html"))
	if err != nil {
		return fmt.Errorf("error globbing templates: %w", err)
	}

	parsed := make(map[string]*template.Template)
	for _, file := range allFiles {
		name := path.Base(file)
		if file == layoutFile || strings.HasPrefix(name, "_") {
			continue
		}
		// The page file comes first so that Execute runs the page, which
		// in turn calls {{template "layout" .}}.
		files := append([]string{file, layoutFile}, partialFiles...)
		tmpl, err := template.New(name).Funcs(funcMap).ParseFS(fsys, files...)
		if err != nil {
			return fmt.Errorf("error parsing page template %s: %w", name, err)
		}
		parsed[name] = tmpl
	}
	if len(parsed) == 0 {
		return fmt.Errorf("no page templates found in %s", dir)
	}
	templates = parsed
	return nil
}

// RenderTemplate executes the named page template with the given status.
func RenderTemplate(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	tmpl, ok := templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("Template not found: %s", name), http.StatusInternalServerError)
		return
	}
	if _, ok := data["Tab"]; !ok {
		data["Tab"] = ""
	}
	if _, ok := data["User"]; !ok {
		data["User"] = nil
	}
	data["CurrentYear"] = time.Now().Year()

	// Buffered so a template error can still become a 500.
	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		log.Printf("Error executing template %s: %v", name, err)
		http.Error(w, "Error rendering page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, buf.String())
}

// RenderErrorPage renders a standardized error page using the error.html template.
func RenderErrorPage(w http.ResponseWriter, r *http.Request, statusCode int, title string, message string) {
	data := map[string]interface{}{
		"Title":      fmt.Sprintf("Error %d - %s", statusCode, title),
		"StatusCode": statusCode,
		"ErrorTitle": title,
		"Message":    message,
	}
	if sess := SessionFromContext(r.Context()); sess != nil {
		if user, err := sess.User(); err == nil {
			data["User"] = user
		}
	}
	RenderTemplate(w, statusCode, "error.html", data)
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// writeError sends {"error": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

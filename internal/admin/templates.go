package admin

import (
	"embed"
	"html/template"
	"io/fs"
	"path"
	"time"

	"devicesapi/internal/logs"
)

//go:embed templates/*.tmpl
var tplFS embed.FS

// pageTemplates maps a page file name (e.g. "devices_list.tmpl") to its
// own layout+page template set.
type pageTemplates map[string]*template.Template

var funcs = template.FuncMap{
	"ts": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}

func parseTemplates() pageTemplates {
	all, err := fs.Glob(tplFS, "templates/*.tmpl")
	if err != nil {
		logs.Logger.Fatalf("admin: glob templates failed: %v", err)
	}
	if len(all) == 0 {
		logs.Logger.Fatal("admin: no templates found in embed FS")
	}

	out := make(pageTemplates)
	for _, f := range all {
		if path.Base(f) == "layout.tmpl" {
			continue
		}
		t := template.New("layout").Funcs(funcs)
		if _, err := t.ParseFS(tplFS, "templates/layout.tmpl"); err != nil {
			logs.Logger.Fatalf("admin: parse layout.tmpl: %v", err)
		}
		if _, err := t.ParseFS(tplFS, f); err != nil {
			logs.Logger.Fatalf("admin: parse %s: %v", f, err)
		}
		out[path.Base(f)] = t
	}
	return out
}

package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"trajet.transit.mg/internal/app"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

type WebUI struct {
	*app.Application
}

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string
	var err error

	switch dataType {
	case "lines":
		data, err = webUI.Store.ListLines(ctx)
		title = "Lines (all statuses)"
	case "stops":
		data, err = webUI.Store.ListStopNames(ctx)
		title = "Visible stop names"
	case "counts":
		data, err = webUI.Store.TableCounts(ctx)
		title = "Table counts"
	case "config":
		cfg := webUI.Config
		cfg.ApiKeys = nil
		if cfg.SentryDSN != "" {
			cfg.SentryDSN = "(set)"
		}
		data = cfg
		title = "Configuration"
	default:
		data = map[string]string{
			"error": "Please use one of the following: lines, stops, counts, config.",
		}
		title = "Choose a data type"
	}

	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeDebugData(w, title, data)
}

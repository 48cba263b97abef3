package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jfoltran/growthgraph/internal/animation"
	"github.com/jfoltran/growthgraph/internal/config"
	"github.com/jfoltran/growthgraph/internal/graph"
	"github.com/jfoltran/growthgraph/internal/raster"
	"github.com/jfoltran/growthgraph/internal/svg"
)

type handlers struct {
	driver *animation.Driver
	cfg    *config.Config
}

// sceneParams reads ?progress= and ?size=. Progress defaults to the driver's
// current value, size to the configured render size.
func (h *handlers) sceneParams(r *http.Request) (int, float64, error) {
	progress := h.driver.Progress()
	size := h.driver.Size()
	if h.cfg != nil && h.cfg.Render.Size > 0 {
		size = h.cfg.Render.Size
	}

	q := r.URL.Query()
	if v := q.Get("progress"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid progress %q", v)
		}
		progress = p
	}
	if v := q.Get("size"); v != "" {
		s, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid size %q", v)
		}
		size = s
	}
	if err := graph.Validate(progress, size); err != nil {
		return 0, 0, err
	}
	return progress, size, nil
}

func (h *handlers) scene(w http.ResponseWriter, r *http.Request) {
	progress, size, err := h.sceneParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, graph.Render(progress, size))
}

func (h *handlers) svgImage(w http.ResponseWriter, r *http.Request) {
	progress, size, err := h.sceneParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(svg.Marshal(graph.Render(progress, size))) //nolint:errcheck
}

func (h *handlers) pngImage(w http.ResponseWriter, r *http.Request) {
	progress, size, err := h.sceneParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	bg := r.URL.Query().Get("background")
	if bg == "" && h.cfg != nil {
		bg = h.cfg.Render.Background
	}

	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, graph.Render(progress, size), raster.Options{Background: bg}); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.driver.Snapshot())
}

func (h *handlers) restart(w http.ResponseWriter, r *http.Request) {
	h.driver.Reset()
	writeStatusJSON(w, http.StatusAccepted, map[string]any{"ok": true, "message": "animation restarted"})
}

func (h *handlers) configHandler(w http.ResponseWriter, r *http.Request) {
	if h.cfg == nil {
		writeJSON(w, map[string]string{"error": "no config available"})
		return
	}
	writeJSON(w, h.cfg)
}

func (h *handlers) logs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.driver.Logs())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeStatusJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeStatusJSON(w, status, map[string]string{"error": err.Error()})
}

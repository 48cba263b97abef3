package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jfoltran/growthgraph/internal/funnel"
)

type funnelHandlers struct {
	store *funnel.Store
}

type answerPayload struct {
	Option string `json:"option"`
}

type stepResponse struct {
	State   funnel.State   `json:"state"`
	Outcome funnel.Outcome `json:"outcome"`
}

func (fh *funnelHandlers) quiz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, fh.store.Quiz())
}

func (fh *funnelHandlers) create(w http.ResponseWriter, r *http.Request) {
	s := fh.store.Create()
	writeStatusJSON(w, http.StatusCreated, s.State())
}

func (fh *funnelHandlers) get(w http.ResponseWriter, r *http.Request) {
	s, ok := fh.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, s.State())
}

func (fh *funnelHandlers) answer(w http.ResponseWriter, r *http.Request) {
	s, ok := fh.lookup(w, r)
	if !ok {
		return
	}
	var payload answerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeStatusJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid request body: " + err.Error(),
		})
		return
	}
	if err := s.Select(payload.Option); err != nil {
		writeError(w, funnelStatus(err), err)
		return
	}
	writeJSON(w, s.State())
}

func (fh *funnelHandlers) next(w http.ResponseWriter, r *http.Request) {
	fh.step(w, r, (*funnel.Session).Next)
}

func (fh *funnelHandlers) back(w http.ResponseWriter, r *http.Request) {
	fh.step(w, r, (*funnel.Session).Back)
}

func (fh *funnelHandlers) step(w http.ResponseWriter, r *http.Request, move func(*funnel.Session) (funnel.Outcome, error)) {
	s, ok := fh.lookup(w, r)
	if !ok {
		return
	}
	out, err := move(s)
	if err != nil {
		writeError(w, funnelStatus(err), err)
		return
	}
	if out.Route == funnel.RouteHome {
		fh.store.Delete(s.ID())
	}
	writeJSON(w, stepResponse{State: s.State(), Outcome: out})
}

func (fh *funnelHandlers) lookup(w http.ResponseWriter, r *http.Request) (*funnel.Session, bool) {
	s, err := fh.store.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, funnelStatus(err), err)
		return nil, false
	}
	return s, true
}

func funnelStatus(err error) int {
	switch {
	case errors.Is(err, funnel.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, funnel.ErrUnknownOption):
		return http.StatusUnprocessableEntity
	case errors.Is(err, funnel.ErrFinished):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

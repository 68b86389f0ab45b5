package httpapi

import (
	"net/http"
	"strconv"
)

// HandleLoad implements `PUT /translator?keep_cache` (spec §6): 204 if the
// state changed, 304 if it was already LOADED_ON_DEVICE.
func (s *State) HandleLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.Guard.Check(r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}

	keepCache, _ := strconv.ParseBool(r.URL.Query().Get("keep_cache"))
	changed, err := s.Lifecycle.Load(r.Context(), keepCache)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Metrics.ObserveLifecycleTransition("load", changed)

	if changed {
		w.WriteHeader(http.StatusNoContent)
	} else {
		w.WriteHeader(http.StatusNotModified)
	}
}

// HandleUnload implements `DELETE /translator?to_cpu` (spec §6): 204 if the
// state changed, 304 if it was already out of LOADED_ON_DEVICE.
func (s *State) HandleUnload(w http.ResponseWriter, r *http.Request) {
	if err := s.Guard.Check(r.Header.Get("Authorization")); err != nil {
		writeError(w, err)
		return
	}

	toCPU, _ := strconv.ParseBool(r.URL.Query().Get("to_cpu"))
	changed, err := s.Lifecycle.Unload(r.Context(), toCPU)
	if err != nil {
		writeError(w, err)
		return
	}
	s.Metrics.ObserveLifecycleTransition("unload", changed)

	if changed {
		w.WriteHeader(http.StatusNoContent)
	} else {
		w.WriteHeader(http.StatusNotModified)
	}
}

package main

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/shopcalc/internal/export"
	"github.com/Simplici0/shopcalc/internal/pricing"
	"github.com/Simplici0/shopcalc/internal/store"
)

type profileRequest struct {
	Name   string         `json:"name"`
	Notes  string         `json:"notes"`
	Config pricing.Config `json:"config"`
}

func (s *server) handleProfilesList(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.store.ListProfiles(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		log.Printf("list profiles: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load profiles")
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *server) handleProfileCreate(w http.ResponseWriter, r *http.Request) {
	p, ok := decodeProfile(w, r)
	if !ok {
		return
	}

	id, err := s.store.CreateProfile(r.Context(), p)
	if err != nil {
		s.writeStoreError(w, "create profile", err)
		return
	}

	created, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "load created profile", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *server) handleProfileGet(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleProfileUpdate replaces a profile. Sending the default config resets it.
func (s *server) handleProfileUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	p, ok := decodeProfile(w, r)
	if !ok {
		return
	}
	p.ID = id

	if err := s.store.UpdateProfile(r.Context(), p); err != nil {
		s.writeStoreError(w, "update profile", err)
		return
	}

	updated, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "load updated profile", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *server) handleProfileDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := profileID(w, r)
	if !ok {
		return
	}
	if err := s.store.DeleteProfile(r.Context(), id); err != nil {
		s.writeStoreError(w, "delete profile", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProfileResult(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.calculate(p.Config))
}

func (s *server) handleProfileExport(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	sol := s.calculate(p.Config)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(p.Config.ProductName)+`"`)
	if err := export.WriteCSV(w, sol.Result); err != nil {
		log.Printf("write profile export: %v", err)
	}
}

func (s *server) handleProfileSummary(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	sol := s.calculate(p.Config)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.Summary(p.Config.ProductName, sol.Result)))
}

func (s *server) handleCalculationsList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	items, err := s.store.ListCalculations(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		log.Printf("list calculations: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load calculations")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleCalculationGet(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetCalculation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeStoreError(w, "get calculation", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// calculate runs a stored config with the server-wide strategy.
func (s *server) calculate(cfg pricing.Config) pricing.Solution {
	start := time.Now()
	sol := pricing.Calculate(cfg, s.strategy)
	s.metrics.ObserveSolution(sol, time.Since(start))
	return sol
}

func (s *server) loadProfile(w http.ResponseWriter, r *http.Request) (store.Profile, bool) {
	id, ok := profileID(w, r)
	if !ok {
		return store.Profile{}, false
	}
	p, err := s.store.GetProfile(r.Context(), id)
	if err != nil {
		s.writeStoreError(w, "get profile", err)
		return store.Profile{}, false
	}
	return p, true
}

func profileID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid profile id")
		return 0, false
	}
	return id, true
}

func decodeProfile(w http.ResponseWriter, r *http.Request) (store.Profile, bool) {
	req := profileRequest{Config: pricing.DefaultConfig()}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return store.Profile{}, false
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return store.Profile{}, false
	}
	if err := pricing.Validate(req.Config); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return store.Profile{}, false
	}

	return store.Profile{
		Name:   req.Name,
		Notes:  strings.TrimSpace(req.Notes),
		Config: req.Config,
	}, true
}

func (s *server) writeStoreError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, store.ErrDuplicateName):
		writeError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("%s: %v", op, err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

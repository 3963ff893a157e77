package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Simplici0/shopcalc/internal/pricing"
)

const maxBodyBytes = 1 << 20

type defaultsResponse struct {
	Config     pricing.Config      `json:"config"`
	AdsPresets []pricing.AdsPreset `json:"ads_presets"`
}

type evaluateRequest struct {
	Price  float64        `json:"price"`
	Config pricing.Config `json:"config"`
}

type solveRequest struct {
	Config    pricing.Config `json:"config"`
	Strategy  string         `json:"strategy"`
	ProfileID *int64         `json:"profile_id"`
}

type calculationResponse struct {
	ID string `json:"id"`
	pricing.Solution
}

func (s *server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, defaultsResponse{
		Config:     pricing.DefaultConfig(),
		AdsPresets: pricing.AdsPresets(),
	})
}

func (s *server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	req := evaluateRequest{Config: pricing.DefaultConfig()}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must be >= 0")
		return
	}
	if err := pricing.Validate(req.Config); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, pricing.Evaluate(req.Price, req.Config))
}

func (s *server) handleSolve(w http.ResponseWriter, r *http.Request) {
	req, strategy, ok := s.decodeSolveRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	sol := pricing.SolveWith(req.Config, strategy)
	s.metrics.ObserveSolution(sol, time.Since(start))

	writeJSON(w, http.StatusOK, sol)
}

// handleCalculate dispatches on the config mode and records the run in the history.
func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	req, strategy, ok := s.decodeSolveRequest(w, r)
	if !ok {
		return
	}

	start := time.Now()
	sol := pricing.Calculate(req.Config, strategy)
	s.metrics.ObserveSolution(sol, time.Since(start))

	id, err := s.store.RecordCalculation(r.Context(), req.ProfileID, req.Config, sol)
	if err != nil {
		s.writeStoreError(w, "record calculation", err)
		return
	}

	writeJSON(w, http.StatusOK, calculationResponse{ID: id, Solution: sol})
}

// decodeSolveRequest reads and validates a solve payload. Config fields missing from the
// payload keep their default values. On failure the error response is already written.
func (s *server) decodeSolveRequest(w http.ResponseWriter, r *http.Request) (solveRequest, pricing.Strategy, bool) {
	req := solveRequest{Config: pricing.DefaultConfig()}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, "", false
	}

	strategy, err := s.resolveStrategy(req.Strategy)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return req, "", false
	}
	if err := pricing.Validate(req.Config); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return req, "", false
	}
	return req, strategy, true
}

// resolveStrategy falls back to the server-wide strategy when the request names none.
func (s *server) resolveStrategy(raw string) (pricing.Strategy, error) {
	if strings.TrimSpace(raw) == "" {
		return s.strategy, nil
	}
	return pricing.ParseStrategy(raw)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body too large")
		}
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

func validationMessage(err error) string {
	return "invalid config: " + strings.ReplaceAll(err.Error(), "\n", "; ")
}

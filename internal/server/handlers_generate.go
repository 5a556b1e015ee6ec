package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/resume-builder/internal/generate"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
)

var validate = validator.New()

// GenerateRequest optionally carries a profile to draft from instead of the
// stored one.
type GenerateRequest struct {
	Profile *types.Profile `json:"profile,omitempty"`
}

// generatorProfile returns the request profile, else the stored profile,
// else an empty one.
func (s *Server) generatorProfile(w http.ResponseWriter, r *http.Request) (*types.Profile, bool) {
	var req GenerateRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return nil, false
	}
	if req.Profile != nil {
		return req.Profile, true
	}
	userID, _ := userKey(r)
	profile, err := s.deps.Profiles.FindOne(r.Context(), userID)
	if errors.Is(err, store.ErrNotFound) {
		return &types.Profile{UserID: userID}, true
	}
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return profile, true
}

func (s *Server) handleGenerateAbout(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.generatorProfile(w, r)
	if !ok {
		return
	}
	result, err := s.deps.Generator.GenerateAbout(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGenerateBullets(w http.ResponseWriter, r *http.Request) {
	var req generate.BulletRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, validationError(err))
		return
	}
	result, err := s.deps.Generator.GenerateBulletPoints(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleGenerateSkills(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.generatorProfile(w, r)
	if !ok {
		return
	}
	result, err := s.deps.Generator.GenerateSkills(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, result)
}

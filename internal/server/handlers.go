package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/ppiankov/trustie/internal/model"
	"github.com/ppiankov/trustie/internal/pipeline"
	"github.com/ppiankov/trustie/internal/rankings"
)

// maxBodyBytes bounds request bodies well above the largest valid passage
const maxBodyBytes = 1 << 20

const (
	msgInvalidBody   = "Invalid request body"
	msgNotConfigured = "API key not configured"
	msgInternal      = "Something went wrong. Please try again."
)

type verifyRequest struct {
	Content     string `json:"content" validate:"required"`
	SourceLabel string `json:"sourceLabel" validate:"required"`
	AISource    string `json:"aiSource"` // Older clients
}

type askRequest struct {
	Question string `json:"question" validate:"required"`
}

type searchRequest struct {
	Query string `json:"query" validate:"required"`
}

type rephraseRequest struct {
	Text string `json:"text" validate:"required"`
}

type rankingCounts struct {
	Supported    int `json:"supported" validate:"gte=0"`
	Contradicted int `json:"contradicted" validate:"gte=0"`
	Unverified   int `json:"unverified" validate:"gte=0"`
	Opinions     int `json:"opinions" validate:"gte=0"`
}

type rankingRequest struct {
	SourceLabel string        `json:"sourceLabel" validate:"required"`
	AISource    string        `json:"aiSource"`
	Counts      rankingCounts `json:"counts"`
}

// fieldMessages maps a failed required check to the message shown to the user
var fieldMessages = map[string]string{
	"verifyRequest.Content":      pipeline.MsgContentEmpty,
	"verifyRequest.SourceLabel":  pipeline.MsgSourceMissing,
	"askRequest.Question":        pipeline.MsgQuestionEmpty,
	"searchRequest.Query":        pipeline.MsgQueryEmpty,
	"rephraseRequest.Text":       pipeline.MsgRephraseEmpty,
	"rankingRequest.SourceLabel": pipeline.MsgRankingSource,
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.SourceLabel == "" {
		req.SourceLabel = req.AISource
	}
	if !s.check(w, req) || !s.ready(w) {
		return
	}

	result, err := s.pipeline.Verify(r.Context(), req.Content, req.SourceLabel)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !s.decode(w, r, &req) || !s.check(w, req) || !s.ready(w) {
		return
	}

	result, err := s.pipeline.Ask(r.Context(), req.Question)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if !s.decode(w, r, &req) || !s.check(w, req) || !s.ready(w) {
		return
	}

	result, err := s.pipeline.Search(r.Context(), req.Query)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRephrase(w http.ResponseWriter, r *http.Request) {
	var req rephraseRequest
	if !s.decode(w, r, &req) || !s.check(w, req) || !s.ready(w) {
		return
	}

	rephrased, err := s.pipeline.Rephrase(r.Context(), req.Text)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"rephrased": rephrased})
}

func (s *Server) handleListRankings(w http.ResponseWriter, r *http.Request) {
	list, err := s.rankings.List(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"rankings": list})
}

func (s *Server) handleRecordRanking(w http.ResponseWriter, r *http.Request) {
	var req rankingRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.SourceLabel == "" {
		req.SourceLabel = req.AISource
	}
	if !s.check(w, req) {
		return
	}

	tally := rankings.Tally{
		Supported:    req.Counts.Supported,
		Contradicted: req.Counts.Contradicted,
		Unverified:   req.Counts.Unverified,
		Opinions:     req.Counts.Opinions,
	}
	if err := s.rankings.RecordTally(r.Context(), req.SourceLabel, tally); err != nil {
		// Whitespace-only labels pass the required tag
		respondError(w, http.StatusBadRequest, pipeline.MsgRankingSource)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	backend := "unconfigured"
	if s.pipeline != nil && s.pipeline.BackendName() != "" {
		backend = s.pipeline.BackendName()
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"backend": backend,
	})
}

// decode reads a JSON body, answering 400 when it is malformed
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, msgInvalidBody)
		return false
	}
	return true
}

// check runs struct validation, answering 400 with the field's message
func (s *Server) check(w http.ResponseWriter, v any) bool {
	if err := s.validate.Struct(v); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

// ready answers 500 when no pipeline is configured
func (s *Server) ready(w http.ResponseWriter) bool {
	if s.pipeline == nil {
		respondError(w, http.StatusInternalServerError, msgNotConfigured)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidBody
	}

	first := verrs[0]
	if msg, ok := fieldMessages[first.StructNamespace()]; ok {
		return msg
	}
	if first.Tag() == "gte" {
		return pipeline.MsgRankingNegative
	}
	return msgInvalidBody
}

// respondErr maps pipeline errors to status codes
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		respondError(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, model.ErrConfiguration):
		respondError(w, http.StatusInternalServerError, msgNotConfigured)
	default:
		s.logger.Error("request failed",
			"request_id", middleware.GetReqID(r.Context()),
			"path", r.URL.Path,
			"error", err)
		respondError(w, http.StatusInternalServerError, msgInternal)
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

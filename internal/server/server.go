package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"focusrank/internal/domain"
	"focusrank/internal/rank"
	"focusrank/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type Server struct {
	playerSvc *service.PlayerService
	skillSvc  *service.SkillService
	blockSvc  *service.BlockService
	ladder    rank.Ladder
	logger    zerolog.Logger
	router    chi.Router
}

func New(
	playerSvc *service.PlayerService,
	skillSvc *service.SkillService,
	blockSvc *service.BlockService,
	ladder rank.Ladder,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		playerSvc: playerSvc,
		skillSvc:  skillSvc,
		blockSvc:  blockSvc,
		ladder:    ladder,
		logger:    logger,
		router:    chi.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/ladder", s.handleGetLadder)

		r.Route("/player/{playerID}", func(r chi.Router) {
			r.Get("/", s.handleGetPlayer)
			r.Post("/sync", s.handleSyncPlayer)

			r.Post("/skills", s.handleCreateSkill)
			r.Delete("/skills/{skillID}", s.handleDeleteSkill)

			r.Post("/block/start", s.handleStartBlock)
			r.Post("/block/cancel", s.handleCancelBlock)
			r.Post("/block/end", s.handleEndBlock)
		})
	})

	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// skillView wraps a stored skill with the derived presentation fields.
type skillView struct {
	domain.Skill
	DisplayName  string             `json:"displayName"`
	WinRate      int                `json:"winRate"`
	TotalHours   string             `json:"totalHours"`
	RadiantLevel *rank.RadiantLevel `json:"radiantLevel,omitempty"`
}

type playerView struct {
	*domain.PlayerState
	Skills []skillView `json:"skills"`
}

func newSkillView(l rank.Ladder, sk domain.Skill) skillView {
	v := skillView{
		Skill:       sk,
		DisplayName: l.DisplayName(sk.Tier, sk.Division),
		WinRate:     sk.WinRate(),
		TotalHours:  rank.FormatHours(sk.TotalMinutes),
	}
	if i, err := l.IndexOf(sk.Tier); err == nil && l.IsTerminal(i) {
		lvl := rank.RadiantLevelFor(sk.LP)
		v.RadiantLevel = &lvl
	}
	return v
}

func newPlayerView(l rank.Ladder, p *domain.PlayerState) playerView {
	skills := make([]skillView, len(p.Skills))
	for i := range p.Skills {
		skills[i] = newSkillView(l, p.Skills[i])
	}
	return playerView{PlayerState: p, Skills: skills}
}

func (s *Server) handleGetLadder(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"tiers":         s.ladder,
		"radiantLevels": rank.RadiantLevels,
	})
}

func (s *Server) handleGetPlayer(w http.ResponseWriter, r *http.Request) {
	player, err := s.playerSvc.GetOrCreate(r.Context(), chi.URLParam(r, "playerID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newPlayerView(s.ladder, player))
}

func (s *Server) handleSyncPlayer(w http.ResponseWriter, r *http.Request) {
	var state domain.PlayerState
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if state.ID != chi.URLParam(r, "playerID") {
		respondError(w, http.StatusBadRequest, "player id mismatch")
		return
	}

	stored, err := s.playerSvc.Sync(r.Context(), &state)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, newPlayerView(s.ladder, stored))
}

func (s *Server) handleCreateSkill(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Icon        string `json:"icon"`
		Color       string `json:"color"`
		Area        string `json:"area"`
		InitialTier string `json:"initialTier"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	skill, err := s.skillSvc.Create(r.Context(), chi.URLParam(r, "playerID"), service.NewSkillInput{
		Name:        req.Name,
		Icon:        req.Icon,
		Color:       req.Color,
		Area:        req.Area,
		InitialTier: req.InitialTier,
	})
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, newSkillView(s.ladder, *skill))
}

func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	err := s.skillSvc.Delete(r.Context(), chi.URLParam(r, "playerID"), chi.URLParam(r, "skillID"))
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleStartBlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SkillID        string `json:"skillId"`
		PlannedMinutes int    `json:"plannedMinutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	block, err := s.blockSvc.Start(r.Context(), chi.URLParam(r, "playerID"), req.SkillID, req.PlannedMinutes)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, block)
}

func (s *Server) handleCancelBlock(w http.ResponseWriter, r *http.Request) {
	if err := s.blockSvc.Cancel(r.Context(), chi.URLParam(r, "playerID")); err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEndBlock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Result string `json:"result"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	skill, event, err := s.blockSvc.End(r.Context(), chi.URLParam(r, "playerID"), req.Result, req.Notes)
	if err != nil {
		s.respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"skill": newSkillView(s.ladder, *skill),
		"event": event,
	})
}

// respondServiceError maps service and engine errors onto status codes.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrSkillNotFound) || errors.Is(err, sql.ErrNoRows):
		respondError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrInvalidOutcome) ||
		errors.Is(err, domain.ErrUnknownTier) ||
		errors.Is(err, service.ErrInvalidDuration):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrBlockInProgress) || errors.Is(err, service.ErrNoActiveBlock):
		respondError(w, http.StatusConflict, err.Error())
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

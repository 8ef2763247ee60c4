package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"vaultfire/internal/engine"
	"vaultfire/internal/insight"
	"vaultfire/internal/storage"
)

type reflectionView struct {
	User      string           `json:"user"`
	Timestamp time.Time        `json:"timestamp"`
	Content   string           `json:"content"`
	Color     string           `json:"color"`
	XPGain    int              `json:"xp_gain"`
	Analysis  insight.Analysis `json:"analysis"`
	Reactions map[string]int   `json:"reactions,omitempty"`
}

type dataResponse struct {
	Reflections    []reflectionView `json:"reflections"`
	IntegrityScore int              `json:"integrity_score"`
	TraitCloud     map[string]int   `json:"trait_cloud"`
	VaultfireYield float64          `json:"vaultfire_yield"`
}

// handleData is the mirror view: the user's reflections (or every public
// reflection when no user is given) with analysis, integrity and yield.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := strings.TrimSpace(r.URL.Query().Get("user"))

	var refs []storage.Reflection
	var err error
	if user != "" {
		refs, err = s.svc.UserReflections(ctx, user)
	} else {
		var all []storage.Reflection
		all, err = s.svc.Reflections(ctx)
		for _, ref := range all {
			if ref.Public {
				refs = append(refs, ref)
			}
		}
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	reactions, err := s.svc.Reactions(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := dataResponse{Reflections: []reflectionView{}, TraitCloud: map[string]int{}}
	analyses := make([]insight.Analysis, 0, len(refs))
	for _, ref := range refs {
		a := s.svc.Analyzer().Analyze(ref.Content)
		analyses = append(analyses, a)
		for _, t := range a.Traits {
			resp.TraitCloud[t]++
		}
		resp.Reflections = append(resp.Reflections, reflectionView{
			User:      ref.User,
			Timestamp: ref.Timestamp,
			Content:   ref.Content,
			Color:     ref.Color,
			XPGain:    ref.XPGain,
			Analysis:  a,
			Reactions: reactions[ref.Timestamp.Format(time.RFC3339Nano)],
		})
	}
	resp.IntegrityScore = engine.IntegrityOf(analyses)
	resp.VaultfireYield = insight.PassiveYield{}.SimulateYield(resp.IntegrityScore, len(refs))

	if user != "" {
		if sig, err := s.svc.LastSignal(ctx, user); err == nil && sig != nil {
			resp.VaultfireYield = sig.Yield
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type userResponse struct {
	ID       string                `json:"id"`
	Record   *storage.UserRecord   `json:"record"`
	Rank     engine.Rank           `json:"rank"`
	NextRank *engine.Rank          `json:"next_rank,omitempty"`
	Progress float64               `json:"progress"`
	Signal   *storage.RewardSignal `json:"signal,omitempty"`
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, err := s.svc.User(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if u == nil {
		notFound(w, "user "+id+" not found")
		return
	}
	sig, err := s.svc.LastSignal(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	cur, next := engine.RankInfo(u.XP)
	writeJSON(w, http.StatusOK, userResponse{
		ID:       id,
		Record:   u,
		Rank:     cur,
		NextRank: next,
		Progress: engine.ProgressWithinRank(u.XP),
		Signal:   sig,
	})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			s.writeError(w, engine.ValidationError{Field: "n", Message: "must be a non-negative integer"})
			return
		}
		n = parsed
	}
	board, err := s.svc.Leaderboard(r.Context(), n)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, board)
}

func (s *Server) handleRituals(w http.ResponseWriter, r *http.Request) {
	log, err := s.svc.RitualLog(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if log == nil {
		log = []storage.RitualEvent{}
	}
	writeJSON(w, http.StatusOK, log)
}

type reactionRequest struct {
	Timestamp string `json:"timestamp"`
	Emoji     string `json:"emoji"`
}

type reactionResponse struct {
	Timestamp string `json:"timestamp"`
	Emoji     string `json:"emoji"`
	Count     int    `json:"count"`
}

func (s *Server) handleReaction(w http.ResponseWriter, r *http.Request) {
	var req reactionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		s.writeError(w, engine.ValidationError{Message: "invalid JSON body"})
		return
	}
	count, err := s.svc.AddReaction(r.Context(), req.Timestamp, req.Emoji)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, reactionResponse{Timestamp: req.Timestamp, Emoji: req.Emoji, Count: count})
}

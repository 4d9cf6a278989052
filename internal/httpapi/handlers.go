package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/DoyleJ11/td-sync/internal/engine"
	"github.com/DoyleJ11/td-sync/internal/protocol"
)

// Match is the part of the game the HTTP surface drives.
type Match interface {
	Snapshot() engine.View
	Start(pid engine.PlayerID) error
	Stop()
}

type matchView struct {
	MatchID   string                 `json:"match_id"`
	State     string                 `json:"state"`
	Terrain   string                 `json:"terrain"`
	Players   []protocol.PlayerState `json:"players"`
	Teams     []protocol.TeamState   `json:"teams"`
	Towers    int                    `json:"towers"`
	Creatures int                    `json:"creatures"`
}

func GetMatch(m Match) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v := m.Snapshot()
		out := matchView{
			MatchID:   v.MatchID,
			State:     v.State.String(),
			Terrain:   v.Terrain,
			Players:   protocol.RosterOf(v.Players).Players,
			Towers:    len(v.Towers),
			Creatures: len(v.Creatures),
		}
		for _, t := range v.Teams {
			out.Teams = append(out.Teams, protocol.TeamStateOf(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func StartMatch(m Match, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.Start(engine.AdminID); err != nil {
			status := http.StatusConflict
			if !errors.Is(err, engine.ErrMatchInProgress) && !errors.Is(err, engine.ErrMatchOver) {
				status = http.StatusInternalServerError
			}
			http.Error(w, err.Error(), status)
			return
		}
		log.Info("match started by admin", zap.String("remote", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}

func StopMatch(m Match, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m.Stop()
		log.Info("match stopped by admin", zap.String("remote", r.RemoteAddr))
		w.WriteHeader(http.StatusNoContent)
	}
}

// RequireAdmin lets a request through only when X-Admin-Token matches the bcrypt hash.
func RequireAdmin(hash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get("X-Admin-Token")
			if token == "" || bcrypt.CompareHashAndPassword(hash, []byte(token)) != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/server/slots"
)

// pathID parses a positive int64 path segment.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("%w: invalid %s", common.ErrorValidation, name)
	}
	return id, nil
}

// queryInt parses an optional positive integer query parameter.
func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", common.ErrorValidation, name)
	}
	return v, nil
}

func (s *Server) handleChestList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	category, err := slots.ParseCategory(r.URL.Query().Get("receiverType"))
	if err != nil {
		writeError(w, err)
		return
	}

	page, err := queryInt(r, "page", 1)
	if err != nil {
		writeError(w, err)
		return
	}
	size, err := queryInt(r, "size", slots.PageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.chests.List(r.Context(), userID, category,
		r.URL.Query().Get("rocketName"), page, size,
		r.URL.Query().Get("sortBy"), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "chest list", result)
}

func (s *Server) handleChestDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}
	chestID, err := pathID(r, "chestID")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := s.chests.Detail(r.Context(), userID, chestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "chest detail", detail)
}

func (s *Server) handleChestMove(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}
	chestID, err := pathID(r, "chestID")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		Location string `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", common.ErrorValidation))
		return
	}

	if err := s.chests.Move(r.Context(), userID, chestID, req.Location); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "chest moved", map[string]string{"location": req.Location})
}

func (s *Server) handleChestToggleVisibility(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}
	chestID, err := pathID(r, "chestID")
	if err != nil {
		writeError(w, err)
		return
	}

	isPublic, err := s.chests.ToggleVisibility(r.Context(), userID, chestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "visibility toggled", map[string]bool{"isPublic": isPublic})
}

func (s *Server) handleChestDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}
	chestID, err := pathID(r, "chestID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.chests.SoftDelete(r.Context(), userID, chestID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "chest deleted", nil)
}

func (s *Server) handleChestRestore(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}
	chestID, err := pathID(r, "chestID")
	if err != nil {
		writeError(w, err)
		return
	}

	location, err := s.chests.Restore(r.Context(), userID, chestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "chest restored", map[string]string{"location": location})
}

package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/melly/timerocket/internal/common"
)

func (s *Server) handleDisplayList(w http.ResponseWriter, r *http.Request) {
	profileUserID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}

	chests, err := s.display.GetDisplayList(r.Context(), profileUserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "display list", chests)
}

func (s *Server) handleDisplayDetail(w http.ResponseWriter, r *http.Request) {
	profileUserID, err := pathID(r, "userID")
	if err != nil {
		writeError(w, err)
		return
	}
	chestID, err := pathID(r, "chestID")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := s.display.GetDisplayDetail(r.Context(), profileUserID, chestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "display detail", detail)
}

func (s *Server) handleDisplayMove(w http.ResponseWriter, r *http.Request) {
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
		DisplayLocation int64 `json:"displayLocation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", common.ErrorValidation))
		return
	}

	if err := s.display.MoveLocation(r.Context(), userID, chestID, req.DisplayLocation); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "display location moved", map[string]int64{"displayLocation": req.DisplayLocation})
}

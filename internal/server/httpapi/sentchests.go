package httpapi

import (
	"net/http"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/server/slots"
)

func (s *Server) handleSentList(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
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

	result, err := s.sent.List(r.Context(), userID,
		r.URL.Query().Get("rocketName"), page, size,
		r.URL.Query().Get("sortBy"), r.URL.Query().Get("dir"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "sent chest list", result)
}

func (s *Server) handleSentDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}
	sentChestID, err := pathID(r, "sentChestID")
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := s.sent.Detail(r.Context(), userID, sentChestID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "sent chest detail", detail)
}

func (s *Server) handleSentDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}
	sentChestID, err := pathID(r, "sentChestID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.sent.SoftDelete(r.Context(), userID, sentChestID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "sent chest deleted", nil)
}

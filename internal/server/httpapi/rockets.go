package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/services"
	"github.com/melly/timerocket/internal/server/slots"
)

// maxSendBodyBytes caps the in-memory part of a multipart send request.
const maxSendBodyBytes = 32 << 20

type rocketDraftRequest struct {
	Name          string `json:"name"`
	Design        string `json:"design"`
	Content       string `json:"content"`
	ReceiverType  string `json:"receiverType"`
	ReceiverEmail string `json:"receiverEmail"`
	LockExpiredAt string `json:"lockExpiredAt"`
}

func (req rocketDraftRequest) toDraft() (models.RocketDraft, error) {
	category, err := slots.ParseCategory(req.ReceiverType)
	if err != nil {
		return models.RocketDraft{}, err
	}

	var lockExpiredAt time.Time
	if req.LockExpiredAt != "" {
		lockExpiredAt, err = time.Parse(time.RFC3339, req.LockExpiredAt)
		if err != nil {
			return models.RocketDraft{}, fmt.Errorf("%w: lockExpiredAt must be RFC 3339", common.ErrorValidation)
		}
	}

	return models.RocketDraft{
		Name:          req.Name,
		Design:        req.Design,
		Content:       req.Content,
		ReceiverType:  category,
		ReceiverEmail: req.ReceiverEmail,
		LockExpiredAt: lockExpiredAt,
	}, nil
}

// handleRocketSend accepts a multipart form: a "rocket" JSON part with the
// draft fields plus any number of "files" parts.
func (s *Server) handleRocketSend(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	if err := r.ParseMultipartForm(maxSendBodyBytes); err != nil {
		writeError(w, fmt.Errorf("%w: malformed multipart body", common.ErrorValidation))
		return
	}

	var req rocketDraftRequest
	if err := json.Unmarshal([]byte(r.FormValue("rocket")), &req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed rocket part", common.ErrorValidation))
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		writeError(w, err)
		return
	}

	var uploads []services.FileUpload
	for i, header := range r.MultipartForm.File["files"] {
		file, err := header.Open()
		if err != nil {
			writeError(w, fmt.Errorf("%w: unreadable file part %q", common.ErrorValidation, header.Filename))
			return
		}
		defer file.Close()

		uploads = append(uploads, services.FileUpload{
			OriginalName: header.Filename,
			ContentType:  header.Header.Get("Content-Type"),
			Size:         header.Size,
			Order:        i + 1,
			Body:         file,
		})
	}

	rocketID, err := s.rockets.Send(r.Context(), userID, draft, uploads)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, "rocket sent", map[string]int64{"rocketId": rocketID})
}

func (s *Server) handleRocketSaveTemp(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	var req rocketDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: malformed request body", common.ErrorValidation))
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.rockets.SaveTemp(r.Context(), userID, draft); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "rocket draft saved", nil)
}

func (s *Server) handleRocketGetTemp(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}

	rocket, err := s.rockets.GetTemp(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "rocket draft", rocket)
}

func (s *Server) handleRocketUnlock(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, common.ErrorUnauthorized)
		return
	}
	rocketID, err := pathID(r, "rocketID")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.rockets.Unlock(r.Context(), userID, rocketID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, "rocket unlocked", nil)
}

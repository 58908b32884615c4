package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/types"
)

// usageWindow is the period reported by the usage endpoint.
const usageWindow = time.Hour

// usageReport is the data of GET /api/v1/usage.
type usageReport struct {
	Used          int `json:"used"`
	Limit         int `json:"limit"`
	WindowSeconds int `json:"window_seconds"`
}

// handleListCVs handles GET /api/v1/cvs.
func (s *Server) handleListCVs(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	list, err := s.db.ListCVs(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, list)
}

// handleSaveCV handles POST /api/v1/cvs. A request with an id updates that CV.
func (s *Server) handleSaveCV(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	var req types.SaveCVRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, r, err)
		return
	}

	doc := cv.Normalize(req.CVData, s.ids)
	data, err := json.Marshal(doc)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("failed to encode CV: %w", err))
		return
	}

	record := &db.SavedCV{
		UserID:    userID,
		Title:     savedTitle(req.Title, doc),
		CVData:    data,
		ThemeData: req.ThemeData,
	}
	status := http.StatusCreated
	if req.ID != "" {
		record.ID = uuid.MustParse(req.ID)
		status = http.StatusOK
	}

	saved, err := s.db.SaveCV(r.Context(), record)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("cv saved", zap.String("cv_id", saved.ID.String()), zap.String("user_id", userID.String()))
	s.writeSuccess(w, status, saved)
}

// handleGetCV handles GET /api/v1/cvs/{id}.
func (s *Server) handleGetCV(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	saved, err := s.db.GetCV(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, saved)
}

// handleDeleteCV handles DELETE /api/v1/cvs/{id}.
func (s *Server) handleDeleteCV(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.db.DeleteCV(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, map[string]string{"message": "CV deleted"})
}

// handleUsage handles GET /api/v1/usage.
func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())
	used, err := s.db.CountUsageSince(r.Context(), &userID, "", time.Now().Add(-usageWindow))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeSuccess(w, http.StatusOK, usageReport{
		Used:          used,
		Limit:         s.cfg.RateLimit,
		WindowSeconds: int(usageWindow.Seconds()),
	})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, &ErrValidation{Field: "id", Message: "must be a UUID"}
	}
	return id, nil
}

// savedTitle picks the stored title: the requested one, else one derived from the document.
func savedTitle(title string, doc *types.CVData) string {
	if title = strings.TrimSpace(title); title != "" {
		return title
	}
	if name := strings.TrimSpace(doc.PersonalInfo.Name); name != "" {
		return name + " CV"
	}
	return "Untitled CV"
}

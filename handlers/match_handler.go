package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path"
	"time"

	"github.com/splatseries/bracket-system/middleware"
	"github.com/splatseries/bracket-system/services"
	"github.com/splatseries/bracket-system/storage"
)

type MatchHandler struct {
	views    services.MatchViewService
	scores   services.ScoreService
	casts    services.CastService
	uploader storage.FileUploader
}

func NewMatchHandler(
	views services.MatchViewService,
	scores services.ScoreService,
	casts services.CastService,
	uploader storage.FileUploader,
) *MatchHandler {
	return &MatchHandler{
		views:    views,
		scores:   scores,
		casts:    casts,
		uploader: uploader,
	}
}

func (h *MatchHandler) GetMatchDetail(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	detail, err := h.views.GetMatchDetail(r.Context(), tournamentID, matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": detail}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// HandleMatchAction receives the action envelope and routes it to the
// score engine or the cast coordinator by action type.
func (h *MatchHandler) HandleMatchAction(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	user, err := middleware.CurrentUser(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var action services.MatchAction
	if err := readJSON(w, r, &action); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if action.Type == "" {
		badRequestResponse(w, r, errors.New("action type is required"))
		return
	}

	var result *services.ActionResult
	switch action.Type {
	case services.ActionLock, services.ActionUnlock, services.ActionSetAsCasted:
		result, err = h.casts.HandleAction(r.Context(), user, tournamentID, matchID, action)
	default:
		result, err = h.scores.HandleAction(r.Context(), user, tournamentID, matchID, action)
	}
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadScreenshot stores a result proof image and returns its public
// URL. Any authenticated user on the match page may submit one.
func (h *MatchHandler) UploadScreenshot(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	file, header, err := r.FormFile("screenshot")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		badRequestResponse(w, r, errors.New("content type required"))
		return
	}

	key := fmt.Sprintf("matches/%d/screenshots/%d-%d%s",
		matchID, userID, time.Now().UnixNano(), path.Ext(header.Filename))

	uploaded, err := h.uploader.Upload(r.Context(), key, contentType, file)
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	response := jsonResponse{
		"key": uploaded.Key,
		"url": h.uploader.GetPublicURL(uploaded.Key),
	}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"habitNestAPI/internal/types/affirmation"
	"habitNestAPI/middleware"
	"habitNestAPI/services"
)

type AffirmationHandler struct {
	affirmationService *services.AffirmationService
}

func NewAffirmationHandler(affirmationService *services.AffirmationService) *AffirmationHandler {
	return &AffirmationHandler{
		affirmationService: affirmationService,
	}
}

func (h *AffirmationHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	affirmations, err := h.affirmationService.GetCatalog(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if affirmations == nil {
		affirmations = []*affirmation.Affirmation{}
	}
	respondWithJSON(w, http.StatusOK, affirmations)
}

func (h *AffirmationHandler) GetDaily(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	daily, err := h.affirmationService.GetDaily(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, daily)
}

func (h *AffirmationHandler) CreateAffirmation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req affirmation.CreateAffirmationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.affirmationService.CreateAffirmation(ctx, clerkID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAffirmationLimitReached):
			respondWithError(w, http.StatusForbidden, err.Error())
		case strings.Contains(err.Error(), "required"):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to create affirmation")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *AffirmationHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	favorites, err := h.affirmationService.GetFavorites(ctx, clerkID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if favorites == nil {
		favorites = []*affirmation.FavoriteWithText{}
	}
	respondWithJSON(w, http.StatusOK, favorites)
}

func (h *AffirmationHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req affirmation.AddFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AffirmationID == "" {
		respondWithError(w, http.StatusBadRequest, "affirmation_id is required")
		return
	}

	favorite, err := h.affirmationService.AddFavorite(ctx, clerkID, req.AffirmationID)
	if err != nil {
		if strings.Contains(err.Error(), "invalid affirmation id") {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, favorite)
}

func (h *AffirmationHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	if err := h.affirmationService.RemoveFavorite(ctx, clerkID, mux.Vars(r)["id"]); err != nil {
		if strings.Contains(err.Error(), "not found") || strings.Contains(err.Error(), "invalid affirmation id") {
			respondWithError(w, http.StatusNotFound, "Favorite not found")
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Favorite removed"})
}

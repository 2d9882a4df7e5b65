package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"habitNestAPI/middleware"
	"habitNestAPI/services"
)

type ProgressHandler struct {
	progressService *services.ProgressService
}

func NewProgressHandler(progressService *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{
		progressService: progressService,
	}
}

// GetProgress returns stored streak counters and the badge catalog with
// earned flags. It never recalculates.
func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	p, err := h.progressService.GetProgress(ctx, clerkID)
	if err != nil {
		log.Printf("GetProgress Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to load progress")
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

// Calculate triggers a full streak and badge recalculation for the
// authenticated user. The newly awarded badges in the response drive the
// client's celebration animation.
func (h *ProgressHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	result, err := h.progressService.Recalculate(ctx, clerkID)
	if err != nil {
		log.Printf("Calculate Handler: Service error: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to recalculate progress")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

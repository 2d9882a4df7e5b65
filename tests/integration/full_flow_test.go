package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"habitNestAPI/handlers"
	"habitNestAPI/internal/progress"
	"habitNestAPI/internal/types/habit"
	"habitNestAPI/middleware"
	"habitNestAPI/services"
	"habitNestAPI/tests/helpers"
)

// TestFullHabitFlow simulates the complete flow: sign-up via webhook,
// building a habit list up to the free cap, upgrading, checking off the
// day and recalculating progress.
func TestFullHabitFlow(t *testing.T) {
	// Setup
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	userService := services.NewUserService(pool)
	habitService := services.NewHabitService(pool)
	progressService := services.NewProgressService(pool)

	userHandler := handlers.NewUserHandler(userService)
	habitHandler := handlers.NewHabitHandler(habitService)
	progressHandler := handlers.NewProgressHandler(progressService)
	webhookHandler := handlers.NewWebhookHandler(userService)

	os.Setenv("CLERK_WEBHOOK_SECRET", "")
	defer os.Unsetenv("CLERK_WEBHOOK_SECRET")

	clerkID := "user_test_" + time.Now().Format("20060102150405")

	authed := func(req *http.Request) *http.Request {
		ctx := context.WithValue(req.Context(), middleware.ClerkIDKey, clerkID)
		return req.WithContext(ctx)
	}

	// Step 1: User signs up via Clerk webhook
	t.Log("Step 1: User signs up")

	createPayload := helpers.MockClerkWebhookPayload("user.created", clerkID)
	req1 := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(createPayload))
	rr1 := httptest.NewRecorder()

	webhookHandler.HandleClerkWebhook(rr1, req1)
	require.Equal(t, http.StatusOK, rr1.Code, "Webhook should succeed")

	// Step 2: User fills the free tier with five habits
	t.Log("Step 2: Create habits up to the free cap")

	var firstHabit habit.Habit
	for i := 1; i <= 5; i++ {
		body := strings.NewReader(fmt.Sprintf(`{"title": "Habit %d"}`, i))
		req := authed(httptest.NewRequest(http.MethodPost, "/api/v1/habits", body))
		req.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()

		habitHandler.CreateHabit(rr, req)
		require.Equal(t, http.StatusCreated, rr.Code)

		if i == 1 {
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &firstHabit))
		}
	}

	// Step 3: The sixth habit is rejected on the free tier
	t.Log("Step 3: Sixth habit hits the free cap")

	req2 := authed(httptest.NewRequest(http.MethodPost, "/api/v1/habits", strings.NewReader(`{"title": "One too many"}`)))
	req2.Header.Set("Content-Type", "application/json")
	rr2 := httptest.NewRecorder()

	habitHandler.CreateHabit(rr2, req2)
	assert.Equal(t, http.StatusForbidden, rr2.Code)

	// Step 4: User upgrades to pro and the cap lifts
	t.Log("Step 4: Upgrade to pro")

	req3 := authed(httptest.NewRequest(http.MethodPut, "/api/v1/user/subscription", strings.NewReader(`{"tier": "pro"}`)))
	req3.Header.Set("Content-Type", "application/json")
	rr3 := httptest.NewRecorder()

	userHandler.UpdateSubscription(rr3, req3)
	require.Equal(t, http.StatusOK, rr3.Code)

	req4 := authed(httptest.NewRequest(http.MethodPost, "/api/v1/habits", strings.NewReader(`{"title": "Sixth habit"}`)))
	req4.Header.Set("Content-Type", "application/json")
	rr4 := httptest.NewRecorder()

	habitHandler.CreateHabit(rr4, req4)
	assert.Equal(t, http.StatusCreated, rr4.Code)

	// Step 5: User checks off the first habit for today
	t.Log("Step 5: Toggle today's completion")

	today := time.Now().Format("2006-01-02")
	toggleBody := strings.NewReader(fmt.Sprintf(`{"date": "%s", "completed": true}`, today))
	req5 := authed(httptest.NewRequest(http.MethodPost, "/api/v1/habits/"+firstHabit.ID.String()+"/toggle", toggleBody))
	req5.Header.Set("Content-Type", "application/json")
	req5 = mux.SetURLVars(req5, map[string]string{"id": firstHabit.ID.String()})
	rr5 := httptest.NewRecorder()

	habitHandler.ToggleCompletion(rr5, req5)
	require.Equal(t, http.StatusOK, rr5.Code)

	// Step 6: Client asks for a recalculation after the toggle
	t.Log("Step 6: Recalculate progress")

	req6 := authed(httptest.NewRequest(http.MethodPost, "/api/v1/progress/calculate", nil))
	rr6 := httptest.NewRecorder()

	progressHandler.Calculate(rr6, req6)
	require.Equal(t, http.StatusOK, rr6.Code)

	var result progress.RecalculateResponse
	require.NoError(t, json.Unmarshal(rr6.Body.Bytes(), &result))

	// Only one of six habits is done today, so no streak yet.
	assert.Equal(t, 0, result.CurrentStreak)
	assert.Equal(t, 1, result.TotalCompletions)

	// Step 7: Stored progress matches what the recalculation returned
	t.Log("Step 7: Read back stored progress")

	req7 := authed(httptest.NewRequest(http.MethodGet, "/api/v1/progress", nil))
	rr7 := httptest.NewRecorder()

	progressHandler.GetProgress(rr7, req7)
	require.Equal(t, http.StatusOK, rr7.Code)

	var stored progress.ProgressResponse
	require.NoError(t, json.Unmarshal(rr7.Body.Bytes(), &stored))
	assert.Equal(t, result.CurrentStreak, stored.CurrentStreak)
	assert.Equal(t, result.TotalCompletions, stored.TotalCompletions)

	// Step 8: User deletes the account
	t.Log("Step 8: Delete account")

	req8 := authed(httptest.NewRequest(http.MethodDelete, "/api/v1/user/delete-account", nil))
	rr8 := httptest.NewRecorder()

	userHandler.DeleteAccount(rr8, req8)
	assert.Equal(t, http.StatusOK, rr8.Code)

	ctx := context.Background()
	_, err := userService.GetUserByClerkID(ctx, clerkID)
	assert.Error(t, err, "User should be deleted")
}

package routes

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/models"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/services"
	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/utils"
)

const testSecret = "test-secret"

type stubVision struct {
	result models.VisionResult
}

func (s stubVision) DescribeMeal(_ context.Context, _ []byte) (models.VisionResult, error) {
	return s.result, nil
}

type stubReasoner struct {
	result models.MacroResult
}

func (s stubReasoner) EstimateMacros(_ context.Context, _ string) (models.MacroResult, error) {
	return s.result, nil
}

type testEnv struct {
	router *gin.Engine
	store  services.MealStore
	token  string
}

func newTestEnv(t *testing.T, vision services.VisionCapability, reasoner services.ReasoningCapability) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := services.NewMemoryMealStore()
	estimator := services.NewEstimationService(vision, reasoner, store, services.EstimationOptions{AutoLogThreshold: 60})
	router := SetupRouter(Deps{
		JWTSecret: testSecret,
		Estimator: estimator,
		Store:     store,
		Agg:       services.NewAggregator(store),
		Goals:     services.NewMemoryGoalStore(),
	})

	token, err := utils.GenerateToken("owner-1", testSecret)
	require.NoError(t, err)
	return &testEnv{router: router, store: store, token: token}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.token)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthIsOpen(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nutrition/meals", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/nutrition/meals", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAppendListDeleteRoundTrip(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})

	w := env.do(t, http.MethodPost, "/api/v1/nutrition/meals", gin.H{
		"label": "lunch",
		"items": []gin.H{{"name": "chicken bowl", "calories": 520, "protein_g": -8}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody(t, w)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	items := created["items"].([]any)
	first := items[0].(map[string]any)
	assert.Equal(t, float64(0), first["protein_g"], "negative macros floor at zero")

	w = env.do(t, http.MethodGet, "/api/v1/nutrition/meals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	listed := decodeBody(t, w)
	assert.Len(t, listed["meals"].([]any), 1)

	w = env.do(t, http.MethodDelete, "/api/v1/nutrition/meals/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["removed"])

	// Deleting an already-gone record reports removed=false, not an error.
	w = env.do(t, http.MethodDelete, "/api/v1/nutrition/meals/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["removed"])
}

func TestAppendFlatEstimateShape(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})

	w := env.do(t, http.MethodPost, "/api/v1/nutrition/meals", gin.H{
		"meal_name":  "Chicken and rice",
		"calories":   600,
		"protein_g":  45,
		"carbs_g":    70,
		"fat_g":      12,
		"source":     models.SourcePhotoEstimate,
		"confidence": 55,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decodeBody(t, w)
	assert.Equal(t, models.SourcePhotoEstimate, created["source"])
	items := created["items"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Chicken and rice", items[0].(map[string]any)["name"])
	assert.Equal(t, float64(600), items[0].(map[string]any)["calories"])
}

func TestAppendRejectsEmptyMeal(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})
	w := env.do(t, http.MethodPost, "/api/v1/nutrition/meals", gin.H{"label": "nothing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDaySummaryWithGoals(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})

	w := env.do(t, http.MethodPut, "/api/v1/user/goals", gin.H{
		"calories": 2000, "protein_g": 150, "carbs_g": 250, "fat_g": 70,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/nutrition/meals", gin.H{
		"items": []gin.H{{"name": "eggs", "calories": 200, "protein_g": 18}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/nutrition/daily", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	totals := body["totals"].(map[string]any)
	assert.Equal(t, float64(200), totals["calories"])
	remaining := body["remaining"].(map[string]any)
	assert.Equal(t, float64(1800), remaining["calories"])
	assert.Equal(t, float64(132), remaining["protein_g"])
	assert.Len(t, body["recentMeals"].([]any), 1)
}

func TestDaySummaryIsStableAcrossReads(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})
	w := env.do(t, http.MethodPost, "/api/v1/nutrition/meals", gin.H{
		"items": []gin.H{{"name": "eggs", "calories": 200}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	first := decodeBody(t, env.do(t, http.MethodGet, "/api/v1/nutrition/daily", nil))
	second := decodeBody(t, env.do(t, http.MethodGet, "/api/v1/nutrition/daily", nil))
	assert.Equal(t, first["totals"], second["totals"])
}

func TestHistoryReturnsRequestedWindow(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})
	w := env.do(t, http.MethodGet, "/api/v1/nutrition/history?days=3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decodeBody(t, w)["history"].([]any)
	assert.Len(t, history, 3)

	w = env.do(t, http.MethodGet, "/api/v1/nutrition/history?days=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResetDayEndpoint(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{})
	w := env.do(t, http.MethodPost, "/api/v1/nutrition/meals", gin.H{
		"items": []gin.H{{"name": "eggs", "calories": 200}},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/nutrition/reset-day", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decodeBody(t, w)["removed"])

	w = env.do(t, http.MethodGet, "/api/v1/nutrition/meals", nil)
	assert.Len(t, decodeBody(t, w)["meals"].([]any), 0)
}

func TestEstimateTextEndpoint(t *testing.T) {
	env := newTestEnv(t, stubVision{}, stubReasoner{result: models.MacroResult{
		MealName: "Eggs and toast", Calories: 320, Protein: 18, Carbs: 28, Fat: 14,
	}})

	w := env.do(t, http.MethodPost, "/api/v1/nutrition/estimate", gin.H{"text": "2 eggs and toast"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(320), body["calories"])
	assert.Equal(t, false, body["auto_logged"])

	w = env.do(t, http.MethodPost, "/api/v1/nutrition/estimate", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func photoB64(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestEstimatePhotoEndpointGatesOnConfidence(t *testing.T) {
	reasoner := stubReasoner{result: models.MacroResult{MealName: "Salad", Calories: 150}}

	// Low clarity: estimate comes back unpersisted.
	env := newTestEnv(t, stubVision{result: models.VisionResult{
		IdentifiedFoods: []string{"salad"}, Clarity: 40,
	}}, reasoner)
	w := env.do(t, http.MethodPost, "/api/v1/nutrition/estimate-photo", gin.H{
		"image_b64": fmt.Sprintf("data:image/jpeg;base64,%s", photoB64(t)),
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, false, body["auto_logged"])
	meals, err := env.store.List(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, meals)

	// High clarity: auto-logged in the same call.
	env = newTestEnv(t, stubVision{result: models.VisionResult{
		IdentifiedFoods: []string{"salad"}, Clarity: 85,
	}}, reasoner)
	w = env.do(t, http.MethodPost, "/api/v1/nutrition/estimate-photo", gin.H{
		"image_b64": photoB64(t), "label": "lunch",
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = decodeBody(t, w)
	assert.Equal(t, true, body["auto_logged"])
	assert.NotEmpty(t, body["meal_id"])
	meals, err = env.store.List(context.Background(), "owner-1")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, "lunch", meals[0].Label)
}

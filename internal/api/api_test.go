package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pageza/fittrack/backend/config"
	"github.com/pageza/fittrack/backend/internal/middleware"
	"github.com/pageza/fittrack/backend/internal/models"
	"github.com/pageza/fittrack/backend/internal/service"
	"github.com/pageza/fittrack/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const mealOutput = "```json\n" + `{"calories": 450, "protein": "20", "carbs": 50, "fat": 15, "analysis": "balanced", "watchouts": "", "Tips": "add greens", "benifits": "protein"}` + "\n```"

const workoutOutput = `{"calorie_burned": 300, "workout_suggestion": "<p>good</p>", "muscle_trained": ["Quads", "glutes", "quads"]}`

var testNow = time.Date(2024, 5, 8, 12, 0, 0, 0, time.UTC)

type apiFixture struct {
	router  *gin.Engine
	db      *gorm.DB
	llm     *testhelpers.FakeLLM
	drafts  *testhelpers.MemoryDraftStore
	storage *testhelpers.MockObjectStorage
	hub     *service.RealtimeHub
}

func setupAPITest(t *testing.T) *apiFixture {
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDatabase(t)
	f := &apiFixture{
		db:      db,
		llm:     testhelpers.NewFakeLLM(t, mealOutput),
		drafts:  testhelpers.NewMemoryDraftStore(),
		storage: new(testhelpers.MockObjectStorage),
	}

	now := func() time.Time { return testNow }
	cfg := &config.Config{LLMAPIURL: f.llm.URL, LLMModel: "test-model", LLMTimeout: 5 * time.Second}
	estimator := service.NewEstimatorService(cfg)
	hub := service.NewRealtimeHub()
	f.hub = hub
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	profiles := service.NewProfileService(db)
	diet := service.NewDietService(db, estimator, profiles, f.drafts, hub).WithClock(now)
	workouts := service.NewWorkoutService(db, estimator, profiles, hub).WithClock(now)

	f.router = gin.New()
	f.router.Use(middleware.ErrorHandler())
	RegisterRoutes(f.router, Dependencies{
		DB:       db,
		Auth:     auth,
		Profiles: profiles,
		Diet:     diet,
		Workouts: workouts,
		Reports:  service.NewReportService(diet, workouts, f.storage),
		Hub:      hub,
		Now:      now,
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *apiFixture) signup(t *testing.T, email, username string) string {
	t.Helper()
	w := f.do(t, http.MethodPost, "/signup", "", gin.H{"email": email, "username": username, "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestSignupAndLogin(t *testing.T) {
	f := setupAPITest(t)

	w := f.do(t, http.MethodPost, "/signup", "", gin.H{"email": "Asha@Example.com", "username": "asha", "password": "secret123"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "asha@example.com", user["email"])
	assert.Equal(t, "asha", user["username"])

	w = f.do(t, http.MethodPost, "/signup", "", gin.H{"email": "asha@example.com", "username": "other", "password": "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/signup", "", gin.H{"email": "", "password": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/login", "", gin.H{"email": "asha@example.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["token"])

	w = f.do(t, http.MethodPost, "/login", "", gin.H{"email": "asha@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/login", "", gin.H{"email": "asha@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	f := setupAPITest(t)

	for _, path := range []string{"/diet/week", "/diet/2024-05-08", "/workout/week", "/user/profile"} {
		w := f.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = f.do(t, http.MethodGet, path, "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := f.do(t, http.MethodPost, "/diet/analyze", "", gin.H{"meal_description": "rice"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, int32(0), f.llm.Calls.Load())
}

func TestDietAnalyzeSaveAndSummaries(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	w := f.do(t, http.MethodPost, "/diet/analyze", token, gin.H{"meal_description": "2 rotis with dal"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	nutrition := body["nutrition"].(map[string]interface{})
	assert.Equal(t, 450.0, nutrition["calories"])
	assert.Equal(t, 20.0, nutrition["protein"])
	assert.Equal(t, "add greens", nutrition["Tips"])
	draftID, _ := body["draft_id"].(string)
	require.NotEmpty(t, draftID)

	w = f.do(t, http.MethodPost, "/diet/save", token, gin.H{"draft_id": draftID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, "Diet saved", body["message"])
	entry := body["data"].(map[string]interface{})
	assert.Equal(t, "2 rotis with dal", entry["food"])
	assert.Equal(t, "2024-05-08", entry["date"])
	assert.Equal(t, 0, f.drafts.Len())

	w = f.do(t, http.MethodGet, "/diet/2024-05-08", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	nutrients := body["nutrients"].(map[string]interface{})
	assert.Equal(t, 450.0, nutrients["calories"])
	assert.Equal(t, 20.0, nutrients["protein"])
	assert.Equal(t, 50.0, nutrients["carbs"])
	assert.Equal(t, 15.0, nutrients["fat"])
	assert.Equal(t, "2024-05-08", nutrients["date"])
	assert.Len(t, body["entries"], 1)

	w = f.do(t, http.MethodGet, "/diet/2024-05-08T18:30:00Z", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/diet/week", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body = decode(t, w)
	assert.Equal(t, 450.0, body["totalCaloriesConsumed"])
	assert.Equal(t, 15.0, body["fats"])
	assert.Equal(t, "2024-05-06", body["weekStart"])
	assert.Equal(t, "2024-05-12", body["weekEnd"])
}

func TestDietSaveWithNutrition(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	w := f.do(t, http.MethodPost, "/diet/save", token, gin.H{
		"meal_description": "apple",
		"nutrition":        gin.H{"calories": 95, "carbs": 25},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/diet/2024-05-08", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	nutrients := decode(t, w)["nutrients"].(map[string]interface{})
	assert.Equal(t, 95.0, nutrients["calories"])
	assert.Equal(t, 0.0, nutrients["protein"])

	w = f.do(t, http.MethodPost, "/diet/save", token, gin.H{"meal_description": "apple"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/diet/save", token, gin.H{"nutrition": gin.H{"calories": 95}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDietAnalyzeMalformedOutput(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")
	f.llm.SetContent("I think it is about 400 calories")

	w := f.do(t, http.MethodPost, "/diet/analyze", token, gin.H{"meal_description": "rice"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
	assert.Equal(t, 0, f.drafts.Len())

	f.llm.SetStatus(http.StatusBadGateway)
	w = f.do(t, http.MethodPost, "/diet/analyze", token, gin.H{"meal_description": "rice"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = f.do(t, http.MethodPost, "/diet/analyze", token, gin.H{"meal_description": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEstimatesWithNonFiniteNumbersFail(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	f.llm.SetContent(`{"calories": "NaN", "protein": 10, "analysis": "ok"}`)
	w := f.do(t, http.MethodPost, "/diet/analyze", token, gin.H{"meal_description": "rice"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
	assert.Equal(t, 0, f.drafts.Len())

	f.llm.SetContent(`{"calorie_burned": "Infinity", "workout_suggestion": "ok", "muscle_trained": ["quads"]}`)
	w = f.do(t, http.MethodPost, "/workout", token, gin.H{"workout_description": "squats"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])

	var count int64
	require.NoError(t, f.db.Model(&models.WorkoutEntry{}).Count(&count).Error)
	assert.Zero(t, count)

	w = f.do(t, http.MethodGet, "/workout/week", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["totalCaloriesBurned"])
}

func TestWorkoutLogSingleMuscleString(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	f.llm.SetContent(`{"calorie_burned": 250, "workout_suggestion": "ok", "muscle_trained": "Chest"}`)
	w := f.do(t, http.MethodPost, "/workout", token, gin.H{"workout_description": "push ups"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, []interface{}{"chest"}, decode(t, w)["muscle_trained"])
}

func TestDietDayWithoutEntries(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	w := f.do(t, http.MethodGet, "/diet/2024-05-08", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "No diet found for this date", body["message"])
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])

	w = f.do(t, http.MethodGet, "/diet/yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/diet/week", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["totalCaloriesConsumed"])
}

func TestDietSaveOtherUsersDraft(t *testing.T) {
	f := setupAPITest(t)
	owner := f.signup(t, "asha@example.com", "asha")
	other := f.signup(t, "ravi@example.com", "ravi")

	w := f.do(t, http.MethodPost, "/diet/analyze", owner, gin.H{"meal_description": "idli"})
	require.Equal(t, http.StatusOK, w.Code)
	draftID := decode(t, w)["draft_id"].(string)

	w = f.do(t, http.MethodPost, "/diet/save", other, gin.H{"draft_id": draftID})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 1, f.drafts.Len())

	w = f.do(t, http.MethodPost, "/diet/save", owner, gin.H{"draft_id": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWorkoutLogAndSummaries(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")
	f.llm.SetContent(workoutOutput)

	w := f.do(t, http.MethodPost, "/workout", token, gin.H{"workout_description": "squats 20 min"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "Workout logged", body["message"])
	assert.Equal(t, 300.0, body["calorie_burned"])
	assert.Equal(t, "<p>good</p>", body["workout_suggestion"])
	assert.Equal(t, []interface{}{"quads", "glutes"}, body["muscle_trained"])

	f.llm.SetContent(`{"calorie_burned": "150", "workout_suggestion": "", "muscle_trained": ["Chest"]}`)
	w = f.do(t, http.MethodPost, "/workout", token, gin.H{"workout_description": "pushups"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/workout/2024-05-08", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := decode(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "squats 20 min | pushups", data["workout"])
	assert.Equal(t, 450.0, data["calories"])
	assert.Equal(t, "2024-05-08", data["date"])
	assert.Equal(t, []interface{}{"quads", "glutes", "chest"}, data["muscle_trained"])

	w = f.do(t, http.MethodGet, "/workout/week", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body = decode(t, w)
	assert.Equal(t, 450.0, body["totalCaloriesBurned"])
	assert.Equal(t, []interface{}{"chest", "glutes", "quads"}, body["musclesTrained"])
	assert.Equal(t, map[string]interface{}{"chest": 1.0, "glutes": 1.0, "quads": 1.0}, body["muscleIntensity"])
}

func TestWorkoutDayWithoutEntries(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	w := f.do(t, http.MethodGet, "/workout/2024-05-09", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "No workouts found for this date", body["message"])
	assert.Equal(t, "2024-05-09", body["date"])

	w = f.do(t, http.MethodPost, "/workout", token, gin.H{"workout_description": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileLifecycle(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	w := f.do(t, http.MethodGet, "/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	profile := decode(t, w)["profile"].(map[string]interface{})
	assert.Equal(t, models.DietVegetarian, profile["diet_type"])

	require.NoError(t, f.db.Where("1 = 1").Delete(&models.UserProfile{}).Error)

	w = f.do(t, http.MethodGet, "/user/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	update := gin.H{"name": "Asha", "age": 29, "height_cm": 160, "weight_kg": 55, "gender": "female", "goal": "fat_loss", "activity_level": "very_active", "diet_type": "vegan"}
	w = f.do(t, http.MethodPut, "/user/profile", token, update)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/user/profile", token, update)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	body := decode(t, w)
	assert.NotEmpty(t, body["message"])
	assert.Equal(t, "vegan", body["profile"].(map[string]interface{})["diet_type"])

	w = f.do(t, http.MethodPut, "/user/profile", token, gin.H{"age": 30})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	profile = decode(t, w)["profile"].(map[string]interface{})
	assert.Equal(t, 30.0, profile["age"])
	assert.Equal(t, "vegan", profile["diet_type"])

	w = f.do(t, http.MethodPut, "/user/profile", token, gin.H{"gender": "robot"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReportExport(t *testing.T) {
	f := setupAPITest(t)
	token := f.signup(t, "asha@example.com", "asha")

	f.storage.On("PutObject", mock.Anything, mock.AnythingOfType("string"), mock.Anything, "application/json").Return(nil)
	f.storage.On("GeneratePresignedURL", mock.Anything, mock.AnythingOfType("string"), service.ExportURLTTL).
		Return("https://bucket.example.com/report", nil)

	w := f.do(t, http.MethodPost, "/report/week/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "https://bucket.example.com/report", body["url"])
	assert.Contains(t, body["key"], "2024-05-06.json")

	w = f.do(t, http.MethodGet, "/report/week", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "diet")
}

func TestReportExportWithoutStorage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupTestDatabase(t)
	auth := service.NewAuthService(db, "test-secret", time.Hour)
	estimator := new(testhelpers.MockEstimatorService)
	profiles := service.NewProfileService(db)
	diet := service.NewDietService(db, estimator, profiles, nil, nil)
	workouts := service.NewWorkoutService(db, estimator, profiles, nil)

	router := gin.New()
	RegisterRoutes(router, Dependencies{
		DB: db, Auth: auth, Profiles: profiles, Diet: diet, Workouts: workouts,
		Reports: service.NewReportService(diet, workouts, nil),
	})
	f := &apiFixture{router: router, db: db}
	token := f.signup(t, "asha@example.com", "asha")

	w := f.do(t, http.MethodPost, "/report/week/export", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		service.ErrValidation:         http.StatusBadRequest,
		service.ErrUnauthorized:       http.StatusUnauthorized,
		service.ErrInvalidCredentials: http.StatusUnauthorized,
		service.ErrNotFound:           http.StatusNotFound,
		service.ErrConflict:           http.StatusConflict,
		service.ErrUpstream:           http.StatusInternalServerError,
		service.ErrParse:              http.StatusInternalServerError,
		service.ErrStore:              http.StatusInternalServerError,
		service.ErrUnavailable:        http.StatusServiceUnavailable,
	}
	for err, code := range cases {
		assert.Equal(t, code, statusFor(err), err.Error())
	}
}

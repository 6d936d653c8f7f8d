package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swachh_netra/internal/auth"
	"swachh_netra/internal/events"
	"swachh_netra/internal/middleware"
	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
	"swachh_netra/internal/store"
	"swachh_netra/internal/store/storetest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router   *gin.Engine
	svc      *services.Services
	store    store.Store
	provider *auth.LocalProvider
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	st, _ := storetest.New(t)
	provider := auth.NewLocalProvider(st, "test-secret", time.Hour)
	svc := services.New(services.Deps{Store: st, Auth: provider})
	return &testServer{router: SetupRouter(svc), svc: svc, store: st, provider: provider}
}

func (s *testServer) seedUser(t *testing.T, id string, role models.Role) string {
	t.Helper()
	user := models.User{Email: id + "@example.com", Role: role, DisplayName: id, IsActive: true}
	user.ID = id
	require.NoError(t, s.store.Set(context.Background(), models.CollectionUsers, &user))
	token, err := s.provider.GenerateToken(id, role)
	require.NoError(t, err)
	return token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
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
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func signupBody(email string) gin.H {
	return gin.H{
		"name":            "Asha Verma",
		"email":           email,
		"phone":           "+919876543210",
		"requestedRole":   "contractor",
		"organization":    "Verma Transport",
		"reason":          "Managing collection vehicles for ward 12",
		"password":        "Abcdef1!",
		"confirmPassword": "Abcdef1!",
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/me", "garbage", nil).Code)

	token := s.seedUser(t, "driver-1", models.RoleDriver)
	w := s.do(t, http.MethodGet, "/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "driver-1", user["id"])
	assert.Equal(t, "driver", user["role"])
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	driver := s.seedUser(t, "driver-1", models.RoleDriver)
	admin := s.seedUser(t, "admin-1", models.RoleSwachhAdmin)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/admin/signup-requests", driver, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/contractor/vehicles", driver, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/admin/signup-requests", admin, nil).Code)
}

func TestDeactivatedUserIsRejected(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin-1", models.RoleAdmin)
	driver := s.seedUser(t, "driver-1", models.RoleDriver)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodDelete, "/admin/users/driver-1", admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/me", driver, nil).Code)
}

func TestSignupApprovalAndLogin(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin-1", models.RoleAdmin)

	w := s.do(t, http.MethodPost, "/auth/signup-requests", "", signupBody("asha@example.com"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	request := decode(t, w)["request"].(map[string]interface{})
	requestID := request["id"].(string)
	assert.NotContains(t, w.Body.String(), "Abcdef1!")

	w = s.do(t, http.MethodPost, "/auth/signup-requests", "", signupBody("asha@example.com"))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/admin/signup-requests/"+requestID+"/approve", admin, gin.H{"comments": "ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/admin/signup-requests/"+requestID+"/approve", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "asha@example.com", "password": "Abcdef1!"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode(t, w)["token"].(string)

	w = s.do(t, http.MethodGet, "/contractor/vehicles", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "asha@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRejectRequiresComment(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin-1", models.RoleAdmin)

	w := s.do(t, http.MethodPost, "/auth/signup-requests", "", signupBody("ravi@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)
	requestID := decode(t, w)["request"].(map[string]interface{})["id"].(string)

	w = s.do(t, http.MethodPost, "/admin/signup-requests/"+requestID+"/reject", admin, gin.H{"comments": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/admin/signup-requests/missing", admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestValidationErrorsCarryFields(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/auth/signup-requests", "", gin.H{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	fields := decode(t, w)["fields"].(map[string]interface{})
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestDriverWithoutPlanGetsEmptyDay(t *testing.T) {
	s := newTestServer(t)
	driver := s.seedUser(t, "driver-1", models.RoleDriver)

	w := s.do(t, http.MethodGet, "/driver/assignment/today", driver, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Nil(t, body["assignment"])
	assert.Empty(t, body["feederPoints"])

	w = s.do(t, http.MethodPost, "/driver/trips", driver, gin.H{"feederPointId": "fp-1", "tripNumber": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestFeederPointGeoJSON(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin-1", models.RoleAdmin)

	w := s.do(t, http.MethodPost, "/admin/feeder-points", admin, gin.H{
		"areaName":              "Civil Lines",
		"wardNumber":            "12",
		"kothiName":             "Kothi 4",
		"feederPointName":       "Water Tank Chowk",
		"nearestLandmark":       "Water tank",
		"approximateHouseholds": 120,
		"vehicleTypes":          []string{"tipper"},
		"coordinates":           gin.H{"lat": 21.25, "lng": 81.63},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := decode(t, w)["feederPoint"].(map[string]interface{})["id"].(string)

	w = s.do(t, http.MethodGet, "/feeder-points?format=geojson", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "FeatureCollection", body["type"])
	features := body["features"].([]interface{})
	require.Len(t, features, 1)
	feature := features[0].(map[string]interface{})
	assert.Equal(t, id, feature["id"])
	assert.Equal(t, "Water Tank Chowk", feature["properties"].(map[string]interface{})["name"])
	geometry := feature["geometry"].(map[string]interface{})
	assert.Equal(t, []interface{}{81.63, 21.25}, geometry["coordinates"])

	w = s.do(t, http.MethodGet, "/admin/feeder-points/"+id+"/drivers", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Empty(t, decode(t, w)["data"])

	w = s.do(t, http.MethodGet, "/feeder-points/nearby?lat=21.25&lng=81.63&radiusKm=1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["data"], 1)
}

func TestCORSPreflight(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the router")
	})
	handler := middleware.EnableCORS([]string{"https://dash.example.com"})(next)

	req := httptest.NewRequest(http.MethodOptions, "/admin/users", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://dash.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/admin/users", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDashboardStreamsChanges(t *testing.T) {
	s := newTestServer(t)
	admin := s.seedUser(t, "admin-1", models.RoleAdmin)

	srv := httptest.NewServer(s.router)
	defer srv.Close()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/dashboard?token=" + admin

	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/dashboard", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool {
		return s.svc.Hub().Subscribers(events.AdminTopic) == 1
	}, time.Second, 10*time.Millisecond)

	w := s.do(t, http.MethodPost, "/auth/signup-requests", "", signupBody("asha@example.com"))
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var change events.Change
	require.NoError(t, conn.ReadJSON(&change))
	assert.Equal(t, models.CollectionSignupRequests, change.Collection)
	assert.Equal(t, events.Created, change.Type)

	conn.Close()
	require.Eventually(t, func() bool {
		return s.svc.Hub().Subscribers(events.AdminTopic) == 0
	}, time.Second, 10*time.Millisecond)
}

func TestDashboardTokenNotLogged(t *testing.T) {
	var buf bytes.Buffer
	std := logrus.StandardLogger()
	prev := std.Out
	std.SetOutput(&buf)
	t.Cleanup(func() { std.SetOutput(prev) })

	s := newTestServer(t)
	token := s.seedUser(t, "admin-1", models.RoleAdmin)

	s.do(t, http.MethodGet, "/ws/dashboard?token="+token, "", nil)
	s.do(t, http.MethodGet, "/me?view=full", token, nil)

	assert.NotContains(t, buf.String(), token)
	assert.Contains(t, buf.String(), "/me")
}

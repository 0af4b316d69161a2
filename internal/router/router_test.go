package router_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yasserk123/HealthVision-Projet/internal/backend"
	"github.com/Yasserk123/HealthVision-Projet/internal/backend/backendtest"
	"github.com/Yasserk123/HealthVision-Projet/internal/handler"
	appointmentHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/appointment"
	authHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/auth"
	dashboardHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/dashboard"
	doctorHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/doctor"
	notificationHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/notification"
	prescriptionHandler "github.com/Yasserk123/HealthVision-Projet/internal/handler/prescription"
	"github.com/Yasserk123/HealthVision-Projet/internal/middleware"
	"github.com/Yasserk123/HealthVision-Projet/internal/model"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository"
	"github.com/Yasserk123/HealthVision-Projet/internal/repository/rest"
	"github.com/Yasserk123/HealthVision-Projet/internal/router"
	appointmentService "github.com/Yasserk123/HealthVision-Projet/internal/service/appointment"
	doctorService "github.com/Yasserk123/HealthVision-Projet/internal/service/doctor"
	notificationService "github.com/Yasserk123/HealthVision-Projet/internal/service/notification"
	prescriptionService "github.com/Yasserk123/HealthVision-Projet/internal/service/prescription"
	"github.com/Yasserk123/HealthVision-Projet/internal/session"
	"github.com/Yasserk123/HealthVision-Projet/pkg/messaging"
	"github.com/Yasserk123/HealthVision-Projet/pkg/metrics"
	"github.com/Yasserk123/HealthVision-Projet/pkg/validator"
)

type testResponse struct {
	Code      int
	Status    string          `json:"status"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	SessionID string
	Cookies   []*http.Cookie
}

func (r testResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r testResponse) decode(t *testing.T, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Data, dst))
}

type testAPI struct {
	t       *testing.T
	engine  *gin.Engine
	backend *backendtest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	srv := backendtest.NewServer()
	t.Cleanup(srv.Close)

	client, err := backend.New(backend.Config{URL: srv.URL, APIKey: backendtest.APIKey})
	require.NoError(t, err)

	v := validator.New()
	m := metrics.Noop()
	logger := zerolog.Nop()
	repos := rest.NewSet(client, v)

	broker := messaging.NewLocalBroker()
	notifications := notificationService.NewService(repos.Notifications, broker, logger)
	appointments := appointmentService.NewService(repos.Appointments, notifications, nil, v, m, logger)
	prescriptions := prescriptionService.NewService(repos.Prescriptions, notifications, v, m, logger)
	doctors := doctorService.NewService(repos.Doctors)

	registry := session.NewRegistry(time.Hour, time.Hour, func() *session.Store {
		return session.NewStore(client.NewAuthSession(), repos.Profiles, logger)
	}, m)
	sessions := middleware.NewSessions(registry, middleware.SessionConfig{CookieName: "hv_session"})

	h := handler.NewHandler(prometheus.NewRegistry(), map[string]handler.Check{"backend": client.Ping})
	r := router.NewRouter(sessions, h, router.RouterConfig{
		Mode:           gin.TestMode,
		RequestTimeout: 5 * time.Second,
		Registerer:     prometheus.NewRegistry(),
	},
		authHandler.NewHandler(sessions, v),
		doctorHandler.NewHandler(doctors),
		appointmentHandler.NewHandler(appointments, v),
		prescriptionHandler.NewHandler(prescriptions),
		notificationHandler.NewHandler(notifications, notificationService.NewStream(broker, logger)),
		dashboardHandler.NewHandler(appointments, prescriptions, notifications, logger),
	)
	r.Setup()

	return &testAPI{t: t, engine: r.Engine(), backend: srv}
}

func (a *testAPI) makeRequest(method, path string, body interface{}, sessionID string) testResponse {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(middleware.HeaderSessionID, sessionID)
	}

	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	resp := testResponse{
		Code:      rec.Code,
		SessionID: rec.Header().Get(middleware.HeaderSessionID),
		Cookies:   rec.Result().Cookies(),
	}
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return resp
}

func (a *testAPI) seedDoctor(name, specialty string) uuid.UUID {
	id := uuid.New()
	a.backend.Seed(repository.TableDoctors, model.Doctor{
		Base:      model.Base{ID: id},
		Name:      name,
		Specialty: specialty,
		Languages: []string{"Français"},
	})
	return id
}

func (a *testAPI) register(email string) (string, *model.User) {
	a.t.Helper()
	resp := a.makeRequest(http.MethodPost, "/auth/register", map[string]string{
		"email":      email,
		"password":   "secret1",
		"first_name": "A",
		"last_name":  "B",
	}, "")
	require.Equal(a.t, http.StatusCreated, resp.Code, resp.Message)

	var out authHandler.SessionResponse
	resp.decode(a.t, &out)
	require.NotEmpty(a.t, out.SessionID)
	require.NotNil(a.t, out.User)
	return out.SessionID, out.User
}

func TestHealthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	resp := api.makeRequest(http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"UP"`)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderXRequestID))
}

func TestDoctorDirectory(t *testing.T) {
	api := newTestAPI(t)
	api.seedDoctor("Dr. Y", "Cardiologie")
	api.seedDoctor("Dr. Z", "Neurologie")
	x := api.seedDoctor("Dr. X", "Cardiologie")

	resp := api.makeRequest(http.MethodGet, "/doctors?specialty=Cardiologie", nil, "")
	require.True(t, resp.IsSuccess(), resp.Message)
	var doctors []model.Doctor
	resp.decode(t, &doctors)
	require.Len(t, doctors, 2)
	assert.Equal(t, "Dr. X", doctors[0].Name)
	assert.Equal(t, "Dr. Y", doctors[1].Name)

	resp = api.makeRequest(http.MethodGet, "/specialties", nil, "")
	var specialties []string
	resp.decode(t, &specialties)
	assert.Equal(t, []string{"Cardiologie", "Neurologie"}, specialties)

	resp = api.makeRequest(http.MethodGet, "/specialties/catalog", nil, "")
	var catalog []model.Specialty
	resp.decode(t, &catalog)
	assert.Len(t, catalog, 6)

	resp = api.makeRequest(http.MethodGet, "/doctors/"+x.String(), nil, "")
	require.True(t, resp.IsSuccess())
	var got model.Doctor
	resp.decode(t, &got)
	assert.Equal(t, "Dr. X", got.Name)

	resp = api.makeRequest(http.MethodGet, "/doctors/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "error", resp.Status)

	resp = api.makeRequest(http.MethodGet, "/doctors/not-a-uuid", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	api := newTestAPI(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/appointments"},
		{http.MethodPost, "/appointments"},
		{http.MethodGet, "/prescriptions"},
		{http.MethodGet, "/notifications"},
		{http.MethodPost, "/notifications/read-all"},
		{http.MethodGet, "/dashboard"},
	} {
		resp := api.makeRequest(tc.method, tc.path, map[string]string{}, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code, tc.path)
	}
	assert.Zero(t, api.backend.RequestCount())

	resp := api.makeRequest(http.MethodGet, "/appointments/slots", nil, "")
	require.True(t, resp.IsSuccess())
	var slots []string
	resp.decode(t, &slots)
	assert.Len(t, slots, 13)
}

func TestRegisterBookAndReadNotification(t *testing.T) {
	api := newTestAPI(t)
	doctorID := api.seedDoctor("Dr. Martin", "Cardiologie")

	sid, user := api.register("a@b.c")
	assert.Equal(t, "A B", user.Name)

	resp := api.makeRequest(http.MethodPost, "/appointments", map[string]string{
		"doctor_id":        doctorID.String(),
		"appointment_date": "2025-03-01",
		"appointment_time": "09:30",
		"specialty":        "Cardiologie",
		"reason":           "Contrôle",
	}, sid)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Message)
	var booked appointmentService.Result
	resp.decode(t, &booked)
	assert.True(t, booked.Notified)
	assert.Equal(t, user.ID, booked.Appointment.PatientID)
	assert.Equal(t, model.AppointmentStatusPending, booked.Appointment.Status)
	require.NotNil(t, booked.Appointment.Doctor)
	assert.Equal(t, "Dr. Martin", booked.Appointment.Doctor.Name)

	resp = api.makeRequest(http.MethodGet, "/notifications", nil, sid)
	var notifications []model.Notification
	resp.decode(t, &notifications)
	require.Len(t, notifications, 1)
	assert.Equal(t, "Rendez-vous demandé", notifications[0].Title)
	assert.Contains(t, notifications[0].Message, "Dr. Martin")
	assert.False(t, notifications[0].Read)

	for i := 0; i < 2; i++ {
		resp = api.makeRequest(http.MethodPost, "/notifications/"+notifications[0].ID.String()+"/read", nil, sid)
		assert.True(t, resp.IsSuccess(), resp.Message)
	}

	resp = api.makeRequest(http.MethodGet, "/dashboard", nil, sid)
	require.True(t, resp.IsSuccess(), resp.Message)
	var dash dashboardHandler.Dashboard
	resp.decode(t, &dash)
	assert.Len(t, dash.Appointments, 1)
	assert.Len(t, dash.Notifications, 1)
	assert.Empty(t, dash.Prescriptions)
	assert.Zero(t, dash.UnreadCount)
	require.NotNil(t, dash.User)
	assert.Equal(t, user.ID, dash.User.ID)

	resp = api.makeRequest(http.MethodPost, "/appointments/"+booked.Appointment.ID.String()+"/cancel", nil, sid)
	require.True(t, resp.IsSuccess(), resp.Message)
	rows := api.backend.Rows(repository.TableAppointments)
	require.Len(t, rows, 1)
	assert.Equal(t, "Annulé", rows[0]["status"])
}

func TestInvalidAppointmentRequest(t *testing.T) {
	api := newTestAPI(t)
	sid, _ := api.register("a@b.c")

	resp := api.makeRequest(http.MethodPost, "/appointments", map[string]string{
		"doctor_id":        uuid.NewString(),
		"appointment_date": "01/03/2025",
		"appointment_time": "09:30",
		"specialty":        "Cardiologie",
	}, sid)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Empty(t, api.backend.Rows(repository.TableAppointments))

	resp = api.makeRequest(http.MethodPatch, "/appointments/"+uuid.NewString()+"/status",
		map[string]string{"status": "Perdu"}, sid)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLoginSessionLogout(t *testing.T) {
	api := newTestAPI(t)
	api.backend.AddUser("a@b.c", "secret1", nil)

	resp := api.makeRequest(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.c", "password": "wrong",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "invalid credentials", resp.Message)

	resp = api.makeRequest(http.MethodPost, "/auth/login", map[string]string{
		"email": "a@b.c", "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	sid := resp.SessionID
	require.NotEmpty(t, sid)

	var cookie *http.Cookie
	for _, c := range resp.Cookies {
		if c.Name == "hv_session" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Equal(t, sid, cookie.Value)
	assert.True(t, cookie.HttpOnly)

	resp = api.makeRequest(http.MethodGet, "/auth/session", nil, sid)
	assert.Empty(t, resp.SessionID)
	var current authHandler.SessionResponse
	resp.decode(t, &current)
	assert.True(t, current.Authenticated)
	require.NotNil(t, current.User)
	assert.Equal(t, "a@b.c", current.User.Name)

	resp = api.makeRequest(http.MethodPost, "/auth/logout", nil, sid)
	require.True(t, resp.IsSuccess())

	resp = api.makeRequest(http.MethodGet, "/auth/session", nil, sid)
	current = authHandler.SessionResponse{}
	resp.decode(t, &current)
	assert.False(t, current.Authenticated)
	assert.Nil(t, current.User)

	resp = api.makeRequest(http.MethodGet, "/notifications", nil, sid)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestDashboardDegradesFailedLists(t *testing.T) {
	api := newTestAPI(t)
	sid, _ := api.register("a@b.c")
	api.backend.Fail(http.MethodGet, repository.TablePrescriptions, http.StatusInternalServerError)

	resp := api.makeRequest(http.MethodGet, "/dashboard", nil, sid)
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)
	assert.Contains(t, string(resp.Data), `"prescriptions":[]`)

	resp = api.makeRequest(http.MethodGet, "/prescriptions", nil, sid)
	assert.Equal(t, http.StatusBadGateway, resp.Code)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), resp.Message)
}

func TestNotificationStreamPushesCallerEvents(t *testing.T) {
	api := newTestAPI(t)
	sid, _ := api.register("a@b.c")
	doctorID := api.seedDoctor("Dr. Martin", "Cardiologie")

	ts := httptest.NewServer(api.engine)
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/notifications/stream", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.HeaderSessionID, sid)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, res.Header.Get("Content-Type"), "text/event-stream")

	lines := bufio.NewScanner(res.Body)
	next := func(prefix string) string {
		for lines.Scan() {
			if strings.HasPrefix(lines.Text(), prefix) {
				return lines.Text()
			}
		}
		t.Fatalf("stream ended before %q", prefix)
		return ""
	}
	assert.Equal(t, "event:connected", next("event:"))

	resp := api.makeRequest(http.MethodPost, "/appointments", map[string]string{
		"doctor_id":        doctorID.String(),
		"appointment_date": "2025-03-01",
		"appointment_time": "09:30",
		"specialty":        "Cardiologie",
		"reason":           "Contrôle",
	}, sid)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Message)

	assert.Equal(t, "event:notification", next("event:"))
	assert.Contains(t, next("data:"), "Rendez-vous demandé")
}

func TestNotificationStreamNeedsSession(t *testing.T) {
	api := newTestAPI(t)

	resp := api.makeRequest(http.MethodGet, "/notifications/stream", nil, "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	resp := api.makeRequest(http.MethodGet, "/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "error", resp.Status)
}

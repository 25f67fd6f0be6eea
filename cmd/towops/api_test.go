package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/towops/towops/internal/config"
)

type TestApp struct {
	*App
	api *PublicAPI
}

func NewTestApp(t *testing.T) *TestApp {
	t.Helper()

	cfg := config.NewAppConfig()
	require.NoError(t, cfg.Set("db", ":memory:"))

	app, err := NewApp(cfg)
	require.NoError(t, err)

	return &TestApp{App: app, api: NewPublicAPI(app, "")}
}

func (app *TestApp) Req(method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}

	return app.api.f.Test(req, 3000)
}

func (app *TestApp) PostJSON(url string, obj any) (*http.Response, error) {
	d, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", url, bytes.NewReader(d))
	if err != nil {
		return nil, err
	}

	req.Header.Add(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	return app.api.f.Test(req, 3000)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	defer resp.Body.Close()

	m := make(map[string]any)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&m))

	return m
}

func (app *TestApp) mustPost(t *testing.T, url string, obj any) map[string]any {
	t.Helper()

	resp, err := app.PostJSON(url, obj)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	return decode(t, resp)
}

func (app *TestApp) mustGet(t *testing.T, url string, code int) map[string]any {
	t.Helper()

	resp, err := app.Req("GET", url, nil)
	require.NoError(t, err)
	require.Equal(t, code, resp.StatusCode)

	return decode(t, resp)
}

func TestScenario(t *testing.T) {
	app := NewTestApp(t)

	m := app.mustPost(t, "/cad/event", fiber.Map{"call_id": "C1", "lat": 32.8, "lon": -117.2, "reason": "Accident"})
	assert.Equal(t, true, m["ok"])
	call := m["call"].(map[string]any)
	assert.Equal(t, "new", call["status"])
	assert.Equal(t, 3.0, call["priority"])
	assert.Nil(t, call["zone"])

	m = app.mustPost(t, "/gps", fiber.Map{"unit_id": "U1", "lat": 32.7, "lon": -117.2, "speed": 40})
	assert.Equal(t, "U1", m["unit"].(map[string]any)["unit_id"])

	m = app.mustGet(t, "/dispatch/recommendation?call_id=C1", fiber.StatusOK)
	assert.Equal(t, "closest", m["mode"])
	assert.Equal(t, "U1", m["unit_id"])
	assert.Equal(t, 11.12, m["distance_km"])

	m = app.mustPost(t, "/dispatch/assign", fiber.Map{"call_id": "C1", "unit_id": "U1"})
	call = m["call"].(map[string]any)
	assert.Equal(t, "assigned", call["status"])
	assert.Equal(t, "U1", call["assigned_unit"])

	m = app.mustPost(t, "/live-tracking/update", fiber.Map{"call_id": "C1", "unit_id": "U1"})
	a := m["assignment"].(map[string]any)
	assert.Equal(t, "enroute", a["status"])
	assert.Equal(t, 17.0, a["estimated_arrival"])
	assert.Equal(t, 11.1, a["distance_remaining"])

	m = app.mustGet(t, "/live-tracking/C1", fiber.StatusOK)
	assert.Equal(t, 0.0, m["progress"])
	assert.Equal(t, "U1", m["current_location"].(map[string]any)["unit_id"])

	m = app.mustGet(t, "/live-tracking", fiber.StatusOK)
	assert.Equal(t, 1.0, m["count"])

	app.mustPost(t, "/live-tracking/update", fiber.Map{"call_id": "C1", "unit_id": "U1", "status": "complete"})

	m = app.mustGet(t, "/live-tracking", fiber.StatusOK)
	assert.Equal(t, 0.0, m["count"])
	assert.Empty(t, m["active_assignments"])

	m = app.mustGet(t, "/reports/daily", fiber.StatusOK)
	assert.Equal(t, 1.0, m["total_calls"])
	assert.Equal(t, 1.0, m["counts_by_reason"].(map[string]any)["Accident"])

	m = app.mustGet(t, "/debug/state", fiber.StatusOK)
	assert.Len(t, m["calls"], 1)
	assert.Len(t, m["units"], 1)
	assert.Equal(t, "complete", m["calls"].([]any)[0].(map[string]any)["status"])

	require.Eventually(t, func() bool {
		return app.journal.Query().Call("C1").Count() >= 4
	}, time.Second*2, time.Millisecond*10)

	m = app.mustGet(t, "/journal?call_id=C1&limit=2", fiber.StatusOK)
	assert.Equal(t, 2.0, m["count"])
}

func TestRotationEndpoint(t *testing.T) {
	app := NewTestApp(t)

	app.mustPost(t, "/cad/event", fiber.Map{"call_id": "C1", "lat": 0, "lon": 0, "reason": "Tow"})

	for _, id := range []string{"C", "A", "B"} {
		app.mustPost(t, "/gps", fiber.Map{"unit_id": id, "lat": 0, "lon": 0})
	}

	for _, exp := range []string{"A", "B", "C", "A"} {
		m := app.mustGet(t, "/dispatch/recommendation?call_id=C1&mode=rotation", fiber.StatusOK)
		assert.Equal(t, "rotation", m["mode"])
		assert.Equal(t, exp, m["unit_id"])
		_, ok := m["distance_km"]
		assert.False(t, ok)
	}
}

func TestErrors(t *testing.T) {
	app := NewTestApp(t)

	m := app.mustGet(t, "/dispatch/recommendation?call_id=nope", fiber.StatusNotFound)
	assert.NotEmpty(t, m["detail"])

	app.mustGet(t, "/dispatch/recommendation", fiber.StatusBadRequest)

	app.mustPost(t, "/cad/event", fiber.Map{"call_id": "C1", "lat": 1, "lon": 1, "reason": "x"})
	app.mustGet(t, "/dispatch/recommendation?call_id=C1", fiber.StatusBadRequest)

	app.mustPost(t, "/gps", fiber.Map{"unit_id": "U1", "lat": 1, "lon": 1})
	app.mustGet(t, "/dispatch/recommendation?call_id=C1&mode=random", fiber.StatusBadRequest)

	for _, tc := range []struct {
		url  string
		body fiber.Map
		code int
	}{
		{"/cad/event", fiber.Map{"lat": 1, "lon": 1, "reason": "x"}, fiber.StatusBadRequest},
		{"/cad/event", fiber.Map{"call_id": "C2", "lon": 1, "reason": "x"}, fiber.StatusBadRequest},
		{"/gps", fiber.Map{"unit_id": "U2", "lat": 1}, fiber.StatusBadRequest},
		{"/dispatch/assign", fiber.Map{"call_id": "C1", "unit_id": "nope"}, fiber.StatusNotFound},
		{"/dispatch/assign", fiber.Map{"call_id": "nope", "unit_id": "U1"}, fiber.StatusNotFound},
		{"/dispatch/assign", fiber.Map{"call_id": "C1"}, fiber.StatusBadRequest},
		{"/live-tracking/update", fiber.Map{"call_id": "C1", "unit_id": "U1"}, fiber.StatusNotFound},
	} {
		resp, err := app.PostJSON(tc.url, tc.body)
		require.NoError(t, err)
		assert.Equal(t, tc.code, resp.StatusCode, tc.url)
		resp.Body.Close()
	}

	app.mustGet(t, "/live-tracking/nope", fiber.StatusNotFound)

	app.mustPost(t, "/dispatch/assign", fiber.Map{"call_id": "C1", "unit_id": "U1"})

	resp, err := app.PostJSON("/live-tracking/update", fiber.Map{"call_id": "C1", "unit_id": "U1", "status": "lost"})
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	app.mustGet(t, "/journal?limit=zero", fiber.StatusBadRequest)
}

func TestHealthz(t *testing.T) {
	app := NewTestApp(t)

	m := app.mustGet(t, "/healthz", fiber.StatusOK)
	assert.Equal(t, true, m["ok"])

	resp, err := app.Req("GET", "/ws", nil)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUpgradeRequired, resp.StatusCode)
	resp.Body.Close()
}

func TestLocalAPI(t *testing.T) {
	api := NewLocalAPI("")

	resp, err := api.f.Test(httptestRequest("GET", "/metrics"))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "towops_")
}

func httptestRequest(method, url string) *http.Request {
	req, _ := http.NewRequest(method, url, nil)
	return req
}

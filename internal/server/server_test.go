package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Veraticus/nestegg/internal/auth"
	"github.com/Veraticus/nestegg/internal/model"
	"github.com/Veraticus/nestegg/internal/projection"
	"github.com/Veraticus/nestegg/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("server-test-secret-0123")

type testAPI struct {
	server *httptest.Server
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := testutil.SetupTestDB(t)
	testutil.SeedUser(t, store, "ada", "correct horse")
	gate, err := auth.NewGate(store, testSecret)
	require.NoError(t, err)

	router := ConfigureRouter(Config{
		Dependencies: Dependencies{
			Reports: store,
			Plans:   store,
			Gate:    gate,
			Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
		Simulation: SimulationConfig{Trials: 200, Workers: 2, MaxTrials: 5000},
	})
	api := &testAPI{server: httptest.NewServer(router)}
	t.Cleanup(api.server.Close)

	var login loginResponse
	status := api.do(t, http.MethodPost, "/api/v1/login", map[string]string{
		"username": "ada",
		"password": "correct horse",
	}, &login)
	require.Equal(t, http.StatusOK, status)
	require.NotEmpty(t, login.Token)
	api.token = login.Token

	return api
}

// do sends body as JSON and decodes the response into out when out is non-nil.
func (a *testAPI) do(t *testing.T, method, path string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, a.server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err, "Failed to send request")
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out), "Failed to parse response")
	}
	return resp.StatusCode
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)
	api.token = ""

	tests := []struct {
		body           any
		name           string
		expectedStatus int
	}{
		{name: "wrong password", body: map[string]string{"username": "ada", "password": "nope"}, expectedStatus: http.StatusUnauthorized},
		{name: "unknown user", body: map[string]string{"username": "bob", "password": "correct horse"}, expectedStatus: http.StatusUnauthorized},
		{name: "missing password", body: map[string]string{"username": "ada"}, expectedStatus: http.StatusBadRequest},
		{name: "unknown field", body: map[string]string{"username": "ada", "password": "x", "otp": "1"}, expectedStatus: http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var resp errorResponse
			status := api.do(t, http.MethodPost, "/api/v1/login", tc.body, &resp)
			assert.Equal(t, tc.expectedStatus, status)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestRequiresBearerToken(t *testing.T) {
	api := newTestAPI(t)

	for _, token := range []string{"", "not-a-jwt"} {
		api.token = token
		var resp errorResponse
		status := api.do(t, http.MethodGet, "/api/v1/retirement/plans", nil, &resp)
		assert.Equal(t, http.StatusUnauthorized, status, "token %q", token)
	}
}

func TestAnalyzeStatement(t *testing.T) {
	api := newTestAPI(t)

	var resp statementResponse
	status := api.do(t, http.MethodPost, "/api/v1/rental/statements", map[string]any{
		"csv": testutil.SampleExport,
	}, &resp)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, "Maple Court Duplex", resp.Statement.Info.Property)
	assert.Len(t, resp.Statement.Lines, 4)
	assert.True(t, resp.Breakdown.NetCashFlow.Equal(decimal.NewFromInt(12800)), resp.Breakdown.NetCashFlow.String())
	assert.True(t, resp.Metrics.CashOnCashROI.Equal(decimal.RequireFromString("6.4")), resp.Metrics.CashOnCashROI.String())
	assert.Nil(t, resp.Report)
}

func TestAnalyzeStatement_NoData(t *testing.T) {
	api := newTestAPI(t)

	var resp errorResponse
	status := api.do(t, http.MethodPost, "/api/v1/rental/statements", map[string]any{
		"csv": "just,a,header\n,,Total Income,\"$5.00\"\n",
	}, &resp)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, resp.Error, "no data parsed")
}

func TestRentalReports_SaveListShowDelete(t *testing.T) {
	api := newTestAPI(t)

	var resp errorResponse
	status := api.do(t, http.MethodPost, "/api/v1/rental/statements", map[string]any{
		"csv":  testutil.SampleExport,
		"save": true,
	}, &resp)
	assert.Equal(t, http.StatusBadRequest, status, "saving needs a year")

	var saved statementResponse
	status = api.do(t, http.MethodPost, "/api/v1/rental/statements", map[string]any{
		"csv":  testutil.SampleExport,
		"year": 2024,
		"save": true,
		"investment": map[string]any{
			"initial_investment": "100000",
			"depreciable_basis":  "0",
			"useful_life_years":  0,
		},
	}, &saved)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, saved.Report)
	assert.Equal(t, "Maple Court Duplex", saved.Report.Property)
	assert.True(t, saved.Metrics.CashOnCashROI.Equal(decimal.RequireFromString("12.8")))
	assert.True(t, saved.Metrics.AnnualDepreciation.IsZero())

	var list []model.RentalReport
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/rental/reports", nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, 2024, list[0].Year)
	assert.Empty(t, list[0].RawCSV)

	var shown statementResponse
	path := fmt.Sprintf("/api/v1/rental/reports/%d", saved.Report.ID)
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, path, nil, &shown))
	assert.True(t, shown.Breakdown.NetCashFlow.Equal(decimal.NewFromInt(12800)))

	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, path, nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, path, nil, &resp))
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodGet, "/api/v1/rental/reports/abc", nil, &resp))
}

func TestRunProjection(t *testing.T) {
	api := newTestAPI(t)
	plan := model.DefaultRetirementPlan()

	var first, second projectionResponse
	body := map[string]any{"plan": plan, "seed": 99}
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/retirement/projections", body, &first))
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/retirement/projections", body, &second))

	require.NotNil(t, first.Analysis)
	assert.Equal(t, 200, first.Trials)
	assert.Len(t, first.Scenarios, len(projection.DefaultScenarios))
	assert.Len(t, first.Histogram, projection.DefaultBins)
	assert.Equal(t, first.Outlook, second.Outlook, "same seed, same outlook")

	var zeroVol projectionResponse
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/retirement/projections",
		map[string]any{"plan": plan, "volatility": 0, "trials": 10}, &zeroVol))
	want := projection.ProjectWholeYear(projection.ParamsFromPlan(plan, plan.MonthlySavings))
	assert.InDelta(t, want, zeroVol.Outlook.P10, 1e-6)
	assert.InDelta(t, want, zeroVol.Outlook.P90, 1e-6)
}

func TestRunProjection_BadRequests(t *testing.T) {
	api := newTestAPI(t)
	plan := model.DefaultRetirementPlan()
	young := plan
	young.CurrentAge = 10
	runaway := plan
	runaway.ExpectedReturn = 100
	huge := plan
	huge.CurrentBalance = 1e306
	huge.ExpectedReturn = model.MaxRate
	huge.CurrentAge = model.MinAge

	tests := []struct {
		body           any
		name           string
		expectedStatus int
	}{
		{name: "no plan", body: map[string]any{}, expectedStatus: http.StatusBadRequest},
		{name: "both plan and name", body: map[string]any{"plan": plan, "plan_name": "x"}, expectedStatus: http.StatusBadRequest},
		{name: "too many trials", body: map[string]any{"plan": plan, "trials": 5001}, expectedStatus: http.StatusBadRequest},
		{name: "negative volatility", body: map[string]any{"plan": plan, "volatility": -0.1}, expectedStatus: http.StatusBadRequest},
		{name: "invalid plan", body: map[string]any{"plan": young}, expectedStatus: http.StatusBadRequest},
		{name: "return above bound", body: map[string]any{"plan": runaway, "volatility": 100}, expectedStatus: http.StatusBadRequest},
		{name: "volatility above bound", body: map[string]any{"plan": plan, "volatility": 100}, expectedStatus: http.StatusBadRequest},
		{name: "balance overflows", body: map[string]any{"plan": huge, "trials": 20}, expectedStatus: http.StatusBadRequest},
		{name: "unknown stored plan", body: map[string]any{"plan_name": "ghost"}, expectedStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var resp errorResponse
			assert.Equal(t, tc.expectedStatus, api.do(t, http.MethodPost, "/api/v1/retirement/projections", tc.body, &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestPlans_CRUD(t *testing.T) {
	api := newTestAPI(t)
	plan := testutil.SamplePlan("early bird")

	var created model.RetirementPlan
	require.Equal(t, http.StatusCreated, api.do(t, http.MethodPost, "/api/v1/retirement/plans", plan, &created))
	assert.Equal(t, "early bird", created.Name)
	assert.False(t, created.CreatedAt.IsZero())

	var conflict errorResponse
	assert.Equal(t, http.StatusConflict, api.do(t, http.MethodPost, "/api/v1/retirement/plans", plan, &conflict))
	assert.Contains(t, conflict.Error, "duplicate")

	unnamed := testutil.SamplePlan("  ")
	assert.Equal(t, http.StatusBadRequest, api.do(t, http.MethodPost, "/api/v1/retirement/plans", unnamed, &conflict))

	var list []model.RetirementPlan
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/retirement/plans", nil, &list))
	require.Len(t, list, 1)

	var got model.RetirementPlan
	require.Equal(t, http.StatusOK, api.do(t, http.MethodGet, "/api/v1/retirement/plans/early%20bird", nil, &got))
	assert.Equal(t, plan.MonthlySavings, got.MonthlySavings)

	var projected projectionResponse
	require.Equal(t, http.StatusOK, api.do(t, http.MethodPost, "/api/v1/retirement/projections",
		map[string]any{"plan_name": "early bird", "seed": 1}, &projected))
	assert.Equal(t, "early bird", projected.Plan.Name)

	assert.Equal(t, http.StatusNoContent, api.do(t, http.MethodDelete, "/api/v1/retirement/plans/early%20bird", nil, nil))
	assert.Equal(t, http.StatusNotFound, api.do(t, http.MethodGet, "/api/v1/retirement/plans/early%20bird", nil, &conflict))
}

type mockPlans struct {
	mock.Mock
}

func (m *mockPlans) SaveRetirementPlan(ctx context.Context, plan *model.RetirementPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *mockPlans) GetRetirementPlan(ctx context.Context, name string) (*model.RetirementPlan, error) {
	args := m.Called(ctx, name)
	plan, _ := args.Get(0).(*model.RetirementPlan)
	return plan, args.Error(1)
}

func (m *mockPlans) ListRetirementPlans(ctx context.Context) ([]model.RetirementPlan, error) {
	args := m.Called(ctx)
	plans, _ := args.Get(0).([]model.RetirementPlan)
	return plans, args.Error(1)
}

func (m *mockPlans) DeleteRetirementPlan(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

type stubVerifier struct{}

func (stubVerifier) Verify(string) (*auth.Session, error) {
	return &auth.Session{Username: "ada"}, nil
}

func (stubVerifier) Login(context.Context, string, string) (*auth.Session, error) {
	return nil, auth.ErrInvalidCredentials
}

func (stubVerifier) IssueToken(*auth.Session) (string, error) {
	return "", errors.New("unused")
}

func TestStorageFailureIsInternalError(t *testing.T) {
	plans := new(mockPlans)
	plans.On("ListRetirementPlans", mock.Anything).Return(nil, errors.New("database is locked"))

	router := ConfigureRouter(Config{
		Dependencies: Dependencies{
			Plans:  plans,
			Gate:   stubVerifier{},
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/retirement/plans", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())
	plans.AssertExpectations(t)
}

func TestWriteJSON_UnencodableBody(t *testing.T) {
	tests := []struct {
		body   any
		name   string
		status int
		want   string
	}{
		{name: "encodable", body: map[string]float64{"p50": 1.5}, status: http.StatusOK, want: `{"p50":1.5}`},
		{name: "infinite float", body: map[string]float64{"p50": math.Inf(1)}, status: http.StatusInternalServerError, want: `{"error":"internal error"}`},
		{name: "NaN float", body: model.Outlook{P10: math.NaN()}, status: http.StatusInternalServerError, want: `{"error":"internal error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/retirement/projections", nil)
			rec := httptest.NewRecorder()

			writeJSON(rec, req, http.StatusOK, tt.body)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.want, rec.Body.String())
		})
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, statusFor(fmt.Errorf("wrapped: %w", auth.ErrInvalidToken)))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}

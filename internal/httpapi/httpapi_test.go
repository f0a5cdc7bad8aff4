package httpapi

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"luxera/internal/cache"
	"luxera/internal/project"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo"), 0o755))

	p := project.New("demo")
	p.RootDir = filepath.Join(root, "demo")
	require.NoError(t, project.Save(p, filepath.Join(root, "demo", "project.json")))

	s := New(Config{
		Addr:           ":0",
		ProjectRoot:    root,
		ResultsRoot:    t.TempDir(),
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
	}, nil)
	return s, root
}

func TestHandleGetProject_ReturnsSavedProject(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/projects/demo/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"demo"`)
}

func TestHandleGetProject_MissingProjectIs404(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/projects/nope/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleRunJob_RequiresApproval(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/projects/demo/jobs/j1/run", strings.NewReader(`{"approved":false}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleAgentTurn_DeferredIntentReturns200WithWarnings(t *testing.T) {
	s, _ := newTestServer(t)

	body := `{"intent": "please import fixtures.ifc now"}`
	req := httptest.NewRequest(http.MethodPost, "/projects/demo/agent/turns", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "warnings")
}

func TestHandleAgentTurn_RejectsEmptyIntent(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/projects/demo/agent/turns", strings.NewReader(`{"intent":""}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func writeFixturePhotometryFile(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "fixture-*.ies")
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("IESNA:LM-63-2019\nTILT=NONE\n")
	require.NoError(t, err)
	return f.Name()
}

func jobProject(t *testing.T) *project.Project {
	t.Helper()
	p := project.New("demo")
	p.Grids = []project.CalcGrid{{
		ID: "g1", NX: 2, NY: 1,
		SamplePoints: [][3]float64{{0, 0, 0.85}, {2, 0, 0.85}},
		SampleMask:   []bool{true, true},
	}}
	p.Luminaires = []project.LuminaireInstance{{
		ID:                "l1",
		PhotometryAssetID: "a1",
		Transform: project.PlacementTransform{
			Position: [3]float64{1, 0, 2.7},
			Rotation: project.Rotation{Type: project.RotationEuler, EulerDeg: &[3]float64{0, 0, 0}},
		},
		MaintenanceFactor: 1,
		FluxMultiplier:    1,
	}}
	p.PhotometryAssets = []project.PhotometryAsset{{ID: "a1", Path: writeFixturePhotometryFile(t), Lumens: 3000, BeamDeg: 120}}
	p.Jobs = []project.JobSpec{{ID: "j1", Kind: "indoor", SolverVersion: "v1", BackendID: "radiosity"}}
	return p
}

func TestHandleRunJob_SecondRequestServesFromCacheWithoutRerunningBackend(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "demo"), 0o755))
	p := jobProject(t)
	p.RootDir = filepath.Join(root, "demo")
	require.NoError(t, project.Save(p, filepath.Join(root, "demo", "project.json")))

	s := New(Config{
		Addr:           ":0",
		ProjectRoot:    root,
		ResultsRoot:    t.TempDir(),
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		Cache:          cache.New(cache.DefaultConfig()),
	}, nil)

	body := strings.NewReader(`{"approved":true}`)
	req1 := httptest.NewRequest(http.MethodPost, "/projects/demo/jobs/j1/run", body)
	rec1 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec1, req1)
	require.Equal(t, http.StatusOK, rec1.Code)

	req2 := httptest.NewRequest(http.MethodPost, "/projects/demo/jobs/j1/run", strings.NewReader(`{"approved":true}`))
	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, req2)
	assert.Equal(t, http.StatusOK, rec2.Code)
	assert.Contains(t, rec2.Body.String(), `"job_hash"`)
}

func TestRateLimitMiddleware_RejectsOverBurst(t *testing.T) {
	s := New(Config{ProjectRoot: t.TempDir(), ResultsRoot: t.TempDir(), RateLimitRPS: 0.0001, RateLimitBurst: 1}, nil)

	req := httptest.NewRequest(http.MethodGet, "/projects/demo/", nil)
	rec1 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec1, req)

	rec2 := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
}

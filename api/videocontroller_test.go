package api

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"adforge/jobs"
	"adforge/render"
	"adforge/scraper"
	"adforge/types"
)

const testScript = `Header
---
[0:00] *Product hero shot*
[0:05] *Call to action*
`

type fakeScraper struct {
	product *types.ProductData
	err     error
}

func (f *fakeScraper) CanHandle(url string) bool { return true }

func (f *fakeScraper) Extract(ctx context.Context, url string) (*types.ProductData, error) {
	return f.product, f.err
}

type fakeGenerator struct {
	text string
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context, product *types.ProductData) (string, error) {
	return f.text, f.err
}

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, product *types.ProductData, dir string) (*types.MediaAssetSet, error) {
	return &types.MediaAssetSet{}, nil
}

type fakeEncoder struct{}

func (fakeEncoder) Encode(ctx context.Context, frames []image.Image, durations []int, outPath string) error {
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

func (fakeEncoder) Mux(ctx context.Context, videoPath, narrationPath, musicPath, outPath string) error {
	return os.WriteFile(outPath, []byte("video"), 0o644)
}

func newTestRouter(t *testing.T, scr *fakeScraper, gen *fakeGenerator) (*gin.Engine, jobs.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := jobs.NewMemoryStore()
	pipeline := render.NewPipeline(
		store, fakeResolver{}, nil, render.NewCompositor(""), fakeEncoder{}, t.TempDir(),
	)
	vc := NewVideoController(
		scraper.NewRegistry(scr), gen, store, pipeline,
	)
	return NewRouter(vc), store
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestCreateVideoRunsJobToCompletion(t *testing.T) {
	scr := &fakeScraper{product: &types.ProductData{Title: "Lamp"}}
	gen := &fakeGenerator{text: testScript}
	r, store := newTestRouter(t, scr, gen)

	w := postJSON(r, "/api/videos", `{"url":"https://shop.example/lamp"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp CreateVideoResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("no job id returned")
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		job, err := store.Get(resp.JobID)
		if err != nil {
			t.Fatalf("Get job: %v", err)
		}
		if job.Status.Terminal() {
			if job.Status != types.JobCompleted {
				t.Fatalf("job ended %s: %s", job.Status, job.Error)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job stuck at %s", job.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	sw := get(r, "/api/videos/"+resp.JobID+"/status")
	if sw.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d", sw.Code)
	}
	fw := get(r, "/api/videos/"+resp.JobID+"/file")
	if fw.Code != http.StatusOK {
		t.Fatalf("file endpoint = %d, body = %s", fw.Code, fw.Body.String())
	}
	if fw.Body.String() != "video" {
		t.Errorf("file body = %q", fw.Body.String())
	}
}

func TestCreateVideoRejectsMissingURL(t *testing.T) {
	r, _ := newTestRouter(t, &fakeScraper{}, &fakeGenerator{})

	if w := postJSON(r, "/api/videos", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("empty payload status = %d; want 400", w.Code)
	}
	if w := postJSON(r, "/api/videos", `not json`); w.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d; want 400", w.Code)
	}
}

func TestCreateVideoReportsScrapeFailure(t *testing.T) {
	scr := &fakeScraper{err: errors.New("store is down")}
	r, _ := newTestRouter(t, scr, &fakeGenerator{text: testScript})

	w := postJSON(r, "/api/videos", `{"url":"https://shop.example/x"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d; want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "store is down") {
		t.Errorf("body = %s; want scrape cause", w.Body.String())
	}
}

func TestCreateVideoReportsGeneratorFailure(t *testing.T) {
	scr := &fakeScraper{product: &types.ProductData{Title: "Lamp"}}
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	r, _ := newTestRouter(t, scr, gen)

	w := postJSON(r, "/api/videos", `{"url":"https://shop.example/x"}`)
	if w.Code != http.StatusBadGateway {
		t.Errorf("status = %d; want 502", w.Code)
	}
}

func TestVideoStatusUnknownJob(t *testing.T) {
	r, _ := newTestRouter(t, &fakeScraper{}, &fakeGenerator{})

	if w := get(r, "/api/videos/nope/status"); w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", w.Code)
	}
	if w := get(r, "/api/videos/nope/file"); w.Code != http.StatusNotFound {
		t.Errorf("file = %d; want 404", w.Code)
	}
}

func TestVideoFileNotReady(t *testing.T) {
	r, store := newTestRouter(t, &fakeScraper{}, &fakeGenerator{})
	_ = store.Create(types.RenderJob{JobID: "j1", Status: types.JobRendering})

	if w := get(r, "/api/videos/j1/file"); w.Code != http.StatusConflict {
		t.Errorf("file while rendering = %d; want 409", w.Code)
	}
}

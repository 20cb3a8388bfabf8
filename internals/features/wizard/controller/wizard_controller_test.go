package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopfloor_backend/internals/features/wizard/service"
	"shopfloor_backend/internals/helpers/apperr"
	helperAuth "shopfloor_backend/internals/helpers/auth"
)

type batchDraft struct {
	Line string `json:"line"`
	Qty  int    `json:"qty"`
}

func batchFlow(commits *int) service.Flow[batchDraft] {
	return service.Flow[batchDraft]{
		Kind:    "batch_wip",
		Landing: "/batches",
		Steps: []service.Step[batchDraft]{
			{
				Name: "line",
				Options: func(ctx context.Context, a service.Actor, d *batchDraft) ([]service.Option, error) {
					return []service.Option{{Value: "a", Label: "Line A"}, {Value: "gone", Label: "Retired line"}}, nil
				},
				Selected: service.Single(func(d *batchDraft) string { return d.Line }),
				Apply: func(ctx context.Context, a service.Actor, d *batchDraft, v []string) error {
					d.Line = v[0]
					return nil
				},
			},
			{
				Name:  "qty",
				Input: service.InputNumber,
				Apply: func(ctx context.Context, a service.Actor, d *batchDraft, v []string) error {
					n, err := strconv.Atoi(v[0])
					if err != nil || n < 1 {
						return apperr.InvalidField("qty", "quantity must be positive")
					}
					d.Qty = n
					return nil
				},
			},
		},
		Commit: func(ctx context.Context, a service.Actor, d *batchDraft) (any, error) {
			if d.Line == "gone" {
				return nil, service.Missing("line %s", d.Line)
			}
			if d.Qty > 100 {
				return nil, apperr.InvalidField("qty", "at most 100 per batch")
			}
			*commits++
			return fiber.Map{"line": d.Line, "qty": d.Qty}, nil
		},
	}
}

type wizardCall struct {
	method string
	path   string
	body   string
}

func (w wizardCall) do(t *testing.T, app *fiber.App) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(w.method, w.path, strings.NewReader(w.body))
	if w.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("%s %s: decode: %v", w.method, w.path, err)
	}
	return resp.StatusCode, out
}

func newWizardApp(commits *int) *fiber.App {
	userID := uuid.New()
	runner := service.New(batchFlow(commits), service.NewMemoryStore(), zerolog.Nop())
	h := NewWizardController(runner)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helperAuth.LocUserID, userID.String())
		c.Locals(helperAuth.LocUserRole, "team")
		return c.Next()
	})
	w := app.Group("/wizards")
	w.Get("/:kind", h.View)
	w.Post("/:kind", h.Submit)
	w.Post("/:kind/commit", h.Commit)
	w.Post("/:kind/cancel", h.Cancel)
	return app
}

func TestWizardRoutes(t *testing.T) {
	commits := 0
	app := newWizardApp(&commits)

	steps := []struct {
		name       string
		call       wizardCall
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "unknown kind",
			call:       wizardCall{"GET", "/wizards/nope", ""},
			wantStatus: fiber.StatusNotFound,
		},
		{
			name:       "step must be a number",
			call:       wizardCall{"GET", "/wizards/batch_wip?step=x", ""},
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "later step redirects to the frontier",
			call:       wizardCall{"GET", "/wizards/batch_wip?step=2", ""},
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				data := body["data"].(map[string]any)
				redirect, ok := data["redirect"].(map[string]any)
				if !ok || redirect["step"] != float64(1) {
					t.Errorf("data = %v", data)
				}
			},
		},
		{
			name:       "value outside options",
			call:       wizardCall{"POST", "/wizards/batch_wip", `{"step":1,"values":["zzz"]}`},
			wantStatus: fiber.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]any) {
				if body["redirect_step"] != float64(1) || body["errors"] == nil {
					t.Errorf("body = %v", body)
				}
			},
		},
		{
			name:       "missing step number",
			call:       wizardCall{"POST", "/wizards/batch_wip", `{"values":["a"]}`},
			wantStatus: fiber.StatusUnprocessableEntity,
		},
		{
			name:       "choose line",
			call:       wizardCall{"POST", "/wizards/batch_wip", `{"step":1,"values":["a"]}`},
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				data := body["data"].(map[string]any)
				if data["next_step"] != float64(2) || data["commit"] != false {
					t.Errorf("data = %v", data)
				}
			},
		},
		{
			name:       "quantity too large for commit",
			call:       wizardCall{"POST", "/wizards/batch_wip", `{"step":2,"values":["500"]}`},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "commit rule sends back to quantity",
			call:       wizardCall{"POST", "/wizards/batch_wip/commit", ""},
			wantStatus: fiber.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]any) {
				if body["redirect_step"] != float64(2) {
					t.Errorf("body = %v", body)
				}
			},
		},
		{
			name:       "quantity kept after failed commit",
			call:       wizardCall{"GET", "/wizards/batch_wip?step=1", ""},
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				data := body["data"].(map[string]any)
				sel, _ := data["selected"].([]any)
				if len(sel) != 1 || sel[0] != "a" {
					t.Errorf("data = %v", data)
				}
			},
		},
		{
			name:       "fix quantity",
			call:       wizardCall{"POST", "/wizards/batch_wip", `{"step":2,"values":["20"]}`},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "commit",
			call:       wizardCall{"POST", "/wizards/batch_wip/commit", ""},
			wantStatus: fiber.StatusCreated,
			check: func(t *testing.T, body map[string]any) {
				data := body["data"].(map[string]any)
				if data["landing"] != "/batches" {
					t.Errorf("data = %v", data)
				}
			},
		},
		{
			name:       "second commit is a no-op",
			call:       wizardCall{"POST", "/wizards/batch_wip/commit", ""},
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["message"] != "nothing to commit" {
					t.Errorf("body = %v", body)
				}
			},
		},
		{
			name:       "choose a retired line",
			call:       wizardCall{"POST", "/wizards/batch_wip", `{"step":1,"values":["gone"]}`},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "quantity for retired line",
			call:       wizardCall{"POST", "/wizards/batch_wip", `{"step":2,"values":["3"]}`},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "missing reference lands on the list",
			call:       wizardCall{"POST", "/wizards/batch_wip/commit", ""},
			wantStatus: fiber.StatusConflict,
			check: func(t *testing.T, body map[string]any) {
				if body["redirect"] != "/batches" {
					t.Errorf("body = %v", body)
				}
			},
		},
		{
			name:       "state was cleared",
			call:       wizardCall{"POST", "/wizards/batch_wip/commit", ""},
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				if body["message"] != "nothing to commit" {
					t.Errorf("body = %v", body)
				}
			},
		},
		{
			name:       "cancel",
			call:       wizardCall{"POST", "/wizards/batch_wip/cancel", ""},
			wantStatus: fiber.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				data := body["data"].(map[string]any)
				if data["landing"] != "/batches" {
					t.Errorf("data = %v", data)
				}
			},
		},
	}

	for _, st := range steps {
		status, body := st.call.do(t, app)
		if status != st.wantStatus {
			t.Fatalf("%s: status = %d, want %d (body %v)", st.name, status, st.wantStatus, body)
		}
		if st.check != nil {
			t.Run(st.name, func(t *testing.T) { st.check(t, body) })
		}
	}
	if commits != 1 {
		t.Errorf("commits = %d, want 1", commits)
	}
}

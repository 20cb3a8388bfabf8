package auth

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopfloor_backend/internals/constants"
	authModel "shopfloor_backend/internals/features/users/auth/model"
	authService "shopfloor_backend/internals/features/users/auth/service"
	helperAuth "shopfloor_backend/internals/helpers/auth"
)

type activeSet map[uuid.UUID]bool

func (a activeSet) IsActive(_ context.Context, id uuid.UUID) (bool, error) { return a[id], nil }

func TestAuthJWTAndRoles(t *testing.T) {
	tokens, err := authService.NewTokenService("mw-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	planner := &authModel.TeamUserModel{TeamUserID: uuid.New(), TeamUserRole: constants.RolePlanner}
	team := &authModel.TeamUserModel{TeamUserID: uuid.New(), TeamUserRole: constants.RoleTeam}
	gone := &authModel.TeamUserModel{TeamUserID: uuid.New(), TeamUserRole: constants.RolePlanner}
	users := activeSet{planner.TeamUserID: true, team.TeamUserID: true}

	app := fiber.New()
	p := app.Group("/api/p",
		AuthJWT(AuthJWTOpts{Tokens: tokens, Users: users}),
		OnlyRoles(constants.RoleErrorPlanner("planner routes"), constants.PlannerAndAbove...),
	)
	p.Get("/whoami", func(c *fiber.Ctx) error {
		id, err := helperAuth.GetUserIDFromToken(c)
		if err != nil {
			return err
		}
		return c.SendString(id.String() + " " + helperAuth.GetRole(c))
	})

	issue := func(u *authModel.TeamUserModel) string {
		raw, _, err := tokens.Issue(u)
		if err != nil {
			t.Fatal(err)
		}
		return raw
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "no header", want: fiber.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: fiber.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", want: fiber.StatusUnauthorized},
		{name: "team role", header: "Bearer " + issue(team), want: fiber.StatusForbidden},
		{name: "disabled account", header: "Bearer " + issue(gone), want: fiber.StatusForbidden},
		{name: "planner", header: "bearer  \"" + issue(planner) + "\"", want: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/p/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.want)
			}
			if tt.want == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				if want := planner.TeamUserID.String() + " planner"; string(body) != want {
					t.Errorf("body = %q, want %q", body, want)
				}
			}
		})
	}
}

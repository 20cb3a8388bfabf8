package dto

import (
	"testing"

	"shopfloor_backend/internals/helpers/apperr"
)

func TestUpdateSessionRequestToPatch(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }

	tests := []struct {
		name      string
		req       UpdateSessionRequest
		wantBreak *int
		wantLogin string
		wantErr   string
	}{
		{name: "manual minutes", req: UpdateSessionRequest{BreakMinutes: num(12)}, wantBreak: num(12)},
		{name: "quick button wins", req: UpdateSessionRequest{BreakMinutes: num(12), SetBreak: str("30")}, wantBreak: num(30)},
		{name: "quick zero", req: UpdateSessionRequest{SetBreak: str("0")}, wantBreak: num(0)},
		{name: "bad quick value", req: UpdateSessionRequest{SetBreak: str("15")}, wantErr: "set_break"},
		{name: "team time", req: UpdateSessionRequest{LoginTeamTime: str("08:30")}, wantLogin: "08:30"},
		{name: "blank team time ignored", req: UpdateSessionRequest{LoginTeamTime: str(" "), BreakMinutes: num(5)}, wantBreak: num(5)},
		{name: "bad logoff", req: UpdateSessionRequest{LogoffTeamTime: str("late")}, wantErr: "logoff_team_time"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.req.ToPatch()
			if tt.wantErr != "" {
				e, ok := apperr.As(err)
				if !ok || e.Field != tt.wantErr {
					t.Fatalf("err = %v, want field %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			switch {
			case tt.wantBreak == nil && p.BreakMinutes != nil:
				t.Errorf("break = %d, want none", *p.BreakMinutes)
			case tt.wantBreak != nil && (p.BreakMinutes == nil || *p.BreakMinutes != *tt.wantBreak):
				t.Errorf("break = %v, want %d", p.BreakMinutes, *tt.wantBreak)
			}
			if tt.wantLogin == "" {
				if p.LoginTime != nil {
					t.Errorf("login = %s, want none", p.LoginTime)
				}
			} else if p.LoginTime == nil || p.LoginTime.String() != tt.wantLogin {
				t.Errorf("login = %v, want %s", p.LoginTime, tt.wantLogin)
			}
		})
	}
}

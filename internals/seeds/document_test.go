package seeds

import (
	"strings"
	"testing"
)

const sampleDoc = `
subdepartments: [Sewing, Cutting]
team_users:
  - username: line1
    password: secret1
    role: team
    subdepartment: Sewing
    login_grace_period: 5
  - username: planner
    password: secret2
    role: planner
operators:
  - {badge_num: a100, name: Alice}
operations:
  - {name: Hem, subdepartment: Sewing}
breaks:
  - {name: Lunch, start: "12:00", end: "12:30"}
downtimes:
  - {name: Meeting, subdepartment: Sewing, fixed_duration: true, value: "15"}
  - {name: Machine, subdepartment: Cutting}
pros:
  - {pro_name: "P-1", style: ST1, color: RED, size: M, qty: 100, delivery_date: "2024-07-01", subdepartments: [Sewing]}
`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.TeamUsers) != 2 || doc.TeamUsers[0].GracePeriod != 5 {
		t.Errorf("team users = %+v", doc.TeamUsers)
	}
	v, err := doc.Downtimes[0].value()
	if err != nil || v == nil || v.String() != "15" {
		t.Errorf("meeting value = %v, %v", v, err)
	}
	if v, _ := doc.Downtimes[1].value(); v != nil {
		t.Errorf("machine value = %v, want nil", v)
	}
	rec, err := doc.Pros[0].record()
	if err != nil || rec.DeliveryDate == nil || rec.DeliveryDate.Format("2006-01-02") != "2024-07-01" {
		t.Errorf("pro record = %+v, %v", rec, err)
	}
	if !doc.Operators[0].record().Active {
		t.Error("operators are active unless marked inactive")
	}
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown field", doc: "subdepartments: [A]\nshifts: []\n", want: "shifts"},
		{name: "unknown subdepartment", doc: "subdepartments: [A]\noperations: [{name: X, subdepartment: B}]\n", want: `unknown subdepartment "B"`},
		{name: "bad role", doc: "team_users: [{username: u, password: secret1, role: boss}]\n", want: "invalid role"},
		{name: "break not 30 minutes", doc: "breaks: [{name: L, start: '12:00', end: '12:45'}]\n", want: "break L"},
		{name: "fixed downtime without value", doc: "subdepartments: [A]\ndowntimes: [{name: M, subdepartment: A, fixed_duration: true}]\n", want: "positive value"},
		{name: "bad delivery date", doc: "pros: [{pro_name: P, delivery_date: tomorrow}]\n", want: "pro P"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

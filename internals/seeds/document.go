package seeds

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"shopfloor_backend/internals/constants"
	breakModel "shopfloor_backend/internals/features/breaks/model"
	mdService "shopfloor_backend/internals/features/masterdata/service"
	"shopfloor_backend/internals/helpers/dbtime"
)

// Document is the reference-data file accepted by `seed --file`.
// Subdepartments are referenced by name everywhere else in the file.
type Document struct {
	Subdepartments []string        `yaml:"subdepartments"`
	TeamUsers      []TeamUserSeed  `yaml:"team_users"`
	Operators      []OperatorSeed  `yaml:"operators"`
	Operations     []OperationSeed `yaml:"operations"`
	Breaks         []BreakSeed     `yaml:"breaks"`
	Downtimes      []DowntimeSeed  `yaml:"downtimes"`
	Pros           []ProSeed       `yaml:"pros"`
}

type TeamUserSeed struct {
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	FirstName     string `yaml:"first_name"`
	LastName      string `yaml:"last_name"`
	Role          string `yaml:"role"`
	Subdepartment string `yaml:"subdepartment"`
	Location      string `yaml:"team_location"`
	GracePeriod   int    `yaml:"login_grace_period"`
	Inactive      bool   `yaml:"inactive"`
}

type OperatorSeed struct {
	BadgeNum string `yaml:"badge_num"`
	Name     string `yaml:"name"`
	Inactive bool   `yaml:"inactive"`
	PinCode  string `yaml:"pin_code"`
	Func     string `yaml:"func"`
}

func (o OperatorSeed) record() mdService.OperatorRecord {
	return mdService.OperatorRecord{BadgeNum: o.BadgeNum, Name: o.Name, Active: !o.Inactive, PinCode: o.PinCode, Func: o.Func}
}

type OperationSeed struct {
	Name          string `yaml:"name"`
	Subdepartment string `yaml:"subdepartment"`
	Description   string `yaml:"description"`
}

type BreakSeed struct {
	Name  string `yaml:"name"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type DowntimeSeed struct {
	Name          string `yaml:"name"`
	Subdepartment string `yaml:"subdepartment"`
	FixedDuration bool   `yaml:"fixed_duration"`
	Value         string `yaml:"value"`
}

// value is nil when no value is given.
func (d DowntimeSeed) value() (*decimal.Decimal, error) {
	if strings.TrimSpace(d.Value) == "" {
		return nil, nil
	}
	v, err := decimal.NewFromString(strings.TrimSpace(d.Value))
	if err != nil {
		return nil, fmt.Errorf("invalid value %q", d.Value)
	}
	v = v.Round(2)
	return &v, nil
}

type ProSeed struct {
	ProName        string   `yaml:"pro_name"`
	Style          string   `yaml:"style"`
	Color          string   `yaml:"color"`
	Size           string   `yaml:"size"`
	Qty            *int     `yaml:"qty"`
	DeliveryDate   string   `yaml:"delivery_date"`
	Status         string   `yaml:"status"`
	Destination    string   `yaml:"destination"`
	TPP            string   `yaml:"tpp"`
	Skeda          string   `yaml:"skeda"`
	Subdepartments []string `yaml:"subdepartments"`
}

func (p ProSeed) record() (mdService.ProRecord, error) {
	rec := mdService.ProRecord{
		ProName: p.ProName, Style: p.Style, Color: p.Color, Size: p.Size, Qty: p.Qty,
		Status: p.Status, Destination: p.Destination, TPP: p.TPP, Skeda: p.Skeda,
	}
	if p.DeliveryDate != "" {
		d, err := dbtime.ParseDate(p.DeliveryDate)
		if err != nil {
			return rec, fmt.Errorf("pro %s: %w", p.ProName, err)
		}
		rec.DeliveryDate = &d
	}
	return rec, nil
}

// Load reads and validates a seed file.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(b)
}

func Parse(b []byte) (*Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks references and per-row rules before anything is written.
func (d *Document) Validate() error {
	var errs []error
	subs := map[string]bool{}
	for _, s := range d.Subdepartments {
		subs[strings.TrimSpace(s)] = true
	}
	ref := func(what, name string) {
		if name != "" && !subs[name] {
			errs = append(errs, fmt.Errorf("%s: unknown subdepartment %q", what, name))
		}
	}

	for _, u := range d.TeamUsers {
		if strings.TrimSpace(u.Username) == "" {
			errs = append(errs, errors.New("team user without username"))
		}
		if !constants.IsValidRole(u.Role) {
			errs = append(errs, fmt.Errorf("team user %s: invalid role %q", u.Username, u.Role))
		}
		if u.GracePeriod < 0 {
			errs = append(errs, fmt.Errorf("team user %s: login_grace_period must be >= 0", u.Username))
		}
		ref("team user "+u.Username, u.Subdepartment)
	}
	for _, o := range d.Operators {
		if strings.TrimSpace(o.BadgeNum) == "" {
			errs = append(errs, fmt.Errorf("operator %q without badge_num", o.Name))
		}
	}
	for _, op := range d.Operations {
		if op.Subdepartment == "" {
			errs = append(errs, fmt.Errorf("operation %s: subdepartment is required", op.Name))
		}
		ref("operation "+op.Name, op.Subdepartment)
	}
	for _, b := range d.Breaks {
		if _, _, err := b.window(); err != nil {
			errs = append(errs, fmt.Errorf("break %s: %w", b.Name, err))
		}
	}
	for _, dt := range d.Downtimes {
		if dt.Subdepartment == "" {
			errs = append(errs, fmt.Errorf("downtime %s: subdepartment is required", dt.Name))
		}
		ref("downtime "+dt.Name, dt.Subdepartment)
		v, err := dt.value()
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("downtime %s: %w", dt.Name, err))
		case dt.FixedDuration && (v == nil || !v.IsPositive()):
			errs = append(errs, fmt.Errorf("downtime %s: fixed duration needs a positive value", dt.Name))
		}
	}
	for _, p := range d.Pros {
		if strings.TrimSpace(p.ProName) == "" {
			errs = append(errs, errors.New("pro without pro_name"))
		}
		if _, err := p.record(); err != nil {
			errs = append(errs, err)
		}
		for _, s := range p.Subdepartments {
			ref("pro "+p.ProName, s)
		}
	}
	return errors.Join(errs...)
}

func (b BreakSeed) window() (dbtime.Tod, dbtime.Tod, error) {
	start, err := dbtime.Parse(b.Start)
	if err != nil {
		return start, start, err
	}
	end, err := dbtime.Parse(b.End)
	if err != nil {
		return start, end, err
	}
	if !start.Before(end.Time) || dbtime.Span(start, end) != breakModel.BreakDurationMinutes {
		return start, end, breakModel.ErrBreakWindow
	}
	return start, end, nil
}

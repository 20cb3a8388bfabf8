package service

import (
	"fmt"

	"github.com/google/uuid"
)

// Single adapts a one-value draft field to Step.Selected.
func Single[T any](get func(*T) string) func(*T) []string {
	return func(d *T) []string {
		if v := get(d); v != "" {
			return []string{v}
		}
		return nil
	}
}

// ParseIDs reads the uuid values a choice step stored in a draft.
func ParseIDs(in []string) ([]uuid.UUID, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("no ids selected")
	}
	out := make([]uuid.UUID, 0, len(in))
	for _, s := range in {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

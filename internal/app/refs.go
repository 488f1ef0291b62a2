package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/teamtodo/internal/model"
)

// resolveRef finds one id among ids. ref may be the full id, a 1-based
// position in shown, or a prefix matching exactly one id. ok is false when
// nothing matches; an ambiguous prefix is a validation error.
func resolveRef(field, ref string, ids, shown []string) (string, bool, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", false, invalid(field, "reference is required")
	}
	for _, id := range ids {
		if id == ref {
			return id, true, nil
		}
	}
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(shown) {
			return shown[n-1], true, nil
		}
		return "", false, nil
	}
	match := ""
	for _, id := range ids {
		if !strings.HasPrefix(id, ref) {
			continue
		}
		if match != "" {
			return "", false, invalid(field, fmt.Sprintf("reference %q is ambiguous", ref))
		}
		match = id
	}
	return match, match != "", nil
}

func userIDs(users []model.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.ID)
	}
	return out
}

func taskIDs(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func goalIDs(goals []model.Goal) []string {
	out := make([]string, 0, len(goals))
	for _, g := range goals {
		out = append(out, g.ID)
	}
	return out
}

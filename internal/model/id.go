package model

import (
	"strings"

	"github.com/google/uuid"
)

const (
	UserIDPrefix = "user_"
	TaskIDPrefix = "task_"
	GoalIDPrefix = "goal_"
)

// NewID returns prefix followed by a UUIDv7, so ids sort by creation time.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return prefix + strings.ReplaceAll(id.String(), "-", "")
}

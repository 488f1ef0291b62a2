package model

import "slices"

// Dataset is the persisted part of the application state.
type Dataset struct {
	Users        []User
	Tasks        []Task
	Goals        []Goal
	ActiveUserID string
}

func (d Dataset) Clone() Dataset {
	return Dataset{
		Users:        slices.Clone(d.Users),
		Tasks:        slices.Clone(d.Tasks),
		Goals:        slices.Clone(d.Goals),
		ActiveUserID: d.ActiveUserID,
	}
}

package api

import "time"

// Project is a billable or internal project in the remote workspace.
type Project struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Client   string `json:"client,omitempty"`
	Archived bool   `json:"archived,omitempty"`
}

// Task is a unit of work under a project.
type Task struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	Active    bool   `json:"active"`
}

// TimeEntry is a tracked interval. End is nil while the entry is running.
type TimeEntry struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	TaskID      string     `json:"task_id,omitempty"`
	Description string     `json:"description,omitempty"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end,omitempty"`
}

// Running reports whether the entry is still being tracked.
func (e TimeEntry) Running() bool {
	return e.End == nil
}

// Duration returns the tracked duration; for a running entry it is the
// elapsed time so far.
func (e TimeEntry) Duration() time.Duration {
	end := time.Now()
	if e.End != nil {
		end = *e.End
	}
	return end.Sub(e.Start)
}

// StartRequest is the payload for starting a new time entry.
type StartRequest struct {
	TaskID      string `json:"task_id,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
	Description string `json:"description,omitempty"`
}

package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// TaskStatus represents the lifecycle state of a task as written by the
// Shrimp Task Manager. Files edited by hand may carry other values; consumers
// treat anything unknown as "not matching" rather than rejecting the file.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskPriority represents the priority levels of a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Dependency is a reference to another task. The producer has written both
// bare ID strings and {"taskId": "..."} objects over its lifetime, so both
// forms unmarshal into the same struct.
type Dependency struct {
	TaskID string `json:"taskId"`
}

type dependencyAlias Dependency

func (d *Dependency) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		d.TaskID = id
		return nil
	}
	var aux dependencyAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = Dependency(aux)
	return nil
}

// Task is one record from a project's tasks.json. Grouping and display fields
// (Story, Priority, AssignedAgent) are optional in the file; the zero value is
// the documented default for each.
type Task struct {
	ID               string       `json:"id" validate:"required"`
	Name             string       `json:"name" validate:"required"`
	Description      string       `json:"description,omitempty"`
	Notes            string       `json:"notes,omitempty"`
	Status           TaskStatus   `json:"status,omitempty"`
	Priority         TaskPriority `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	Story            string       `json:"story,omitempty"`
	StoryDescription string       `json:"storyDescription,omitempty"`
	AssignedAgent    string       `json:"assignedAgent,omitempty"`
	Dependencies     []Dependency `json:"dependencies,omitempty"`
	Summary          string       `json:"summary,omitempty"`
	CreatedAt        *time.Time   `json:"createdAt,omitempty"`
	UpdatedAt        *time.Time   `json:"updatedAt,omitempty"`
	CompletedAt      *time.Time   `json:"completedAt,omitempty"`
}

// TaskFile is the current on-disk shape of a project's tasks.json. Legacy
// files that hold a bare task array are normalized into this form by the
// store before anything else sees them.
type TaskFile struct {
	Tasks          []Task     `json:"tasks"`
	InitialRequest string     `json:"initialRequest,omitempty"`
	Summary        string     `json:"summary,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// global validator instance
var validate = validator.New()

// ValidateStruct performs validation on any struct that has validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var msgs []string
	for _, e := range validationErrors {
		msgs = append(msgs, fmt.Sprintf("field '%s' failed rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}

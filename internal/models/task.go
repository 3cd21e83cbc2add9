package models

import (
	"errors"
	"fmt"
	"strings"
)

// DefaultDateLayout matches the short en-US date shown on task cards.
const DefaultDateLayout = "1/2/2006"

// ErrEmptyField is returned when a task title or description is blank after trimming.
var ErrEmptyField = errors.New("field must not be empty")

// Task represents a task card
type Task struct {
	ID          int64  `firestore:"id" json:"id"`
	Title       string `firestore:"title" json:"title"`
	Description string `firestore:"description" json:"description"`
	Date        string `firestore:"date" json:"date"`
	IsActive    bool   `firestore:"isActive" json:"isActive"`
}

// Status returns the label shown on the card's toggle button.
func (t Task) Status() string {
	if t.IsActive {
		return "Completed"
	}
	return "Incomplete"
}

// Draft is a validated title/description pair ready to become a Task.
type Draft struct {
	Title       string
	Description string
}

// NewDraft trims both fields and rejects blank ones.
func NewDraft(title, description string) (Draft, error) {
	d := Draft{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
	if d.Title == "" {
		return Draft{}, fmt.Errorf("title: %w", ErrEmptyField)
	}
	if d.Description == "" {
		return Draft{}, fmt.Errorf("description: %w", ErrEmptyField)
	}
	return d, nil
}

// StatusPatch is the body of a partial status update.
type StatusPatch struct {
	IsActive *bool `json:"isActive"`
}

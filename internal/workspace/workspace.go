// Package workspace holds the compiled-in users and projects the dashboard
// shows. There is no load or save path.
package workspace

import (
	"errors"
	"fmt"
)

// ErrProjectNotFound is returned by Project for unknown ids.
var ErrProjectNotFound = errors.New("workspace: project not found")

// Status is a project's lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusOnHold    Status = "on-hold"
)

type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
}

type Project struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Progress    int    `json:"progress"`
	Members     []User `json:"members"`
	DueDate     string `json:"due_date"`
}

var (
	currentUser = User{ID: "u1", Name: "Alex Rivera", Avatar: "https://picsum.photos/id/1005/100/100", Role: "Product Owner"}

	users = []User{
		currentUser,
		{ID: "u2", Name: "Sarah Chen", Avatar: "https://picsum.photos/id/1011/100/100", Role: "Lead Dev"},
		{ID: "u3", Name: "Mike Johnson", Avatar: "https://picsum.photos/id/1012/100/100", Role: "Designer"},
		{ID: "u4", Name: "Emily Davis", Avatar: "https://picsum.photos/id/1027/100/100", Role: "Marketing"},
	}

	projects = []Project{
		{
			ID:          "p1",
			Name:        "Website Redesign",
			Description: "Overhaul the main corporate website with new branding guidelines.",
			Status:      StatusActive,
			Progress:    75,
			Members:     []User{users[0], users[2]},
			DueDate:     "2023-12-15",
		},
		{
			ID:          "p2",
			Name:        "Mobile App Launch",
			Description: "Prepare the iOS and Android apps for the Q1 global launch.",
			Status:      StatusOnHold,
			Progress:    40,
			Members:     []User{users[1], users[0], users[3]},
			DueDate:     "2024-02-28",
		},
		{
			ID:          "p3",
			Name:        "Internal Tools Migration",
			Description: "Migrating legacy CRM data to the new unified platform.",
			Status:      StatusCompleted,
			Progress:    100,
			Members:     []User{users[1]},
			DueDate:     "2023-10-01",
		},
		{
			ID:          "p4",
			Name:        "AI Feature Integration",
			Description: "Implementing Gemini API for smart summaries in the dashboard.",
			Status:      StatusActive,
			Progress:    15,
			Members:     []User{users[0], users[1]},
			DueDate:     "2024-01-20",
		},
	}
)

// CurrentUser returns the signed-in demo user.
func CurrentUser() User { return currentUser }

// Users returns a copy of all users.
func Users() []User {
	out := make([]User, len(users))
	copy(out, users)
	return out
}

// Projects returns a copy of all projects.
func Projects() []Project {
	out := make([]Project, len(projects))
	for i, p := range projects {
		out[i] = p.clone()
	}
	return out
}

// ProjectByID looks up a project by id.
func ProjectByID(id string) (Project, error) {
	for _, p := range projects {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return Project{}, fmt.Errorf("%w: %q", ErrProjectNotFound, id)
}

func (p Project) clone() Project {
	p.Members = append([]User(nil), p.Members...)
	return p
}

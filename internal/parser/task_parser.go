package parser

import (
	"regexp"
	"strings"

	"github.com/balkashynov/tick/internal/models"
)

var (
	projectRegex = regexp.MustCompile(`@([a-zA-Z0-9_-]+)`)
	doneRegex    = regexp.MustCompile(`(^|\s)\+done\b`)
)

// ParsedTask represents a task parsed from the command line
type ParsedTask struct {
	Name    string
	Project string
	Done    bool
	Errors  []string
}

// ParseTask extracts metadata from a task line using natural syntax
// Syntax: "Task name @project +done"
func ParseTask(input string) ParsedTask {
	result := ParsedTask{
		Errors: []string{},
	}

	// Extract project (@project-name); only one is allowed
	projectMatches := projectRegex.FindAllStringSubmatch(input, -1)
	if len(projectMatches) > 0 {
		result.Project = projectMatches[0][1]
		if len(projectMatches) > 1 {
			result.Errors = append(result.Errors, "Only one @project is allowed")
		}
		input = projectRegex.ReplaceAllString(input, "")
	}

	// +done creates the task already completed
	if doneRegex.MatchString(input) {
		result.Done = true
		input = doneRegex.ReplaceAllString(input, " ")
	}

	// Clean up the name (remove extra spaces)
	result.Name = strings.Join(strings.Fields(input), " ")

	if result.Name == "" {
		result.Errors = append(result.Errors, "Task name is required")
	}
	if result.Project == "" {
		result.Errors = append(result.Errors, "Project is required, add it as @project")
	}

	return result
}

// Valid reports whether the line parsed without errors.
func (p ParsedTask) Valid() bool {
	return len(p.Errors) == 0
}

// MatchProject finds a project by name ignoring case, with dashes standing in
// for spaces so "@side-project" matches "Side Project".
func MatchProject(projects []models.Project, name string) (*models.Project, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	for i := range projects {
		candidate := projects[i].Name
		if strings.EqualFold(candidate, name) ||
			strings.EqualFold(strings.ReplaceAll(candidate, " ", "-"), name) {
			return &projects[i], true
		}
	}
	return nil, false
}

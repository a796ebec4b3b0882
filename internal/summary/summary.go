// Package summary turns loaded sessions into the per-project and per-day
// aggregates shown on dashboards. Everything here is a pure function over
// sessions whose Task.Project relation has already been loaded.
package summary

import (
	"math"
	"time"

	"github.com/balkashynov/tick/internal/calendar"
	"github.com/balkashynov/tick/internal/models"
)

// ProjectSessions is one group produced by GroupByProject.
type ProjectSessions struct {
	Project  models.Project
	Sessions []models.Session
}

// ProjectSummary annotates a project with the time spent on it.
type ProjectSummary struct {
	Project      models.Project `json:"project"`
	TotalSeconds int64          `json:"total_seconds"`
	Spent        HoursMinutes   `json:"spent"`
	Percentage   int            `json:"percentage"`
}

// DaySummary is one zero-filled entry of a daily series.
type DaySummary struct {
	Date         calendar.Date `json:"date"`
	Label        string        `json:"label"`
	TotalSeconds int64         `json:"total_seconds"`
	Spent        HoursMinutes  `json:"spent"`
}

// TotalSeconds sums the durations of sessions.
func TotalSeconds(sessions []models.Session) int64 {
	var total int64
	for _, s := range sessions {
		total += s.DurationSeconds()
	}
	return total
}

// GroupByProject groups sessions by their task's project. Groups come out in
// the order their project first appears and keep input order inside.
func GroupByProject(sessions []models.Session) []ProjectSessions {
	var groups []ProjectSessions
	index := make(map[uint]int)

	for _, s := range sessions {
		projectID := s.Task.Project.ID
		i, ok := index[projectID]
		if !ok {
			i = len(groups)
			index[projectID] = i
			groups = append(groups, ProjectSessions{Project: s.Task.Project})
		}
		groups[i].Sessions = append(groups[i].Sessions, s)
	}

	return groups
}

// GroupByDate buckets sessions by the calendar day of their start time as
// seen from loc. Sessions that never started are left out.
func GroupByDate(sessions []models.Session, loc *time.Location) map[calendar.Date][]models.Session {
	byDate := make(map[calendar.Date][]models.Session)
	for _, s := range sessions {
		if s.StartTime == nil {
			continue
		}
		day := calendar.Today(*s.StartTime, loc)
		byDate[day] = append(byDate[day], s)
	}
	return byDate
}

// BuildProjectSummary computes totals and the share of totalSeconds for each
// group. Percentages round half away from zero; a zero total yields zero
// percent everywhere.
func BuildProjectSummary(groups []ProjectSessions, totalSeconds int64) []ProjectSummary {
	summaries := make([]ProjectSummary, 0, len(groups))
	for _, g := range groups {
		seconds := TotalSeconds(g.Sessions)
		percentage := 0
		if totalSeconds > 0 {
			percentage = int(math.Round(float64(seconds) / float64(totalSeconds) * 100))
		}
		summaries = append(summaries, ProjectSummary{
			Project:      g.Project,
			TotalSeconds: seconds,
			Spent:        Breakdown(seconds),
			Percentage:   percentage,
		})
	}
	return summaries
}

// BuildDailySeries returns one entry per day from start through end
// inclusive, labelled with the Go time layout labelLayout. Days without
// sessions are present with zero seconds.
func BuildDailySeries(byDate map[calendar.Date][]models.Session, start, end calendar.Date, labelLayout string) []DaySummary {
	var series []DaySummary
	for day := start; !day.After(end); day = day.AddDays(1) {
		seconds := TotalSeconds(byDate[day])
		series = append(series, DaySummary{
			Date:         day,
			Label:        day.Format(labelLayout),
			TotalSeconds: seconds,
			Spent:        Breakdown(seconds),
		})
	}
	return series
}

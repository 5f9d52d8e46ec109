package gamification

import (
	"time"

	"roboquest_backend/internal/model"
)

// Event is a single state transition of a learner's progress record.
type Event interface {
	kind() string
}

type TutorialCompleted struct {
	TutorialID string
	XPReward   int
}

type ProjectCompleted struct {
	ProjectID string
}

type ModuleCompleted struct {
	CourseID    string
	ModuleID    int
	ModuleCount int
}

type LoggedIn struct{}

// Viewed is the read path: it only performs the daily rollover.
type Viewed struct{}

type DailyGoalChanged struct {
	Goal int
}

func (TutorialCompleted) kind() string { return "tutorial" }
func (ProjectCompleted) kind() string  { return "project" }
func (ModuleCompleted) kind() string   { return "module" }
func (LoggedIn) kind() string          { return "login" }
func (Viewed) kind() string            { return "view" }
func (DailyGoalChanged) kind() string  { return "daily_goal" }

// Kind names the event for logs and metrics.
func Kind(e Event) string {
	return e.kind()
}

// Outcome describes what Apply did.
type Outcome struct {
	// Changed is false when the record need not be written back.
	Changed          bool
	AlreadyCompleted bool
	XPEarned         int
	CourseCompleted  bool
	LeveledUp        bool
}

// Apply returns the next state of p after ev. p itself is never modified.
func (r Rules) Apply(p *model.UserProgress, ev Event, now time.Time) (*model.UserProgress, Outcome) {
	next := p.Clone()
	next.Normalize(r.DefaultDailyGoal)

	var out Outcome
	switch e := ev.(type) {
	case Viewed:
		out.Changed = RollOver(next, now)

	case LoggedIn:
		streak := r.UpdateStreak(next, now)
		rolled := RollOver(next, now)
		out.Changed = streak || rolled

	case DailyGoalChanged:
		if e.Goal >= 1 && e.Goal != next.DailyGoal {
			next.DailyGoal = e.Goal
			out.Changed = true
		}

	case TutorialCompleted:
		if containsString(next.CompletedTutorials, e.TutorialID) {
			out.AlreadyCompleted = true
			return p, out
		}
		RollOver(next, now)
		xp := r.XPReward(e.XPReward)
		before := next.Level
		next.TotalXP += xp
		next.Level = r.LevelFromXP(next.TotalXP)
		next.LessonsCompleted++
		next.DailyProgress++
		next.CompletedTutorials = append(next.CompletedTutorials, e.TutorialID)
		out.Changed = true
		out.XPEarned = xp
		out.LeveledUp = next.Level > before

	case ProjectCompleted:
		if containsString(next.CompletedProjects, e.ProjectID) {
			out.AlreadyCompleted = true
			return p, out
		}
		RollOver(next, now)
		next.ProjectsBuilt++
		next.CompletedProjects = append(next.CompletedProjects, e.ProjectID)
		out.Changed = true

	case ModuleCompleted:
		modules := next.CoursesInProgress[e.CourseID]
		if containsInt(modules, e.ModuleID) {
			out.AlreadyCompleted = true
			out.CourseCompleted = len(modules) >= e.ModuleCount
			return p, out
		}
		RollOver(next, now)
		modules = append(modules, e.ModuleID)
		next.CoursesInProgress[e.CourseID] = modules
		out.CourseCompleted = len(modules) >= e.ModuleCount
		if out.CourseCompleted && !containsString(next.CoursesCompleted, e.CourseID) {
			next.CoursesCompleted = append(next.CoursesCompleted, e.CourseID)
		}
		out.Changed = true
	}

	if out.Changed {
		next.UpdatedAt = now
		next.Revision++
		return next, out
	}
	return p, out
}

package gamification

import (
	"testing"

	"roboquest_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func findBadge(t *testing.T, s model.AchievementSummary, id string) model.Badge {
	t.Helper()
	for _, b := range s.Badges {
		if b.ID == id {
			return b
		}
	}
	t.Fatalf("badge %s not found", id)
	return model.Badge{}
}

func TestAchievements_DerivedFromCounters(t *testing.T) {
	p := freshProgress()
	p.LessonsCompleted = 12
	p.TotalXP = 650
	p.StreakDays = 7
	p.CoursesCompleted = []string{"course_scratch_fundamentals"}

	s := Achievements(p)
	assert.Equal(t, 12, s.Total)

	assert.True(t, findBadge(t, s, "first_lesson").Earned)
	assert.True(t, findBadge(t, s, "lesson_master").Earned)
	expert := findBadge(t, s, "lesson_expert")
	assert.False(t, expert.Earned)
	assert.Equal(t, 12, expert.Progress)

	assert.True(t, findBadge(t, s, "xp_collector").Earned)
	assert.True(t, findBadge(t, s, "week_streak").Earned)
	assert.True(t, findBadge(t, s, "first_course").Earned)
	assert.False(t, findBadge(t, s, "first_project").Earned)
	assert.False(t, findBadge(t, s, "sharer").Earned)

	assert.Equal(t, 5, s.Earned)
	assert.Equal(t, 41, s.Percentage)
}

func TestAchievements_ProgressCapped(t *testing.T) {
	p := freshProgress()
	p.TotalXP = 5000
	s := Achievements(p)
	assert.Equal(t, 500, findBadge(t, s, "xp_collector").Progress)
	assert.Equal(t, 2000, findBadge(t, s, "xp_master").Progress)
}

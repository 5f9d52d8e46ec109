package gamification

import "roboquest_backend/internal/model"

type badgeDef struct {
	id          string
	title       string
	description string
	category    model.BadgeCategory
	requirement int
	// metric returns nil for badges no counter feeds yet
	metric func(p *model.UserProgress) int
}

var badgeDefs = []badgeDef{
	{"first_lesson", "Getting Started", "Complete your first lesson", model.BadgeLearning, 1,
		func(p *model.UserProgress) int { return p.LessonsCompleted }},
	{"lesson_master", "Dedicated Learner", "Complete 10 lessons", model.BadgeLearning, 10,
		func(p *model.UserProgress) int { return p.LessonsCompleted }},
	{"lesson_expert", "Learning Expert", "Complete 50 lessons", model.BadgeLearning, 50,
		func(p *model.UserProgress) int { return p.LessonsCompleted }},
	{"first_project", "Builder", "Complete your first project", model.BadgeMilestone, 1,
		func(p *model.UserProgress) int { return p.ProjectsBuilt }},
	{"first_course", "Course Master", "Complete your first full course", model.BadgeMilestone, 1,
		func(p *model.UserProgress) int { return len(p.CoursesCompleted) }},
	{"level_up", "Rising Star", "Reach Level 5", model.BadgeMilestone, 5,
		func(p *model.UserProgress) int { return p.Level }},
	{"xp_collector", "XP Collector", "Earn 500 XP", model.BadgeMilestone, 500,
		func(p *model.UserProgress) int { return p.TotalXP }},
	{"xp_master", "XP Master", "Earn 2000 XP", model.BadgeMilestone, 2000,
		func(p *model.UserProgress) int { return p.TotalXP }},
	{"week_streak", "Consistent Learner", "Maintain a 7-day learning streak", model.BadgeStreak, 7,
		func(p *model.UserProgress) int { return p.StreakDays }},
	{"month_streak", "Dedication Master", "Maintain a 30-day learning streak", model.BadgeStreak, 30,
		func(p *model.UserProgress) int { return p.StreakDays }},
	{"sharer", "Knowledge Sharer", "Share your first achievement", model.BadgeSocial, 1, nil},
	{"helper", "Community Helper", "Help 5 other learners", model.BadgeSocial, 5, nil},
}

// Achievements derives the badge board from the counters in p.
func Achievements(p *model.UserProgress) model.AchievementSummary {
	badges := make([]model.Badge, 0, len(badgeDefs))
	earned := 0
	for _, d := range badgeDefs {
		b := model.Badge{
			ID:          d.id,
			Title:       d.title,
			Description: d.description,
			Category:    d.category,
			Requirement: d.requirement,
		}
		if d.metric != nil {
			v := d.metric(p)
			if v > d.requirement {
				v = d.requirement
			}
			if v < 0 {
				v = 0
			}
			b.Progress = v
			b.Earned = v >= d.requirement
		}
		if b.Earned {
			earned++
		}
		badges = append(badges, b)
	}

	return model.AchievementSummary{
		Badges:     badges,
		Earned:     earned,
		Total:      len(badges),
		Percentage: earned * 100 / len(badges),
	}
}

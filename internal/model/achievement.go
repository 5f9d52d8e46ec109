package model

type BadgeCategory string

const (
	BadgeLearning  BadgeCategory = "learning"
	BadgeMilestone BadgeCategory = "milestone"
	BadgeStreak    BadgeCategory = "streak"
	BadgeSocial    BadgeCategory = "social"
)

// Badge 成就徽章，由进度计数实时推导，不持久化
// swagger:model Badge
type Badge struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    BadgeCategory `json:"category"`
	Requirement int           `json:"requirement"`
	Progress    int           `json:"progress"`
	Earned      bool          `json:"earned"`
}

type AchievementSummary struct {
	Badges     []Badge `json:"badges"`
	Earned     int     `json:"earned"`
	Total      int     `json:"total"`
	Percentage int     `json:"percentage"`
}

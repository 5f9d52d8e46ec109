package model

import "time"

// UserProgress 每个用户一份的学习进度记录，存放在 KV 中
// swagger:model UserProgress
type UserProgress struct {
	Level              int              `json:"level"`
	TotalXP            int              `json:"totalXP"`
	StreakDays         int              `json:"streakDays"`
	LastLoginDate      string           `json:"lastLoginDate"`
	LoginDates         []string         `json:"loginDates"`
	CoursesCompleted   []string         `json:"coursesCompleted"`
	CoursesInProgress  map[string][]int `json:"coursesInProgress"`
	LessonsCompleted   int              `json:"lessonsCompleted"`
	ProjectsBuilt      int              `json:"projectsBuilt"`
	Achievements       []string         `json:"achievements"`
	CompletedTutorials []string         `json:"completedTutorials"`
	CompletedProjects  []string         `json:"completedProjects"`
	DailyGoal          int              `json:"dailyGoal"`
	DailyProgress      int              `json:"dailyProgress"`
	LastActiveDate     string           `json:"lastActiveDate"`
	CreatedAt          time.Time        `json:"createdAt"`
	UpdatedAt          time.Time        `json:"updatedAt,omitempty"`
	// Revision is bumped on every persisted mutation.
	Revision int64 `json:"revision"`
}

// NewUserProgress returns the zero-valued record a new learner starts with.
func NewUserProgress(today string, dailyGoal int, now time.Time) *UserProgress {
	return &UserProgress{
		LoginDates:         []string{today},
		LastLoginDate:      today,
		LastActiveDate:     today,
		CoursesCompleted:   []string{},
		CoursesInProgress:  map[string][]int{},
		Achievements:       []string{},
		CompletedTutorials: []string{},
		CompletedProjects:  []string{},
		DailyGoal:          dailyGoal,
		CreatedAt:          now,
	}
}

// Normalize fills nil collections so records written by older clients behave like new ones.
func (p *UserProgress) Normalize(defaultDailyGoal int) {
	if p.LoginDates == nil {
		p.LoginDates = []string{}
	}
	if p.CoursesCompleted == nil {
		p.CoursesCompleted = []string{}
	}
	if p.CoursesInProgress == nil {
		p.CoursesInProgress = map[string][]int{}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	if p.CompletedTutorials == nil {
		p.CompletedTutorials = []string{}
	}
	if p.CompletedProjects == nil {
		p.CompletedProjects = []string{}
	}
	if p.DailyGoal < 1 {
		p.DailyGoal = defaultDailyGoal
	}
}

// Clone returns a deep copy.
func (p *UserProgress) Clone() *UserProgress {
	c := *p
	c.LoginDates = append([]string(nil), p.LoginDates...)
	c.CoursesCompleted = append([]string(nil), p.CoursesCompleted...)
	c.Achievements = append([]string(nil), p.Achievements...)
	c.CompletedTutorials = append([]string(nil), p.CompletedTutorials...)
	c.CompletedProjects = append([]string(nil), p.CompletedProjects...)
	c.CoursesInProgress = make(map[string][]int, len(p.CoursesInProgress))
	for k, v := range p.CoursesInProgress {
		c.CoursesInProgress[k] = append([]int(nil), v...)
	}
	return &c
}

// UserSettings 用户偏好设置
// swagger:model UserSettings
type UserSettings struct {
	Language              string    `json:"language"`
	Theme                 string    `json:"theme"`
	SoundEffects          bool      `json:"soundEffects"`
	BackgroundMusic       bool      `json:"backgroundMusic"`
	Notifications         bool      `json:"notifications"`
	EmailUpdates          bool      `json:"emailUpdates"`
	ParentalNotifications bool      `json:"parentalNotifications"`
	DailyGoal             int       `json:"dailyGoal,omitempty"`
	UpdatedAt             time.Time `json:"updatedAt,omitempty"`
}

func DefaultUserSettings() *UserSettings {
	return &UserSettings{
		Language:              "en",
		Theme:                 "light",
		SoundEffects:          true,
		BackgroundMusic:       false,
		Notifications:         true,
		EmailUpdates:          false,
		ParentalNotifications: true,
	}
}

// SettingsPatch carries only the fields a client sent.
type SettingsPatch struct {
	Language              *string `json:"language"`
	Theme                 *string `json:"theme"`
	SoundEffects          *bool   `json:"soundEffects"`
	BackgroundMusic       *bool   `json:"backgroundMusic"`
	Notifications         *bool   `json:"notifications"`
	EmailUpdates          *bool   `json:"emailUpdates"`
	ParentalNotifications *bool   `json:"parentalNotifications"`
	DailyGoal             *int    `json:"dailyGoal"`
}

func (s *UserSettings) Apply(p SettingsPatch) {
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.SoundEffects != nil {
		s.SoundEffects = *p.SoundEffects
	}
	if p.BackgroundMusic != nil {
		s.BackgroundMusic = *p.BackgroundMusic
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.EmailUpdates != nil {
		s.EmailUpdates = *p.EmailUpdates
	}
	if p.ParentalNotifications != nil {
		s.ParentalNotifications = *p.ParentalNotifications
	}
	if p.DailyGoal != nil {
		s.DailyGoal = *p.DailyGoal
	}
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank             int    `json:"rank"`
	UserID           string `json:"userId"`
	TotalXP          int    `json:"totalXP"`
	Level            int    `json:"level"`
	StreakDays       int    `json:"streakDays"`
	LessonsCompleted int    `json:"lessonsCompleted"`
}

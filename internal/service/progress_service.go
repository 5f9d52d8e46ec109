package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"roboquest_backend/internal/gamification"
	"roboquest_backend/internal/model"
	"roboquest_backend/internal/repository"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/kvstore"
	"roboquest_backend/pkg/logger"
	"roboquest_backend/pkg/monitoring"
	"roboquest_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ProgressView 是 GET /user/progress 的数据部分
type ProgressView struct {
	Progress *model.UserProgress `json:"progress"`
	Settings *model.UserSettings `json:"settings"`
	Level    LevelInfo           `json:"levelInfo"`
}

type LevelInfo struct {
	Level       int `json:"level"`
	NextLevelXP int `json:"nextLevelXP"`
}

type CompletionResult struct {
	Progress         *model.UserProgress `json:"progress"`
	AlreadyCompleted bool                `json:"alreadyCompleted"`
	XPEarned         int                 `json:"xpEarned"`
	CourseCompleted  bool                `json:"courseCompleted"`
	LeveledUp        bool                `json:"leveledUp"`
	TimeSpent        *int                `json:"timeSpent,omitempty"`
}

type ProgressService struct {
	ProgressRepo *repository.ProgressRepository
	SettingsRepo *repository.SettingsRepository
	ContentRepo  *repository.ContentRepository
	CourseRepo   *repository.CourseRepository
	ProjectRepo  *repository.ProjectRepository
	Rules        gamification.Rules

	LeaderboardSize int
	// Now 可替换，测试里用固定时钟
	Now func() time.Time
}

func NewProgressService(
	progressRepo *repository.ProgressRepository,
	settingsRepo *repository.SettingsRepository,
	contentRepo *repository.ContentRepository,
	courseRepo *repository.CourseRepository,
	projectRepo *repository.ProjectRepository,
	rules gamification.Rules,
	leaderboardSize int,
) *ProgressService {
	if leaderboardSize <= 0 {
		leaderboardSize = 10
	}
	return &ProgressService{
		ProgressRepo:    progressRepo,
		SettingsRepo:    settingsRepo,
		ContentRepo:     contentRepo,
		CourseRepo:      courseRepo,
		ProjectRepo:     projectRepo,
		Rules:           rules,
		LeaderboardSize: leaderboardSize,
		Now:             time.Now,
	}
}

func (s *ProgressService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// apply runs ev against the learner's record atomically, creating the record on first touch.
func (s *ProgressService) apply(ctx context.Context, userID string, ev gamification.Event) (*model.UserProgress, gamification.Outcome, error) {
	now := s.now()
	var out gamification.Outcome
	p, err := s.ProgressRepo.Mutate(ctx, userID, func(current *model.UserProgress) (*model.UserProgress, bool, error) {
		created := false
		if current == nil {
			current = model.NewUserProgress(gamification.Day(now), s.Rules.DefaultDailyGoal, now)
			created = true
		}
		next, o := s.Rules.Apply(current, ev, now)
		out = o
		return next, created || o.Changed, nil
	})
	if err != nil {
		return nil, out, err
	}
	return p, out, nil
}

// InitUser writes the zero-valued progress record and default settings for a new account.
func (s *ProgressService) InitUser(ctx context.Context, userID string) error {
	now := s.now()
	p := model.NewUserProgress(gamification.Day(now), s.Rules.DefaultDailyGoal, now)
	if err := s.ProgressRepo.Save(ctx, userID, p); err != nil {
		return err
	}
	return s.SettingsRepo.Save(ctx, userID, model.DefaultUserSettings())
}

// RecordLogin updates the login streak.
func (s *ProgressService) RecordLogin(ctx context.Context, userID string) (*model.UserProgress, error) {
	p, _, err := s.apply(ctx, userID, gamification.LoggedIn{})
	return p, err
}

// GetOrInitProgress returns the learner's record after the daily rollover, plus settings.
func (s *ProgressService) GetOrInitProgress(ctx context.Context, userID string) (*ProgressView, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.GetOrInitProgress")
	defer span.End()

	p, _, err := s.apply(ctx, userID, gamification.Viewed{})
	if err != nil {
		return nil, err
	}

	settings, err := s.SettingsRepo.Get(ctx, userID)
	if errors.Is(err, kvstore.ErrNotFound) {
		settings = model.DefaultUserSettings()
	} else if err != nil {
		return nil, err
	}

	return &ProgressView{
		Progress: p,
		Settings: settings,
		Level: LevelInfo{
			Level:       p.Level,
			NextLevelXP: s.Rules.NextLevelXP(p.TotalXP),
		},
	}, nil
}

func (s *ProgressService) CompleteTutorial(ctx context.Context, userID, tutorialID string) (*CompletionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.CompleteTutorial")
	defer span.End()
	span.SetAttributes(attribute.String("tutorial.id", tutorialID))

	item, err := s.ContentRepo.Get(ctx, tutorialID)
	if errors.Is(err, util.ErrContentNotFound) {
		return nil, util.ErrTutorialNotFound
	}
	if err != nil {
		return nil, err
	}

	p, out, err := s.apply(ctx, userID, gamification.TutorialCompleted{TutorialID: item.ID, XPReward: item.XPReward})
	if err != nil {
		return nil, err
	}
	s.observe("tutorial", out)

	if !out.AlreadyCompleted {
		logger.Log.Info("Tutorial completed",
			zap.String("user_id", userID),
			zap.String("tutorial_id", tutorialID),
			zap.Int("xp", out.XPEarned),
			zap.Int("total_xp", p.TotalXP),
			zap.Bool("leveled_up", out.LeveledUp))
	}

	return &CompletionResult{
		Progress:         p,
		AlreadyCompleted: out.AlreadyCompleted,
		XPEarned:         out.XPEarned,
		LeveledUp:        out.LeveledUp,
	}, nil
}

// CompleteProject records a practice project. Projects award no XP; timeSpent is only echoed.
func (s *ProgressService) CompleteProject(ctx context.Context, userID, projectID string, timeSpent *int) (*CompletionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.CompleteProject")
	defer span.End()
	span.SetAttributes(attribute.String("project.id", projectID))

	if _, err := s.ProjectRepo.Get(ctx, projectID); err != nil {
		return nil, err
	}

	p, out, err := s.apply(ctx, userID, gamification.ProjectCompleted{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	s.observe("project", out)

	fields := []zap.Field{zap.String("user_id", userID), zap.String("project_id", projectID)}
	if timeSpent != nil {
		fields = append(fields, zap.Int("time_spent", *timeSpent))
	}
	if !out.AlreadyCompleted {
		logger.Log.Info("Project completed", fields...)
	}

	return &CompletionResult{
		Progress:         p,
		AlreadyCompleted: out.AlreadyCompleted,
		TimeSpent:        timeSpent,
	}, nil
}

func (s *ProgressService) CompleteCourseModule(ctx context.Context, userID, courseID string, moduleID int) (*CompletionResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "ProgressService.CompleteCourseModule")
	defer span.End()
	span.SetAttributes(attribute.String("course.id", courseID), attribute.Int("module.id", moduleID))

	course, err := s.CourseRepo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.HasModule(moduleID) {
		return nil, util.ErrModuleNotFound
	}

	moduleCount := course.ModuleCount
	if moduleCount <= 0 {
		moduleCount = len(course.Modules)
	}

	p, out, err := s.apply(ctx, userID, gamification.ModuleCompleted{
		CourseID:    courseID,
		ModuleID:    moduleID,
		ModuleCount: moduleCount,
	})
	if err != nil {
		return nil, err
	}
	s.observe("module", out)

	if out.CourseCompleted && !out.AlreadyCompleted {
		logger.Log.Info("Course completed",
			zap.String("user_id", userID),
			zap.String("course_id", courseID))
	}

	return &CompletionResult{
		Progress:         p,
		AlreadyCompleted: out.AlreadyCompleted,
		CourseCompleted:  out.CourseCompleted,
	}, nil
}

// UpdateSettings merges patch into the stored settings. dailyGoal is mirrored into progress.
func (s *ProgressService) UpdateSettings(ctx context.Context, userID string, patch model.SettingsPatch) (*model.UserSettings, error) {
	if patch.DailyGoal != nil && *patch.DailyGoal < 1 {
		return nil, fmt.Errorf("%w: dailyGoal must be at least 1", util.ErrValidation)
	}
	if patch.Theme != nil && *patch.Theme != "light" && *patch.Theme != "dark" {
		return nil, fmt.Errorf("%w: theme must be light or dark", util.ErrValidation)
	}

	now := s.now()
	settings, err := s.SettingsRepo.Merge(ctx, userID, patch, func(st *model.UserSettings) {
		st.UpdatedAt = now
	})
	if err != nil {
		return nil, err
	}

	if patch.DailyGoal != nil {
		if _, _, err := s.apply(ctx, userID, gamification.DailyGoalChanged{Goal: *patch.DailyGoal}); err != nil {
			return nil, err
		}
	}
	return settings, nil
}

// Leaderboard ranks learners by total XP, ties broken by user id.
func (s *ProgressService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	records, err := s.ProgressRepo.All(ctx)
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		a, b := records[i].Progress, records[j].Progress
		if a.TotalXP != b.TotalXP {
			return a.TotalXP > b.TotalXP
		}
		return records[i].UserID < records[j].UserID
	})

	if len(records) > s.LeaderboardSize {
		records = records[:s.LeaderboardSize]
	}

	entries := make([]model.LeaderboardEntry, len(records))
	for i, r := range records {
		entries[i] = model.LeaderboardEntry{
			Rank:             i + 1,
			UserID:           r.UserID,
			TotalXP:          r.Progress.TotalXP,
			Level:            r.Progress.Level,
			StreakDays:       r.Progress.StreakDays,
			LessonsCompleted: r.Progress.LessonsCompleted,
		}
	}
	return entries, nil
}

func (s *ProgressService) Achievements(ctx context.Context, userID string) (model.AchievementSummary, error) {
	view, err := s.GetOrInitProgress(ctx, userID)
	if err != nil {
		return model.AchievementSummary{}, err
	}
	return gamification.Achievements(view.Progress), nil
}

func (s *ProgressService) observe(kind string, out gamification.Outcome) {
	result := "recorded"
	if out.AlreadyCompleted {
		result = "already_completed"
	}
	monitoring.Completions.WithLabelValues(kind, result).Inc()
	if out.XPEarned > 0 {
		monitoring.XPAwarded.Add(float64(out.XPEarned))
	}
}

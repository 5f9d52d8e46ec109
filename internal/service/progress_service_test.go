package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"roboquest_backend/internal/model"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/kvstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrInitProgress_CreatesDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.progress.GetOrInitProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Progress.Level)
	assert.Equal(t, 0, view.Progress.TotalXP)
	assert.Equal(t, 2, view.Progress.DailyGoal)
	assert.Equal(t, []string{"2024-05-10"}, view.Progress.LoginDates)
	assert.Equal(t, "en", view.Settings.Language)
	assert.Equal(t, 200, view.Level.NextLevelXP)

	// 首次读取即落库
	_, err = f.progress.ProgressRepo.Get(ctx, "u1")
	assert.NoError(t, err)
}

func TestCompleteTutorial_AwardsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTutorial(t, "tutorial_python_1", 0)
	require.NoError(t, f.progress.InitUser(ctx, "u1"))

	res, err := f.progress.CompleteTutorial(ctx, "u1", "tutorial_python_1")
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	assert.Equal(t, 50, res.XPEarned, "unset reward falls back to the default")
	assert.Equal(t, 50, res.Progress.TotalXP)
	assert.Equal(t, 1, res.Progress.Level)
	assert.Equal(t, 1, res.Progress.LessonsCompleted)
	assert.Equal(t, 1, res.Progress.DailyProgress)
	assert.Equal(t, []string{"tutorial_python_1"}, res.Progress.CompletedTutorials)

	res, err = f.progress.CompleteTutorial(ctx, "u1", "tutorial_python_1")
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Equal(t, 0, res.XPEarned)
	assert.Equal(t, 50, res.Progress.TotalXP)
	assert.Equal(t, 1, res.Progress.LessonsCompleted)
}

func TestCompleteTutorial_LevelUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTutorial(t, "t1", 150)
	f.seedTutorial(t, "t2", 100)

	_, err := f.progress.CompleteTutorial(ctx, "u1", "t1")
	require.NoError(t, err)
	res, err := f.progress.CompleteTutorial(ctx, "u1", "t2")
	require.NoError(t, err)
	assert.Equal(t, 250, res.Progress.TotalXP)
	assert.Equal(t, 2, res.Progress.Level)
	assert.True(t, res.LeveledUp)
}

func TestCompleteTutorial_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.progress.CompleteTutorial(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, util.ErrTutorialNotFound)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestCompleteTutorial_ConcurrentCallsAwardOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTutorial(t, "t1", 50)
	require.NoError(t, f.progress.InitUser(ctx, "u1"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.progress.CompleteTutorial(ctx, "u1", "t1")
		}()
	}
	wg.Wait()

	p, err := f.progress.ProgressRepo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 50, p.TotalXP)
	assert.Equal(t, 1, p.LessonsCompleted)
}

func TestCompleteTutorial_DailyRollover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTutorial(t, "t1", 50)
	f.seedTutorial(t, "t2", 50)

	_, err := f.progress.CompleteTutorial(ctx, "u1", "t1")
	require.NoError(t, err)

	f.setNow(day(2024, 5, 11))
	view, err := f.progress.GetOrInitProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Progress.DailyProgress)
	assert.Equal(t, "2024-05-11", view.Progress.LastActiveDate)

	res, err := f.progress.CompleteTutorial(ctx, "u1", "t2")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.DailyProgress)
	assert.Equal(t, 2, res.Progress.LessonsCompleted)
}

func TestGetOrInitProgress_PersistsRollover(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setNow(day(2024, 5, 11))

	seeded := model.NewUserProgress("2024-05-10", 3, day(2024, 5, 10))
	seeded.DailyProgress = 2
	seeded.LastActiveDate = "2024-05-10"
	require.NoError(t, f.progress.ProgressRepo.Save(ctx, "u1", seeded))

	view, err := f.progress.GetOrInitProgress(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Progress.DailyProgress)

	stored, err := f.progress.ProgressRepo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, stored.DailyProgress)
	assert.Equal(t, "2024-05-11", stored.LastActiveDate)
	assert.Equal(t, 3, stored.DailyGoal)
}

func TestUnknownIndexLikeIDsAreNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTutorial(t, "t1", 50)
	f.seedCourse(t, "c1", 3)
	f.seedProject(t, "p1")

	_, err := f.progress.CourseRepo.Get(ctx, "index")
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = f.progress.CompleteCourseModule(ctx, "u1", "index", 1)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = f.progress.CompleteProject(ctx, "u1", "index", nil)
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = f.progress.CompleteTutorial(ctx, "u1", "index:tutorial")
	assert.ErrorIs(t, err, util.ErrNotFound)
	_, err = f.content.RecordView(ctx, "index:tutorial")
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestCompleteProject_NoXP(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedProject(t, "arduino-led-blink")

	spent := 300
	res, err := f.progress.CompleteProject(ctx, "u1", "arduino-led-blink", &spent)
	require.NoError(t, err)
	assert.False(t, res.AlreadyCompleted)
	assert.Equal(t, 0, res.Progress.TotalXP)
	assert.Equal(t, 1, res.Progress.ProjectsBuilt)
	assert.Equal(t, []string{"arduino-led-blink"}, res.Progress.CompletedProjects)
	require.NotNil(t, res.TimeSpent)
	assert.Equal(t, 300, *res.TimeSpent)

	res, err = f.progress.CompleteProject(ctx, "u1", "arduino-led-blink", nil)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Equal(t, 1, res.Progress.ProjectsBuilt)

	_, err = f.progress.CompleteProject(ctx, "u1", "nope", nil)
	assert.ErrorIs(t, err, util.ErrProjectNotFound)
}

func TestCompleteCourseModule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedCourse(t, "course_a", 2)

	res, err := f.progress.CompleteCourseModule(ctx, "u1", "course_a", 1)
	require.NoError(t, err)
	assert.False(t, res.CourseCompleted)
	assert.Equal(t, []int{1}, res.Progress.CoursesInProgress["course_a"])
	assert.Equal(t, 0, res.Progress.TotalXP)

	res, err = f.progress.CompleteCourseModule(ctx, "u1", "course_a", 1)
	require.NoError(t, err)
	assert.True(t, res.AlreadyCompleted)
	assert.Equal(t, []int{1}, res.Progress.CoursesInProgress["course_a"])

	res, err = f.progress.CompleteCourseModule(ctx, "u1", "course_a", 2)
	require.NoError(t, err)
	assert.True(t, res.CourseCompleted)
	assert.Equal(t, []string{"course_a"}, res.Progress.CoursesCompleted)

	_, err = f.progress.CompleteCourseModule(ctx, "u1", "course_a", 3)
	assert.ErrorIs(t, err, util.ErrModuleNotFound)

	_, err = f.progress.CompleteCourseModule(ctx, "u1", "course_missing", 1)
	assert.ErrorIs(t, err, util.ErrCourseNotFound)
}

func TestUpdateSettings_MirrorsDailyGoal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.progress.InitUser(ctx, "u1"))

	goal := 4
	lang := "es"
	s, err := f.progress.UpdateSettings(ctx, "u1", model.SettingsPatch{DailyGoal: &goal, Language: &lang})
	require.NoError(t, err)
	assert.Equal(t, 4, s.DailyGoal)
	assert.Equal(t, "es", s.Language)
	assert.Equal(t, "light", s.Theme)

	p, err := f.progress.ProgressRepo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, p.DailyGoal)

	zero := 0
	_, err = f.progress.UpdateSettings(ctx, "u1", model.SettingsPatch{DailyGoal: &zero})
	assert.ErrorIs(t, err, util.ErrValidation)

	theme := "neon"
	_, err = f.progress.UpdateSettings(ctx, "u1", model.SettingsPatch{Theme: &theme})
	assert.ErrorIs(t, err, util.ErrValidation)
}

func TestLeaderboard_OrderTiesAndLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		xp := i * 10
		if i >= 10 {
			xp = 500
		}
		require.NoError(t, f.progress.ProgressRepo.Save(ctx, fmt.Sprintf("user%02d", i), &model.UserProgress{TotalXP: xp, Level: 1}))
	}
	require.NoError(t, f.progress.SettingsRepo.Save(ctx, "user00", model.DefaultUserSettings()))

	board, err := f.progress.Leaderboard(ctx)
	require.NoError(t, err)
	require.Len(t, board, 10)
	assert.Equal(t, "user10", board[0].UserID)
	assert.Equal(t, "user11", board[1].UserID)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, "user09", board[2].UserID)
	assert.Equal(t, 500, board[0].TotalXP)
	assert.Equal(t, "user02", board[9].UserID)
}

func TestLeaderboard_StoreDown(t *testing.T) {
	f := newFixture(t)
	f.mr.Close()

	_, err := f.progress.Leaderboard(context.Background())
	assert.ErrorIs(t, err, kvstore.ErrUnavailable)
}

func TestAchievements_Derived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedTutorial(t, "t1", 50)
	_, err := f.progress.CompleteTutorial(ctx, "u1", "t1")
	require.NoError(t, err)

	summary, err := f.progress.Achievements(ctx, "u1")
	require.NoError(t, err)
	earned := map[string]bool{}
	for _, a := range summary.Badges {
		earned[a.ID] = a.Earned
	}
	assert.True(t, earned["first_lesson"])
	assert.False(t, earned["first_project"])
}

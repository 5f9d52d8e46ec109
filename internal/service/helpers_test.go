package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"roboquest_backend/internal/config"
	"roboquest_backend/internal/gamification"
	"roboquest_backend/internal/model"
	"roboquest_backend/internal/repository"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/kvstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// memoryAccounts 内存版账号存储，仅测试使用
type memoryAccounts struct {
	mu       sync.Mutex
	byID     map[string]*model.Account
	pingFail error
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{byID: map[string]*model.Account{}}
}

func (m *memoryAccounts) Create(ctx context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return util.ErrEmailRegistered
		}
	}
	if a.UserID == "" {
		a.UserID = uuid.New().String()
	}
	cp := *a
	m.byID[a.UserID] = &cp
	return nil
}

func (m *memoryAccounts) FindByEmail(ctx context.Context, email string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, util.ErrNotFound
}

func (m *memoryAccounts) FindByUserID(ctx context.Context, userID string) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[userID]
	if !ok {
		return nil, util.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memoryAccounts) Update(ctx context.Context, a *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.byID[a.UserID] = &cp
	return nil
}

func (m *memoryAccounts) Ping(ctx context.Context) error {
	return m.pingFail
}

type fixture struct {
	store    kvstore.Store
	mr       *miniredis.Miniredis
	clock    *time.Time
	progress *ProgressService
	content  *ContentService
	auth     *AuthService
	accounts *memoryAccounts
}

func (f *fixture) setNow(t time.Time) { *f.clock = t }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.Local)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	store := kvstore.NewRedisStore(client, "test")

	clock := day(2024, 5, 10)
	now := func() time.Time { return clock }

	cfg := &config.Config{
		JWT:     config.JWTConfig{Secret: "test-secret", ExpireTime: time.Hour},
		Admin:   config.AdminConfig{Emails: []string{"admin@roboquest.test"}},
		Storage: config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
	}
	rules := gamification.DefaultRules()

	progress := NewProgressService(
		repository.NewProgressRepository(store),
		repository.NewSettingsRepository(store),
		repository.NewContentRepository(store),
		repository.NewCourseRepository(store),
		repository.NewProjectRepository(store),
		rules,
		10,
	)
	progress.Now = now

	content := NewContentService(repository.NewContentRepository(store), NewStorageService(cfg), rules)
	content.Now = now

	accounts := newMemoryAccounts()
	auth := NewAuthService(accounts, progress, cfg)

	return &fixture{
		store:    store,
		mr:       mr,
		clock:    &clock,
		progress: progress,
		content:  content,
		auth:     auth,
		accounts: accounts,
	}
}

func (f *fixture) seedTutorial(t *testing.T, id string, xp int) {
	t.Helper()
	require.NoError(t, f.progress.ContentRepo.Create(context.Background(), &model.ContentItem{
		ID: id, Kind: model.KindTutorial, Title: id, Difficulty: model.Beginner, XPReward: xp,
	}))
}

func (f *fixture) seedCourse(t *testing.T, id string, modules int) {
	t.Helper()
	c := &model.Course{ID: id, Title: id, ModuleCount: modules}
	for i := 1; i <= modules; i++ {
		c.Modules = append(c.Modules, model.CourseModule{ID: i, Title: "m"})
	}
	_, err := f.progress.CourseRepo.SaveIfAbsent(context.Background(), c)
	require.NoError(t, err)
}

func (f *fixture) seedProject(t *testing.T, id string) {
	t.Helper()
	_, err := f.progress.ProjectRepo.SaveIfAbsent(context.Background(), &model.PracticeProject{ID: id, Title: id, XPReward: 100})
	require.NoError(t, err)
}

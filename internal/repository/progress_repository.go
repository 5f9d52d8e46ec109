package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"roboquest_backend/internal/model"
	"roboquest_backend/pkg/kvstore"
)

const userKeyPrefix = "user:"

func progressKey(userID string) string {
	return fmt.Sprintf("user:%s:progress", userID)
}

func settingsKey(userID string) string {
	return fmt.Sprintf("user:%s:settings", userID)
}

// ProgressMutation 接收当前记录（不存在时为 nil），返回新记录和是否需要写回
type ProgressMutation func(current *model.UserProgress) (next *model.UserProgress, changed bool, err error)

// ProgressRecord 排行榜扫描时使用
type ProgressRecord struct {
	UserID   string
	Progress *model.UserProgress
}

type ProgressRepository struct {
	Store kvstore.Store
}

func NewProgressRepository(store kvstore.Store) *ProgressRepository {
	return &ProgressRepository{Store: store}
}

// Get returns kvstore.ErrNotFound when the learner has no record yet.
func (r *ProgressRepository) Get(ctx context.Context, userID string) (*model.UserProgress, error) {
	var p model.UserProgress
	if err := kvstore.GetJSON(ctx, r.Store, progressKey(userID), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) Save(ctx context.Context, userID string, p *model.UserProgress) error {
	return kvstore.SetJSON(ctx, r.Store, progressKey(userID), p)
}

// Mutate runs fn inside an optimistic transaction on the learner's record.
// fn may be invoked again if another writer got there first.
func (r *ProgressRepository) Mutate(ctx context.Context, userID string, fn ProgressMutation) (*model.UserProgress, error) {
	var result *model.UserProgress
	err := r.Store.Update(ctx, progressKey(userID), func(raw []byte) ([]byte, error) {
		var current *model.UserProgress
		if raw != nil {
			current = &model.UserProgress{}
			if err := json.Unmarshal(raw, current); err != nil {
				return nil, fmt.Errorf("decode progress %s: %w", userID, err)
			}
		}

		next, changed, err := fn(current)
		if err != nil {
			return nil, err
		}
		result = next
		if !changed {
			return nil, nil
		}
		return json.Marshal(next)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// All scans every stored progress record.
func (r *ProgressRepository) All(ctx context.Context) ([]ProgressRecord, error) {
	entries, err := r.Store.ScanPrefix(ctx, userKeyPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]ProgressRecord, 0, len(entries))
	for _, e := range entries {
		if !strings.HasSuffix(e.Key, ":progress") {
			continue
		}
		userID := strings.TrimSuffix(strings.TrimPrefix(e.Key, userKeyPrefix), ":progress")
		var p model.UserProgress
		if err := json.Unmarshal(e.Value, &p); err != nil {
			// 跳过损坏的记录，不影响排行榜
			continue
		}
		records = append(records, ProgressRecord{UserID: userID, Progress: &p})
	}
	return records, nil
}

type SettingsRepository struct {
	Store kvstore.Store
}

func NewSettingsRepository(store kvstore.Store) *SettingsRepository {
	return &SettingsRepository{Store: store}
}

func (r *SettingsRepository) Get(ctx context.Context, userID string) (*model.UserSettings, error) {
	var s model.UserSettings
	if err := kvstore.GetJSON(ctx, r.Store, settingsKey(userID), &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SettingsRepository) Save(ctx context.Context, userID string, s *model.UserSettings) error {
	return kvstore.SetJSON(ctx, r.Store, settingsKey(userID), s)
}

// Merge applies patch on top of the stored settings, starting from defaults when absent.
func (r *SettingsRepository) Merge(ctx context.Context, userID string, patch model.SettingsPatch, apply func(*model.UserSettings)) (*model.UserSettings, error) {
	var result *model.UserSettings
	err := r.Store.Update(ctx, settingsKey(userID), func(raw []byte) ([]byte, error) {
		s := model.DefaultUserSettings()
		if raw != nil {
			if err := json.Unmarshal(raw, s); err != nil {
				return nil, fmt.Errorf("decode settings %s: %w", userID, err)
			}
		}
		s.Apply(patch)
		if apply != nil {
			apply(s)
		}
		result = s
		return json.Marshal(s)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

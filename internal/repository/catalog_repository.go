package repository

import (
	"context"
	"encoding/json"
	"errors"

	"roboquest_backend/internal/model"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/kvstore"
)

// 索引单独放在 index: 前缀下，避免与实体 id 冲突
const (
	courseIndexKey  = "index:course"
	projectIndexKey = "index:project"
)

func courseKey(id string) string {
	return "course:" + id
}

func projectKey(id string) string {
	return "project:" + id
}

// CourseRepository 课程目录，课程由启动时的种子数据写入
type CourseRepository struct {
	Store kvstore.Store
}

func NewCourseRepository(store kvstore.Store) *CourseRepository {
	return &CourseRepository{Store: store}
}

func (r *CourseRepository) Get(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	err := kvstore.GetJSON(ctx, r.Store, courseKey(id), &c)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	ids, err := kvstore.GetStrings(ctx, r.Store, courseIndexKey)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = courseKey(id)
	}
	return loadAll[model.Course](ctx, r.Store, keys)
}

// SaveIfAbsent writes c unless a course with the same id exists.
func (r *CourseRepository) SaveIfAbsent(ctx context.Context, c *model.Course) (bool, error) {
	return saveIfAbsent(ctx, r.Store, courseKey(c.ID), courseIndexKey, c.ID, c)
}

type ProjectRepository struct {
	Store kvstore.Store
}

func NewProjectRepository(store kvstore.Store) *ProjectRepository {
	return &ProjectRepository{Store: store}
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (*model.PracticeProject, error) {
	var p model.PracticeProject
	err := kvstore.GetJSON(ctx, r.Store, projectKey(id), &p)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, util.ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.PracticeProject, error) {
	ids, err := kvstore.GetStrings(ctx, r.Store, projectIndexKey)
	if err != nil {
		return nil, err
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = projectKey(id)
	}
	return loadAll[model.PracticeProject](ctx, r.Store, keys)
}

func (r *ProjectRepository) SaveIfAbsent(ctx context.Context, p *model.PracticeProject) (bool, error) {
	return saveIfAbsent(ctx, r.Store, projectKey(p.ID), projectIndexKey, p.ID, p)
}

func saveIfAbsent(ctx context.Context, s kvstore.Store, key, indexKey, id string, v interface{}) (bool, error) {
	created := false
	err := s.Update(ctx, key, func(current []byte) ([]byte, error) {
		if current != nil {
			return nil, nil
		}
		created = true
		return json.Marshal(v)
	})
	if err != nil {
		return false, err
	}
	return created, kvstore.AppendUnique(ctx, s, indexKey, id)
}

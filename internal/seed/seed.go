// Package seed loads the built-in catalog into the key-value store at startup.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"roboquest_backend/internal/model"
	"roboquest_backend/internal/repository"
	"roboquest_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type Catalog struct {
	Content  []model.ContentItem     `yaml:"content"`
	Courses  []model.Course          `yaml:"courses"`
	Projects []model.PracticeProject `yaml:"projects"`
}

// Stats 记录本次写入了多少新条目
type Stats struct {
	Content  int
	Courses  int
	Projects int
}

func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	seen := map[string]bool{}
	for _, item := range c.Content {
		if item.ID == "" || !item.Kind.Valid() {
			return fmt.Errorf("catalog content %q: missing id or bad kind %q", item.ID, item.Kind)
		}
		if seen[item.ID] {
			return fmt.Errorf("catalog content %q: duplicate id", item.ID)
		}
		seen[item.ID] = true
	}
	for _, course := range c.Courses {
		if course.ModuleCount != len(course.Modules) {
			return fmt.Errorf("catalog course %q: moduleCount %d but %d modules", course.ID, course.ModuleCount, len(course.Modules))
		}
	}
	return nil
}

type Repos struct {
	Content  *repository.ContentRepository
	Courses  *repository.CourseRepository
	Projects *repository.ProjectRepository
}

// Apply writes every catalog entry that is not stored yet. Running it twice is a no-op.
func (c *Catalog) Apply(ctx context.Context, repos Repos, now time.Time) (Stats, error) {
	var st Stats
	for i := range c.Content {
		item := c.Content[i]
		item.UploadedAt = now
		created, err := repos.Content.CreateIfAbsent(ctx, &item)
		if err != nil {
			return st, fmt.Errorf("seed content %s: %w", item.ID, err)
		}
		if created {
			st.Content++
		}
	}
	for i := range c.Courses {
		created, err := repos.Courses.SaveIfAbsent(ctx, &c.Courses[i])
		if err != nil {
			return st, fmt.Errorf("seed course %s: %w", c.Courses[i].ID, err)
		}
		if created {
			st.Courses++
		}
	}
	for i := range c.Projects {
		created, err := repos.Projects.SaveIfAbsent(ctx, &c.Projects[i])
		if err != nil {
			return st, fmt.Errorf("seed project %s: %w", c.Projects[i].ID, err)
		}
		if created {
			st.Projects++
		}
	}
	return st, nil
}

// Run loads the embedded catalog and applies it.
func Run(ctx context.Context, repos Repos) error {
	catalog, err := Load()
	if err != nil {
		return err
	}
	st, err := catalog.Apply(ctx, repos, time.Now())
	if err != nil {
		return err
	}
	logger.Log.Info("Catalog seeded",
		zap.Int("content", st.Content),
		zap.Int("courses", st.Courses),
		zap.Int("projects", st.Projects))
	return nil
}

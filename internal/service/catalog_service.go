package service

import (
	"context"

	"roboquest_backend/internal/model"
	"roboquest_backend/internal/repository"
)

// CatalogService 课程与练习项目的只读目录
type CatalogService struct {
	CourseRepo  *repository.CourseRepository
	ProjectRepo *repository.ProjectRepository
}

func NewCatalogService(courseRepo *repository.CourseRepository, projectRepo *repository.ProjectRepository) *CatalogService {
	return &CatalogService{CourseRepo: courseRepo, ProjectRepo: projectRepo}
}

func (s *CatalogService) ListCourses(ctx context.Context) ([]model.Course, error) {
	return s.CourseRepo.List(ctx)
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	return s.CourseRepo.Get(ctx, id)
}

func (s *CatalogService) ListProjects(ctx context.Context) ([]model.PracticeProject, error) {
	return s.ProjectRepo.List(ctx)
}

func (s *CatalogService) GetProject(ctx context.Context, id string) (*model.PracticeProject, error) {
	return s.ProjectRepo.Get(ctx, id)
}

package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"roboquest_backend/internal/gamification"
	"roboquest_backend/internal/model"
	"roboquest_backend/internal/repository"
	"roboquest_backend/internal/util"
	"roboquest_backend/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadContentInput 管理员上传内容的请求体
type UploadContentInput struct {
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	Type         string           `json:"type"`
	Category     string           `json:"category"`
	Difficulty   model.Difficulty `json:"difficulty"`
	Duration     string           `json:"duration"`
	YoutubeID    string           `json:"youtubeId"`
	XPReward     int              `json:"xpReward"`
	IsOurContent bool             `json:"isOurContent"`
}

type ContentService struct {
	ContentRepo    *repository.ContentRepository
	StorageService *StorageService
	Rules          gamification.Rules
	Now            func() time.Time
}

func NewContentService(contentRepo *repository.ContentRepository, storageService *StorageService, rules gamification.Rules) *ContentService {
	return &ContentService{
		ContentRepo:    contentRepo,
		StorageService: storageService,
		Rules:          rules,
		Now:            time.Now,
	}
}

func validateContent(title string, difficulty model.Difficulty, xpReward int) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", util.ErrValidation)
	}
	if difficulty != "" && !difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", util.ErrValidation, difficulty)
	}
	if xpReward < 0 {
		return fmt.Errorf("%w: xpReward must not be negative", util.ErrValidation)
	}
	return nil
}

// Upload creates a tutorial, or a showcase item when IsOurContent is set.
func (s *ContentService) Upload(ctx context.Context, uploader *model.Identity, in UploadContentInput) (*model.ContentItem, error) {
	if err := validateContent(in.Title, in.Difficulty, in.XPReward); err != nil {
		return nil, err
	}

	kind, prefix := model.KindTutorial, util.ContentIDPrefix
	if in.IsOurContent {
		kind, prefix = model.KindShowcase, util.OurContentIDPrefix
	}

	item := &model.ContentItem{
		ID:          prefix + uuid.New().String(),
		Kind:        kind,
		Title:       in.Title,
		Description: in.Description,
		Type:        in.Type,
		Category:    in.Category,
		Difficulty:  in.Difficulty,
		Duration:    in.Duration,
		YoutubeID:   in.YoutubeID,
		XPReward:    s.Rules.XPReward(in.XPReward),
		UploadedBy:  uploader.UserID,
		UploadedAt:  s.Now(),
	}

	if err := s.ContentRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	logger.Log.Info("Content uploaded",
		zap.String("content_id", item.ID),
		zap.String("kind", string(item.Kind)),
		zap.String("uploaded_by", uploader.UserID))
	return item, nil
}

func (s *ContentService) Update(ctx context.Context, id string, patch model.ContentPatch) (*model.ContentItem, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", util.ErrValidation)
	}
	if patch.Difficulty != nil && !patch.Difficulty.Valid() {
		return nil, fmt.Errorf("%w: unknown difficulty %q", util.ErrValidation, *patch.Difficulty)
	}
	if patch.XPReward != nil && *patch.XPReward < 0 {
		return nil, fmt.Errorf("%w: xpReward must not be negative", util.ErrValidation)
	}

	now := s.Now()
	return s.ContentRepo.Update(ctx, id, func(item *model.ContentItem) error {
		item.Apply(patch)
		item.UpdatedAt = &now
		return nil
	})
}

// Delete removes an item of either kind. Its thumbnail, if any, is removed best-effort.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	item, err := s.ContentRepo.Delete(ctx, id)
	if err != nil {
		return err
	}

	if item.ThumbnailURL != "" && s.StorageService != nil {
		if err := s.StorageService.RemoveObjectByURL(ctx, item.ThumbnailURL); err != nil {
			logger.Log.Warn("Failed to remove thumbnail",
				zap.String("content_id", id),
				zap.Error(err))
		}
	}

	logger.Log.Info("Content deleted", zap.String("content_id", id), zap.String("kind", string(item.Kind)))
	return nil
}

func (s *ContentService) ListTutorials(ctx context.Context) ([]model.ContentItem, error) {
	return s.ContentRepo.ListByKind(ctx, model.KindTutorial)
}

func (s *ContentService) ListShowcase(ctx context.Context) ([]model.ContentItem, error) {
	return s.ContentRepo.ListByKind(ctx, model.KindShowcase)
}

// RecordView increments the view counter and returns the new value.
func (s *ContentService) RecordView(ctx context.Context, id string) (int, error) {
	item, err := s.ContentRepo.Update(ctx, id, func(item *model.ContentItem) error {
		item.Views++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return item.Views, nil
}

// UploadThumbnail stores an image for the item and records its URL.
func (s *ContentService) UploadThumbnail(ctx context.Context, id string, file *multipart.FileHeader) (*model.ContentItem, error) {
	if _, err := s.ContentRepo.Get(ctx, id); err != nil {
		return nil, err
	}
	if file.Size > util.MaxThumbnailSize {
		return nil, fmt.Errorf("%w: thumbnail exceeds %d bytes", util.ErrValidation, util.MaxThumbnailSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	// 按文件内容判断类型，不信任客户端的 Content-Type
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	contentType := http.DetectContentType(head[:n])
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	url, err := s.StorageService.PutThumbnail(ctx, id, file.Filename, src, file.Size, contentType)
	if err != nil {
		return nil, err
	}

	return s.ContentRepo.Update(ctx, id, func(item *model.ContentItem) error {
		item.ThumbnailURL = url
		return nil
	})
}

package model

import (
	"encoding/json"
	"time"
)

type ContentKind string

const (
	KindTutorial ContentKind = "tutorial"
	KindShowcase ContentKind = "showcase"
)

func (k ContentKind) Valid() bool {
	return k == KindTutorial || k == KindShowcase
}

type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Advanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	return d == Beginner || d == Intermediate || d == Advanced
}

// ContentItem 教程或"我们的项目"，两者共用一个存储，用 Kind 区分
// swagger:model ContentItem
type ContentItem struct {
	ID           string      `json:"id" yaml:"id"`
	Kind         ContentKind `json:"kind" yaml:"kind"`
	Title        string      `json:"title" yaml:"title"`
	Description  string      `json:"description" yaml:"description"`
	Type         string      `json:"type" yaml:"type"`
	Category     string      `json:"category" yaml:"category"`
	Difficulty   Difficulty  `json:"difficulty" yaml:"difficulty"`
	Duration     string      `json:"duration" yaml:"duration"`
	YoutubeID    string      `json:"youtubeId,omitempty" yaml:"youtubeId"`
	ThumbnailURL string      `json:"thumbnailUrl,omitempty" yaml:"-"`
	XPReward     int         `json:"xpReward" yaml:"xpReward"`
	Views        int         `json:"views" yaml:"-"`
	Likes        int         `json:"likes" yaml:"-"`
	UploadedBy   string      `json:"uploadedBy,omitempty" yaml:"-"`
	UploadedAt   time.Time   `json:"uploadedAt" yaml:"-"`
	UpdatedAt    *time.Time  `json:"updatedAt,omitempty" yaml:"-"`
}

func (c *ContentItem) IsOurContent() bool {
	return c.Kind == KindShowcase
}

// MarshalJSON 额外输出 isOurContent，兼容前端
func (c ContentItem) MarshalJSON() ([]byte, error) {
	type alias ContentItem
	return json.Marshal(struct {
		alias
		IsOurContent bool `json:"isOurContent"`
	}{alias(c), c.Kind == KindShowcase})
}

// ContentPatch 管理员更新内容时提交的字段
type ContentPatch struct {
	Title       *string     `json:"title"`
	Description *string     `json:"description"`
	Type        *string     `json:"type"`
	Category    *string     `json:"category"`
	Difficulty  *Difficulty `json:"difficulty"`
	Duration    *string     `json:"duration"`
	YoutubeID   *string     `json:"youtubeId"`
	XPReward    *int        `json:"xpReward"`
	Likes       *int        `json:"likes"`
}

func (c *ContentItem) Apply(p ContentPatch) {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Type != nil {
		c.Type = *p.Type
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Difficulty != nil {
		c.Difficulty = *p.Difficulty
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
	if p.YoutubeID != nil {
		c.YoutubeID = *p.YoutubeID
	}
	if p.XPReward != nil {
		c.XPReward = *p.XPReward
	}
	if p.Likes != nil {
		c.Likes = *p.Likes
	}
}

package model

// swagger:model Course
type Course struct {
	ID             string         `json:"id" yaml:"id"`
	Title          string         `json:"title" yaml:"title"`
	Description    string         `json:"description" yaml:"description"`
	Category       string         `json:"category" yaml:"category"`
	Difficulty     Difficulty     `json:"difficulty" yaml:"difficulty"`
	EstimatedHours string         `json:"estimatedHours" yaml:"estimatedHours"`
	ModuleCount    int            `json:"moduleCount" yaml:"moduleCount"`
	ExternalURL    string         `json:"externalUrl,omitempty" yaml:"externalUrl"`
	Provider       string         `json:"provider,omitempty" yaml:"provider"`
	Modules        []CourseModule `json:"modules" yaml:"modules"`
}

type CourseModule struct {
	ID       int    `json:"id" yaml:"id"`
	Title    string `json:"title" yaml:"title"`
	Type     string `json:"type" yaml:"type"`
	Duration string `json:"duration" yaml:"duration"`
}

// HasModule reports whether id names one of the course's modules.
func (c *Course) HasModule(id int) bool {
	for _, m := range c.Modules {
		if m.ID == id {
			return true
		}
	}
	return false
}

// swagger:model PracticeProject
type PracticeProject struct {
	ID            string        `json:"id" yaml:"id"`
	Title         string        `json:"title" yaml:"title"`
	Description   string        `json:"description" yaml:"description"`
	Category      string        `json:"category" yaml:"category"`
	Difficulty    Difficulty    `json:"difficulty" yaml:"difficulty"`
	EstimatedTime string        `json:"estimatedTime" yaml:"estimatedTime"`
	XPReward      int           `json:"xpReward" yaml:"xpReward"`
	Type          string        `json:"type" yaml:"type"`
	Language      string        `json:"language,omitempty" yaml:"language"`
	Source        string        `json:"source,omitempty" yaml:"source"`
	ExternalURL   string        `json:"externalUrl,omitempty" yaml:"externalUrl"`
	YoutubeID     string        `json:"youtubeId,omitempty" yaml:"youtubeId"`
	Instructions  []string      `json:"instructions,omitempty" yaml:"instructions"`
	StartingCode  string        `json:"startingCode,omitempty" yaml:"startingCode"`
	Solution      string        `json:"solution,omitempty" yaml:"solution"`
	Tests         []ProjectTest `json:"tests,omitempty" yaml:"tests"`
}

type ProjectTest struct {
	Description    string `json:"description" yaml:"description"`
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"expectedOutput" yaml:"expectedOutput"`
}

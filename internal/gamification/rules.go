// Package gamification holds the pure rules behind XP, levels, streaks and daily goals.
// Nothing here touches storage; the progress service persists what Apply returns.
package gamification

import (
	"time"

	"roboquest_backend/internal/config"
	"roboquest_backend/internal/model"
)

// DayFormat is the calendar-day layout used for every date string in a progress record.
const DayFormat = "2006-01-02"

type Rules struct {
	XPPerLevel       int
	DefaultXPReward  int
	LoginHistoryDays int
	DefaultDailyGoal int
}

func DefaultRules() Rules {
	return Rules{
		XPPerLevel:       200,
		DefaultXPReward:  50,
		LoginHistoryDays: 30,
		DefaultDailyGoal: 2,
	}
}

func NewRules(cfg config.GamificationConfig) Rules {
	r := DefaultRules()
	if cfg.XPPerLevel > 0 {
		r.XPPerLevel = cfg.XPPerLevel
	}
	if cfg.DefaultXPReward > 0 {
		r.DefaultXPReward = cfg.DefaultXPReward
	}
	if cfg.LoginHistoryDays > 0 {
		r.LoginHistoryDays = cfg.LoginHistoryDays
	}
	if cfg.DefaultDailyGoal > 0 {
		r.DefaultDailyGoal = cfg.DefaultDailyGoal
	}
	return r
}

// Day formats t as a calendar day in t's own location.
func Day(t time.Time) string {
	return t.Format(DayFormat)
}

// Yesterday is the calendar day before t.
func Yesterday(t time.Time) string {
	return t.AddDate(0, 0, -1).Format(DayFormat)
}

// LevelFromXP returns the level for totalXP. 每 XPPerLevel 经验升一级，从 1 级开始
func (r Rules) LevelFromXP(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/r.XPPerLevel + 1
}

// NextLevelXP is the total XP at which the level after LevelFromXP(totalXP) starts.
func (r Rules) NextLevelXP(totalXP int) int {
	return r.LevelFromXP(totalXP) * r.XPPerLevel
}

// XPReward resolves the reward of a content item, falling back to the default when unset.
func (r Rules) XPReward(xp int) int {
	if xp <= 0 {
		return r.DefaultXPReward
	}
	return xp
}

// UpdateStreak records a login on today. It reports whether the record changed.
func (r Rules) UpdateStreak(p *model.UserProgress, now time.Time) bool {
	today := Day(now)
	if containsString(p.LoginDates, today) {
		return false
	}

	if p.LastLoginDate == Yesterday(now) {
		p.StreakDays++
	} else {
		p.StreakDays = 1
	}

	p.LoginDates = append(p.LoginDates, today)
	if n := len(p.LoginDates); n > r.LoginHistoryDays {
		p.LoginDates = append([]string(nil), p.LoginDates[n-r.LoginHistoryDays:]...)
	}
	p.LastLoginDate = today
	return true
}

// RollOver resets the daily counter once lastActiveDate falls behind today.
func RollOver(p *model.UserProgress, now time.Time) bool {
	today := Day(now)
	if p.LastActiveDate == today {
		return false
	}
	p.DailyProgress = 0
	p.LastActiveDate = today
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	for _, n := range list {
		if n == v {
			return true
		}
	}
	return false
}

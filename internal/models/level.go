package models

// Leveling uses an arithmetic threshold progression: advancing from level n to
// n+1 costs 10*n XP (10, 20, 30, ...). Level fields on a user are always
// derived from TotalExperience through LevelFromTotal.

// LevelProgress is the derived leveling state for a cumulative XP total.
type LevelProgress struct {
	Level                  int `json:"level"`
	CurrentExp             int `json:"current_exp"`
	CurrentLevelRequiredXp int `json:"current_level_required_xp"`
}

// RequiredXpForLevel returns the XP needed to advance from the given level to
// the next one.
func RequiredXpForLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return 10 * level
}

// LevelFromTotal derives level, in-level progress and the next threshold from
// a cumulative experience total. Negative totals are treated as zero.
func LevelFromTotal(totalExperience int) LevelProgress {
	if totalExperience < 0 {
		totalExperience = 0
	}

	level := 1
	remaining := totalExperience
	for remaining >= RequiredXpForLevel(level) {
		remaining -= RequiredXpForLevel(level)
		level++
	}

	return LevelProgress{
		Level:                  level,
		CurrentExp:             remaining,
		CurrentLevelRequiredXp: RequiredXpForLevel(level),
	}
}

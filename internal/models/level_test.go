package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequiredXpForLevel(t *testing.T) {
	assert.Equal(t, 10, RequiredXpForLevel(1))
	assert.Equal(t, 20, RequiredXpForLevel(2))
	assert.Equal(t, 100, RequiredXpForLevel(10))
	// Out-of-range input clamps to level 1.
	assert.Equal(t, 10, RequiredXpForLevel(0))
	assert.Equal(t, 10, RequiredXpForLevel(-3))
}

func TestLevelFromTotal(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		level    int
		current  int
		required int
	}{
		{"Zero", 0, 1, 0, 10},
		{"JustBelowFirstThreshold", 9, 1, 9, 10},
		{"ExactFirstThreshold", 10, 2, 0, 20},
		{"MidSecondLevel", 15, 2, 5, 20},
		{"ThirdLevel", 35, 3, 5, 30},
		{"ExactThirdThreshold", 60, 4, 0, 40},
		{"NegativeClamps", -5, 1, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LevelFromTotal(tt.total)
			assert.Equal(t, tt.level, got.Level)
			assert.Equal(t, tt.current, got.CurrentExp)
			assert.Equal(t, tt.required, got.CurrentLevelRequiredXp)
		})
	}
}

func TestLevelFromTotal_Monotone(t *testing.T) {
	prev := LevelFromTotal(0)
	for total := 1; total <= 2000; total++ {
		got := LevelFromTotal(total)
		if got.Level < prev.Level {
			t.Fatalf("level decreased from %d to %d at total %d", prev.Level, got.Level, total)
		}
		prev = got
	}
}

func TestLevelFromTotal_ConservesExperience(t *testing.T) {
	// CurrentExp plus the sum of all completed thresholds equals the total.
	for _, total := range []int{0, 9, 10, 35, 60, 123, 999} {
		got := LevelFromTotal(total)
		spent := 0
		for l := 1; l < got.Level; l++ {
			spent += RequiredXpForLevel(l)
		}
		assert.Equal(t, total, spent+got.CurrentExp, "total %d", total)
		assert.Less(t, got.CurrentExp, got.CurrentLevelRequiredXp, "total %d", total)
	}
}

package catalog

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/scorecore/internal/domain"
)

// fileCourse is the on-disk shape of one course entry. It mirrors the
// operator-facing catalog format rather than the domain struct directly so
// the file can stay flat and numeric like the upstream definitions.
type fileCourse struct {
	ID            int    `yaml:"id"`
	Name          string `yaml:"name"`
	Difficulty    int    `yaml:"difficulty"`
	Kind          int    `yaml:"course_type"`
	EndTime       int64  `yaml:"end_time"`
	ClearKind     int    `yaml:"clear_type"`
	HazardTier    int    `yaml:"hazard_type"`
	RequiredScore int    `yaml:"score"`
	Hard          bool   `yaml:"hard"`
	RewardKind    int    `yaml:"reward_type"`
	RewardValue   int    `yaml:"reward_value"`
	RewardSecret  bool   `yaml:"secret"`
	Music         [][]struct {
		SongID int  `yaml:"music_id"`
		Tier   int  `yaml:"difficulty"`
		Secret bool `yaml:"is_secret"`
	} `yaml:"music"`
}

// LoadFile reads course definitions from a YAML overlay file. The overlay
// replaces the built-in course list entirely; validation still happens in
// New.
func LoadFile(path string) ([]domain.CourseDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var raw struct {
		Courses []fileCourse `yaml:"courses"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	defs := make([]domain.CourseDefinition, 0, len(raw.Courses))
	for _, fc := range raw.Courses {
		def := domain.CourseDefinition{
			ID:            fc.ID,
			Name:          fc.Name,
			Difficulty:    fc.Difficulty,
			Kind:          domain.CourseKind(fc.Kind),
			ClearKind:     domain.ClearKind(fc.ClearKind),
			HazardTier:    domain.HazardTier(fc.HazardTier),
			RequiredScore: fc.RequiredScore,
			HardRequired:  fc.Hard,
			Reward: domain.CourseReward{
				Kind:   domain.RewardKind(fc.RewardKind),
				Value:  fc.RewardValue,
				Secret: fc.RewardSecret,
			},
		}
		if fc.EndTime > 0 {
			def.EndTime = time.Unix(fc.EndTime, 0).UTC()
		}
		mode := domain.ModeNormal
		if fc.Hard {
			mode = domain.ModeHard
		}
		for _, slot := range fc.Music {
			var cs domain.CourseSlot
			for _, alt := range slot {
				cs = append(cs, domain.CourseChart{
					Chart:  domain.ChartKey{SongID: alt.SongID, Tier: domain.DifficultyTier(alt.Tier), Mode: mode},
					Secret: alt.Secret,
				})
			}
			def.Music = append(def.Music, cs)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

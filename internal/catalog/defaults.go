package catalog

import (
	"time"

	"github.com/scorecore/internal/domain"
)

func chart(songID int, tier domain.DifficultyTier, mode domain.PlayMode, secret bool) domain.CourseChart {
	return domain.CourseChart{
		Chart:  domain.ChartKey{SongID: songID, Tier: tier, Mode: mode},
		Secret: secret,
	}
}

func slot(charts ...domain.CourseChart) domain.CourseSlot {
	return domain.CourseSlot(charts)
}

// endOfNextWeek mirrors the upstream course rotation: dated courses run
// until the end of the week after the current one.
func endOfNextWeek(now time.Time) time.Time {
	day := now.UTC().Truncate(24 * time.Hour)
	daysUntilMonday := (8 - int(day.Weekday())) % 7
	if daysUntilMonday == 0 {
		daysUntilMonday = 7
	}
	return day.AddDate(0, 0, daysUntilMonday+7)
}

// DefaultCourses returns the built-in course table. The ids, names,
// thresholds, hazard tiers, and music lists are carried over unchanged from
// the upstream catalog; only dated end times are derived from now.
func DefaultCourses(now time.Time) []domain.CourseDefinition {
	n := domain.ModeNormal
	h := domain.ModeHard
	rotation := endOfNextWeek(now)

	return []domain.CourseDefinition{
		// ASARI CUP
		{
			ID: 1, Name: "はじめてのビーチ", Difficulty: 1,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearSingleScore, RequiredScore: 700000,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 5000000},
			Music: []domain.CourseSlot{
				slot(chart(60000080, domain.TierBasic, n, false), chart(90000025, domain.TierBasic, n, false), chart(90000040, domain.TierBasic, n, false)),
				slot(chart(60000086, domain.TierBasic, n, false), chart(70000047, domain.TierBasic, n, false)),
				slot(chart(90000027, domain.TierBasic, n, false)),
			},
		},
		{
			ID: 2, Name: "【初段】超幸せハイテンション", Difficulty: 1,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearSingleScore, RequiredScore: 700000,
			Reward: domain.CourseReward{Kind: domain.RewardTitle, Value: 7915},
			Music: []domain.CourseSlot{
				slot(chart(60000100, domain.TierBasic, n, false), chart(90000030, domain.TierBasic, n, false), chart(90000079, domain.TierBasic, n, false)),
				slot(chart(70000125, domain.TierBasic, n, false), chart(90000050, domain.TierBasic, n, false)),
				slot(chart(70000106, domain.TierBasic, n, true)),
			},
		},
		{
			ID: 3, Name: "アニメランニング", Difficulty: 2,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearSingleScore, RequiredScore: 750000,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 5000000},
			Music: []domain.CourseSlot{
				slot(chart(90000031, domain.TierBasic, n, false), chart(90000037, domain.TierBasic, n, false), chart(90000082, domain.TierBasic, n, false)),
				slot(chart(80000120, domain.TierBasic, n, false)),
				slot(chart(80000125, domain.TierBasic, n, false)),
			},
		},
		// KISAGO CUP
		{
			ID: 11, Name: "電脳享受空間", Difficulty: 4,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearSingleScore, RequiredScore: 800000,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 6000000},
			Music: []domain.CourseSlot{
				slot(chart(70000046, domain.TierAdvanced, n, false), chart(70000160, domain.TierAdvanced, n, false), chart(80000126, domain.TierAdvanced, n, false)),
				slot(chart(80000031, domain.TierAdvanced, n, false), chart(80000097, domain.TierAdvanced, n, false)),
				slot(chart(90000049, domain.TierAdvanced, n, false)),
			},
		},
		{
			ID: 12, Name: "孤高の少女は破滅を願う", Difficulty: 4,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearSingleScore, RequiredScore: 850000,
			Reward: domain.CourseReward{Kind: domain.RewardSong, Value: 90001008, Secret: true},
			Music: []domain.CourseSlot{
				slot(chart(50000202, domain.TierBasic, n, false), chart(70000117, domain.TierBasic, n, false), chart(70000134, domain.TierBasic, n, false)),
				slot(chart(50000212, domain.TierBasic, n, false), chart(80000124, domain.TierAdvanced, n, false)),
				slot(chart(90001008, domain.TierAdvanced, n, false)),
			},
		},
		{
			ID: 13, Name: "スタミナアップ！", Difficulty: 5,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearCombinedScore, RequiredScore: 2600000,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 600000},
			Music: []domain.CourseSlot{
				slot(chart(50000242, domain.TierBasic, n, false), chart(90000037, domain.TierAdvanced, n, false)),
				slot(chart(50000260, domain.TierAdvanced, n, false), chart(50000261, domain.TierAdvanced, n, false)),
				slot(chart(90000081, domain.TierAdvanced, n, false)),
			},
		},
		{
			ID: 15, Name: "【四段】嗚呼、大繁盛！", Difficulty: 6,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearCombinedScore, RequiredScore: 2600000,
			Reward: domain.CourseReward{Kind: domain.RewardTitle, Value: 7918},
			Music: []domain.CourseSlot{
				slot(chart(50000085, domain.TierExtreme, n, false), chart(50000237, domain.TierExtreme, n, false), chart(80000080, domain.TierExtreme, n, false)),
				slot(chart(50000172, domain.TierExtreme, n, false), chart(50000235, domain.TierExtreme, n, false)),
				slot(chart(70000065, domain.TierExtreme, n, true)),
			},
		},
		// MURU CUP
		{
			ID: 25, Name: "雨上がりレインボー", Difficulty: 9,
			Kind: domain.CourseTimeBased, EndTime: rotation,
			ClearKind: domain.ClearCombinedScore, RequiredScore: 2650000,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 1000000},
			Music: []domain.CourseSlot{
				slot(chart(50000138, domain.TierExtreme, n, false)),
				slot(chart(80000057, domain.TierExtreme, n, false)),
				slot(chart(90000011, domain.TierExtreme, n, false)),
			},
		},
		{
			ID: 28, Name: "黒船来航", Difficulty: 7,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearSingleScore, RequiredScore: 850000,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 700000},
			Music: []domain.CourseSlot{
				slot(chart(50000086, domain.TierExtreme, n, false), chart(60000066, domain.TierExtreme, n, false), chart(80000040, domain.TierAdvanced, n, false)),
				slot(chart(50000096, domain.TierExtreme, n, false), chart(80000048, domain.TierExtreme, n, false)),
				slot(chart(50000091, domain.TierExtreme, n, false)),
			},
		},
		{
			ID: 30, Name: "のんびり。ゆったり。ほがらかに。", Difficulty: 8,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearSingleScore, RequiredScore: 950000,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 700000},
			Music: []domain.CourseSlot{
				slot(chart(40000154, domain.TierExtreme, n, false), chart(80000124, domain.TierAdvanced, n, false), chart(80000126, domain.TierExtreme, n, false)),
				slot(chart(60000048, domain.TierExtreme, n, false), chart(90000026, domain.TierExtreme, n, false)),
				slot(chart(90000050, domain.TierExtreme, n, false)),
			},
		},
		{
			ID: 32, Name: "【六段】電柱を見ると思出す", Difficulty: 9,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearCombinedScore, RequiredScore: 2750000,
			Reward: domain.CourseReward{Kind: domain.RewardTitle, Value: 7920},
			Music: []domain.CourseSlot{
				slot(chart(50000288, domain.TierExtreme, n, false), chart(80000046, domain.TierExtreme, n, false), chart(80001008, domain.TierExtreme, n, false)),
				slot(chart(50000207, domain.TierExtreme, n, false), chart(70000117, domain.TierExtreme, n, false)),
				slot(chart(30000048, domain.TierExtreme, n, true)),
			},
		},
		// SAZAE CUP
		{
			ID: 38, Name: "超フェスタ！", Difficulty: 10,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearSingleScore, RequiredScore: 930000,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 800000},
			Music: []domain.CourseSlot{
				slot(chart(70000076, domain.TierExtreme, n, false), chart(70000077, domain.TierExtreme, n, false)),
				slot(chart(20000038, domain.TierExtreme, n, false), chart(40000160, domain.TierExtreme, n, false)),
				slot(chart(70000145, domain.TierExtreme, n, false)),
			},
		},
		{
			ID: 40, Name: "絶体絶命スリーチャレンジ！", Difficulty: 11,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearHazard, HazardTier: domain.HazardFC3,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 800000},
			Music: []domain.CourseSlot{
				slot(chart(50000238, domain.TierExtreme, n, false), chart(70000003, domain.TierExtreme, n, false), chart(90000051, domain.TierAdvanced, n, false)),
				slot(chart(50000027, domain.TierExtreme, n, false), chart(50000387, domain.TierExtreme, n, false)),
				slot(chart(80000056, domain.TierExtreme, n, false)),
			},
		},
		{
			ID: 42, Name: "【八段】山の賽子", Difficulty: 12,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearCombinedScore, RequiredScore: 2820000,
			Reward: domain.CourseReward{Kind: domain.RewardTitle, Value: 7922},
			Music: []domain.CourseSlot{
				slot(chart(50000200, domain.TierExtreme, n, false), chart(50000291, domain.TierExtreme, n, false), chart(60000003, domain.TierExtreme, n, false)),
				slot(chart(50000129, domain.TierExtreme, n, false), chart(80000021, domain.TierExtreme, n, false)),
				slot(chart(80000087, domain.TierExtreme, n, true)),
			},
		},
		// HOTATE CUP
		{
			ID: 47, Name: "The 8th KAC 個人部門", Difficulty: 14,
			Kind: domain.CourseTimeBased, EndTime: rotation,
			ClearKind: domain.ClearSingleScore, RequiredScore: 700000, HardRequired: true,
			Reward: domain.CourseReward{Kind: domain.RewardKind(9), Value: 10},
			Music: []domain.CourseSlot{
				slot(chart(90000052, domain.TierExtreme, h, false)),
				slot(chart(90000013, domain.TierExtreme, h, false)),
				slot(chart(70000167, domain.TierExtreme, h, false)),
			},
		},
		{
			ID: 60, Name: "初めてのHARD MODE再び", Difficulty: 13,
			Kind: domain.CoursePermanent, ClearKind: domain.ClearCombinedScore, RequiredScore: 2750000, HardRequired: true,
			Reward: domain.CourseReward{Kind: domain.RewardEmo, Value: 900000},
			Music: []domain.CourseSlot{
				slot(chart(50000096, domain.TierExtreme, h, false), chart(50000263, domain.TierExtreme, h, false), chart(80000119, domain.TierExtreme, h, false)),
				slot(chart(60000021, domain.TierExtreme, h, false), chart(60000075, domain.TierExtreme, h, false)),
				slot(chart(60000039, domain.TierExtreme, h, false)),
			},
		},
	}
}

package domain

import "testing"

func TestClassifyMedal(t *testing.T) {
	tests := []struct {
		name  string
		flags ClearFlags
		want  Medal
	}{
		{"no flags", 0, MedalFailed},
		{"played only", FlagPlayed, MedalFailed},
		{"cleared", FlagPlayed | FlagCleared, MedalCleared},
		{"nearly full combo", FlagPlayed | FlagCleared | FlagNearlyFullCombo, MedalNearlyFullCombo},
		{"nearly excellent", FlagPlayed | FlagCleared | FlagNearlyExcellent, MedalNearlyExcellent},
		{"full combo", FlagPlayed | FlagCleared | FlagFullCombo, MedalFullCombo},
		{"excellent", FlagPlayed | FlagCleared | FlagFullCombo | FlagExcellent, MedalExcellent},
		{"full combo beats nearly excellent", FlagNearlyExcellent | FlagFullCombo, MedalFullCombo},
		{"unrecognized bits ignored", FlagCleared | 0x4000, MedalCleared},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyMedal(tt.flags); got != tt.want {
				t.Errorf("ClassifyMedal(%#x) = %v, want %v", int(tt.flags), got, tt.want)
			}
		})
	}
}

func TestMedalOrdering(t *testing.T) {
	order := []Medal{
		MedalFailed,
		MedalCleared,
		MedalNearlyFullCombo,
		MedalNearlyExcellent,
		MedalFullCombo,
		MedalExcellent,
	}
	for i := 1; i < len(order); i++ {
		if order[i-1] >= order[i] {
			t.Errorf("%v not below %v", order[i-1], order[i])
		}
	}
}

func TestClearFlagsHas(t *testing.T) {
	flags := FlagPlayed | FlagCleared
	if !flags.Has(FlagPlayed) {
		t.Error("expected played bit")
	}
	if !flags.Has(FlagPlayed | FlagCleared) {
		t.Error("expected both bits")
	}
	if flags.Has(FlagFullCombo) {
		t.Error("unexpected full combo bit")
	}
}

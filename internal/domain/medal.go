package domain

// ClearFlags is the clear-flag bitmask a cabinet reports with each attempt.
// The bit values are fixed by the client wire format.
type ClearFlags int

const (
	FlagPlayed          ClearFlags = 0x01
	FlagCleared         ClearFlags = 0x02
	FlagFullCombo       ClearFlags = 0x04
	FlagExcellent       ClearFlags = 0x08
	FlagNearlyFullCombo ClearFlags = 0x10
	FlagNearlyExcellent ClearFlags = 0x20
)

// Has reports whether all bits of f are set.
func (c ClearFlags) Has(f ClearFlags) bool {
	return c&f == f
}

// Medal is the ranked clear-quality label derived from clear flags.
// The order encodes implication strength: an excellent play is also a full
// combo, which is also a clear.
type Medal int

const (
	MedalFailed Medal = iota + 1
	MedalCleared
	MedalNearlyFullCombo
	MedalNearlyExcellent
	MedalFullCombo
	MedalExcellent
)

func (m Medal) String() string {
	switch m {
	case MedalFailed:
		return "failed"
	case MedalCleared:
		return "cleared"
	case MedalNearlyFullCombo:
		return "nearly_full_combo"
	case MedalNearlyExcellent:
		return "nearly_excellent"
	case MedalFullCombo:
		return "full_combo"
	case MedalExcellent:
		return "excellent"
	}
	return "unknown"
}

var medalBits = map[ClearFlags]Medal{
	FlagCleared:         MedalCleared,
	FlagFullCombo:       MedalFullCombo,
	FlagExcellent:       MedalExcellent,
	FlagNearlyFullCombo: MedalNearlyFullCombo,
	FlagNearlyExcellent: MedalNearlyExcellent,
}

// ClassifyMedal maps a clear-flag bitmask to the highest medal any set bit
// implies. The played bit carries no medal and unrecognized bits are
// ignored, so the function is total.
func ClassifyMedal(flags ClearFlags) Medal {
	medal := MedalFailed
	for bit, m := range medalBits {
		if flags.Has(bit) && m > medal {
			medal = m
		}
	}
	return medal
}

package state

import (
	"fmt"

	"github.com/qui-ball/virtualGM/pkg/actor"
	"github.com/qui-ball/virtualGM/pkg/errs"
)

// Band is the threshold band a damage total falls in.
type Band int

const (
	BandNone Band = iota
	BandBelowMinor
	BandMinor
	BandMajor
	BandSevere
)

func (b Band) String() string {
	switch b {
	case BandBelowMinor:
		return "below minor"
	case BandMinor:
		return "minor"
	case BandMajor:
		return "major"
	case BandSevere:
		return "severe"
	default:
		return "none"
	}
}

// Thresholds classifies damage into a band and the HP it marks before
// armor. The minor and major bands both mark 2.
func Thresholds(damage int, v *actor.Vitals) (Band, int) {
	switch {
	case damage <= 0:
		return BandNone, 0
	case v.SevereThreshold != nil && damage >= *v.SevereThreshold:
		return BandSevere, 3
	case damage >= v.MajorThreshold:
		return BandMajor, 2
	case damage >= v.MinorThreshold:
		return BandMinor, 2
	default:
		return BandBelowMinor, 1
	}
}

// DamagePlan is an evaluated damage instance awaiting the armor decision.
type DamagePlan struct {
	Damage    int
	Band      Band
	BaseMarks int
	// ReducedMarks is the HP marked if one armor slot is spent.
	ReducedMarks   int
	ArmorAvailable bool
}

// PlanDamage evaluates damage against the PC's thresholds.
func PlanDamage(pc *actor.PlayerCharacter, damage int) (DamagePlan, error) {
	if damage < 0 {
		return DamagePlan{}, errs.Validation("damage", "must be non-negative, got %d", damage)
	}
	band, marks := Thresholds(damage, &pc.Vitals)
	return DamagePlan{
		Damage:         damage,
		Band:           band,
		BaseMarks:      marks,
		ReducedMarks:   max(0, marks-1),
		ArmorAvailable: pc.ArmorSlots > 0 && marks > 0,
	}, nil
}

// DamageReport describes a resolved damage instance.
type DamageReport struct {
	Damage      int  `json:"damage"`
	Band        Band `json:"-"`
	BaseMarks   int  `json:"base_hp_to_mark"`
	ArmorUsed   int  `json:"armor_used"`
	HPMarked    int  `json:"hp_marked"`
	HPBefore    int  `json:"hp_before"`
	HPAfter     int  `json:"hp_after"`
	HPMax       int  `json:"hp_max"`
	ArmorBefore int  `json:"armor_before"`
	ArmorAfter  int  `json:"armor_after"`
	ArmorMax    int  `json:"armor_max"`
}

func (r DamageReport) String() string {
	armor := "no armor slot used"
	if r.ArmorUsed > 0 {
		armor = fmt.Sprintf("1 armor slot used (%d -> %d/%d)", r.ArmorBefore, r.ArmorAfter, r.ArmorMax)
	}
	return fmt.Sprintf("Damage %d (%s band): base %d HP, %s, marked %d HP. HP %d -> %d/%d. Armor slots %d/%d.",
		r.Damage, r.Band, r.BaseMarks, armor, r.HPMarked, r.HPBefore, r.HPAfter, r.HPMax, r.ArmorAfter, r.ArmorMax)
}

// ApplyDamage resolves a plan against the PC. At most one armor slot is
// spent, and only when useArmor is set and the plan allows it.
func ApplyDamage(pc *actor.PlayerCharacter, plan DamagePlan, useArmor bool) DamageReport {
	r := DamageReport{
		Damage:      plan.Damage,
		Band:        plan.Band,
		BaseMarks:   plan.BaseMarks,
		HPBefore:    pc.HP,
		HPMax:       pc.HPMax,
		ArmorBefore: pc.ArmorSlots,
		ArmorMax:    pc.ArmorSlotsMax,
	}
	marks := plan.BaseMarks
	if useArmor && pc.ArmorSlots > 0 && marks > 0 {
		pc.ArmorSlots--
		r.ArmorUsed = 1
		marks--
	}
	pc.HP = max(0, pc.HP-marks)
	r.HPMarked = r.HPBefore - pc.HP
	r.HPAfter = pc.HP
	r.ArmorAfter = pc.ArmorSlots
	return r
}

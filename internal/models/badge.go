package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// BadgeTier is an ordered milestone. Comparisons between tiers follow the
// ordinal: Bronze < Silver < Gold < Diamond < Legendary.
type BadgeTier int

const (
	BadgeTierUnknown BadgeTier = iota
	BadgeTierBronze
	BadgeTierSilver
	BadgeTierGold
	BadgeTierDiamond
	BadgeTierLegendary
)

var badgeTierNames = map[BadgeTier]string{
	BadgeTierBronze:    "bronze",
	BadgeTierSilver:    "silver",
	BadgeTierGold:      "gold",
	BadgeTierDiamond:   "diamond",
	BadgeTierLegendary: "legendary",
}

var badgeTierThresholds = map[BadgeTier]int{
	BadgeTierBronze:    3,
	BadgeTierSilver:    7,
	BadgeTierGold:      14,
	BadgeTierDiamond:   30,
	BadgeTierLegendary: 100,
}

// BadgeTiers lists every tier in ascending threshold order.
func BadgeTiers() []BadgeTier {
	return []BadgeTier{BadgeTierBronze, BadgeTierSilver, BadgeTierGold, BadgeTierDiamond, BadgeTierLegendary}
}

func (t BadgeTier) Valid() bool {
	return t >= BadgeTierBronze && t <= BadgeTierLegendary
}

func (t BadgeTier) String() string {
	if name, ok := badgeTierNames[t]; ok {
		return name
	}
	return "unknown"
}

// Threshold is the streak length in days that earns the tier.
func (t BadgeTier) Threshold() int {
	return badgeTierThresholds[t]
}

func ParseBadgeTier(s string) (BadgeTier, error) {
	for tier, name := range badgeTierNames {
		if name == s {
			return tier, nil
		}
	}
	return BadgeTierUnknown, fmt.Errorf("unknown badge tier %q", s)
}

func (t BadgeTier) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid badge tier %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *BadgeTier) UnmarshalText(b []byte) error {
	parsed, err := ParseBadgeTier(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value stores the tier by name so the column stays readable.
func (t BadgeTier) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid badge tier %d", int(t))
	}
	return t.String(), nil
}

func (t *BadgeTier) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return t.UnmarshalText([]byte(v))
	case []byte:
		return t.UnmarshalText(v)
	case nil:
		*t = BadgeTierUnknown
		return nil
	default:
		return fmt.Errorf("cannot scan %T into BadgeTier", src)
	}
}

// ParticipantBadge is awarded at most once per (participant, tier).
type ParticipantBadge struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ParticipantID string    `gorm:"not null;uniqueIndex:idx_participant_tier" json:"participant_id"`
	Tier          BadgeTier `gorm:"type:varchar(16);not null;uniqueIndex:idx_participant_tier" json:"tier"`
	EarnedDate    string    `gorm:"type:varchar(10);not null" json:"earned_date"`
	StreakLength  int       `json:"streak_length"`
	CreatedAt     time.Time `json:"created_at"`
}

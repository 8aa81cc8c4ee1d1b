// Package pipeline drives the fetch-and-hydrate pipeline: pagination over
// the zKillboard list endpoint, per-page detail hydration, the cutoff-based
// stopping rule, name resolution, and assembly of the final kill records.
package pipeline

import (
	"fmt"

	"github.com/evelooter/looter/pkg/zkb"
)

// Victim is the display form of a killmail's losing party. Names are
// absent (empty) when resolution failed; that is never an error.
type Victim struct {
	CharacterID     int64  `json:"character_id,omitempty"`
	CharacterName   string `json:"character_name,omitempty"`
	CorporationName string `json:"corporation_name,omitempty"`
	ShipTypeID      int64  `json:"ship_type_id"`
	ShipTypeName    string `json:"ship_type_name,omitempty"`
}

// Attacker is the display form of one attacking participant.
type Attacker struct {
	CharacterID   int64  `json:"character_id,omitempty"`
	CharacterName string `json:"character_name,omitempty"`
	CorporationID int64  `json:"corporation_id,omitempty"`
	FinalBlow     bool   `json:"final_blow"`
}

// Killmail is the assembled output record: zKillboard value metadata
// joined with cached ESI detail and resolved names.
type Killmail struct {
	KillmailID       int64      `json:"killmail_id"`
	ZKB              zkb.Stats  `json:"zkb"`
	Victim           *Victim    `json:"victim"`
	Attackers        []Attacker `json:"attackers"`
	KillmailTime     string     `json:"killmail_time"`
	FormattedDropped string     `json:"formatted_dropped"`
	SolarSystemID    int64      `json:"solar_system_id"`
	SolarSystemName  string     `json:"solar_system_name,omitempty"`
	IsActive         bool       `json:"is_active"`
}

// FormatISK renders an ISK amount in the compact killboard notation
// (1.50t, 2.30b, 4.20m, 1.00k, 999).
func FormatISK(amount float64) string {
	abs := amount
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2ft", amount/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fb", amount/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fm", amount/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fk", amount/1e3)
	default:
		return fmt.Sprintf("%.0f", amount)
	}
}

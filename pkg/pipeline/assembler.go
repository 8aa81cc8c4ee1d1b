package pipeline

import (
	"context"

	"github.com/evelooter/looter/pkg/zkb"
)

// assemble joins cached detail and cached names into the output records.
// Summaries without a cached detail are dropped silently: their hydration
// failed as a soft miss and the kill simply does not appear in the output.
func (f *Fetcher) assemble(ctx context.Context, summaries []zkb.KillSummary) []Killmail {
	kills := make([]Killmail, 0, len(summaries))

	for _, s := range summaries {
		detail, ok := f.cache.GetDetail(ctx, s.KillmailID)
		if !ok {
			continue
		}

		victim := &Victim{
			CharacterID:  detail.Victim.CharacterID,
			ShipTypeID:   detail.Victim.ShipTypeID,
			ShipTypeName: f.lookupName(ctx, detail.Victim.ShipTypeID),
		}
		if detail.Victim.CharacterID != 0 {
			victim.CharacterName = f.lookupName(ctx, detail.Victim.CharacterID)
		}
		if detail.Victim.CorporationID != 0 {
			victim.CorporationName = f.lookupName(ctx, detail.Victim.CorporationID)
		}

		attackers := make([]Attacker, 0, len(detail.Attackers))
		for _, att := range detail.Attackers {
			a := Attacker{
				CharacterID:   att.CharacterID,
				CorporationID: att.CorporationID,
				FinalBlow:     att.FinalBlow,
			}
			if att.CharacterID != 0 {
				a.CharacterName = f.lookupName(ctx, att.CharacterID)
			}
			attackers = append(attackers, a)
		}

		kills = append(kills, Killmail{
			KillmailID:       s.KillmailID,
			ZKB:              s.ZKB,
			Victim:           victim,
			Attackers:        attackers,
			KillmailTime:     detail.KillmailTime,
			FormattedDropped: FormatISK(s.ZKB.DroppedValue),
			SolarSystemID:    detail.SolarSystemID,
			SolarSystemName:  f.lookupName(ctx, detail.SolarSystemID),
			IsActive:         true,
		})
	}

	return kills
}

// lookupName returns the cached name for an ID, or "" when unresolved.
func (f *Fetcher) lookupName(ctx context.Context, id int64) string {
	if id == 0 {
		return ""
	}
	name, _ := f.cache.GetName(ctx, id)
	return name
}

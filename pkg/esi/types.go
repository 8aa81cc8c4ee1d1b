package esi

import "time"

// Victim identifies the losing party of a killmail. A zero ID means the
// field was absent from the ESI response (structure kills, NPC losses).
type Victim struct {
	CharacterID   int64 `json:"character_id,omitempty"`
	CorporationID int64 `json:"corporation_id,omitempty"`
	ShipTypeID    int64 `json:"ship_type_id"`
}

// Attacker is one participant on the killing side, in ESI order.
type Attacker struct {
	CharacterID   int64 `json:"character_id,omitempty"`
	CorporationID int64 `json:"corporation_id,omitempty"`
	FinalBlow     bool  `json:"final_blow"`
}

// Killmail is the authoritative detail record for one kill. Once fetched
// it never changes; re-fetching the same ID yields an identical record.
type Killmail struct {
	KillmailID    int64      `json:"killmail_id"`
	KillmailTime  string     `json:"killmail_time"`
	SolarSystemID int64      `json:"solar_system_id"`
	Victim        Victim     `json:"victim"`
	Attackers     []Attacker `json:"attackers"`
}

// Time parses the killmail timestamp into an absolute instant.
func (k Killmail) Time() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, k.KillmailTime)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// NameEntry is one result of the bulk name-resolution endpoint.
type NameEntry struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// KillRef pairs a killmail ID with the zKillboard hash required to fetch
// its detail record from ESI.
type KillRef struct {
	ID   int64
	Hash string
}

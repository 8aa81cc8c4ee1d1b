package zkb

// Stats carries the value metadata zKillboard attaches to every kill,
// including the hash required to fetch the authoritative killmail from ESI.
type Stats struct {
	LocationID     int64   `json:"locationID"`
	Hash           string  `json:"hash"`
	FittedValue    float64 `json:"fittedValue"`
	DroppedValue   float64 `json:"droppedValue"`
	DestroyedValue float64 `json:"destroyedValue"`
	TotalValue     float64 `json:"totalValue"`
}

// KillSummary is one entry of a zKillboard list page. Summaries are
// read-only after creation; the kill ID is unique and stable across pages.
type KillSummary struct {
	KillmailID int64 `json:"killmail_id"`
	ZKB        Stats `json:"zkb"`
}

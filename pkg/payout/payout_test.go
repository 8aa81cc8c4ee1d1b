package payout

import (
	"testing"
	"time"

	"github.com/evelooter/looter/pkg/pipeline"
	"github.com/evelooter/looter/pkg/zkb"
)

func kill(id int64, killTime string, dropped float64, attackerNames ...string) pipeline.Killmail {
	attackers := make([]pipeline.Attacker, len(attackerNames))
	for i, name := range attackerNames {
		attackers[i] = pipeline.Attacker{CharacterID: int64(90000 + i), CharacterName: name}
	}
	return pipeline.Killmail{
		KillmailID:   id,
		ZKB:          zkb.Stats{DroppedValue: dropped},
		Attackers:    attackers,
		KillmailTime: killTime,
		IsActive:     true,
	}
}

func TestFilterWindow(t *testing.T) {
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 100, "Alice"),
		kill(2, "2026-08-15T00:00:00Z", 100, "Alice"),
		kill(3, "2026-08-20T23:59:59Z", 100, "Alice"),
		kill(4, "2026-08-21T00:00:00Z", 100, "Alice"),
		kill(5, "garbage", 100, "Alice"),
	}

	start := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 20, 23, 59, 59, 0, time.UTC)

	got := FilterWindow(kills, start, end)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].KillmailID != 2 || got[1].KillmailID != 3 {
		t.Errorf("IDs = %d, %d, want 2, 3", got[0].KillmailID, got[1].KillmailID)
	}
}

func TestMarkExcluded(t *testing.T) {
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 100, "Alice"),
		kill(2, "2026-08-10T13:00:00Z", 100, "Alice"),
	}

	got := MarkExcluded(kills, map[int64]bool{2: true})
	if !got[0].IsActive {
		t.Error("kill 1 inactive, want active")
	}
	if got[1].IsActive {
		t.Error("kill 2 active, want inactive")
	}
	if !kills[1].IsActive {
		t.Error("input slice mutated")
	}
}

func TestSplit_EqualShares(t *testing.T) {
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 300, "Alice", "Bob", "Carol"),
		kill(2, "2026-08-10T13:00:00Z", 100, "Alice"),
	}

	report := Split(kills, nil, nil)

	if report.TotalDropped != 400 {
		t.Errorf("TotalDropped = %g, want 400", report.TotalDropped)
	}
	if report.ActiveHumans != 3 {
		t.Errorf("ActiveHumans = %d, want 3", report.ActiveHumans)
	}

	amounts := map[string]float64{}
	for _, b := range report.Beneficiaries {
		amounts[b.Name] = b.Amount
	}
	if amounts["Alice"] != 200 {
		t.Errorf("Alice = %g, want 200", amounts["Alice"])
	}
	if amounts["Bob"] != 100 || amounts["Carol"] != 100 {
		t.Errorf("Bob = %g, Carol = %g, want 100 each", amounts["Bob"], amounts["Carol"])
	}
}

func TestSplit_MappingCollapsesAlts(t *testing.T) {
	// Alice and her alt are the same human on one kill, so the 300 splits
	// two ways after mapping, not three.
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 300, "Alice", "Alice Alt", "Bob"),
	}
	mapping := map[string]string{"Alice Alt": "Alice"}

	report := Split(kills, mapping, nil)

	amounts := map[string]float64{}
	for _, b := range report.Beneficiaries {
		amounts[b.Name] = b.Amount
	}
	if len(amounts) != 2 {
		t.Fatalf("beneficiaries = %d, want 2", len(amounts))
	}
	if amounts["Alice"] != 150 || amounts["Bob"] != 150 {
		t.Errorf("Alice = %g, Bob = %g, want 150 each", amounts["Alice"], amounts["Bob"])
	}
}

func TestSplit_ExcludedBeneficiary(t *testing.T) {
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 200, "Alice", "Bob"),
	}

	report := Split(kills, nil, map[string]bool{"Bob": true})

	if report.ActiveHumans != 1 {
		t.Errorf("ActiveHumans = %d, want 1", report.ActiveHumans)
	}

	byName := map[string]Beneficiary{}
	for _, b := range report.Beneficiaries {
		byName[b.Name] = b
	}
	// The excluded name still appears, inactive and empty-handed, and
	// Alice takes the whole drop.
	bob, ok := byName["Bob"]
	if !ok {
		t.Fatal("Bob missing from report")
	}
	if bob.IsActive || bob.Amount != 0 {
		t.Errorf("Bob = %+v, want inactive with 0", bob)
	}
	if byName["Alice"].Amount != 200 {
		t.Errorf("Alice = %g, want 200", byName["Alice"].Amount)
	}
}

func TestSplit_InactiveKillsSkipped(t *testing.T) {
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 100, "Alice"),
		kill(2, "2026-08-10T13:00:00Z", 900, "Alice"),
	}
	kills[1].IsActive = false

	report := Split(kills, nil, nil)

	if report.TotalDropped != 100 {
		t.Errorf("TotalDropped = %g, want 100", report.TotalDropped)
	}
	if len(report.Beneficiaries) != 1 || report.Beneficiaries[0].Amount != 100 {
		t.Errorf("beneficiaries = %+v", report.Beneficiaries)
	}
}

func TestSplit_UnnamedAttackersIgnored(t *testing.T) {
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 100, "Alice", ""),
	}

	report := Split(kills, nil, nil)
	if len(report.Beneficiaries) != 1 {
		t.Fatalf("beneficiaries = %d, want 1", len(report.Beneficiaries))
	}
	if report.Beneficiaries[0].Amount != 100 {
		t.Errorf("Alice = %g, want 100", report.Beneficiaries[0].Amount)
	}
}

func TestSplit_BeneficiariesSorted(t *testing.T) {
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 300, "Carol", "Alice", "Bob"),
	}

	report := Split(kills, nil, nil)
	want := []string{"Alice", "Bob", "Carol"}
	for i, b := range report.Beneficiaries {
		if b.Name != want[i] {
			t.Errorf("beneficiary %d = %q, want %q", i, b.Name, want[i])
		}
	}
}

func TestGroupByDay(t *testing.T) {
	kills := []pipeline.Killmail{
		kill(1, "2026-08-10T12:00:00Z", 100, "Alice"),
		kill(2, "2026-08-12T09:00:00Z", 100, "Alice"),
		kill(3, "2026-08-10T18:00:00Z", 100, "Alice"),
	}

	groups := GroupByDay(kills)
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}
	if groups[0].Date != "2026-08-12" || groups[1].Date != "2026-08-10" {
		t.Errorf("order = %q, %q, want newest first", groups[0].Date, groups[1].Date)
	}
	if len(groups[1].Kills) != 2 {
		t.Errorf("kills on 2026-08-10 = %d, want 2", len(groups[1].Kills))
	}
}

func TestParseMapping(t *testing.T) {
	text := "Alt One: Main One\nAlt Two = Main Two\n\nno separator\n: empty alt\n"
	mapping := ParseMapping(text)

	if len(mapping) != 2 {
		t.Fatalf("entries = %d, want 2", len(mapping))
	}
	if mapping["Alt One"] != "Main One" {
		t.Errorf("Alt One -> %q", mapping["Alt One"])
	}
	if mapping["Alt Two"] != "Main Two" {
		t.Errorf("Alt Two -> %q", mapping["Alt Two"])
	}
}

func TestParseIDList(t *testing.T) {
	ids := ParseIDList("12345, 67890,,abc, -5, 0")
	if len(ids) != 2 {
		t.Fatalf("entries = %d, want 2", len(ids))
	}
	if !ids[12345] || !ids[67890] {
		t.Errorf("ids = %v", ids)
	}
}

func TestParseNameList(t *testing.T) {
	names := ParseNameList(" Alice ,Bob,, ")
	if len(names) != 2 || !names["Alice"] || !names["Bob"] {
		t.Errorf("names = %v", names)
	}
}

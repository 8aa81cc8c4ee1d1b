// Package payout implements the post-processing stages applied to a
// hydrated kill set: time-window filtering, kill and beneficiary
// exclusions, alt-to-main mapping, the per-kill equal split of dropped
// value, and daily grouping. Each stage is orthogonal and pure; the
// pipeline itself knows nothing about payouts.
package payout

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/evelooter/looter/pkg/pipeline"
)

// Beneficiary is one payout recipient after mapping and splitting.
type Beneficiary struct {
	Name            string  `json:"name"`
	Amount          float64 `json:"amount"`
	FormattedAmount string  `json:"formatted_amount"`
	IsActive        bool    `json:"is_active"`
}

// DailyGroup bundles the kills of one UTC day.
type DailyGroup struct {
	Date  string              `json:"date"`
	Kills []pipeline.Killmail `json:"kills"`
}

// Report is the full payout summary over a filtered kill set.
type Report struct {
	DailyGroups     []DailyGroup  `json:"daily_groups"`
	Beneficiaries   []Beneficiary `json:"beneficiaries"`
	TotalDropped    float64       `json:"total_dropped"`
	TotalDroppedStr string        `json:"total_dropped_str"`
	ActiveHumans    int           `json:"active_humans"`
}

// FilterWindow keeps kills whose timestamp falls inside [start, end].
// Kills with an unparseable timestamp are dropped.
func FilterWindow(kills []pipeline.Killmail, start, end time.Time) []pipeline.Killmail {
	out := make([]pipeline.Killmail, 0, len(kills))
	for _, k := range kills {
		t, err := time.Parse(time.RFC3339, k.KillmailTime)
		if err != nil {
			continue
		}
		t = t.UTC()
		if !t.Before(start) && !t.After(end) {
			out = append(out, k)
		}
	}
	return out
}

// MarkExcluded flags excluded kill IDs inactive. Excluded kills stay in
// the set so they still render, they just take no part in the split.
func MarkExcluded(kills []pipeline.Killmail, excludedIDs map[int64]bool) []pipeline.Killmail {
	out := make([]pipeline.Killmail, len(kills))
	for i, k := range kills {
		k.IsActive = !excludedIDs[k.KillmailID]
		out[i] = k
	}
	return out
}

// Split divides each active kill's dropped value equally among its
// distinct mapped attacker names. Excluded beneficiaries take no share
// but still appear in the result, flagged inactive, so the operator sees
// who was left out. Unnamed attackers (unresolved characters, NPCs)
// never participate.
func Split(kills []pipeline.Killmail, mapping map[string]string, excludedNames map[string]bool) Report {
	allSeen := make(map[string]bool)
	wallets := make(map[string]float64)
	total := 0.0

	for _, kill := range kills {
		if !kill.IsActive {
			continue
		}

		total += kill.ZKB.DroppedValue

		participants := make(map[string]bool)
		for _, att := range kill.Attackers {
			if att.CharacterName == "" {
				continue
			}
			main := att.CharacterName
			if mapped, ok := mapping[main]; ok {
				main = mapped
			}
			allSeen[main] = true
			if !excludedNames[main] {
				participants[main] = true
			}
		}

		if len(participants) == 0 {
			continue
		}

		share := kill.ZKB.DroppedValue / float64(len(participants))
		for main := range participants {
			wallets[main] += share
		}
	}

	beneficiaries := make([]Beneficiary, 0, len(allSeen))
	active := 0
	for main := range allSeen {
		b := Beneficiary{
			Name:            main,
			Amount:          wallets[main],
			FormattedAmount: pipeline.FormatISK(wallets[main]),
			IsActive:        !excludedNames[main],
		}
		if b.IsActive {
			active++
		}
		beneficiaries = append(beneficiaries, b)
	}
	sort.Slice(beneficiaries, func(i, j int) bool {
		return beneficiaries[i].Name < beneficiaries[j].Name
	})

	return Report{
		DailyGroups:     GroupByDay(kills),
		Beneficiaries:   beneficiaries,
		TotalDropped:    total,
		TotalDroppedStr: pipeline.FormatISK(total),
		ActiveHumans:    active,
	}
}

// GroupByDay buckets kills by the date part of their timestamp, newest
// day first.
func GroupByDay(kills []pipeline.Killmail) []DailyGroup {
	buckets := make(map[string][]pipeline.Killmail)
	for _, k := range kills {
		date, _, found := strings.Cut(k.KillmailTime, "T")
		if !found {
			date = "Unknown"
		}
		buckets[date] = append(buckets[date], k)
	}

	dates := make([]string, 0, len(buckets))
	for date := range buckets {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	groups := make([]DailyGroup, 0, len(dates))
	for _, date := range dates {
		groups = append(groups, DailyGroup{Date: date, Kills: buckets[date]})
	}
	return groups
}

// ParseMapping reads "alt: main" or "alt = main" lines into a lookup map.
// Malformed lines are skipped.
func ParseMapping(text string) map[string]string {
	mapping := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		idx := strings.IndexAny(line, ":=")
		if idx < 0 {
			continue
		}
		alt := strings.TrimSpace(line[:idx])
		main := strings.TrimSpace(line[idx+1:])
		if alt == "" || main == "" {
			continue
		}
		mapping[alt] = main
	}
	return mapping
}

// ParseIDList reads a comma-separated list of kill IDs into a set.
func ParseIDList(text string) map[int64]bool {
	out := make(map[int64]bool)
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		out[id] = true
	}
	return out
}

// ParseNameList reads a comma-separated list of names into a set.
func ParseNameList(text string) map[string]bool {
	out := make(map[string]bool)
	for _, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out[part] = true
		}
	}
	return out
}

// Package aggregate turns visit-log metrics into the totals and weeding
// breakdowns shown on the dashboard and section pages.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/riverkeep/river-ops/internal/constants"
	"github.com/riverkeep/river-ops/internal/models"
)

const (
	// NoneRecorded is the single summary entry when no weeds were logged.
	NoneRecorded = "None recorded"
	// OtherLabel prefixes the remainder entry of the weeding summary.
	OtherLabel = "Other"
)

// TypeSum is the summed value of every metric of one type.
type TypeSum struct {
	MetricType models.MetricType `json:"metric_type"`
	Total      int64             `json:"total"`
}

// LabelSum is the summed value of every metric carrying one label.
type LabelSum struct {
	Label string `json:"label"`
	Total int64  `json:"total"`
}

// Totals are the headline figures for a set of visits.
type Totals struct {
	BagsGeneral    int64 `json:"bags_general"`
	BagsRecyclable int64 `json:"bags_recyclable"`
	Bags           int64 `json:"total_bags"`
	Plants         int64 `json:"total_plants"`
	Weeds          int64 `json:"total_weeds"`
}

// TotalsFromSums builds Totals from per-type sums. Unknown types are ignored.
func TotalsFromSums(sums []TypeSum) Totals {
	var t Totals
	for _, s := range sums {
		t.add(s.MetricType, s.Total)
	}
	t.Bags = t.BagsGeneral + t.BagsRecyclable
	return t
}

// TotalsFromMetrics sums an in-memory slice of metrics.
func TotalsFromMetrics(metrics []models.Metric) Totals {
	var t Totals
	for _, m := range metrics {
		t.add(m.MetricType, m.Value)
	}
	t.Bags = t.BagsGeneral + t.BagsRecyclable
	return t
}

func (t *Totals) add(mt models.MetricType, v int64) {
	switch mt {
	case models.MetricLitterGeneral:
		t.BagsGeneral += v
	case models.MetricLitterRecyclable:
		t.BagsRecyclable += v
	case models.MetricPlant:
		t.Plants += v
	case models.MetricWeed:
		t.Weeds += v
	}
}

// WeedLabelSums groups weed metrics by label, summing values.
// The result is ordered by label.
func WeedLabelSums(metrics []models.Metric) []LabelSum {
	byLabel := make(map[string]int64)
	for _, m := range metrics {
		if m.MetricType != models.MetricWeed {
			continue
		}
		byLabel[m.Label] += m.Value
	}

	sums := make([]LabelSum, 0, len(byLabel))
	for label, total := range byLabel {
		sums = append(sums, LabelSum{Label: label, Total: total})
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i].Label < sums[j].Label })
	return sums
}

// WeedingSummary renders the top labels by total as "Label: N" entries.
// Anything beyond the top three is folded into a single "Other: N" entry,
// which only appears when the remainder is positive. total is the overall
// weed count the remainder is measured against.
func WeedingSummary(labelSums []LabelSum, total int64) []string {
	if len(labelSums) == 0 {
		return []string{NoneRecorded}
	}

	sorted := make([]LabelSum, len(labelSums))
	copy(sorted, labelSums)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Total != sorted[j].Total {
			return sorted[i].Total > sorted[j].Total
		}
		return sorted[i].Label < sorted[j].Label
	})

	n := min(constants.WeedingTopN, len(sorted))
	summary := make([]string, 0, n+1)
	var top int64
	for _, s := range sorted[:n] {
		summary = append(summary, fmt.Sprintf("%s: %d", s.Label, s.Total))
		top += s.Total
	}
	if rest := total - top; rest > 0 {
		summary = append(summary, fmt.Sprintf("%s: %d", OtherLabel, rest))
	}
	return summary
}

// JoinSummary flattens a weeding summary into one comma-separated line.
func JoinSummary(summary []string) string {
	return strings.Join(summary, ", ")
}

// StageCount is the number of sections currently in one stage.
type StageCount struct {
	Stage models.Stage `json:"stage"`
	Label string       `json:"label"`
	Count int64        `json:"count"`
}

// StageDistribution lists every stage in enum order with its count, zeros included.
func StageDistribution(counts map[models.Stage]int64) []StageCount {
	out := make([]StageCount, 0, len(models.Stages))
	for _, st := range models.Stages {
		out = append(out, StageCount{Stage: st, Label: st.Label(), Count: counts[st]})
	}
	return out
}

package ranking

import "time"

const defaultSuppressionDays = 60

// BuildSuppression derives the set of district IDs to exclude. A
// district is suppressed when any engagement event falls inside the
// trailing window, or when it appears on the explicit exclusion list.
// Suppression is absolute for the window; there is no soft tier.
func BuildSuppression(signals *EngagementSignals, excludeIDs []string, now time.Time) map[string]bool {
	suppressed := make(map[string]bool)
	if signals != nil {
		days := signals.SuppressionDays
		if days <= 0 {
			days = defaultSuppressionDays
		}
		window := time.Duration(days) * 24 * time.Hour
		for _, ev := range signals.Events {
			if ev.DistrictID == "" {
				continue
			}
			age := now.Sub(ev.Timestamp)
			if age >= 0 && age <= window {
				suppressed[ev.DistrictID] = true
			}
		}
	}
	for _, id := range excludeIDs {
		if id != "" {
			suppressed[id] = true
		}
	}
	return suppressed
}

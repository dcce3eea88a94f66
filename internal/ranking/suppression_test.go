package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildSuppressionWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	signals := &EngagementSignals{
		SuppressionDays: 60,
		Events: []EngagementEvent{
			{DistrictID: "recent", EventType: "email", Timestamp: now.AddDate(0, 0, -10)},
			{DistrictID: "edge", EventType: "call", Timestamp: now.Add(-60 * 24 * time.Hour)},
			{DistrictID: "stale", EventType: "email", Timestamp: now.AddDate(0, 0, -61)},
			{DistrictID: "future", EventType: "demo", Timestamp: now.AddDate(0, 0, 1)},
		},
	}

	suppressed := BuildSuppression(signals, nil, now)
	assert.True(t, suppressed["recent"])
	assert.True(t, suppressed["edge"], "event exactly at the window boundary is suppressed")
	assert.False(t, suppressed["stale"])
	assert.False(t, suppressed["future"])
}

func TestBuildSuppressionDefaultsWindow(t *testing.T) {
	now := time.Now()
	signals := &EngagementSignals{
		Events: []EngagementEvent{
			{DistrictID: "a", Timestamp: now.AddDate(0, 0, -30)},
			{DistrictID: "b", Timestamp: now.AddDate(0, 0, -90)},
		},
	}
	suppressed := BuildSuppression(signals, nil, now)
	assert.True(t, suppressed["a"])
	assert.False(t, suppressed["b"])
}

func TestBuildSuppressionExplicitExclusions(t *testing.T) {
	suppressed := BuildSuppression(nil, []string{"x", "", "y"}, time.Now())
	assert.True(t, suppressed["x"])
	assert.True(t, suppressed["y"])
	assert.Len(t, suppressed, 2)
}

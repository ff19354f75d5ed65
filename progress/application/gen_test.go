package application

import (
	"progress-sync/progress/domain"

	"pgregory.net/rapid"
)

func tripGen() *rapid.Generator[domain.TripProgress] {
	return rapid.Custom(func(t *rapid.T) domain.TripProgress {
		return domain.TripProgress{
			Image:      rapid.StringMatching(`/img/[a-z]{1,8}\.png`).Draw(t, "image"),
			Title:      rapid.String().Draw(t, "title"),
			Status:     rapid.StringMatching(`[0-9]{1,3}% completed`).Draw(t, "status"),
			Percentage: rapid.IntRange(0, 100).Draw(t, "percentage"),
		}
	})
}

func stateGen() *rapid.Generator[domain.ProgressState] {
	return rapid.Custom(func(t *rapid.T) domain.ProgressState {
		return domain.ProgressState{
			Trips:                 rapid.SliceOfN(tripGen(), 0, 4).Draw(t, "trips"),
			ClickCount:            rapid.Int64Range(0, 1<<40).Draw(t, "clickCount"),
			GlobalHighestProgress: rapid.IntRange(0, 100).Draw(t, "globalHighestProgress"),
			LastClickTime:         rapid.Int64Range(0, 1<<45).Draw(t, "lastClickTime"),
		}
	})
}

func patchGen() *rapid.Generator[domain.Patch] {
	return rapid.Custom(func(t *rapid.T) domain.Patch {
		var p domain.Patch
		if rapid.Bool().Draw(t, "hasTrips") {
			trips := rapid.SliceOfN(tripGen(), 0, 4).Draw(t, "trips")
			p.Trips = &trips
		}
		if rapid.Bool().Draw(t, "hasClickCount") {
			n := rapid.Int64Range(0, 1<<40).Draw(t, "clickCount")
			p.ClickCount = &n
		}
		if rapid.Bool().Draw(t, "hasGlobal") {
			g := rapid.IntRange(0, 100).Draw(t, "globalHighestProgress")
			p.GlobalHighestProgress = &g
		}
		if rapid.Bool().Draw(t, "hasLastClick") {
			n := rapid.Int64Range(0, 1<<45).Draw(t, "lastClickTime")
			p.LastClickTime = &n
		}
		return p
	})
}

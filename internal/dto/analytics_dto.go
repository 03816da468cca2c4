package dto

import "time"

type AnalyticsSnapshotResponse struct {
	Turns            int64            `json:"turns"`
	TurnsByCategory  map[string]int64 `json:"turns_by_category"`
	TurnsByMethod    map[string]int64 `json:"turns_by_method"`
	GuidelineCounts  map[string]int64 `json:"guideline_counts"`
	EmptyTurns       int64            `json:"empty_turns"`
	LastEventAt      *time.Time       `json:"last_event_at"`
	SubscriberActive bool             `json:"subscriber_active"`
}

package models

// Stats is the dashboard summary of the whole case load
type Stats struct {
	CasesTotal      int64                     `json:"cases_total"`
	CasesByStatus   map[CaseStatus]int64      `json:"cases_by_status"`
	CasesOpen       int64                     `json:"cases_open"`
	CasesClosed     int64                     `json:"cases_closed"`
	EvidenceTotal   int64                     `json:"evidence_total"`
	SuspectsTotal   int64                     `json:"suspects_total"`
	MostWantedTotal int64                     `json:"most_wanted_total"`
	TipsTotal       int64                     `json:"tips_total"`
	TipsByStatus    map[RewardTipStatus]int64 `json:"tips_by_status"`
	TipsPending     int64                     `json:"tips_pending"`
}

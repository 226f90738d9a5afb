package models

// Dossier is the read-only aggregate view of everything recorded on a case
type Dossier struct {
	Case           Case            `json:"case"`
	SolveRequests  []SolveRequest  `json:"solveRequests"`
	Interrogations []Interrogation `json:"interrogations"`
	Suspects       []RankedSuspect `json:"suspects"`
	Evidence       []Evidence      `json:"evidence"`
}

package models

// SchoolPeriodID is the fixed row id of the school period singleton.
const SchoolPeriodID = 1

// SchoolPeriod holds the academic calendar for one school year: four JHS
// quarters and four SHS quarters. The two divisions' terms do not align in
// time, so the ranges are stored separately even though both label their
// quarters Q1..Q4. All bounds are epoch millis, inclusive on both ends.
type SchoolPeriod struct {
	SchoolYear string `json:"schoolYear"`
	Q1Start    int64  `json:"q1Start"`
	Q1End      int64  `json:"q1End"`
	Q2Start    int64  `json:"q2Start"`
	Q2End      int64  `json:"q2End"`
	Q3Start    int64  `json:"q3Start"`
	Q3End      int64  `json:"q3End"`
	Q4Start    int64  `json:"q4Start"`
	Q4End      int64  `json:"q4End"`
	ShsQ1Start int64  `json:"shsQ1Start"`
	ShsQ1End   int64  `json:"shsQ1End"`
	ShsQ2Start int64  `json:"shsQ2Start"`
	ShsQ2End   int64  `json:"shsQ2End"`
	ShsQ3Start int64  `json:"shsQ3Start"`
	ShsQ3End   int64  `json:"shsQ3End"`
	ShsQ4Start int64  `json:"shsQ4Start"`
	ShsQ4End   int64  `json:"shsQ4End"`
}

package models

const (
	EventSuspension = "suspension"
	EventHoliday    = "holiday"
	EventActivity   = "activity"
)

// SchoolEvent is a calendar exception. Date is truncated to day granularity.
// Events with IsNoClass set drive automatic "not-applicable" marking.
type SchoolEvent struct {
	ID          string  `json:"id"`
	Date        int64   `json:"date"`
	Title       string  `json:"title"`
	Type        string  `json:"type"`
	Description *string `json:"description,omitempty"`
	IsNoClass   bool    `json:"isNoClass"`
	Synced      bool    `json:"synced"`
}

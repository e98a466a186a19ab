package model

import "time"

type Member struct {
	ID       int    `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex" json:"username"`
	Password string `json:"-"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
	Role     string `json:"role"`
	Team     string `json:"team"`
}

// SheetRecord is the persisted form of one member's week entry. The
// conflict key is (team_id, week_id, member_id); saves are upserts,
// last write wins. work_types holds the raw 8x5 cell grid as JSON.
// week_total is stored for dashboard queries but always recomputed
// from the raw cells on load.
type SheetRecord struct {
	ID           int       `gorm:"primaryKey" json:"id"`
	TeamID       string    `gorm:"size:64;uniqueIndex:uk_team_week_member" json:"team_id"`
	WeekID       string    `gorm:"size:10;uniqueIndex:uk_team_week_member" json:"week_id"`
	MemberID     string    `gorm:"size:64;uniqueIndex:uk_team_week_member" json:"member_id"`
	Year         int       `json:"year"`
	Month        int       `json:"month"`
	WeekNumber   int       `json:"week_number"`
	DateRange    string    `json:"date_range"`
	WorkTypes    string    `gorm:"type:text" json:"work_types"`
	WorkingDays  float64   `json:"working_days"`
	LeaveDays    float64   `json:"leave_days"`
	WeeklyRating float64   `json:"weekly_rating"`
	WeekTotal    float64   `json:"week_total"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Member) TableName() string      { return "members" }
func (SheetRecord) TableName() string { return "sheet_records" }

package model

import "crewsheet/internal/sheet"

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Role   string `json:"role"`
	Team   string `json:"team"`
}

// SaveSheetRequest carries the raw, caller-editable part of an entry.
// Totals are never accepted from the client; the server recomputes them.
type SaveSheetRequest struct {
	WorkTypes    map[string]sheet.DayValues `json:"work_types" binding:"required"`
	WorkingDays  float64                    `json:"working_days"`
	LeaveDays    float64                    `json:"leave_days"`
	WeeklyRating float64                    `json:"weekly_rating"`
}

type NotifyRequest struct {
	Text      string `json:"text" binding:"required"`
	ImageURL  string `json:"image_url"`
	ImageData string `json:"image_data"` // base64, uploaded via image hosts
}

type NotifyResponse struct {
	Status   int    `json:"status"`
	TextOnly bool   `json:"text_only"`
	ImageURL string `json:"image_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

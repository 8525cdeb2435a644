package hr

import "time"

type Employee struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId,omitempty"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	Department      string    `json:"department"`
	ExperienceLevel string    `json:"experienceLevel"`
	LeaveBalance    float64   `json:"leaveBalance"`
	CreatedAt       time.Time `json:"createdAt"`
}

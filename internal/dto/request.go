package dto

// CreateSocialRequest represents a new social event
type CreateSocialRequest struct {
	EventName        string `json:"eventName" binding:"required"`
	EventDescription string `json:"eventDescription"`
	EventLocation    string `json:"eventLocation" binding:"required"`
	EventImage       string `json:"eventImage" binding:"required,url"`
	EventDate        int64  `json:"eventDate" binding:"required,gt=0"`
}

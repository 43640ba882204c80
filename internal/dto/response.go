package dto

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// SocialResponse is one social as seen by the caller
type SocialResponse struct {
	ID               string   `json:"id"`
	EventDate        int64    `json:"eventDate"`
	EventName        string   `json:"eventName"`
	EventDescription string   `json:"eventDescription"`
	EventLocation    string   `json:"eventLocation"`
	EventImage       string   `json:"eventImage"`
	Owner            string   `json:"owner"`
	UsersLiked       []string `json:"usersLiked"`
	Interested       bool     `json:"interested"`
	LikeLabel        string   `json:"like_label"`
}

// SnapshotResponse is an ordered snapshot of the collection. Error is set when the
// latest batch was rejected and the snapshot is the last good one.
type SnapshotResponse struct {
	Version uint64           `json:"version"`
	Socials []SocialResponse `json:"socials"`
	Error   string           `json:"error,omitempty"`
}

// ToggleInterestResponse represents a committed toggle
type ToggleInterestResponse struct {
	ID         string `json:"id"`
	Interested bool   `json:"interested"`
	Count      int    `json:"count"`
	LikeLabel  string `json:"like_label"`
	Attempts   int    `json:"attempts"`
}

// CreateSocialResponse represents a created social
type CreateSocialResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ActivityStatsResponse aggregates the recorded interest activity of one social
type ActivityStatsResponse struct {
	SocialID        string `json:"social_id"`
	InterestAdded   uint64 `json:"interest_added"`
	InterestRemoved uint64 `json:"interest_removed"`
	UniqueUsers     uint64 `json:"unique_users"`
	Net             int64  `json:"net"`
}

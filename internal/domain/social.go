package domain

import "slices"

// Social represents one social event as stored in the socials collection
type Social struct {
	ID               string   `json:"id,omitempty"`
	EventDate        int64    `json:"eventDate"`
	EventName        string   `json:"eventName"`
	EventDescription string   `json:"eventDescription"`
	EventLocation    string   `json:"eventLocation"`
	EventImage       string   `json:"eventImage"`
	Owner            string   `json:"owner"`
	UsersLiked       []string `json:"usersLiked"`
}

// Clone returns a deep copy of the social
func (s *Social) Clone() *Social {
	if s == nil {
		return nil
	}
	c := *s
	c.UsersLiked = slices.Clone(s.UsersLiked)
	if c.UsersLiked == nil {
		c.UsersLiked = []string{}
	}
	return &c
}

// IsInterested reports whether userID is in the interested-user set
func (s *Social) IsInterested(userID string) bool {
	return slices.Contains(s.UsersLiked, userID)
}

// HasDuplicateInterest reports whether usersLiked holds the same user twice
func (s *Social) HasDuplicateInterest() bool {
	seen := make(map[string]struct{}, len(s.UsersLiked))
	for _, u := range s.UsersLiked {
		if _, ok := seen[u]; ok {
			return true
		}
		seen[u] = struct{}{}
	}
	return false
}

// ToggleMembership returns a new set with userID removed if present, appended otherwise.
// Any duplicates already present are collapsed so the result is always a set.
func ToggleMembership(users []string, userID string) ([]string, bool) {
	result := make([]string, 0, len(users)+1)
	seen := make(map[string]struct{}, len(users))
	present := false

	for _, u := range users {
		if u == userID {
			present = true
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		result = append(result, u)
	}

	if !present {
		result = append(result, userID)
	}

	return result, !present
}

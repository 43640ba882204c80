package store

import (
	"encoding/json"
	"fmt"

	"github.com/BarkinBalci/socials-sync-service/internal/domain"
)

// EncodeSocial renders a social as the JSON document carried in RawChange.Data
func EncodeSocial(social *domain.Social) ([]byte, error) {
	data, err := json.Marshal(social)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal social %s: %w", social.ID, err)
	}
	return data, nil
}

// DecodeUsers parses a stored usersLiked column
func DecodeUsers(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	users := []string{}
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("failed to unmarshal usersLiked: %w", err)
	}
	return users, nil
}

// EncodeUsers renders usersLiked for storage; nil becomes an empty array
func EncodeUsers(users []string) ([]byte, error) {
	if users == nil {
		users = []string{}
	}
	raw, err := json.Marshal(users)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal usersLiked: %w", err)
	}
	return raw, nil
}

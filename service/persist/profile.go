package persist

import "context"

// ProfileKey is the fixed store key the profile document lives under
const ProfileKey = "profile"

// Profile is the singleton document describing the site owner. It has no id;
// exactly one instance exists, created once and fully replaced on update.
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Occupation  string `json:"occupation"`
	Instagram   string `json:"instagram,omitempty"`
	Email       string `json:"email"`
}

// ErrProfileNotFound is returned when the profile document does not exist yet.
// Unlike collections, a missing profile is an error, not an empty default.
type ErrProfileNotFound struct{}

func (e ErrProfileNotFound) Error() string {
	return "profile not found"
}

// ErrProfileExists is returned by a strict create when the profile document is
// already present
type ErrProfileExists struct{}

func (e ErrProfileExists) Error() string {
	return "profile already exists"
}

// ProfileRepository represents the interface for interacting with the
// persisted profile document
type ProfileRepository interface {
	Get(context.Context) (Profile, error)
	Create(context.Context, Profile) error
	Upsert(context.Context, Profile) error
}

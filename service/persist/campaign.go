package persist

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CampaignsKey is the store key the campaign collection is persisted under
const CampaignsKey = "campaigns"

// Brand represents the brand behind a campaign
type Brand struct {
	Name string `json:"name"`
	Logo Image  `json:"logo"`
	Link string `json:"link"`
}

// Campaign represents a single brand collaboration. A campaign owns its main
// image, every gallery image and the brand logo: deleting the campaign must
// also remove those objects from storage.
type Campaign struct {
	ID          DBID      `json:"id"`
	Brand       Brand     `json:"brand"`
	Description string    `json:"description"`
	Image       Image     `json:"image"`
	Images      []Image   `json:"images"`
	Date        time.Time `json:"date"`
}

// CascadeResult reports the outcome of the best-effort cleanup of a deleted
// campaign's stored objects. Record deletion stands regardless; FailedKeys
// lists locators that still need cleanup.
type CascadeResult struct {
	FailedKeys []string
}

// CampaignRepository represents the interface for interacting with the
// persisted campaigns
type CampaignRepository interface {
	GetAll(context.Context) ([]Campaign, error)
	GetByID(context.Context, DBID) (Campaign, error)
	Add(context.Context, Campaign) (Campaign, error)
	Update(context.Context, Campaign) error
	Delete(context.Context, DBID) (Campaign, CascadeResult, error)
}

var instagramHandle = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)

// ErrInvalidInstagramHandle is returned when a brand link is neither a URL nor
// a valid bare Instagram username
type ErrInvalidInstagramHandle struct {
	Handle string
}

func (e ErrInvalidInstagramHandle) Error() string {
	return fmt.Sprintf("invalid instagram username %q", e.Handle)
}

// NormalizeInstagramLink canonicalizes a brand link. Full URLs pass through
// unchanged; a bare username becomes https://www.instagram.com/<username>.
// Usernames containing whitespace or characters outside [A-Za-z0-9_.] are
// rejected before anything is persisted.
func NormalizeInstagramLink(link string) (string, error) {
	if link == "" {
		return "", nil
	}
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link, nil
	}
	if !instagramHandle.MatchString(link) {
		return "", ErrInvalidInstagramHandle{Handle: link}
	}
	return fmt.Sprintf("https://www.instagram.com/%s", link), nil
}

package redisrepo

import (
	"context"
	"sync"

	"github.com/gammazero/workerpool"

	"github.com/mikeydub/go-portfolio/service/logger"
	"github.com/mikeydub/go-portfolio/service/persist"
)

const cascadeWorkers = 4

// CampaignRepository is the redis-backed implementation of
// persist.CampaignRepository
type CampaignRepository struct {
	store   KeyValueStore
	objects ObjectDeleter
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(store KeyValueStore, objects ObjectDeleter) *CampaignRepository {
	return &CampaignRepository{store: store, objects: objects}
}

func (r *CampaignRepository) coll() collection[persist.Campaign] {
	return collection[persist.Campaign]{
		store:  r.store,
		key:    persist.CampaignsKey,
		name:   persist.CampaignsKey,
		idOf:   func(c persist.Campaign) persist.DBID { return c.ID },
		withID: func(c persist.Campaign, id persist.DBID) persist.Campaign { c.ID = id; return c },
	}
}

// GetAll returns every campaign
func (r *CampaignRepository) GetAll(ctx context.Context) ([]persist.Campaign, error) {
	return r.coll().getAll(ctx)
}

// GetByID returns the campaign with the given id
func (r *CampaignRepository) GetByID(ctx context.Context, id persist.DBID) (persist.Campaign, error) {
	return r.coll().getByID(ctx, id)
}

// Add appends a campaign, assigning its id. The brand link is canonicalized
// before anything is persisted.
func (r *CampaignRepository) Add(ctx context.Context, campaign persist.Campaign) (persist.Campaign, error) {
	link, err := persist.NormalizeInstagramLink(campaign.Brand.Link)
	if err != nil {
		return persist.Campaign{}, err
	}
	campaign.Brand.Link = link
	if campaign.Images == nil {
		campaign.Images = []persist.Image{}
	}
	return r.coll().add(ctx, campaign)
}

// Update replaces the campaign with the matching id in place
func (r *CampaignRepository) Update(ctx context.Context, campaign persist.Campaign) error {
	link, err := persist.NormalizeInstagramLink(campaign.Brand.Link)
	if err != nil {
		return err
	}
	campaign.Brand.Link = link
	return r.coll().update(ctx, campaign)
}

// Delete removes the campaign record and then deletes every object it owns
// from storage: the main image, each gallery image and the brand logo. Each
// deletion is independent; one failure does not block attempts on the others.
// Failures are logged and reported in the CascadeResult while the record
// deletion stands.
func (r *CampaignRepository) Delete(ctx context.Context, id persist.DBID) (persist.Campaign, persist.CascadeResult, error) {
	removed, err := r.coll().delete(ctx, id)
	if err != nil {
		return persist.Campaign{}, persist.CascadeResult{}, err
	}

	locators := make([]string, 0, len(removed.Images)+2)
	if removed.Image.URL != "" {
		locators = append(locators, removed.Image.URL)
	}
	for _, img := range removed.Images {
		if img.URL != "" {
			locators = append(locators, img.URL)
		}
	}
	if removed.Brand.Logo.URL != "" {
		locators = append(locators, removed.Brand.Logo.URL)
	}

	var mu sync.Mutex
	var failed []string

	wp := workerpool.New(cascadeWorkers)
	for _, locator := range locators {
		locator := locator
		wp.Submit(func() {
			if err := r.objects.Delete(ctx, locator); err != nil {
				logger.For(ctx).Errorf("could not delete stored object %s for campaign %d: %s", locator, id, err)
				mu.Lock()
				failed = append(failed, locator)
				mu.Unlock()
			}
		})
	}
	wp.StopWait()

	return removed, persist.CascadeResult{FailedKeys: failed}, nil
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mikeydub/go-portfolio/service/persist"
	"github.com/mikeydub/go-portfolio/service/persist/redisrepo"
	"github.com/mikeydub/go-portfolio/service/redis"
	"github.com/mikeydub/go-portfolio/service/upload"
)

// kvStore is an in-memory stand-in for the redis cache
type kvStore struct {
	mu     sync.Mutex
	values map[string][]byte
}

func newKVStore() *kvStore {
	return &kvStore{values: map[string][]byte{}}
}

func (s *kvStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, redis.ErrKeyNotFound{Key: key}
	}
	return v, nil
}

func (s *kvStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *kvStore) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := fn(s.values[key])
	if err != nil {
		return err
	}
	s.values[key] = next
	return nil
}

// fakeObjects backs both the upload pipeline and the cascade deleter
type fakeObjects struct {
	mu      sync.Mutex
	stored  map[string][]byte
	deleted []string
	failOn  map[string]bool
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{stored: map[string][]byte{}, failOn: map[string]bool{}}
}

func (o *fakeObjects) Put(ctx context.Context, key string, body []byte, contentType string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stored[key] = body
	return nil
}

func (o *fakeObjects) URLFor(key string) string {
	return "https://bucket.storage.example.com/" + key
}

func (o *fakeObjects) Delete(ctx context.Context, locator string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.failOn[locator] {
		return errors.New("access denied")
	}
	o.deleted = append(o.deleted, locator)
	return nil
}

type stubConverter struct{}

func (stubConverter) ToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	return []byte("jpeg-bytes"), nil
}

func newTestRouter(store redisrepo.KeyValueStore, objects *fakeObjects) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repos := &repositories{
		images:    redisrepo.NewImageRepository(store, objects),
		campaigns: redisrepo.NewCampaignRepository(store, objects),
		profile:   redisrepo.NewProfileRepository(store),
	}
	return handlersInit(gin.New(), repos, upload.NewPipeline(objects, stubConverter{}))
}

func do(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func multipartUpload(router *gin.Engine, path, filename string, data []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", filename)
	fw.Write(data)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	assert := assert.New(t)

	router := newTestRouter(newKVStore(), newFakeObjects())

	w := do(router, http.MethodGet, "/health", nil)
	assert.Equal(http.StatusOK, w.Code)
}

func TestGetImagesEmptyCollection(t *testing.T) {
	assert := assert.New(t)

	router := newTestRouter(newKVStore(), newFakeObjects())

	w := do(router, http.MethodGet, "/admin/images/hero", nil)
	assert.Equal(http.StatusOK, w.Code)
	assert.JSONEq(`{"images":[]}`, w.Body.String())
}

func TestGetImagesUnknownCollection(t *testing.T) {
	assert := assert.New(t)

	router := newTestRouter(newKVStore(), newFakeObjects())

	w := do(router, http.MethodGet, "/admin/images/heros", nil)
	assert.Equal(http.StatusBadRequest, w.Code)
}

func TestImageUploadAndDeleteLifecycle(t *testing.T) {
	assert := assert.New(t)

	objects := newFakeObjects()
	router := newTestRouter(newKVStore(), objects)

	w := multipartUpload(router, "/admin/images/carousel", "shoot.png", []byte("png-bytes"))
	assert.Equal(http.StatusOK, w.Code)

	var uploaded struct {
		Image persist.Image `json:"image"`
	}
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &uploaded))
	assert.NotZero(uploaded.Image.ID)
	assert.Equal("shoot.png", uploaded.Image.Alt)
	assert.True(strings.HasPrefix(uploaded.Image.URL, "https://bucket.storage.example.com/"))
	assert.Len(objects.stored, 1)

	w = do(router, http.MethodGet, "/admin/images/carousel", nil)
	assert.Equal(http.StatusOK, w.Code)
	var listed struct {
		Images []persist.Image `json:"images"`
	}
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Len(listed.Images, 1)

	w = do(router, http.MethodDelete, fmt.Sprintf("/admin/images/carousel/%d", uploaded.Image.ID), nil)
	assert.Equal(http.StatusOK, w.Code)
	assert.Equal([]string{uploaded.Image.URL}, objects.deleted)

	w = do(router, http.MethodDelete, fmt.Sprintf("/admin/images/carousel/%d", uploaded.Image.ID), nil)
	assert.Equal(http.StatusNotFound, w.Code)
}

func TestCampaignCreateNormalizesLink(t *testing.T) {
	assert := assert.New(t)

	router := newTestRouter(newKVStore(), newFakeObjects())

	w := do(router, http.MethodPost, "/admin/campaigns", gin.H{
		"brand":       gin.H{"name": "Acme", "link": "acme.co"},
		"description": "spring collection",
	})
	assert.Equal(http.StatusOK, w.Code)

	var created struct {
		Campaign persist.Campaign `json:"campaign"`
	}
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal("https://www.instagram.com/acme.co", created.Campaign.Brand.Link)

	w = do(router, http.MethodGet, fmt.Sprintf("/admin/campaigns/%d", created.Campaign.ID), nil)
	assert.Equal(http.StatusOK, w.Code)
}

func TestCampaignCreateRejectsBadHandle(t *testing.T) {
	assert := assert.New(t)

	router := newTestRouter(newKVStore(), newFakeObjects())

	w := do(router, http.MethodPost, "/admin/campaigns", gin.H{
		"brand": gin.H{"name": "Acme", "link": "not a handle"},
	})
	assert.Equal(http.StatusBadRequest, w.Code)
}

func TestCampaignNotFound(t *testing.T) {
	assert := assert.New(t)

	router := newTestRouter(newKVStore(), newFakeObjects())

	w := do(router, http.MethodGet, "/admin/campaigns/99", nil)
	assert.Equal(http.StatusNotFound, w.Code)

	var resp struct {
		Error string `json:"error"`
	}
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal("campaigns item not found", resp.Error)
}

func TestCampaignDeleteReportsUncleanedObjects(t *testing.T) {
	assert := assert.New(t)

	objects := newFakeObjects()
	objects.failOn["https://cdn.example.com/main.jpg"] = true
	router := newTestRouter(newKVStore(), objects)

	w := do(router, http.MethodPost, "/admin/campaigns", gin.H{
		"brand": gin.H{"name": "Acme"},
		"image": gin.H{"url": "https://cdn.example.com/main.jpg", "alt": "main"},
	})
	assert.Equal(http.StatusOK, w.Code)

	var created struct {
		Campaign persist.Campaign `json:"campaign"`
	}
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &created))

	w = do(router, http.MethodDelete, fmt.Sprintf("/admin/campaigns/%d", created.Campaign.ID), nil)
	assert.Equal(http.StatusOK, w.Code)

	var deleted struct {
		Uncleaned []string `json:"uncleaned_objects"`
	}
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &deleted))
	assert.Equal([]string{"https://cdn.example.com/main.jpg"}, deleted.Uncleaned)
}

func TestProfileLifecycle(t *testing.T) {
	assert := assert.New(t)

	router := newTestRouter(newKVStore(), newFakeObjects())

	w := do(router, http.MethodGet, "/admin/profile", nil)
	assert.Equal(http.StatusNotFound, w.Code)

	input := gin.H{"name": "Jane", "occupation": "model", "email": "jane@example.com"}

	w = do(router, http.MethodPost, "/admin/profile", input)
	assert.Equal(http.StatusOK, w.Code)

	w = do(router, http.MethodPost, "/admin/profile", input)
	assert.Equal(http.StatusConflict, w.Code)

	w = do(router, http.MethodPut, "/admin/profile", gin.H{"name": "Janet", "email": "janet@example.com"})
	assert.Equal(http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/admin/profile", nil)
	assert.Equal(http.StatusOK, w.Code)
	var got struct {
		Profile persist.Profile `json:"profile"`
	}
	assert.Nil(json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal("Janet", got.Profile.Name)
}

func TestProfileCreateValidatesInput(t *testing.T) {
	assert := assert.New(t)

	router := newTestRouter(newKVStore(), newFakeObjects())

	w := do(router, http.MethodPost, "/admin/profile", gin.H{"name": "Jane", "email": "not-an-email"})
	assert.Equal(http.StatusBadRequest, w.Code)
}

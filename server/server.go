package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/mikeydub/go-portfolio/env"
	"github.com/mikeydub/go-portfolio/middleware"
	"github.com/mikeydub/go-portfolio/service/logger"
	"github.com/mikeydub/go-portfolio/service/objectstore"
	"github.com/mikeydub/go-portfolio/service/persist"
	"github.com/mikeydub/go-portfolio/service/persist/redisrepo"
	"github.com/mikeydub/go-portfolio/service/redis"
	"github.com/mikeydub/go-portfolio/service/upload"
	"github.com/mikeydub/go-portfolio/util"
)

// Init initializes the server and blocks serving requests
func Init() {
	setDefaults()

	ctx := context.Background()

	cache, err := redis.NewCache(ctx)
	if err != nil {
		panic(err)
	}
	defer cache.Close()

	objects, err := objectstore.NewStore()
	if err != nil {
		panic(err)
	}

	router := CoreInit(cache, objects)

	if err := router.Run(fmt.Sprintf(":%d", env.GetInt("PORT"))); err != nil {
		panic(err)
	}
}

// CoreInit initializes core server functionality. This is abstracted
// so the test server can also utilize it
func CoreInit(cache *redis.Cache, objects *objectstore.Store) *gin.Engine {
	logger.For(nil).Info("initializing server...")

	if env.GetString("ENV") != "production" {
		gin.SetMode(gin.DebugMode)
		logrus.SetLevel(logrus.DebugLevel)
	}

	router := gin.Default()
	router.Use(middleware.HandleCORS(), middleware.ErrLogger())

	return handlersInit(router, newRepos(cache, objects), upload.NewPipeline(objects))
}

type repositories struct {
	images    persist.ImageRepository
	campaigns persist.CampaignRepository
	profile   persist.ProfileRepository
}

func newRepos(cache *redis.Cache, objects *objectstore.Store) *repositories {
	return &repositories{
		images:    redisrepo.NewImageRepository(cache, objects),
		campaigns: redisrepo.NewCampaignRepository(cache, objects),
		profile:   redisrepo.NewProfileRepository(cache),
	}
}

func handlersInit(router *gin.Engine, repos *repositories, pipeline *upload.Pipeline) *gin.Engine {
	router.GET("/health", util.HealthCheckHandler())

	admin := router.Group("/admin")

	images := admin.Group("/images/:collection")
	images.GET("", getImages(repos.images))
	images.POST("", uploadImage(repos.images, pipeline))
	images.DELETE("/:id", deleteImage(repos.images))

	admin.POST("/preview", previewImage())

	campaigns := admin.Group("/campaigns")
	campaigns.GET("", getCampaigns(repos.campaigns))
	campaigns.GET("/:id", getCampaign(repos.campaigns))
	campaigns.POST("", createCampaign(repos.campaigns))
	campaigns.PUT("/:id", updateCampaign(repos.campaigns))
	campaigns.DELETE("/:id", deleteCampaign(repos.campaigns))

	profile := admin.Group("/profile")
	profile.GET("", getProfile(repos.profile))
	profile.POST("", createProfile(repos.profile))
	profile.PUT("", upsertProfile(repos.profile))

	return router
}

// statusForErr maps the persistence error taxonomy onto HTTP status codes
func statusForErr(err error) int {
	var notFound persist.ErrNotFound
	var profileNotFound persist.ErrProfileNotFound
	var unknownColl persist.ErrUnknownCollection
	var badHandle persist.ErrInvalidInstagramHandle
	var idSet persist.ErrIDAlreadySet
	var exists persist.ErrProfileExists
	var unavailable persist.ErrStoreUnavailable

	switch {
	case errors.As(err, &notFound), errors.As(err, &profileNotFound):
		return http.StatusNotFound
	case errors.As(err, &unknownColl), errors.As(err, &badHandle), errors.As(err, &idSet):
		return http.StatusBadRequest
	case errors.As(err, &exists):
		return http.StatusConflict
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func setDefaults() {
	viper.SetDefault("ENV", "local")
	viper.SetDefault("PORT", 4000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("REDIS_PASS", "")
	viper.SetDefault("IMAGE_BASE_URL", "")

	viper.AutomaticEnv()
}

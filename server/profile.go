package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikeydub/go-portfolio/service/persist"
	"github.com/mikeydub/go-portfolio/util"
)

type profileInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Occupation  string `json:"occupation"`
	Instagram   string `json:"instagram"`
	Email       string `json:"email" binding:"required,email"`
}

func (p profileInput) toProfile() persist.Profile {
	return persist.Profile{
		Name:        p.Name,
		Description: p.Description,
		Occupation:  p.Occupation,
		Instagram:   p.Instagram,
		Email:       p.Email,
	}
}

func getProfile(repo persist.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile, err := repo.Get(c)
		if err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"profile": profile})
	}
}

func createProfile(repo persist.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input profileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if err := repo.Create(c, input.toProfile()); err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, util.SuccessResponse{Success: true})
	}
}

func upsertProfile(repo persist.ProfileRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input profileInput
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		if err := repo.Upsert(c, input.toProfile()); err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, util.SuccessResponse{Success: true})
	}
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mikeydub/go-portfolio/service/persist"
	"github.com/mikeydub/go-portfolio/util"
)

func getCampaigns(repo persist.CampaignRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaigns, err := repo.GetAll(c)
		if err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
	}
}

func getCampaign(repo persist.CampaignRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		campaign, err := repo.GetByID(c, id)
		if err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"campaign": campaign})
	}
}

func createCampaign(repo persist.CampaignRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input persist.Campaign
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		added, err := repo.Add(c, input)
		if err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"campaign": added})
	}
}

func updateCampaign(repo persist.CampaignRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		var input persist.Campaign
		if err := c.ShouldBindJSON(&input); err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}
		input.ID = id

		if err := repo.Update(c, input); err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, util.SuccessResponse{Success: true})
	}
}

func deleteCampaign(repo persist.CampaignRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c)
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		removed, cascade, err := repo.Delete(c, id)
		if err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		resp := gin.H{"campaign": removed}
		if len(cascade.FailedKeys) > 0 {
			resp["uncleaned_objects"] = cascade.FailedKeys
		}
		c.JSON(http.StatusOK, resp)
	}
}

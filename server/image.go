package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mikeydub/go-portfolio/service/mediaconvert"
	"github.com/mikeydub/go-portfolio/service/persist"
	"github.com/mikeydub/go-portfolio/service/upload"
	"github.com/mikeydub/go-portfolio/util"
)

func getImages(repo persist.ImageRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		coll := persist.ImageCollection(c.Param("collection"))

		images, err := repo.GetAll(c, coll)
		if err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"images": images})
	}
}

func uploadImage(repo persist.ImageRepository, pipeline *upload.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		coll := persist.ImageCollection(c.Param("collection"))

		file, err := formFile(c, "image")
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		image, err := pipeline.Upload(c, file)
		if err != nil {
			util.ErrResponse(c, http.StatusInternalServerError, err)
			return
		}

		// the collection is the authority on record ids
		image.ID = 0
		added, err := repo.Add(c, coll, image)
		if err != nil {
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"image": added})
	}
}

func deleteImage(repo persist.ImageRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		coll := persist.ImageCollection(c.Param("collection"))

		id, err := pathID(c)
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		removed, err := repo.Delete(c, coll, id)
		if err != nil {
			if removed.URL != "" {
				// record is gone; only the stored object cleanup failed
				c.Error(err)
				c.JSON(http.StatusOK, gin.H{"image": removed, "warning": err.Error()})
				return
			}
			util.ErrResponse(c, statusForErr(err), err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"image": removed})
	}
}

// previewImage converts a HEIC upload so the admin UI can display it before
// committing to the real upload
func previewImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := formFile(c, "image")
		if err != nil {
			util.ErrResponse(c, http.StatusBadRequest, err)
			return
		}

		converted, contentType, err := mediaconvert.ConvertForPreview(c, file.Data, file.Name, file.ContentType)
		if err != nil {
			util.ErrResponse(c, http.StatusUnprocessableEntity, err)
			return
		}

		c.Data(http.StatusOK, contentType, converted)
	}
}

func formFile(c *gin.Context, field string) (upload.File, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return upload.File{}, err
	}

	f, err := header.Open()
	if err != nil {
		return upload.File{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return upload.File{}, err
	}

	return upload.File{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func pathID(c *gin.Context) (persist.DBID, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return persist.DBID(id), nil
}

package controllers

import (
	"encoding/base64"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/heirclark17/HeirclarkInstacartBackend-sub003/services"
)

type EstimateController struct {
	estimator *services.EstimationService
}

func NewEstimateController(estimator *services.EstimationService) *EstimateController {
	return &EstimateController{estimator: estimator}
}

type estimateTextRequest struct {
	Text string `json:"text" binding:"required"`
}

// EstimateText handles POST /nutrition/estimate. Text estimates are never
// auto-logged; the caller confirms via an explicit append.
func (ctl *EstimateController) EstimateText(c *gin.Context) {
	var req estimateTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	est, err := ctl.estimator.EstimateFromText(c.Request.Context(), ownerID(c), req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

type estimatePhotoRequest struct {
	ImageB64 string `json:"image_b64"`
	Label    string `json:"label"`
}

// EstimatePhoto handles POST /nutrition/estimate-photo. The image arrives
// either as a multipart "image" file or as JSON base64 (with or without a
// data-URI prefix).
func (ctl *EstimateController) EstimatePhoto(c *gin.Context) {
	image, label, err := readPhotoRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	est, err := ctl.estimator.EstimateFromPhoto(c.Request.Context(), ownerID(c), image, label)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, est)
}

func readPhotoRequest(c *gin.Context) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, err := c.FormFile("image")
		if err != nil {
			return nil, "", err
		}
		f, err := file.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, "", err
		}
		return data, c.PostForm("label"), nil
	}

	var req estimatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, "", err
	}
	raw := req.ImageB64
	if i := strings.Index(raw, "base64,"); i >= 0 {
		raw = raw[i+len("base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, "", err
	}
	return data, req.Label, nil
}

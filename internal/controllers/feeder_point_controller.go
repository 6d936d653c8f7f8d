package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/twpayne/go-geom/encoding/geojson"

	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

const defaultNearbyRadiusKm = 2.0

type FeederPointController struct {
	feederPoints *services.FeederPointService
}

func NewFeederPointController(svc *services.Services) *FeederPointController {
	return &FeederPointController{feederPoints: svc.FeederPoints}
}

type assignFeederPointInput struct {
	ContractorID string `json:"contractorId" binding:"required"`
}

// ListFeederPoints returns active feeder points, filtered by ?ward= when
// given. ?format=geojson returns a FeatureCollection for map clients.
func (fc *FeederPointController) ListFeederPoints(c *gin.Context) {
	var (
		points []models.FeederPoint
		err    error
	)
	if ward := c.Query("ward"); ward != "" {
		points, err = fc.feederPoints.GetFeederPointsByWard(c.Request.Context(), ward)
	} else {
		points, err = fc.feederPoints.GetAllFeederPoints(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") == "geojson" {
		c.JSON(http.StatusOK, featureCollection(points))
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": points})
}

func (fc *FeederPointController) GetFeederPoint(c *gin.Context) {
	fp, err := fc.feederPoints.GetFeederPointByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feederPoint": fp})
}

// Nearby expects ?lat=&lng= and an optional ?radiusKm=.
func (fc *FeederPointController) Nearby(c *gin.Context) {
	lat, latErr := strconv.ParseFloat(c.Query("lat"), 64)
	lng, lngErr := strconv.ParseFloat(c.Query("lng"), 64)
	if latErr != nil || lngErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}
	radius := defaultNearbyRadiusKm
	if raw := c.Query("radiusKm"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "radiusKm must be a number"})
			return
		}
		radius = r
	}

	nearby, err := fc.feederPoints.NearbyFeederPoints(c.Request.Context(), lat, lng, radius)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": nearby})
}

func (fc *FeederPointController) CreateFeederPoint(c *gin.Context) {
	var fp models.FeederPoint
	if !bindJSON(c, &fp) {
		return
	}

	created, err := fc.feederPoints.CreateFeederPoint(c.Request.Context(), fp, session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"feederPoint": created})
}

func (fc *FeederPointController) UpdateFeederPoint(c *gin.Context) {
	var fp models.FeederPoint
	if !bindJSON(c, &fp) {
		return
	}

	updated, err := fc.feederPoints.UpdateFeederPoint(c.Request.Context(), c.Param("id"), fp)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feederPoint": updated})
}

func (fc *FeederPointController) DeleteFeederPoint(c *gin.Context) {
	if err := fc.feederPoints.DeleteFeederPoint(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feeder point deleted"})
}

func (fc *FeederPointController) AssignToContractor(c *gin.Context) {
	var input assignFeederPointInput
	if !bindJSON(c, &input) {
		return
	}

	assignment, err := fc.feederPoints.AssignFeederPointToContractor(c.Request.Context(), c.Param("id"), input.ContractorID, session(c).UID())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"assignment": assignment})
}

func (fc *FeederPointController) ListDrivers(c *gin.Context) {
	drivers, err := fc.feederPoints.GetFeederPointDrivers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": drivers})
}

// ListAssignments returns every assignment, or one contractor's with ?contractorId=.
func (fc *FeederPointController) ListAssignments(c *gin.Context) {
	assignments, err := fc.feederPoints.GetFeederPointAssignments(c.Request.Context(), c.Query("contractorId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": assignments})
}

func (fc *FeederPointController) Unassign(c *gin.Context) {
	if err := fc.feederPoints.UnassignFeederPoint(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feeder point unassigned"})
}

func featureCollection(points []models.FeederPoint) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(points))}
	for _, fp := range points {
		fc.Features = append(fc.Features, fp.GeoJSON())
	}
	return fc
}

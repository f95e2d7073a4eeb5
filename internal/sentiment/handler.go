package sentiment

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sentiment-scoop/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches the analysis endpoints. Callers mount these behind
// the auth middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/sentiment/:videoId", h.lookup)
}

type analyzeRequest struct {
	VideoID   string `json:"videoId"`
	AutoRetry bool   `json:"autoRetry"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.VideoID) == "" {
		respond.Error(c, http.StatusBadRequest, "videoId is required")
		return
	}
	c.Set("videoId", req.VideoID)

	analysis, cacheHit, err := h.Svc.Analyze(c.Request.Context(), req.VideoID, req.AutoRetry)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "Sentiment analysis failed")
		return
	}
	c.Set("cacheHit", cacheHit)

	respond.OK(c, analysis)
}

func (h *Handler) lookup(c *gin.Context) {
	videoID := c.Param("videoId")
	c.Set("videoId", videoID)

	analysis, err := h.Svc.Lookup(c.Request.Context(), videoID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "No results found.")
		return
	}
	respond.OK(c, analysis)
}

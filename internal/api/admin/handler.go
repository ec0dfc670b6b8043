package admin

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acuellar/atiende/internal/domain"
	"github.com/acuellar/atiende/internal/service"
)

// Handler handles the admin API
type Handler struct {
	adminService *service.AdminService
}

// NewHandler creates a new admin handler
func NewHandler(adminService *service.AdminService) *Handler {
	return &Handler{adminService: adminService}
}

// RegisterRoutes registers admin routes
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.PUT("/profile", h.UpdateProfile)
	r.POST("/knowledge", h.UploadKnowledge)
	r.POST("/knowledge/columns", h.SelectColumns)
	r.POST("/products", h.UploadProducts)
	r.POST("/activate", h.Activate)
	r.GET("/stats", h.GetStats)
}

// UpdateProfile saves the business branding
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	profile := h.adminService.UpdateProfile(c.Request.Context(), &req)
	c.JSON(http.StatusOK, profile)
}

// UploadKnowledge replaces the knowledge table from an uploaded spreadsheet.
// Optional key_col/value_col form fields select the columns (first two by
// default).
func (h *Handler) UploadKnowledge(c *gin.Context) {
	filename, data, ok := readUpload(c)
	if !ok {
		return
	}

	keyCol := formInt(c, "key_col", 0)
	valueCol := formInt(c, "value_col", 1)

	rows, err := h.adminService.UploadKnowledge(c.Request.Context(), filename, data, keyCol, valueCol)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// SelectColumns re-parses the current upload with a new column selection
func (h *Handler) SelectColumns(c *gin.Context) {
	var req struct {
		KeyCol   int `json:"key_col"`
		ValueCol int `json:"value_col"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows, err := h.adminService.SelectColumns(c.Request.Context(), req.KeyCol, req.ValueCol)
	if err != nil {
		if errors.Is(err, domain.ErrNoKnowledge) {
			c.JSON(http.StatusConflict, gin.H{"error": "no spreadsheet uploaded"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// UploadProducts replaces the product table from an uploaded spreadsheet
func (h *Handler) UploadProducts(c *gin.Context) {
	filename, data, ok := readUpload(c)
	if !ok {
		return
	}

	products, err := h.adminService.UploadProducts(c.Request.Context(), filename, data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// Activate builds the embedding snapshot for the loaded knowledge table.
// Re-activating an unchanged upload is a cache hit.
func (h *Handler) Activate(c *gin.Context) {
	recomputed, err := h.adminService.Activate(c.Request.Context())
	if err != nil {
		if errors.Is(err, domain.ErrNoKnowledge) {
			c.JSON(http.StatusConflict, gin.H{"error": "no knowledge table loaded"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activated": true, "recomputed": recomputed})
}

// GetStats returns system statistics
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.adminService.GetStats(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func readUpload(c *gin.Context) (filename string, data []byte, ok bool) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return "", nil, false
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", nil, false
	}
	defer src.Close()

	data, err = io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return "", nil, false
	}

	return file.Filename, data, true
}

func formInt(c *gin.Context, field string, fallback int) int {
	raw := c.PostForm(field)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

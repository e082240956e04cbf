package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/TableAdmin-lab/productloaderV2/internal"
	"github.com/TableAdmin-lab/productloaderV2/internal/catalog"
	"github.com/TableAdmin-lab/productloaderV2/internal/export"
)

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// extractMenu accepts a multipart "file" (image, PDF or HTML), runs
// extraction and returns the canonical items. The stored menu id lets the
// client reload the result later.
func (s *Server) extractMenu(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := s.ingest.Extract(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), content)

	sourceRef, err := s.archiveUpload(fileHeader.Filename, content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	menuID, err := s.db.InsertMenu(nil, sourceRef, "upload", result.Items)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"menuId":   menuID,
		"items":    result.Items,
		"warnings": result.Warnings,
	})
}

// archiveUpload keeps the original file so a menu row can be re-extracted
// later. Uploads get a uuid name since browsers reuse filenames freely.
func (s *Server) archiveUpload(filename string, content []byte) (string, error) {
	dir := filepath.Join(s.cfg.OutputDir, "uploads")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	ref := filepath.Join(dir, uuid.New().String()+filepath.Ext(filename))
	if err := os.WriteFile(ref, content, 0o644); err != nil {
		return "", err
	}
	return ref, nil
}

func (s *Server) listMenus(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	menus, err := s.db.ListMenus(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]gin.H, 0, len(menus))
	for _, m := range menus {
		out = append(out, gin.H{
			"id":        m.ID,
			"emailId":   m.EmailID,
			"sourceRef": m.SourceRef,
			"origin":    m.Origin,
			"itemCount": m.ItemCount,
			"createdAt": m.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"menus": out})
}

func (s *Server) getMenu(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid menu id"})
		return
	}
	row, err := s.db.GetMenu(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "menu not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        row.ID,
		"sourceRef": row.SourceRef,
		"origin":    row.Origin,
		"items":     json.RawMessage(row.ItemsJSON),
	})
}

func (s *Server) getSession(c *gin.Context) {
	s.mu.Lock()
	state := s.session.State()
	s.mu.Unlock()
	c.JSON(http.StatusOK, state)
}

func (s *Server) clearSession(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.Clear(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}

func (s *Server) setDefaults(c *gin.Context) {
	var req struct {
		Site      string `json:"site"`
		DefinePLU string `json:"definePlu"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.SetDefaults(req.Site, req.DefinePLU); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.session.State())
}

func (s *Server) setRememberCategories(c *gin.Context) {
	var req struct {
		On bool `json:"on"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.session.SetRememberCategories(req.On); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rememberCategories": req.On})
}

func (s *Server) listProducts(c *gin.Context) {
	s.mu.Lock()
	products := s.session.Products()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (s *Server) addProduct(c *gin.Context) {
	var sub internal.ProductSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	allowZero := c.Query("allowZero") == "true"

	s.mu.Lock()
	rows, err := s.session.AddProduct(sub, allowZero)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, catalog.ErrZeroPriceVariant) {
			c.JSON(http.StatusConflict, gin.H{
				"error": err.Error(),
				"hint":  "retry with ?allowZero=true to accept 0.00 variants",
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"rows": rows})
}

func (s *Server) updateProduct(c *gin.Context) {
	var sub internal.ProductSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	rows, err := s.session.UpdateProduct(c.Param("groupId"), sub)
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

// removeProduct deletes a whole group. Without ?confirm=true it only
// reports how many rows would go, since variants and raw components are
// removed together.
func (s *Server) removeProduct(c *gin.Context) {
	groupID := c.Param("groupId")

	s.mu.Lock()
	defer s.mu.Unlock()

	related := s.session.RelatedCount(groupID)
	if related == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "product group not found"})
		return
	}
	if c.Query("confirm") != "true" {
		c.JSON(http.StatusConflict, gin.H{
			"relatedRows": related,
			"hint":        "retry with ?confirm=true to remove the whole group",
		})
		return
	}

	removed, err := s.session.RemoveGroup(groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) productSource(c *gin.Context) {
	s.mu.Lock()
	source, err := s.session.GroupSource(c.Param("groupId"))
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, source)
}

func (s *Server) listModifiers(c *gin.Context) {
	s.mu.Lock()
	groups := s.session.ModifierGroups()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"modifierGroups": groups})
}

func (s *Server) addModifier(c *gin.Context) {
	var req internal.ModifierGroup
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	err := s.session.AddModifierGroup(req.GroupName, req.Options)
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": req.GroupName})
}

func (s *Server) replaceModifiers(c *gin.Context) {
	var req struct {
		ModifierGroups []internal.ModifierGroup `json:"modifierGroups"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	s.mu.Lock()
	err := s.session.ReplaceModifierGroups(req.ModifierGroups)
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(req.ModifierGroups)})
}

func (s *Server) removeModifier(c *gin.Context) {
	s.mu.Lock()
	err := s.session.RemoveModifierGroup(c.Param("name"))
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": c.Param("name")})
}

// exportWorkbook streams the three-sheet workbook as a download.
func (s *Server) exportWorkbook(c *gin.Context) {
	s.mu.Lock()
	state := s.session.State()
	s.mu.Unlock()

	f, err := export.BuildWorkbook(state)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	filename := export.Filename(state.SessionSite)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if _, err := f.WriteTo(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

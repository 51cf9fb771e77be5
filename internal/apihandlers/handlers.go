package apihandlers

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"graphpipe/internal/app"
	"graphpipe/internal/catalog"
	"graphpipe/internal/ledger"
)

// APIHandler exposes a read-only view of the catalog and the usage
// ledger. Nothing here mutates state or triggers paid calls.
type APIHandler struct {
	App *app.App
}

func NewAPIHandler(a *app.App) *APIHandler {
	return &APIHandler{App: a}
}

// ListModelsHandler returns the cached catalog snapshot as-is. It never
// refreshes: the serve surface must not spend money or probe quota.
func (h *APIHandler) ListModelsHandler(c *gin.Context) {
	snap := h.App.Catalog.Load()
	c.JSON(http.StatusOK, snap)
}

// GetModelHandler returns a single cached model record by id.
func (h *APIHandler) GetModelHandler(c *gin.Context) {
	id := c.Param("id")
	snap := h.App.Catalog.Load()
	rec, ok := snap.Models[id]
	if !ok {
		NotFound(c, "unknown model: "+id)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// VisionModelsHandler returns the vision-qualified candidate set from
// the cached snapshot. ?strict=true drops the name-heuristic tier.
func (h *APIHandler) VisionModelsHandler(c *gin.Context) {
	strict := false
	if raw := c.Query("strict"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			BadRequest(c, "invalid strict parameter: "+raw)
			return
		}
		strict = parsed
	}

	snap := h.App.Catalog.Load()
	candidates := catalog.VisionQualified(snap, strict)

	type visionModel struct {
		ID        string  `json:"id"`
		Cost      float64 `json:"cost"`
		Heuristic bool    `json:"heuristic"`
	}
	out := make([]visionModel, 0, len(candidates))
	for _, cand := range candidates {
		out = append(out, visionModel{ID: cand.ID, Cost: cand.TotalCost(), Heuristic: cand.Heuristic})
	}
	c.JSON(http.StatusOK, gin.H{"models": out})
}

// UsageHandler returns the persisted usage ledger. The file reflects
// the most recent writer session; when no ledger exists yet, the
// current (empty) in-memory session is returned instead.
func (h *APIHandler) UsageHandler(c *gin.Context) {
	stats, err := ledger.LoadStats(h.App.Config.Ledger.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			Internal(c, "failed to read usage ledger: "+err.Error())
			return
		}
		stats = h.App.Ledger.Stats()
	}
	c.JSON(http.StatusOK, stats)
}

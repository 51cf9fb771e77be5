package catalog

import (
	"math"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"graphpipe/internal/models"
)

// visionNameHints are substrings of model identifiers belonging to
// families known to ship vision variants. The heuristic tier trades
// precision for availability when fresh probing data is absent.
var visionNameHints = []string{"vision", "4o", "pixtral", "grok", "jamba", "o1", "o3", "o4"}

func nameSuggestsVision(modelID string) bool {
	id := strings.ToLower(modelID)
	for _, hint := range visionNameHints {
		if strings.Contains(id, hint) {
			return true
		}
	}
	return false
}

// VisionQualified returns the models eligible for image extraction,
// sorted by id so selection order is deterministic. Two tiers:
//
//  1. models a live probe confirmed (vision_checked and has_vision),
//  2. unless strict: models never conclusively probed whose name
//     suggests a vision family, provided they were not explicitly
//     confirmed non-vision.
//
// Both tiers require usable cost data; a cost-less model cannot be
// ranked and is excluded rather than treated as free.
func VisionQualified(snap *models.CatalogSnapshot, strict bool) []models.Candidate {
	ids := make([]string, 0, len(snap.Models))
	for id := range snap.Models {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []models.Candidate
	for _, id := range ids {
		rec := snap.Models[id]
		switch {
		case rec.VisionConfirmed():
			if !rec.HasCostData() {
				log.Warnf("Model %s confirmed vision but missing cost data. Skipping.", id)
				continue
			}
			out = append(out, models.Candidate{ModelRecord: rec})

		case !strict && (!rec.VisionChecked || rec.HasVision == nil):
			if !nameSuggestsVision(id) || rec.VisionDenied() {
				continue
			}
			if !rec.HasCostData() {
				log.Warnf("Model %s suggested vision by name but missing cost data. Skipping.", id)
				continue
			}
			log.Warnf("Vision capability for %s wasn't confirmed via API check, but name suggests vision. Including it.", id)
			out = append(out, models.Candidate{ModelRecord: rec, Heuristic: true})
		}
	}

	if len(out) == 0 {
		log.Warn("No models confirmed or suspected to have vision capabilities (with cost data) were found.")
	}
	return out
}

// SelectCheapest picks the candidate with the lowest declared cost
// (context + completion). Ties keep the first candidate encountered.
// When every candidate has infinite cost, selection fails with
// models.ErrNoEligibleModel instead of inventing a winner.
func SelectCheapest(candidates []models.Candidate) (models.Candidate, float64, error) {
	best := -1
	bestCost := math.Inf(1)
	for i, c := range candidates {
		cost := c.TotalCost()
		if cost < bestCost {
			best = i
			bestCost = cost
		}
	}
	if best < 0 {
		return models.Candidate{}, 0, models.ErrNoEligibleModel
	}
	return candidates[best], bestCost, nil
}

package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"graphpipe/internal/models"
)

// probeDelay is the pause inserted before every probe after the first
// in a refresh batch. The gateway rate-limits probes; skipping the
// delay gets probes rejected, so this is correctness, not politeness.
const probeDelay = time.Second

// Cache maintains the durable view of known models and decides when it
// is stale. One logical writer per process; concurrent pipeline runs
// racing on the cache file is an accepted limitation.
type Cache struct {
	path   string
	expiry time.Duration
	lister Lister
	prober VisionProber

	// Injection points for tests.
	now   func() time.Time
	sleep func(time.Duration)
}

func NewCache(path string, expiry time.Duration, lister Lister, prober VisionProber) *Cache {
	return &Cache{
		path:   path,
		expiry: expiry,
		lister: lister,
		prober: prober,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Load reads the persisted snapshot. A missing file, corrupt content or
// I/O failure yields an empty snapshot, never an error: the cache is an
// optimization the pipeline must survive losing.
func (c *Cache) Load() *models.CatalogSnapshot {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Errorf("Error loading cache file %s: %v. Returning empty cache.", c.path, err)
		}
		return models.EmptySnapshot()
	}

	var snap models.CatalogSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		log.Errorf("Error loading cache file %s: %v. Returning empty cache.", c.path, err)
		return models.EmptySnapshot()
	}
	if snap.Models == nil {
		snap.Models = map[string]models.ModelRecord{}
	}
	return &snap
}

// Save persists the snapshot atomically (temp file + rename). Write
// failures are logged, not propagated; a cache miss on the next read is
// an acceptable degradation.
func (c *Cache) Save(snap *models.CatalogSnapshot) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		log.Errorf("Error serializing cache: %v", err)
		return
	}

	dir := filepath.Dir(c.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Errorf("Error creating cache directory %s: %v", dir, err)
			return
		}
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(c.path)+".tmp*")
	if err != nil {
		log.Errorf("Error saving cache file %s: %v", c.path, err)
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		log.Errorf("Error saving cache file %s: %v", c.path, err)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		log.Errorf("Error saving cache file %s: %v", c.path, err)
		return
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		log.Errorf("Error saving cache file %s: %v", c.path, err)
	}
}

func (c *Cache) stale(snap *models.CatalogSnapshot) bool {
	if snap.LastUpdated == nil {
		return true
	}
	return c.now().Sub(*snap.LastUpdated) > c.expiry
}

// Refresh returns the current snapshot, fetching the live model list
// first when the cache is stale or force is set. On fetch failure the
// previous snapshot is returned unchanged: stale data beats no data.
//
// New models (and, under force, models never actually probed) get a
// vision probe when checkVision is true. Models not re-probed keep
// their previous capability fields; a confirmed status is never
// discarded by a refresh that skips probing.
func (c *Cache) Refresh(ctx context.Context, force, checkVision bool) *models.CatalogSnapshot {
	snap := c.Load()

	if !force && !c.stale(snap) {
		log.Debug("Model cache is up-to-date.")
		return snap
	}
	if snap.LastUpdated == nil {
		log.Info("No existing cache found. Fetching models.")
	} else if !force {
		log.Info("Model cache expired. Refreshing.")
	}

	fetched, err := c.lister.ListModels(ctx)
	if err != nil {
		log.Errorf("Failed to fetch models from API: %v. Returning potentially stale cache.", err)
		return snap
	}
	log.Infof("Fetched %d models from the API.", len(fetched))

	probed := 0
	updated := make(map[string]models.ModelRecord, len(fetched))
	for i, m := range fetched {
		if m.ID == "" {
			continue
		}

		prev, seen := snap.Models[m.ID]
		rec := models.ModelRecord{
			ID:             m.ID,
			Title:          m.Title,
			CostContext:    m.CostContext,
			CostCompletion: m.CostCompletion,
			LastSeen:       c.now().UTC(),
		}
		if seen {
			rec.HasVision = prev.HasVision
			rec.VisionChecked = prev.VisionChecked
		}

		if checkVision && (!seen || (force && !prev.VisionChecked)) {
			if probed > 0 {
				c.sleep(probeDelay)
			}
			log.Infof("Checking vision capability via API for model %s (%d/%d)...", m.ID, i+1, len(fetched))
			switch c.prober.Probe(ctx, m.ID) {
			case CapabilitySupported:
				v := true
				rec.HasVision = &v
				rec.VisionChecked = true
			case CapabilityUnsupported:
				v := false
				rec.HasVision = &v
				rec.VisionChecked = true
			case CapabilityUnknown:
				// Transport flake: leave the record unprobed so a later
				// refresh tries again.
			}
			probed++
		}

		updated[m.ID] = rec
	}

	if probed > 0 {
		log.Infof("Checked vision capability for %d models.", probed)
	}

	now := c.now().UTC()
	fresh := &models.CatalogSnapshot{LastUpdated: &now, Models: updated}
	c.Save(fresh)
	log.Infof("Model cache updated and saved to %s", c.path)
	return fresh
}

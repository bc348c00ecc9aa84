// Package catalog tracks the user's collections, the active selection and the
// insights loaded for it. Every selection change bumps a generation so that
// insights fetched for an earlier selection can be recognized and dropped.
//
// Catalog is not safe for concurrent use; the orchestrator serializes access.
package catalog

import "violet-client/internal/model"

type Catalog struct {
	collections []model.Collection
	selected    *model.Collection
	insights    *model.Insights
	generation  uint64
}

func New() *Catalog {
	return &Catalog{}
}

// Replace swaps the list wholesale. The selection is left alone even when the
// selected collection is no longer listed.
func (c *Catalog) Replace(collections []model.Collection) {
	c.collections = append([]model.Collection(nil), collections...)
}

func (c *Catalog) Collections() []model.Collection {
	return append([]model.Collection{}, c.collections...)
}

func (c *Catalog) Find(id int64) (model.Collection, bool) {
	for _, coll := range c.collections {
		if coll.ID == id {
			return coll, true
		}
	}
	return model.Collection{}, false
}

// Select makes coll active, clears insights and returns the new generation.
func (c *Catalog) Select(coll model.Collection) uint64 {
	selected := coll
	c.selected = &selected
	c.insights = nil
	c.generation++
	return c.generation
}

func (c *Catalog) ClearSelection() {
	c.selected = nil
	c.insights = nil
	c.generation++
}

func (c *Catalog) Selected() (model.Collection, bool) {
	if c.selected == nil {
		return model.Collection{}, false
	}
	return *c.selected, true
}

func (c *Catalog) IsSelected(id int64) bool {
	return c.selected != nil && c.selected.ID == id
}

func (c *Catalog) Generation() uint64 {
	return c.generation
}

// AdoptInsights stores insights only if generation is still current.
func (c *Catalog) AdoptInsights(generation uint64, insights *model.Insights) bool {
	if generation != c.generation || c.selected == nil {
		return false
	}
	c.insights = insights.Clone()
	return true
}

func (c *Catalog) Insights() *model.Insights {
	return c.insights.Clone()
}

func (c *Catalog) Reset() {
	c.collections = nil
	c.ClearSelection()
}

package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"violet-client/internal/model"
)

func TestSelectionGenerationGuardsInsights(t *testing.T) {
	c := New()
	a := model.Collection{ID: 1, Name: "A"}
	b := model.Collection{ID: 2, Name: "B"}
	c.Replace([]model.Collection{a, b})

	genA := c.Select(a)
	genB := c.Select(b)
	assert.NotEqual(t, genA, genB)

	assert.True(t, c.AdoptInsights(genB, &model.Insights{Summary: "B"}))
	assert.False(t, c.AdoptInsights(genA, &model.Insights{Summary: "A"}))
	assert.Equal(t, "B", c.Insights().Summary)

	selected, ok := c.Selected()
	assert.True(t, ok)
	assert.Equal(t, int64(2), selected.ID)
}

func TestSelectClearsInsights(t *testing.T) {
	c := New()
	gen := c.Select(model.Collection{ID: 1})
	c.AdoptInsights(gen, &model.Insights{Summary: "one"})
	assert.NotNil(t, c.Insights())

	c.Select(model.Collection{ID: 2})
	assert.Nil(t, c.Insights())
}

func TestClearSelectionInvalidatesPendingInsights(t *testing.T) {
	c := New()
	gen := c.Select(model.Collection{ID: 1})
	c.ClearSelection()

	assert.False(t, c.AdoptInsights(gen, &model.Insights{Summary: "late"}))
	assert.Nil(t, c.Insights())
	_, ok := c.Selected()
	assert.False(t, ok)
}

func TestReplaceKeepsSelectionAndCopies(t *testing.T) {
	c := New()
	list := []model.Collection{{ID: 1, Name: "A"}}
	c.Replace(list)
	c.Select(list[0])
	list[0].Name = "mutated"

	c.Replace(nil)
	assert.Empty(t, c.Collections())
	assert.True(t, c.IsSelected(1))

	c.Replace([]model.Collection{{ID: 3, Name: "C"}})
	found, ok := c.Find(3)
	assert.True(t, ok)
	assert.Equal(t, "C", found.Name)
	_, ok = c.Find(1)
	assert.False(t, ok)
}

func TestInsightsSnapshotIsIndependent(t *testing.T) {
	c := New()
	gen := c.Select(model.Collection{ID: 1})
	c.AdoptInsights(gen, &model.Insights{KeyConcepts: []string{"x"}})

	snap := c.Insights()
	snap.KeyConcepts[0] = "changed"
	assert.Equal(t, "x", c.Insights().KeyConcepts[0])
}

func TestReset(t *testing.T) {
	c := New()
	c.Replace([]model.Collection{{ID: 1}})
	c.Select(model.Collection{ID: 1})
	c.Reset()

	assert.Empty(t, c.Collections())
	_, ok := c.Selected()
	assert.False(t, ok)
}

package assembler

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/catalog"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

func TestSamplerDeterministic(t *testing.T) {
	c := testCatalog(t)
	cfg := models.JobConfig{Seed: 42}

	a, b := NewSampler(cfg, c), NewSampler(cfg, c)
	for range 20 {
		assert.Equal(t, a.Next(), b.Next())
	}
}

func TestSamplerRespectsDistributions(t *testing.T) {
	c := testCatalog(t)
	cfg := models.JobConfig{
		Seed:                 7,
		WorkflowDistribution: map[models.WorkflowType]float64{models.WorkflowResearch: 1, models.WorkflowECommerce: 0},
		UserTypeDistribution: map[models.UserType]float64{models.UserFirstTime: 1},
		LengthDistribution:   []models.LengthBucket{{Min: 7, Max: 8, Weight: 1}},
	}
	s := NewSampler(cfg, c)
	for range 50 {
		req := s.Next()
		assert.Equal(t, models.WorkflowResearch, req.WorkflowType)
		assert.Equal(t, models.UserFirstTime, req.UserType)
		assert.Contains(t, c.Goals(models.WorkflowResearch), req.Goal)
		assert.GreaterOrEqual(t, req.TargetLength, 7)
		assert.LessOrEqual(t, req.TargetLength, 8)
		assert.Contains(t, models.DeviceTypes, req.DeviceType)
		assert.Contains(t, models.BrowserTypes, req.BrowserType)
	}
}

func TestSamplerDefaultLengthBuckets(t *testing.T) {
	s := NewSampler(models.JobConfig{Seed: 1}, testCatalog(t))
	counts := map[int]int{}
	const n = 4000
	for range n {
		req := s.Next()
		assert.GreaterOrEqual(t, req.TargetLength, models.MinActions)
		assert.LessOrEqual(t, req.TargetLength, models.MaxActions)
		counts[(req.TargetLength-1)/2]++
	}
	// Buckets 3-4, 5-6, 7-8, 9-10 map to keys 1..4.
	assert.InDelta(t, 0.2, float64(counts[1])/n, 0.04)
	assert.InDelta(t, 0.4, float64(counts[2])/n, 0.04)
	assert.InDelta(t, 0.3, float64(counts[3])/n, 0.04)
	assert.InDelta(t, 0.1, float64(counts[4])/n, 0.04)
}

const unweightedCatalog = `
[workflows.research.goals.read_article]
[[workflows.research.goals.read_article.steps]]
action_type = "navigate"
path = "/"

[workflows.form_filling.goals.sign_up]
[[workflows.form_filling.goals.sign_up.steps]]
action_type = "submit"
path = "/signup"
`

func TestSamplerCatalogWithoutWeights(t *testing.T) {
	c, err := catalog.Parse(unweightedCatalog)
	require.NoError(t, err)

	s := NewSampler(models.JobConfig{Seed: 3}, c)
	seen := map[models.WorkflowType]int{}
	for range 200 {
		req := s.Next()
		seen[req.WorkflowType]++
	}
	assert.Len(t, seen, 2)
	assert.Positive(t, seen[models.WorkflowResearch])
	assert.Positive(t, seen[models.WorkflowFormFilling])
}

func TestWeightedPickWithoutPositiveWeights(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	assert.NotPanics(t, func() {
		got := weightedPick(map[models.UserType]float64{models.UserCasual: 0}, rng)
		assert.Equal(t, models.UserCasual, got)
	})
	assert.NotPanics(t, func() {
		assert.Equal(t, models.UserType(""), weightedPick(map[models.UserType]float64{}, rng))
	})
}

package assembler

import (
	"cmp"
	"maps"
	"math/rand/v2"
	"slices"

	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/catalog"
	"github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"
)

// DefaultLengthDistribution is the target-length distribution used when a job
// does not configure one.
var DefaultLengthDistribution = []models.LengthBucket{
	{Min: 3, Max: 4, Weight: 0.2},
	{Min: 5, Max: 6, Weight: 0.4},
	{Min: 7, Max: 8, Weight: 0.3},
	{Min: 9, Max: 10, Weight: 0.1},
}

// Sampler draws generation requests from the job's distributions. Request i
// depends only on the job seed and i, so batches are reproducible regardless
// of how tasks are scheduled.
type Sampler struct {
	seed      uint64
	workflows map[models.WorkflowType]float64
	users     map[models.UserType]float64
	lengths   []models.LengthBucket
	catalog   *catalog.Catalog
	next      uint64
}

func NewSampler(cfg models.JobConfig, c *catalog.Catalog) *Sampler {
	s := &Sampler{
		seed:      cfg.Seed,
		workflows: cfg.WorkflowDistribution,
		users:     cfg.UserTypeDistribution,
		lengths:   cfg.LengthDistribution,
		catalog:   c,
	}
	if len(s.workflows) == 0 {
		s.workflows = c.Weights()
	}
	if len(s.users) == 0 {
		s.users = make(map[models.UserType]float64, len(models.AllUserTypes))
		for _, u := range models.AllUserTypes {
			s.users[u] = 1
		}
	}
	if len(s.lengths) == 0 {
		s.lengths = DefaultLengthDistribution
	}
	return s
}

// Next returns the next request in the batch.
func (s *Sampler) Next() Request {
	idx := s.next
	s.next++
	rng := rand.New(rand.NewPCG(s.seed, idx))

	wf := weightedPick(s.workflows, rng)
	goal := ""
	if goals := s.catalog.Goals(wf); len(goals) > 0 {
		goal = goals[rng.IntN(len(goals))]
	}
	bucket := s.lengths[weightedIndex(s.lengths, rng)]

	return Request{
		WorkflowType: wf,
		UserType:     weightedPick(s.users, rng),
		Goal:         goal,
		TargetLength: bucket.Min + rng.IntN(bucket.Max-bucket.Min+1),
		DeviceType:   models.DeviceTypes[rng.IntN(len(models.DeviceTypes))],
		BrowserType:  models.BrowserTypes[rng.IntN(len(models.BrowserTypes))],
		Seed:         rng.Uint64(),
	}
}

// weightedPick draws a key proportionally to its weight. Without any positive
// weight it draws uniformly; an empty map yields the zero value.
func weightedPick[K cmp.Ordered](weights map[K]float64, rng *rand.Rand) K {
	keys := make([]K, 0, len(weights))
	var total float64
	for k, w := range weights {
		if w > 0 {
			keys = append(keys, k)
			total += w
		}
	}
	if len(keys) == 0 {
		var zero K
		if len(weights) == 0 {
			return zero
		}
		all := slices.Sorted(maps.Keys(weights))
		return all[rng.IntN(len(all))]
	}
	slices.Sort(keys)
	r := rng.Float64() * total
	for _, k := range keys {
		r -= weights[k]
		if r < 0 {
			return k
		}
	}
	return keys[len(keys)-1]
}

func weightedIndex(buckets []models.LengthBucket, rng *rand.Rand) int {
	var total float64
	for _, b := range buckets {
		total += max(b.Weight, 0)
	}
	r := rng.Float64() * total
	for i, b := range buckets {
		r -= max(b.Weight, 0)
		if r < 0 {
			return i
		}
	}
	return len(buckets) - 1
}

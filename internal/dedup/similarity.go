package dedup

import "github.com/Vi-N-Tran/synthetic-data-generation-web/internal/models"

type step struct {
	actionType  models.ActionType
	elementType string
}

// features are the parts of a trajectory the near-duplicate score looks at.
type features struct {
	steps []step
	paths map[string]struct{}
}

func extract(t *models.Trajectory) features {
	f := features{steps: make([]step, len(t.Actions)), paths: make(map[string]struct{}, len(t.Actions))}
	for i, a := range t.Actions {
		f.steps[i] = step{actionType: a.Type(), elementType: a.ElementType}
		f.paths[NormalizePath(a.URL)] = struct{}{}
	}
	return f
}

// Similarity blends sequence alignment of (action_type, element_type) pairs
// with URL-path Jaccard similarity. sequenceWeight is the share given to the
// alignment term. The score is symmetric and lies in [0,1].
func Similarity(a, b *models.Trajectory, sequenceWeight float64) float64 {
	return similarity(extract(a), extract(b), sequenceWeight)
}

func similarity(a, b features, w float64) float64 {
	return w*alignment(a.steps, b.steps) + (1-w)*jaccard(a.paths, b.paths)
}

// alignment is the Dice coefficient of the longest common subsequence:
// 2*LCS / (len(a)+len(b)).
func alignment(a, b []step) float64 {
	if len(a)+len(b) == 0 {
		return 1
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(prev[len(b)]) / float64(len(a)+len(b))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for k := range a {
		if _, ok := b[k]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

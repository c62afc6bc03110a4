package concept

import (
	"fmt"
	"sort"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/textutil"
)

// Clusterer partitions concepts into thematic clusters. Output is always a
// hard partition: every input concept id lands in exactly one cluster.
type Clusterer struct {
	cfg Config
}

// NewClusterer creates a clusterer with a validated config.
func NewClusterer(cfg Config) (*Clusterer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Clusterer{cfg: cfg}, nil
}

// Cluster merges concepts bottom-up with average linkage over a similarity
// matrix of keyword Jaccard overlap plus a capped relationship boost.
// Merging stops when the best remaining merge falls below the threshold, so
// the cluster count is data-driven. Empty input yields an empty list.
func (c *Clusterer) Cluster(concepts []domain.Concept, relationships []domain.Relationship) []domain.ConceptCluster {
	n := len(concepts)
	if n == 0 {
		return nil
	}

	sim := c.similarityMatrix(concepts, relationships)

	// Each cluster is a sorted list of concept indices.
	groups := make([][]int, n)
	for i := range groups {
		groups[i] = []int{i}
	}

	for len(groups) > 1 {
		bi, bj, best := -1, -1, -1.0
		for i := 0; i < len(groups); i++ {
			for j := i + 1; j < len(groups); j++ {
				s := averageLinkage(groups[i], groups[j], sim)
				if s > best {
					bi, bj, best = i, j, s
				}
			}
		}
		if best < c.cfg.ClusterMergeThreshold {
			break
		}
		merged := append(append([]int(nil), groups[bi]...), groups[bj]...)
		sort.Ints(merged)
		groups = append(groups[:bj], groups[bj+1:]...)
		groups[bi] = merged
	}

	// Order clusters by their first member's position in the input for
	// reproducible ids.
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

	clusters := make([]domain.ConceptCluster, 0, len(groups))
	for i, g := range groups {
		ids := make([]string, 0, len(g))
		var confSum float64
		for _, idx := range g {
			ids = append(ids, concepts[idx].ID)
			confSum += concepts[idx].Confidence
		}
		clusters = append(clusters, domain.ConceptCluster{
			ID:         fmt.Sprintf("cluster-%d", i+1),
			Theme:      clusterTheme(g, concepts),
			ConceptIDs: ids,
			Confidence: confSum / float64(len(g)),
			Cohesion:   cohesion(g, sim),
		})
	}
	return clusters
}

// similarityMatrix combines keyword Jaccard overlap with a relationship
// boost: the strongest edge between the two concepts' source elements raises
// similarity, capped so relationships bias clustering but never dominate it.
func (c *Clusterer) similarityMatrix(concepts []domain.Concept, relationships []domain.Relationship) [][]float64 {
	n := len(concepts)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
		sim[i][i] = 1
	}

	elementOwners := make(map[string][]int)
	for i, con := range concepts {
		for _, id := range con.ElementIDs {
			elementOwners[id] = append(elementOwners[id], i)
		}
	}

	boost := make(map[[2]int]float64)
	for _, rel := range relationships {
		for _, i := range elementOwners[rel.SourceID] {
			for _, j := range elementOwners[rel.TargetID] {
				if i == j {
					continue
				}
				key := orderedPair(i, j)
				if rel.Confidence > boost[key] {
					boost[key] = rel.Confidence
				}
			}
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			s := textutil.Jaccard(concepts[i].Keywords, concepts[j].Keywords)
			if b := boost[[2]int{i, j}]; b > 0 {
				if b > c.cfg.RelationshipBoostCap {
					b = c.cfg.RelationshipBoostCap
				}
				s += b
			}
			if s > 1 {
				s = 1
			}
			sim[i][j], sim[j][i] = s, s
		}
	}
	return sim
}

func averageLinkage(a, b []int, sim [][]float64) float64 {
	var sum float64
	for _, i := range a {
		for _, j := range b {
			sum += sim[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

// cohesion is the average pairwise similarity among members; a singleton has
// nothing to be incohesive with and scores 1.
func cohesion(g []int, sim [][]float64) float64 {
	if len(g) <= 1 {
		return 1
	}
	var sum float64
	var pairs int
	for x := 0; x < len(g); x++ {
		for y := x + 1; y < len(g); y++ {
			sum += sim[g[x]][g[y]]
			pairs++
		}
	}
	return sum / float64(pairs)
}

// clusterTheme joins the up-to-three most frequent member keywords,
// frequency ties broken alphabetically.
func clusterTheme(g []int, concepts []domain.Concept) string {
	freq := make(map[string]int)
	for _, idx := range g {
		for _, w := range concepts[idx].Keywords {
			freq[w]++
		}
	}
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > 3 {
		words = words[:3]
	}
	if len(words) == 0 {
		return "untitled"
	}
	out := words[0]
	for _, w := range words[1:] {
		out += " + " + w
	}
	return out
}

func orderedPair(i, j int) [2]int {
	if i < j {
		return [2]int{i, j}
	}
	return [2]int{j, i}
}

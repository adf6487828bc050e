// Package navigate implements the beam-search descent over a code tree,
// scored by the code full-text index.
package navigate

import (
	"log/slog"

	"github.com/agentmemory/agentmemory/internal/config"
	"github.com/agentmemory/agentmemory/internal/retrieve"
	"github.com/agentmemory/agentmemory/internal/store"
)

// Step is one recorded level of the beam search trace.
type Step struct {
	Depth      int      `json:"depth"`
	Candidates []string `json:"candidates"`
	Selected   []string `json:"selected"`
}

// Result is the navigator's output: every visited node in first-seen order
// plus the step-by-step trace.
type Result struct {
	Nodes []store.CodeNode `json:"nodes"`
	Steps []Step           `json:"steps"`
}

// Navigator runs beam search over a store's code tree.
type Navigator struct {
	store     *store.Store
	beamWidth int
	maxDepth  int
}

// New builds a Navigator with the default beam width and max depth.
func New(s *store.Store) *Navigator {
	return &Navigator{store: s, beamWidth: config.BeamWidth, maxDepth: config.MaxDepth}
}

type scored struct {
	id    int64
	score float64
}

// Navigate performs the bounded beam search over the indexed code tree.
// repoPath scopes the candidate set; an empty string searches every repo.
func (n *Navigator) Navigate(query, repoPath string) (Result, error) {
	allNodes, err := n.store.NodesByRepo(repoPath)
	if err != nil {
		return Result{}, err
	}
	if len(allNodes) == 0 {
		return Result{}, nil
	}
	allIDs := make([]int64, len(allNodes))
	for i, node := range allNodes {
		allIDs[i] = node.ID
	}

	sanitized := retrieve.Sanitize(query)

	initial, err := n.scoreCandidates(sanitized, allIDs, n.beamWidth*10)
	if err != nil {
		return Result{}, err
	}
	if len(initial) == 0 {
		return Result{}, nil
	}

	topIDs := firstN(initial, n.beamWidth)

	candidateNames, err := n.namesFor(firstN(initial, n.beamWidth*2))
	if err != nil {
		return Result{}, err
	}
	selectedNames, err := n.namesFor(topIDs)
	if err != nil {
		return Result{}, err
	}

	steps := []Step{{Depth: 0, Candidates: candidateNames, Selected: selectedNames}}
	currentIDs := append([]int64{}, topIDs...)
	visited := append([]int64{}, topIDs...)

	for depth := 1; depth <= n.maxDepth; depth++ {
		children, err := n.store.ChildrenOfMany(currentIDs)
		if err != nil {
			return Result{}, err
		}
		if len(children) == 0 {
			break
		}
		childIDs := make([]int64, len(children))
		for i, c := range children {
			childIDs[i] = c.ID
		}

		childScored, err := n.scoreCandidates(sanitized, childIDs, n.beamWidth)
		if err != nil {
			return Result{}, err
		}
		if len(childScored) == 0 {
			break
		}

		newIDs := firstN(childScored, n.beamWidth)
		childCandidateNames, err := n.namesFor(idsOf(childScored))
		if err != nil {
			return Result{}, err
		}
		childSelectedNames, err := n.namesFor(newIDs)
		if err != nil {
			return Result{}, err
		}

		steps = append(steps, Step{Depth: depth, Candidates: childCandidateNames, Selected: childSelectedNames})
		currentIDs = newIDs
		visited = append(visited, newIDs...)
	}

	seen := make(map[int64]bool, len(visited))
	var resultNodes []store.CodeNode
	for _, id := range visited {
		if seen[id] {
			continue
		}
		seen[id] = true
		node, err := n.store.GetCodeNode(id)
		if err != nil {
			continue
		}
		resultNodes = append(resultNodes, *node)
	}

	return Result{Nodes: resultNodes, Steps: steps}, nil
}

// scoreCandidates scores nodeIDs against the sanitized query via the
// code full-text index, 1/(1+|rank|) normalized. A malformed MATCH query
// degrades to an empty result instead of aborting the beam search, so
// Navigate still returns the nodes already found at earlier depths.
func (n *Navigator) scoreCandidates(sanitizedQuery string, nodeIDs []int64, limit int) ([]scored, error) {
	candidates, err := n.store.SearchCodeNodesFTS(sanitizedQuery, nodeIDs, limit)
	if err != nil {
		slog.Warn("navigate_fts_degraded", slog.String("error", err.Error()))
		return nil, nil
	}
	out := make([]scored, len(candidates))
	for i, c := range candidates {
		rank := c.Rank
		if rank < 0 {
			rank = -rank
		}
		out[i] = scored{id: c.RowID, score: 1.0 / (1.0 + rank)}
	}
	return out, nil
}

func (n *Navigator) namesFor(ids []int64) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		node, err := n.store.GetCodeNode(id)
		if err != nil {
			continue
		}
		names = append(names, node.Name)
	}
	return names, nil
}

func firstN(s []scored, limit int) []int64 {
	if limit > len(s) {
		limit = len(s)
	}
	out := make([]int64, limit)
	for i := 0; i < limit; i++ {
		out[i] = s[i].id
	}
	return out
}

func idsOf(s []scored) []int64 {
	out := make([]int64, len(s))
	for i, c := range s {
		out[i] = c.id
	}
	return out
}

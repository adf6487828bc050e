// Package summarize generates deterministic, LLM-free one-line summaries
// for code nodes, bottom-up.
package summarize

import (
	"strings"

	"github.com/agentmemory/agentmemory/internal/store"
)

// Summarizer writes fallback summaries onto a store's code tree.
type Summarizer struct {
	store *store.Store
}

// New builds a Summarizer.
func New(s *store.Store) *Summarizer {
	return &Summarizer{store: s}
}

var kindPrefix = map[string]string{
	"class":      "Class",
	"function":   "Function",
	"interface":  "Interface",
	"type_alias": "Type",
}

// fallbackSummary builds the base one-line summary for a single node.
func fallbackSummary(kind, name, signature, docstring string) string {
	prefix, ok := kindPrefix[kind]
	if !ok {
		prefix = kind
	}
	parts := []string{prefix + " " + name}

	if docstring != "" {
		firstSentence := strings.TrimSpace(strings.SplitN(docstring, ".", 2)[0])
		if firstSentence != "" {
			parts = append(parts, "- "+firstSentence)
		}
	} else if signature != "" && signature != name {
		parts = append(parts, "("+signature+")")
	}

	return strings.Join(parts, " ")
}

// SummarizeRepo generates summaries for every node under repoPath (or every
// node, if repoPath is empty), leaves first, then rebuilds the code-FTS
// index once. Returns the number of nodes summarized.
func (s *Summarizer) SummarizeRepo(repoPath string) (int, error) {
	ids, err := s.store.AllNodeIDsDepthDescending(repoPath)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, id := range ids {
		node, err := s.store.GetCodeNode(id)
		if err != nil {
			continue
		}

		summary := fallbackSummary(node.Kind, node.Name, node.Signature, node.Docstring)

		children, err := s.store.ChildrenOf(id)
		if err != nil {
			return count, err
		}
		if len(children) > 0 {
			names := make([]string, len(children))
			for i, c := range children {
				names[i] = c.Name
			}
			summary += ". Contains: " + strings.Join(names, ", ")
		}

		if err := s.store.UpdateSummary(id, summary); err != nil {
			return count, err
		}
		count++
	}

	if err := s.store.RebuildCodeFTS(); err != nil {
		return count, err
	}
	return count, nil
}

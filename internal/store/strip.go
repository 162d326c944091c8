package store

import (
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// Integers stay integers through the round trip.
var treeAPI = sonic.Config{UseInt64: true}.Froze()

// stripAbsent encodes doc and drops every null from the result, at any depth.
// Null array elements are removed from their array.
func stripAbsent(doc any) (map[string]any, error) {
	raw, err := sonic.Marshal(doc)
	if err != nil {
		return nil, errors.Wrap(err, "encode document")
	}

	var tree map[string]any
	if err := treeAPI.Unmarshal(raw, &tree); err != nil {
		return nil, errors.Wrap(err, "decode document tree")
	}
	if tree == nil {
		return nil, errors.New("document must encode to an object")
	}
	prune(tree)
	return tree, nil
}

func prune(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			if child == nil {
				delete(node, k)
				continue
			}
			node[k] = prune(child)
		}
		return node
	case []any:
		kept := node[:0]
		for _, child := range node {
			if child != nil {
				kept = append(kept, prune(child))
			}
		}
		return kept
	default:
		return v
	}
}

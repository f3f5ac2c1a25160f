package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/XiaoConstantine/evoidea-go/pkg/idea"
	"github.com/XiaoConstantine/evoidea-go/pkg/storage"
)

const (
	asciiTitleWidth   = 40
	mermaidTitleWidth = 25
)

// Tree renders a run's idea lineage. Ideas with multiple parents
// (crossover children) appear under every parent, so the rendering is a
// DAG flattened into a forest, not a strict tree.
func Tree(store storage.Storage, runID uuid.UUID, format string) (string, error) {
	state, err := store.LoadState(runID)
	if err != nil {
		return "", err
	}
	if len(state.Ideas) == 0 {
		return fmt.Sprintf("No ideas in run %s\n", runID), nil
	}

	roots, children := lineage(&state)
	if format == "mermaid" {
		return mermaidTree(&state, roots, children), nil
	}
	return asciiTree(runID, roots, children), nil
}

// lineage splits the population into parentless roots and a parent ->
// children index, both in state order.
func lineage(state *idea.State) ([]*idea.Idea, map[uuid.UUID][]*idea.Idea) {
	var roots []*idea.Idea
	children := make(map[uuid.UUID][]*idea.Idea)

	for i := range state.Ideas {
		node := &state.Ideas[i]
		if len(node.Parents) == 0 {
			roots = append(roots, node)
			continue
		}
		for _, parent := range node.Parents {
			children[parent] = append(children[parent], node)
		}
	}
	return roots, children
}

func statusMark(status idea.Status) string {
	switch status {
	case idea.StatusActive:
		return "*"
	case idea.StatusArchived:
		return "~"
	default:
		return "?"
	}
}

func truncateTitle(title string, width int) string {
	runes := []rune(title)
	if len(runes) <= width {
		return title
	}
	return string(runes[:width]) + "..."
}

func asciiTree(runID uuid.UUID, roots []*idea.Idea, children map[uuid.UUID][]*idea.Idea) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Evolution Tree: %s ===\n\n", runID)

	for _, root := range roots {
		writeNode(&b, root, children, "", true)
	}

	b.WriteString("\nLegend: [score] status title\n")
	b.WriteString("  * = active, ~ = archived\n")
	return b.String()
}

func writeNode(b *strings.Builder, node *idea.Idea, children map[uuid.UUID][]*idea.Idea, prefix string, isLast bool) {
	connector := "├── "
	childPrefix := prefix + "│   "
	if isLast {
		connector = "└── "
		childPrefix = prefix + "    "
	}

	score := 0.0
	if node.OverallScore != nil {
		score = *node.OverallScore
	}
	fmt.Fprintf(b, "%s%s%s [%.1f] %s %s\n",
		prefix, connector, statusMark(node.Status), score, node.ID,
		truncateTitle(node.Title, asciiTitleWidth))

	kids := children[node.ID]
	for i, child := range kids {
		writeNode(b, child, children, childPrefix, i == len(kids)-1)
	}
}

func mermaidID(id uuid.UUID) string {
	return "n" + strings.ReplaceAll(id.String(), "-", "_")
}

func mermaidTree(state *idea.State, roots []*idea.Idea, children map[uuid.UUID][]*idea.Idea) string {
	var b strings.Builder
	b.WriteString("```mermaid\n")
	b.WriteString("flowchart TD\n")
	fmt.Fprintf(&b, "    subgraph %s[\"Evolution: %s\"]\n",
		mermaidID(state.RunID), state.RunID)

	for i := range state.Ideas {
		node := &state.Ideas[i]
		score := 0.0
		if node.OverallScore != nil {
			score = *node.OverallScore
		}
		title := truncateTitle(node.Title, mermaidTitleWidth)
		if node.Status == idea.StatusActive {
			fmt.Fprintf(&b, "    %s([\"%s\\n%.1f\"])\n", mermaidID(node.ID), title, score)
		} else {
			fmt.Fprintf(&b, "    %s[\"%s\\n%.1f\"]\n", mermaidID(node.ID), title, score)
		}
	}

	// Edges in a stable order.
	parents := make([]uuid.UUID, 0, len(children))
	for parent := range children {
		parents = append(parents, parent)
	}
	sort.Slice(parents, func(i, j int) bool {
		return parents[i].String() < parents[j].String()
	})
	for _, parent := range parents {
		for _, child := range children[parent] {
			fmt.Fprintf(&b, "    %s --> %s\n", mermaidID(parent), mermaidID(child.ID))
		}
	}

	b.WriteString("    end\n")
	b.WriteString("    classDef active fill:#90EE90,stroke:#228B22\n")
	b.WriteString("    classDef archived fill:#D3D3D3,stroke:#808080\n")
	for i := range state.Ideas {
		node := &state.Ideas[i]
		fmt.Fprintf(&b, "    class %s %s\n", mermaidID(node.ID), node.Status)
	}
	b.WriteString("```\n")
	return b.String()
}

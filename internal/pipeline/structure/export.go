package structure

import (
	"fmt"
	"strings"

	"github.com/inkdex/inkdex/internal/domain"
)

// ExportMarkdown renders a generated structure as Markdown. The walk is a
// plain depth-first traversal of the node tree, so equal inputs always
// render to the same bytes.
func ExportMarkdown(s domain.GeneratedStructure) string {
	var b strings.Builder
	switch s.Type {
	case domain.StructureOutline:
		fmt.Fprintf(&b, "# %s\n", s.Title)
		exportOutline(&b, s.Root)
	case domain.StructureMindmap:
		fmt.Fprintf(&b, "# %s\n", s.Title)
		exportMindmap(&b, s.Root)
	case domain.StructureTimeline:
		b.WriteString("# Timeline\n")
		exportSequence(&b, s.Root, false)
	case domain.StructureProcess:
		b.WriteString("# Process\n")
		exportSequence(&b, s.Root, true)
	default:
		fmt.Fprintf(&b, "# %s\n", s.Title)
	}
	return b.String()
}

func exportOutline(b *strings.Builder, root *domain.StructureNode) {
	if root == nil {
		return
	}
	for _, section := range root.Children {
		fmt.Fprintf(b, "\n## %s\n", section.Content)
		for _, concept := range section.Children {
			fmt.Fprintf(b, "\n### %s\n", concept.Content)
			for _, item := range concept.Children {
				indent := strings.Repeat("  ", item.Level-3)
				fmt.Fprintf(b, "%s- %s\n", indent, item.Content)
			}
		}
	}
}

func exportMindmap(b *strings.Builder, root *domain.StructureNode) {
	if root == nil {
		return
	}
	for _, child := range root.Children {
		switch child.Kind {
		case "branch":
			fmt.Fprintf(b, "\n## %s\n", child.Content)
			for _, leaf := range child.Children {
				fmt.Fprintf(b, "- %s\n", leaf.Content)
			}
		default:
			fmt.Fprintf(b, "- %s\n", child.Content)
		}
	}
}

func exportSequence(b *strings.Builder, root *domain.StructureNode, arrows bool) {
	if root == nil {
		return
	}
	b.WriteString("\n")
	for i, step := range root.Children {
		if arrows && i > 0 {
			b.WriteString("   ↓\n")
		}
		fmt.Fprintf(b, "%d. %s\n", i+1, step.Content)
	}
}

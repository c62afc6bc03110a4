package structure

import (
	"strings"
	"testing"

	"github.com/inkdex/inkdex/internal/domain"
)

func TestExportMarkdownOutline(t *testing.T) {
	g := mustGenerator(t, DefaultConfig())
	structures := g.Generate(listFixture())

	outline := structures[0]
	if outline.Type != domain.StructureOutline {
		t.Fatalf("first structure = %s, want outline", outline.Type)
	}
	md := ExportMarkdown(outline)

	for _, want := range []string{"# ", "## ", "### ", "- Buy milk", "- Buy eggs"} {
		if !strings.Contains(md, want) {
			t.Errorf("outline markdown missing %q:\n%s", want, md)
		}
	}
}

func TestExportMarkdownProcess(t *testing.T) {
	g := mustGenerator(t, DefaultConfig())
	var process domain.GeneratedStructure
	for _, s := range g.Generate(listFixture()) {
		if s.Type == domain.StructureProcess {
			process = s
		}
	}
	md := ExportMarkdown(process)

	if !strings.HasPrefix(md, "# Process\n") {
		t.Errorf("process markdown header:\n%s", md)
	}
	if !strings.Contains(md, "↓") {
		t.Errorf("process markdown missing step arrows:\n%s", md)
	}
	if !strings.Contains(md, "1. ") || !strings.Contains(md, "3. ") {
		t.Errorf("process markdown missing numbered steps:\n%s", md)
	}
}

func TestExportMarkdownTimeline(t *testing.T) {
	g := mustGenerator(t, DefaultConfig())
	var timeline domain.GeneratedStructure
	for _, s := range g.Generate(listFixture()) {
		if s.Type == domain.StructureTimeline {
			timeline = s
		}
	}
	md := ExportMarkdown(timeline)
	if !strings.HasPrefix(md, "# Timeline\n") {
		t.Errorf("timeline markdown header:\n%s", md)
	}
	if strings.Contains(md, "↓") {
		t.Errorf("timeline markdown should not use process arrows:\n%s", md)
	}
}

func TestExportMarkdownDeterministic(t *testing.T) {
	g := mustGenerator(t, DefaultConfig())
	first := g.Generate(listFixture())
	second := g.Generate(listFixture())
	for i := range first {
		if ExportMarkdown(first[i]) != ExportMarkdown(second[i]) {
			t.Fatalf("markdown for %s differs across runs", first[i].Type)
		}
	}
}

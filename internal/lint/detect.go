// Package lint implements diagram-type detection, structural syntax
// validation, and the bounded auto-fixer for Mermaid source.
package lint

import (
	"strings"

	"github.com/rendis/seamark/pkg/schema"
)

// kindKeywords maps leading keywords to diagram kinds. Longer keywords are
// matched first so "stateDiagram-v2" wins over a bare prefix match.
var kindKeywords = []struct {
	keyword string
	kind    schema.DiagramKind
}{
	{"sequenceDiagram", schema.KindSequence},
	{"stateDiagram-v2", schema.KindState},
	{"stateDiagram", schema.KindState},
	{"classDiagram", schema.KindClass},
	{"erDiagram", schema.KindER},
	{"flowchart", schema.KindFlowchart},
	{"timeline", schema.KindTimeline},
	{"mindmap", schema.KindMindmap},
	{"journey", schema.KindJourney},
	{"gantt", schema.KindGantt},
	{"graph", schema.KindFlowchart},
	{"pie", schema.KindPie},
}

// Detect classifies diagram code by its first non-blank, non-comment line.
// It never fails: code with no recognized leading keyword is KindUnknown,
// a normal terminal classification.
func Detect(code string) schema.DiagramKind {
	first := firstContentLine(code)
	if first == "" {
		return schema.KindUnknown
	}
	for _, kk := range kindKeywords {
		if !strings.HasPrefix(first, kk.keyword) {
			continue
		}
		// The keyword must stand alone: "pie title x" matches, "piece" does not.
		rest := first[len(kk.keyword):]
		if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
			return kk.kind
		}
	}
	return schema.KindUnknown
}

// firstContentLine returns the first trimmed line that is neither blank nor
// a %% comment.
func firstContentLine(code string) string {
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		return trimmed
	}
	return ""
}

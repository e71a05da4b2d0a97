package lint

import (
	"regexp"
	"strings"

	"github.com/rendis/seamark/pkg/schema"
)

// keywordTypos maps common lowercase misspellings of diagram keywords to the
// canonical form mermaid accepts.
var keywordTypos = map[string]string{
	"sequencediagram": "sequenceDiagram",
	"classdiagram":    "classDiagram",
	"statediagram":    "stateDiagram",
	"statediagram-v2": "stateDiagram-v2",
	"erdiagram":       "erDiagram",
	"flowchart":       "flowchart",
	"gitgraph":        "gitGraph",
}

var (
	bareArrowRe     = regexp.MustCompile(`([^\-<>=])->([^>])`)
	graphNoDirRe    = regexp.MustCompile(`^(graph|flowchart)\s*$`)
	flowDirectionRe = regexp.MustCompile(`^(graph|flowchart)\s+(TD|TB|BT|LR|RL)\b`)
)

// AttemptFix applies a fixed, ordered list of textual repairs scoped to the
// error classes present in the verdict, then returns the repaired code. It
// never deletes user content outside the minimal span needed, runs exactly
// once (no iteration to a fixed point), and returns already-valid code
// unchanged. The caller re-validates the result exactly once.
func AttemptFix(code string, verdict schema.Verdict) string {
	if verdict.Valid {
		return code
	}

	fixed := strings.TrimSpace(code)

	fixed = fixKeywordTypo(fixed)
	fixed = fixMissingDirection(fixed)
	if verdict.Kind == schema.KindFlowchart || verdict.Kind == schema.KindState {
		fixed = normalizeArrows(fixed)
	}
	if hasErrorContaining(verdict, "unclosed string") {
		fixed = closeQuotes(fixed)
	}
	if hasErrorContaining(verdict, "unclosed ") {
		fixed = closeBrackets(fixed, verdict.Kind)
	}

	return fixed
}

func hasErrorContaining(v schema.Verdict, substr string) bool {
	for _, e := range v.Errors {
		if strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// fixKeywordTypo rewrites a miscased leading keyword to its canonical form.
// Only the first content line is touched.
func fixKeywordTypo(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		word := trimmed
		if idx := strings.IndexAny(word, " \t"); idx >= 0 {
			word = word[:idx]
		}
		canonical, ok := keywordTypos[strings.ToLower(word)]
		if ok && word != canonical {
			lines[i] = strings.Replace(line, word, canonical, 1)
		}
		break
	}
	return strings.Join(lines, "\n")
}

// fixMissingDirection turns a bare "graph" or "flowchart" declaration into
// the top-down default.
func fixMissingDirection(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		if graphNoDirRe.MatchString(trimmed) && !flowDirectionRe.MatchString(trimmed) {
			lines[i] = line + " TD"
		}
		break
	}
	return strings.Join(lines, "\n")
}

// normalizeArrows rewrites bare "->" edges to the canonical "-->" form used
// by flowcharts and state diagrams.
func normalizeArrows(code string) string {
	return bareArrowRe.ReplaceAllString(code, "$1-->$2")
}

// closeQuotes appends a closing quote to any line with an odd count of
// unescaped double quotes.
func closeQuotes(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		count := 0
		escaped := false
		for _, r := range line {
			if escaped {
				escaped = false
				continue
			}
			if r == '\\' {
				escaped = true
				continue
			}
			if r == '"' {
				count++
			}
		}
		if count%2 != 0 {
			lines[i] = line + `"`
		}
	}
	return strings.Join(lines, "\n")
}

// closeBrackets appends the closers implied by the unbalanced-bracket scan,
// at the end of the line where each bracket was opened, innermost first.
func closeBrackets(code string, kind schema.DiagramKind) string {
	scan := scanBrackets(scannable(code, kind))
	if len(scan.unclosed) == 0 {
		return code
	}

	// Group missing closers by opening line, preserving reverse-open order.
	appendByLine := map[int][]rune{}
	for i := len(scan.unclosed) - 1; i >= 0; i-- {
		o := scan.unclosed[i]
		appendByLine[o.line] = append(appendByLine[o.line], closerFor(o.char))
	}

	lines := strings.Split(code, "\n")
	for lineNo, closers := range appendByLine {
		if lineNo < 1 || lineNo > len(lines) {
			continue
		}
		lines[lineNo-1] += string(closers)
	}
	return strings.Join(lines, "\n")
}

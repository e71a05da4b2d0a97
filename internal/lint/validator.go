package lint

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rendis/seamark/pkg/schema"
)

// Thresholds for style observations. These only ever produce warnings.
const (
	largeNodeCount   = 150
	maxSubgraphDepth = 3
)

// Validate runs the full structural check pipeline over diagram code and
// returns a verdict. It is a pure function: identical input yields an
// identical verdict. All applicable checks run; findings are collected,
// never short-circuited.
func Validate(code string) schema.Verdict {
	code = strings.TrimSpace(code)

	if code == "" {
		v := schema.Verdict{Kind: schema.KindUnknown}
		v.AddError(0, "empty diagram")
		return v
	}

	v := schema.Verdict{Kind: Detect(code)}

	checkBrackets(scannable(code, v.Kind), &v)
	checkQuotes(code, &v)

	// Unknown kinds get balance checks only: there is no structure to assert.
	if v.Kind != schema.KindUnknown {
		checkStructure(code, &v)
		observeStyle(code, &v)
	}

	v.Finalize()
	return v
}

// bracketScan is the outcome of walking the code with a single bracket stack
// shared across (), [] and {}. Quoted spans are skipped.
type bracketScan struct {
	// unclosed holds the openers left on the stack, in opening order.
	unclosed []openBracket
	// mismatches are closers that did not match the top of the stack.
	mismatches []openBracket
}

type openBracket struct {
	char rune
	line int
}

var bracketPairs = map[rune]rune{')': '(', ']': '[', '}': '{'}

// erCardinalityRe matches entity-relationship cardinality tokens such as
// "||--o{" or "}o..||". Their braces are relationship notation, not block
// delimiters, and must not feed the bracket stack.
var erCardinalityRe = regexp.MustCompile(`(\|o|\|\||\}o|\}\|)(--|\.\.)(o\||\|\||o\{|\|\{)`)

// scannable prepares code for the bracket scan. For ER diagrams the
// cardinality tokens are blanked out; line structure is preserved so
// positions stay accurate.
func scannable(code string, kind schema.DiagramKind) string {
	if kind != schema.KindER {
		return code
	}
	return erCardinalityRe.ReplaceAllString(code, "--")
}

func closerFor(open rune) rune {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}

// scanBrackets walks every line tracking one stack across all bracket kinds.
// Characters inside double-quoted strings do not count.
func scanBrackets(code string) bracketScan {
	var scan bracketScan
	var stack []openBracket

	for i, line := range strings.Split(code, "\n") {
		lineNo := i + 1
		inQuote := false
		escaped := false
		for _, r := range line {
			if escaped {
				escaped = false
				continue
			}
			switch {
			case r == '\\':
				escaped = true
			case r == '"':
				inQuote = !inQuote
			case inQuote:
				// quoted content is opaque
			case r == '(' || r == '[' || r == '{':
				stack = append(stack, openBracket{char: r, line: lineNo})
			case r == ')' || r == ']' || r == '}':
				if len(stack) == 0 || stack[len(stack)-1].char != bracketPairs[r] {
					scan.mismatches = append(scan.mismatches, openBracket{char: r, line: lineNo})
					continue
				}
				stack = stack[:len(stack)-1]
			}
		}
	}

	scan.unclosed = stack
	return scan
}

func checkBrackets(code string, v *schema.Verdict) {
	scan := scanBrackets(code)
	for _, m := range scan.mismatches {
		v.AddError(m.line, fmt.Sprintf("unexpected closing %q", string(m.char)))
	}
	for _, o := range scan.unclosed {
		v.AddError(o.line, fmt.Sprintf("unclosed %q", string(o.char)))
	}
}

// checkQuotes flags any line with an odd count of unescaped double quotes.
// Each line is one logical statement; strings do not span lines in Mermaid.
func checkQuotes(code string, v *schema.Verdict) {
	for i, line := range strings.Split(code, "\n") {
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
			v.AddError(i+1, "unclosed string literal")
		}
	}
}

var (
	sequenceMessageRe = regexp.MustCompile(`\w[^\n]*?(-{1,2}>{1,2}|-{1,2}[x)])\s*[+-]?\w`)
	classBlockRe      = regexp.MustCompile(`(?m)(^\s*class\s+\w|\w\s*\{)`)
	stateTransitionRe = regexp.MustCompile(`(\[\*\]|\w)\s*-->\s*(\[\*\]|\w)`)
	flowchartEdgeRe   = regexp.MustCompile(`(-{2,}>|={2,}>|-\.+->|---|===)`)
	flowchartNodeRe   = regexp.MustCompile(`\b\w+\s*[\[({]`)
	participantRe     = regexp.MustCompile(`(?m)^\s*(participant|actor)\s+\S`)
	titleRe           = regexp.MustCompile(`(?m)^\s*title\b`)
	sectionRe         = regexp.MustCompile(`(?m)^\s*section\b`)
)

// checkStructure runs the kind-specific required-token checks. Each failed
// check appends one error; none of them aborts the rest.
func checkStructure(code string, v *schema.Verdict) {
	body := stripComments(code)

	switch v.Kind {
	case schema.KindSequence:
		if !sequenceMessageRe.MatchString(body) {
			v.AddError(0, "sequence diagram has no messages between participants")
		}
	case schema.KindClass:
		if !classBlockRe.MatchString(body) {
			v.AddError(0, "class diagram has no class definitions")
		}
	case schema.KindState:
		if !stateTransitionRe.MatchString(body) {
			v.AddError(0, "state diagram has no transitions")
		}
	}
}

// observeStyle appends non-fatal observations. Warnings never flip validity.
func observeStyle(code string, v *schema.Verdict) {
	body := stripComments(code)

	switch v.Kind {
	case schema.KindFlowchart:
		if !flowchartEdgeRe.MatchString(body) {
			v.AddWarning(0, "flowchart has no connections")
		}
		if strings.Contains(body, "[]") || strings.Contains(body, "{}") || strings.Contains(body, "()") {
			v.AddWarning(0, "empty node labels detected")
		}
		if n := len(flowchartNodeRe.FindAllString(body, -1)); n > largeNodeCount {
			v.AddWarning(0, fmt.Sprintf("very large diagram: %d nodes may render slowly", n))
		}
		if depth := subgraphDepth(body); depth > maxSubgraphDepth {
			v.AddWarning(0, fmt.Sprintf("subgraphs nested %d deep are hard to read", depth))
		}
	case schema.KindSequence:
		if !participantRe.MatchString(body) {
			v.AddWarning(0, "no participants declared explicitly")
		}
	case schema.KindGantt:
		if !titleRe.MatchString(body) {
			v.AddWarning(0, "gantt chart has no title")
		}
		if !strings.Contains(body, "dateFormat") {
			v.AddWarning(0, "gantt chart has no dateFormat")
		}
		if !sectionRe.MatchString(body) {
			v.AddWarning(0, "gantt chart has no sections")
		}
	case schema.KindPie, schema.KindJourney, schema.KindTimeline:
		if !titleRe.MatchString(body) && !strings.Contains(firstContentLine(body), "title") {
			v.AddWarning(0, "diagram has no title")
		}
	}
}

// subgraphDepth returns the maximum nesting depth of subgraph/end blocks.
func subgraphDepth(code string) int {
	depth, deepest := 0, 0
	for _, line := range strings.Split(code, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "subgraph"):
			depth++
			if depth > deepest {
				deepest = depth
			}
		case trimmed == "end":
			if depth > 0 {
				depth--
			}
		}
	}
	return deepest
}

// stripComments removes %% comment lines so tokens inside comments never
// satisfy (or trip) a structural check.
func stripComments(code string) string {
	lines := strings.Split(code, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "%%") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

package schema

// DiagramKind is the classified diagram category. It is derived by the
// detector from the leading keyword of the source, never set by callers.
type DiagramKind string

const (
	KindFlowchart DiagramKind = "flowchart"
	KindSequence  DiagramKind = "sequence"
	KindClass     DiagramKind = "class"
	KindState     DiagramKind = "state"
	KindER        DiagramKind = "er"
	KindGantt     DiagramKind = "gantt"
	KindPie       DiagramKind = "pie"
	KindMindmap   DiagramKind = "mindmap"
	KindJourney   DiagramKind = "journey"
	KindTimeline  DiagramKind = "timeline"
	// KindUnknown is a valid terminal classification, not an error.
	// Validation for unknown kinds is limited to delimiter and quote balance.
	KindUnknown DiagramKind = "unknown"
)

// Kinds lists every classifiable diagram kind, excluding unknown.
func Kinds() []DiagramKind {
	return []DiagramKind{
		KindFlowchart, KindSequence, KindClass, KindState, KindER,
		KindGantt, KindPie, KindMindmap, KindJourney, KindTimeline,
	}
}

// OutputFormat enumerates renderable image formats.
type OutputFormat string

const (
	FormatPNG OutputFormat = "png"
	FormatSVG OutputFormat = "svg"
)

// ParseOutputFormat validates a format string. Unknown values are rejected,
// never coerced.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatPNG, FormatSVG:
		return OutputFormat(s), nil
	}
	return "", NewErrorf(ErrCodeConfig, "unknown output format %q (use png or svg)", s)
}

package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rendis/seamark/pkg/schema"
)

// DefaultMermaidSource is the script URL injected into every render page.
// Override via Options.MermaidSource to pin a version or serve locally.
const DefaultMermaidSource = "https://cdn.jsdelivr.net/npm/mermaid@11/dist/mermaid.min.js"

// buildPage produces the HTML document evaluated inside the page context.
// The diagram source is passed to mermaid.render as a JS string (never
// interpolated into markup), and the outcome lands in window.__seamarkDone
// or window.__seamarkError for the engine to poll.
func buildPage(code string, cfg schema.RenderConfig, mermaidSource string) (string, error) {
	encoded, err := json.Marshal(code)
	if err != nil {
		return "", err
	}

	bodyBackground := "transparent"
	if cfg.Background == schema.BackgroundWhite {
		bodyBackground = "white"
	}

	initJSON, err := json.Marshal(map[string]any{
		"startOnLoad": false,
		"theme":       string(cfg.Theme),
		"look":        string(cfg.Look),
		"flowchart":   map[string]any{"useMaxWidth": false, "curve": "basis"},
		"sequence":    map[string]any{"useMaxWidth": false},
		"gantt":       map[string]any{"useMaxWidth": false},
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<meta charset="UTF-8">
<script src=%q></script>
<style>
  body { margin: 0; padding: 16px; background-color: %s; }
  #diagram { display: inline-block; }
  #diagram svg { max-width: none !important; height: auto !important; }
</style>
</head>
<body>
<div id="diagram"></div>
<script>
  mermaid.initialize(%s);
  mermaid.render('seamark', %s)
    .then(function (out) {
      document.getElementById('diagram').innerHTML = out.svg;
      window.__seamarkDone = true;
    })
    .catch(function (err) {
      window.__seamarkError = String((err && err.message) || err);
    });
</script>
</body>
</html>`, mermaidSource, bodyBackground, initJSON, encoded), nil
}

var flowchartHeaderRe = regexp.MustCompile(`^(\s*(?:graph|flowchart))(\s+(?:TD|TB|BT|LR|RL))?\b`)

// applyDirection rewrites the flowchart declaration line to the configured
// layout axis. Non-flowchart kinds pass through untouched: direction only
// rotates flowcharts.
func applyDirection(code string, kind schema.DiagramKind, dir schema.Direction) string {
	if kind != schema.KindFlowchart || dir == "" {
		return code
	}

	lines := strings.Split(code, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "%%") {
			continue
		}
		lines[i] = flowchartHeaderRe.ReplaceAllString(line, "${1} "+string(dir))
		break
	}
	return strings.Join(lines, "\n")
}

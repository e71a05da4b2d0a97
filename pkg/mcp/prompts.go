package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/seamark/internal/gallery"
	"github.com/rendis/seamark/pkg/schema"
)

// serverPrompt pairs a prompt definition with its handler.
type serverPrompt struct {
	Prompt  mcp.Prompt
	Handler server.PromptHandlerFunc
}

// prompts returns the guided diagram-creation prompts.
func (s *SeamarkServer) prompts() []serverPrompt {
	return []serverPrompt{
		{Prompt: architecturePrompt(), Handler: s.handleArchitecturePrompt},
		{Prompt: userFlowPrompt(), Handler: s.handleUserFlowPrompt},
	}
}

func architecturePrompt() mcp.Prompt {
	return mcp.NewPrompt("create_system_architecture",
		mcp.WithPromptDescription("Guided creation of a system architecture flowchart"),
		mcp.WithArgument("system_name",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("Name of the system being diagrammed"),
		),
		mcp.WithArgument("components",
			mcp.ArgumentDescription("Comma-separated list of components to include"),
		),
	)
}

func userFlowPrompt() mcp.Prompt {
	return mcp.NewPrompt("document_user_flow",
		mcp.WithPromptDescription("Guided creation of a user flow sequence diagram"),
		mcp.WithArgument("process_name",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("Name of the process being documented"),
		),
		mcp.WithArgument("actors",
			mcp.ArgumentDescription("Comma-separated list of participants"),
		),
	)
}

func (s *SeamarkServer) handleArchitecturePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemName := req.Params.Arguments["system_name"]
	if systemName == "" {
		return nil, fmt.Errorf("system_name is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Let's create a system architecture diagram for %s.\n\n", systemName)
	if components := splitList(req.Params.Arguments["components"]); len(components) > 0 {
		b.WriteString("Components to include:\n")
		for _, c := range components {
			fmt.Fprintf(&b, "- %s\n", c)
		}
		b.WriteString("\n")
	}
	b.WriteString(`Follow these steps:
1. Start with a top-down flowchart layout.
2. Create a node for each component with a descriptive label.
3. Show data flow between components with arrows.
4. Group related components in subgraphs.
5. Validate and render the result with the seamark.render tool.

Example structure:

`)
	example, _ := gallery.Example(schema.KindFlowchart)
	fmt.Fprintf(&b, "```mermaid\n%s\n```\n", example)

	return mcp.NewGetPromptResult(
		"System architecture diagram wizard",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(b.String())),
		},
	), nil
}

func (s *SeamarkServer) handleUserFlowPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	processName := req.Params.Arguments["process_name"]
	if processName == "" {
		return nil, fmt.Errorf("process_name is required")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Let's document the %s flow as a sequence diagram.\n\n", processName)
	if actors := splitList(req.Params.Arguments["actors"]); len(actors) > 0 {
		b.WriteString("Participants:\n")
		for _, a := range actors {
			fmt.Fprintf(&b, "- %s\n", a)
		}
		b.WriteString("\n")
	}
	b.WriteString(`Structure the diagram as:
1. Declare each participant up front.
2. Show each interaction as a message between participants.
3. Use -->> for responses and ->> for requests.
4. Mark error and alternative paths with alt/else blocks.
5. Validate and render the result with the seamark.render tool.

Example structure:

`)
	example, _ := gallery.Example(schema.KindSequence)
	fmt.Fprintf(&b, "```mermaid\n%s\n```\n", example)

	return mcp.NewGetPromptResult(
		"User flow diagram wizard",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(b.String())),
		},
	), nil
}

// splitList parses a comma-separated argument into trimmed non-empty items.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

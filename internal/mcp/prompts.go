package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("generate_mindmap",
		mcp.WithPromptDescription("Generate a structured mindmap about a topic and place it on the canvas"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("Topic of the mindmap"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("context",
			mcp.ArgumentDescription("Additional context or focus"),
		),
	), s.handleGeneratePrompt)
}

const generateInstructions = `The mindmap should be valid JSON matching this structure:
{
  "nodes": [
    {
      "id": "chapter-1",
      "type": "chapter",
      "data": {"label": "Main Topic", "type": "chapter", "content": "Main topic description"}
    },
    {
      "id": "main-topic-1",
      "type": "main-topic",
      "data": {"label": "Subtopic 1", "type": "main-topic", "content": "Description of subtopic 1"}
    }
  ],
  "edges": [
    {
      "id": "edge-1-2",
      "source": "chapter-1",
      "target": "main-topic-1",
      "animated": true
    }
  ]
}

Do not include positions; the layout is calculated automatically.

Include:
- 1 chapter node as the main topic
- 4-6 main-topic nodes for key subtopics
- 6-12 sub-topic nodes for details, each connected from its main-topic

Give every node a meaningful label and content. Connect nodes so they form a coherent knowledge structure.
Then call generate_mindmap with the JSON as the "mindmap" argument (pass "name" to create a new mindmap).`

func (s *Server) handleGeneratePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	extra := ""
	if c := req.Params.Arguments["context"]; c != "" {
		extra = fmt.Sprintf(" Additional context: %s", c)
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Generate a mindmap about: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Create a comprehensive and structured mindmap about %q.%s\n\n%s", topic, extra, generateInstructions),
				},
			},
		},
	}, nil
}

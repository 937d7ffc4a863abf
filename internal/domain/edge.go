package domain

type EdgeStyle struct {
	Stroke          string  `json:"stroke,omitempty"`
	StrokeWidth     float64 `json:"strokeWidth,omitempty"`
	StrokeDasharray string  `json:"strokeDasharray,omitempty"`
}

// Edge is a directed connection from Source to Target.
type Edge struct {
	ID           string     `json:"id" validate:"required"`
	Source       string     `json:"source" validate:"required"`
	Target       string     `json:"target" validate:"required"`
	SourceHandle string     `json:"sourceHandle,omitempty"`
	TargetHandle string     `json:"targetHandle,omitempty"`
	Type         string     `json:"type,omitempty"`
	Label        string     `json:"label,omitempty"`
	Animated     bool       `json:"animated,omitempty"`
	Style        *EdgeStyle `json:"style,omitempty"`
}

func (e Edge) Clone() Edge {
	c := e
	if e.Style != nil {
		s := *e.Style
		c.Style = &s
	}
	return c
}

// CloneEdges deep-copies an edge slice. A nil input yields an empty slice.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = e.Clone()
	}
	return out
}

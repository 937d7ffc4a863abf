package domain

import "time"

// NodeType is the tier a node occupies in a mindmap.
type NodeType string

const (
	NodeTypeChapter   NodeType = "chapter"
	NodeTypeMainTopic NodeType = "main-topic"
	NodeTypeSubTopic  NodeType = "sub-topic"
)

// Valid reports whether t is one of the three recognized node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeChapter, NodeTypeMainTopic, NodeTypeSubTopic:
		return true
	}
	return false
}

type MediaType string

const (
	MediaTypeImage   MediaType = "image"
	MediaTypeVideo   MediaType = "video"
	MediaTypeYouTube MediaType = "youtube"
)

type DocumentFormat string

const (
	DocumentFormatDefault DocumentFormat = "default"
	DocumentFormatA4      DocumentFormat = "a4"
	DocumentFormatWide    DocumentFormat = "wide"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type MediaItem struct {
	Type  MediaType `json:"type" validate:"oneof=image video youtube"`
	URL   string    `json:"url" validate:"required"`
	Title string    `json:"title,omitempty"`
}

type Tag struct {
	ID    string `json:"id" validate:"required"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// Handle is a connection anchor the web UI places on a node's border.
type Handle struct {
	ID       string  `json:"id"`
	Position string  `json:"position"` // top | right | bottom | left
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

// NodeData is the payload shown inside a node. Layout and history carry it
// along without looking at it.
type NodeData struct {
	Label           string         `json:"label"`
	Content         string         `json:"content,omitempty"` // rich-text HTML owned by the editor
	Type            NodeType       `json:"type,omitempty"`
	BackgroundColor string         `json:"backgroundColor,omitempty"`
	BorderColor     string         `json:"borderColor,omitempty"`
	Media           []MediaItem    `json:"media,omitempty" validate:"dive"`
	Handles         []Handle       `json:"handles,omitempty"`
	Format          DocumentFormat `json:"format,omitempty"`
	FontSize        float64        `json:"fontSize,omitempty"`
	LineHeight      float64        `json:"lineHeight,omitempty"`
	LastEdited      *time.Time     `json:"lastEdited,omitempty"`
	Tags            []Tag          `json:"tags,omitempty" validate:"dive"`
}

type Node struct {
	ID       string   `json:"id" validate:"required"`
	Type     NodeType `json:"type" validate:"required,oneof=chapter main-topic sub-topic"`
	Position Position `json:"position"`
	Data     NodeData `json:"data"`
}

// Clone returns a copy of n that shares no memory with it.
func (n Node) Clone() Node {
	c := n
	if n.Data.Media != nil {
		c.Data.Media = append([]MediaItem(nil), n.Data.Media...)
	}
	if n.Data.Handles != nil {
		c.Data.Handles = append([]Handle(nil), n.Data.Handles...)
	}
	if n.Data.Tags != nil {
		c.Data.Tags = append([]Tag(nil), n.Data.Tags...)
	}
	if n.Data.LastEdited != nil {
		t := *n.Data.LastEdited
		c.Data.LastEdited = &t
	}
	return c
}

// CloneNodes deep-copies a node slice. A nil input yields an empty slice.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// DefaultSize returns the footprint the web UI gives a freshly created node.
func DefaultSize(t NodeType) (w, h float64) {
	switch t {
	case NodeTypeChapter:
		return 360, 240
	case NodeTypeMainTopic:
		return 300, 200
	default:
		return 240, 160
	}
}

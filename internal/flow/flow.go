// Package flow reads and writes the raw node/edge JSON document shared by
// the web UI, exported files and AI agents.
package flow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"mindmap/internal/domain"
)

var (
	ErrInvalidFlow = errors.New("invalid flow")
	ErrNoStructure = errors.New("response has no nodes or edges")
	ErrUnparseable = errors.New("response is not valid JSON")
)

var (
	validate    = validator.New()
	fencedJSON  = regexp.MustCompile("```json\\s*\\n([\\s\\S]*?)\\n\\s*```")
	fencedPlain = regexp.MustCompile("```\\s*\\n([\\s\\S]*?)\\n\\s*```")
	bareObject  = regexp.MustCompile(`\{[\s\S]*\}`)
)

// Encode serializes f. Nil slices are written as empty arrays.
func Encode(f domain.Flow, pretty bool) ([]byte, error) {
	if f.Nodes == nil {
		f.Nodes = []domain.Node{}
	}
	if f.Edges == nil {
		f.Edges = []domain.Edge{}
	}
	if pretty {
		return json.MarshalIndent(f, "", "  ")
	}
	return json.Marshal(f)
}

// Decode parses and validates a flow document.
func Decode(r io.Reader) (domain.Flow, error) {
	var f domain.Flow
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return domain.Flow{}, fmt.Errorf("decode flow: %w", err)
	}
	Normalize(&f)
	if err := Validate(f); err != nil {
		return domain.Flow{}, err
	}
	return f, nil
}

// Normalize fills gaps left by hand-written or generated documents: a node
// type missing at the top level is taken from data.type and vice versa, and
// an empty label falls back to the id.
func Normalize(f *domain.Flow) {
	if f.Nodes == nil {
		f.Nodes = []domain.Node{}
	}
	if f.Edges == nil {
		f.Edges = []domain.Edge{}
	}
	for i := range f.Nodes {
		n := &f.Nodes[i]
		if n.Type == "" {
			n.Type = n.Data.Type
		}
		if n.Data.Type == "" {
			n.Data.Type = n.Type
		}
		if n.Data.Label == "" {
			n.Data.Label = n.ID
		}
	}
	for i := range f.Edges {
		e := &f.Edges[i]
		if e.ID == "" && e.Source != "" && e.Target != "" {
			e.ID = fmt.Sprintf("edge-%s-%s", e.Source, e.Target)
		}
	}
}

// Validate checks struct tags, unique node and edge ids and that every
// edge connects two existing nodes.
func Validate(f domain.Flow) error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFlow, formatValidationError(err))
	}
	ids := make(map[string]bool, len(f.Nodes))
	for _, n := range f.Nodes {
		if ids[n.ID] {
			return fmt.Errorf("%w: duplicate node id %q", ErrInvalidFlow, n.ID)
		}
		ids[n.ID] = true
	}
	edgeIDs := make(map[string]bool, len(f.Edges))
	for _, e := range f.Edges {
		if edgeIDs[e.ID] {
			return fmt.Errorf("%w: duplicate edge id %q", ErrInvalidFlow, e.ID)
		}
		edgeIDs[e.ID] = true
		if !ids[e.Source] || !ids[e.Target] {
			return fmt.Errorf("%w: edge %q references unknown node", ErrInvalidFlow, e.ID)
		}
	}
	return nil
}

func formatValidationError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ExtractGenerated pulls a flow out of free-form agent or model output. The
// JSON may sit in a ```json fence, a plain fence, or just be the outermost
// brace pair. Node types are not checked here; the layout reports unknown
// ones.
func ExtractGenerated(text string) (domain.Flow, error) {
	candidate := text
	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if m := fencedPlain.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	} else if m := bareObject.FindString(text); m != "" {
		candidate = m
	}
	candidate = strings.TrimSpace(strings.ReplaceAll(candidate, "```", ""))

	var raw struct {
		Nodes []domain.Node `json:"nodes"`
		Edges []domain.Edge `json:"edges"`
	}
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return domain.Flow{}, fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if raw.Nodes == nil || raw.Edges == nil {
		return domain.Flow{}, ErrNoStructure
	}
	f := domain.Flow{Nodes: raw.Nodes, Edges: raw.Edges}
	Normalize(&f)
	return f, nil
}

// WriteFile writes f as indented JSON, creating parent directories.
func WriteFile(path string, f domain.Flow) error {
	data, err := Encode(f, true)
	if err != nil {
		return fmt.Errorf("encode flow: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write flow: %w", err)
	}
	return os.Rename(tmp, path)
}

func ReadFile(path string) (domain.Flow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Flow{}, fmt.Errorf("read flow: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

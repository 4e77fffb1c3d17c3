package production

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/comalice/narrativex/internal/primitives"
)

// DefaultVisualizer renders scenarios as Graphviz DOT and JSON.
type DefaultVisualizer struct{}

// Edge represents a hand-off between two nodes.
type Edge struct {
	From  string
	To    string
	Label string
	Style string
}

// ExportDOT generates Graphviz DOT source for the scenario. The node of the active
// stage, if any, is highlighted.
func (v *DefaultVisualizer) ExportDOT(config *primitives.ScenarioConfig, active string) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `digraph %q {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
  label=%q;
`, config.ID, title(config))

	switch config.Kind {
	case primitives.KindTimeline:
		for _, s := range config.Stages {
			renderNode(&buf, s.ID, fmt.Sprintf("%s\n%v", s.ID, s.Duration), s.Cues, s.ID == active)
		}
	case primitives.KindChain:
		for i, s := range config.Steps {
			label := fmt.Sprintf("%s\n@%v", stepName(s), s.At)
			if s.When != "" {
				label += "\nwhen " + s.When
			}
			renderNode(&buf, stepNode(i), label, s.Cues, s.Stage != "" && s.Stage == active)
		}
	}

	for _, e := range collectEdges(config) {
		attrs := fmt.Sprintf("label=%q", e.Label)
		if e.Style != "" {
			attrs += " style=" + e.Style
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// ExportJSON serializes the scenario config to JSON.
func (v *DefaultVisualizer) ExportJSON(config *primitives.ScenarioConfig) ([]byte, error) {
	return json.MarshalIndent(config, "", "  ")
}

func title(config *primitives.ScenarioConfig) string {
	if config.Title != "" {
		return config.Title
	}
	return config.ID
}

func stepNode(i int) string { return fmt.Sprintf("step_%d", i) }

func stepName(s *primitives.StepConfig) string {
	if s.Stage == "" {
		return "(cues)"
	}
	return s.Stage
}

func renderNode(buf *bytes.Buffer, id, label string, cues []primitives.CueConfig, active bool) {
	style := ""
	if active {
		style = ` style=filled fillcolor=lightgreen`
	}
	if n := len(cues); n > 0 {
		label += fmt.Sprintf("\n%d cue(s)", n)
	}
	fmt.Fprintf(buf, "  %q [label=%q%s];\n", id, label, style)
}

// collectEdges links stages or steps in authored order, plus the loop and replay
// edges that lead back into the scenario.
func collectEdges(config *primitives.ScenarioConfig) []Edge {
	var edges []Edge
	switch config.Kind {
	case primitives.KindTimeline:
		for i := 1; i < len(config.Stages); i++ {
			prev := config.Stages[i-1]
			edges = append(edges, Edge{From: prev.ID, To: config.Stages[i].ID, Label: prev.Duration.String()})
		}
		if config.Loop && len(config.Stages) > 0 {
			last := config.Stages[len(config.Stages)-1]
			edges = append(edges, Edge{From: last.ID, To: config.Stages[0].ID, Label: "loop", Style: "dashed"})
		}
	case primitives.KindChain:
		n := len(config.Steps)
		for i := 1; i < n; i++ {
			gap := config.Steps[i].At - config.Steps[i-1].At
			edges = append(edges, Edge{From: stepNode(i - 1), To: stepNode(i), Label: "+" + gap.String()})
		}
		if n == 0 {
			break
		}
		if config.Loop {
			edges = append(edges, Edge{From: stepNode(n - 1), To: stepNode(0), Label: "loop", Style: "dashed"})
		}
		if config.ReplayFrom != "" {
			for i, s := range config.Steps {
				if s.Stage == config.ReplayFrom {
					edges = append(edges, Edge{From: stepNode(n - 1), To: stepNode(i), Label: "replay", Style: "dotted"})
					break
				}
			}
		}
	}
	return edges
}

package klog

import (
	"encoding/json"
	"regexp"
	"strings"
)

// tagPattern matches #name or #name=value, where value is double-quoted,
// single-quoted or a bare word.
var tagPattern = regexp.MustCompile(`#([\p{L}\d_-]+)(?:=("[^"]*"|'[^']*'|[\p{L}\d_-]*))?`)

// Tag is a #name[=value] marker inside a summary. Quotes around a value are kept.
type Tag struct {
	Name     string
	Value    string
	HasValue bool
}

// NewTag returns a tag without a value.
func NewTag(name string) Tag { return Tag{Name: name} }

// NewValueTag returns a tag with a value.
func NewValueTag(name, value string) Tag { return Tag{Name: name, Value: value, HasValue: true} }

func (t Tag) String() string {
	if t.HasValue {
		return "#" + t.Name + "=" + t.Value
	}
	return "#" + t.Name
}

func (t Tag) MarshalJSON() ([]byte, error) {
	out := map[string]string{"name": t.Name}
	if t.HasValue {
		out["value"] = t.Value
	}
	return json.Marshal(out)
}

// SummaryNodeKind distinguishes the pieces returned by Summary.SplitOnTags.
type SummaryNodeKind string

const (
	TextNode      SummaryNodeKind = "text"
	TagNode       SummaryNodeKind = "tag"
	EndOfLineNode SummaryNodeKind = "end-of-line"
)

// SummaryNode is a piece of a summary: plain text, a tag, or a line break.
type SummaryNode struct {
	Kind SummaryNodeKind
	Text string
	Tag  Tag
}

// Summary is free text attached to a record or an entry.
type Summary struct {
	lines []string
}

// NewSummary splits text into lines on "\n".
func NewSummary(text string) *Summary {
	return &Summary{lines: strings.Split(text, "\n")}
}

// NewSummaryLines builds a summary from already separated lines.
func NewSummaryLines(lines ...string) *Summary {
	return &Summary{lines: append([]string(nil), lines...)}
}

// SetText replaces the summary's lines.
func (s *Summary) SetText(text string) {
	s.lines = strings.Split(text, "\n")
}

// Lines returns a copy of the summary's lines.
func (s *Summary) Lines() []string {
	return append([]string(nil), s.lines...)
}

// Text returns the lines joined with "\n".
func (s *Summary) Text() string { return strings.Join(s.lines, "\n") }

// Tags returns every tag of every line, in order of appearance.
func (s *Summary) Tags() []Tag {
	var tags []Tag
	for _, line := range s.lines {
		for _, m := range tagPattern.FindAllStringSubmatchIndex(line, -1) {
			tags = append(tags, tagFromMatch(line, m))
		}
	}
	return tags
}

// HasTag reports whether any tag of the summary is called name.
func (s *Summary) HasTag(name string) bool {
	for _, t := range s.Tags() {
		if t.Name == name {
			return true
		}
	}
	return false
}

// SplitOnTags breaks the summary into text and tag nodes for rich rendering.
// Lines are separated by an end-of-line node; empty text pieces are dropped.
func (s *Summary) SplitOnTags() []SummaryNode {
	var nodes []SummaryNode
	for i, line := range s.lines {
		last := 0
		for _, m := range tagPattern.FindAllStringSubmatchIndex(line, -1) {
			if m[0] > last {
				nodes = append(nodes, SummaryNode{Kind: TextNode, Text: line[last:m[0]]})
			}
			nodes = append(nodes, SummaryNode{Kind: TagNode, Tag: tagFromMatch(line, m)})
			last = m[1]
		}
		if last < len(line) {
			nodes = append(nodes, SummaryNode{Kind: TextNode, Text: line[last:]})
		}
		if i != len(s.lines)-1 {
			nodes = append(nodes, SummaryNode{Kind: EndOfLineNode})
		}
	}
	return nodes
}

// Render joins the lines with "\n". Continuation lines are prefixed with
// indent twice; with startOnNextLine the first line is too, after a leading
// line break.
func (s *Summary) Render(indent Indentation, startOnNextLine bool) string {
	var b strings.Builder
	if startOnNextLine {
		b.WriteString("\n")
	}
	for i, line := range s.lines {
		if i > 0 {
			b.WriteString("\n")
		}
		if i > 0 || startOnNextLine {
			b.WriteString(string(indent) + string(indent))
		}
		b.WriteString(line)
	}
	return b.String()
}

func (s *Summary) String() string { return s.Render("", false) }

func (s *Summary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Lines []string `json:"lines"`
		Tags  []Tag    `json:"tags"`
	}{s.lines, s.Tags()})
}

func tagFromMatch(line string, m []int) Tag {
	tag := Tag{Name: line[m[2]:m[3]]}
	if m[4] >= 0 {
		tag.Value, tag.HasValue = line[m[4]:m[5]], true
	}
	return tag
}

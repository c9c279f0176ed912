// Package ast turns grammar parse trees into plain, JSON-friendly nodes that
// still carry the formatting choices of the source text.
package ast

import (
	"time"

	"github.com/Tiliavir/klg/internal/klog"
)

type NodeType string

const (
	TypeFile      NodeType = "file"
	TypeRecord    NodeType = "record"
	TypeEntry     NodeType = "entry"
	TypeDate      NodeType = "date"
	TypeTimeRange NodeType = "timeRange"
	TypeTime      NodeType = "time"
	TypeDuration  NodeType = "duration"
)

// Node is any AST node.
type Node interface {
	NodeType() NodeType
}

// ValueNode is the value of an entry: a *TimeRangeNode or a *DurationNode.
type ValueNode interface {
	Node
	isValueNode()
}

type FileNode struct {
	Type    NodeType      `json:"type"`
	Records []*RecordNode `json:"records"`
}

type RecordNode struct {
	Type        NodeType         `json:"type"`
	Date        time.Time        `json:"date"`
	DateFormat  klog.DateFormat  `json:"dateFormat"`
	ShouldTotal *DurationNode    `json:"shouldTotal,omitempty"`
	Summary     *string          `json:"summary,omitempty"`
	Indentation klog.Indentation `json:"indentation,omitempty"`
	Entries     []*EntryNode     `json:"entries"`
}

type EntryNode struct {
	Type        NodeType         `json:"type"`
	Indentation klog.Indentation `json:"indentation,omitempty"`
	Value       ValueNode        `json:"value"`
	Summary     *string          `json:"summary,omitempty"`
}

type DateNode struct {
	Type   NodeType        `json:"type"`
	Date   time.Time       `json:"date"`
	Format klog.DateFormat `json:"format"`
}

type TimeRangeNode struct {
	Type             NodeType             `json:"type"`
	Open             bool                 `json:"open"`
	Format           klog.RangeDashFormat `json:"format"`
	PlaceholderCount int                  `json:"placeholderCount,omitempty"`
	Start            *TimeNode            `json:"start"`
	End              *TimeNode            `json:"end,omitempty"`
}

// TimeNode holds a time as written; 12-hour times are already converted to
// a 0-23 hour.
type TimeNode struct {
	Type   NodeType        `json:"type"`
	Hour   int             `json:"hour"`
	Minute int             `json:"minute"`
	Shift  klog.DayShift   `json:"shift"`
	Format klog.TimeFormat `json:"format"`
}

// DurationNode holds signed minutes and the sign as written.
type DurationNode struct {
	Type  NodeType  `json:"type"`
	Value int       `json:"value"`
	Sign  klog.Sign `json:"sign"`
}

func (*FileNode) NodeType() NodeType      { return TypeFile }
func (*RecordNode) NodeType() NodeType    { return TypeRecord }
func (*EntryNode) NodeType() NodeType     { return TypeEntry }
func (*DateNode) NodeType() NodeType      { return TypeDate }
func (*TimeRangeNode) NodeType() NodeType { return TypeTimeRange }
func (*TimeNode) NodeType() NodeType      { return TypeTime }
func (*DurationNode) NodeType() NodeType  { return TypeDuration }

func (*TimeRangeNode) isValueNode() {}
func (*DurationNode) isValueNode()  {}

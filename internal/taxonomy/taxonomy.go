// Package taxonomy maps detector class names onto the node types and colors
// the graph model was trained with.
//
// The order of NodeTypes and Colors fixes the layout of every feature vector
// the model consumes. Reordering or extending either list invalidates trained
// weights.
package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

// NodeType is the kind of network element a node glyph depicts.
type NodeType int

const (
	ATN NodeType = iota
	RTN
	Router
	Switch
	HubSite
)

// NodeTypes lists every node type in one-hot order.
var NodeTypes = []NodeType{ATN, RTN, Router, Switch, HubSite}

var nodeTypeNames = [...]string{"ATN", "RTN", "Router", "Switch", "HubSite"}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// OneHot returns the type encoding, len(NodeTypes) wide.
func (t NodeType) OneHot() []float64 {
	return oneHot(int(t), len(NodeTypes))
}

// Color is the status color a node or link is drawn in.
type Color int

const (
	Red Color = iota
	Green
	Blue
	Yellow
	Orange
	Gray
)

// Colors lists every color in one-hot order.
var Colors = []Color{Red, Green, Blue, Yellow, Orange, Gray}

var colorNames = [...]string{"Red", "Green", "Blue", "Yellow", "Orange", "Gray"}

func (c Color) String() string {
	if c < 0 || int(c) >= len(colorNames) {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

// OneHot returns the color encoding, len(Colors) wide.
func (c Color) OneHot() []float64 {
	return oneHot(int(c), len(Colors))
}

// Feature widths the model depends on.
var (
	// NodeFeatureWidth is type one-hot + color one-hot + the down-site flag.
	NodeFeatureWidth = len(NodeTypes) + len(Colors) + 1

	// EdgeFeatureWidth is the link color one-hot.
	EdgeFeatureWidth = len(Colors)
)

func oneHot(idx, width int) []float64 {
	v := make([]float64, width)
	if idx >= 0 && idx < width {
		v[idx] = 1
	}
	return v
}

// ParseNodeType resolves a type name exactly as the detector spells it.
func ParseNodeType(name string) (NodeType, bool) {
	for i, n := range nodeTypeNames {
		if n == name {
			return NodeType(i), true
		}
	}
	return 0, false
}

// ParseColor resolves a color name exactly as the detector spells it.
func ParseColor(name string) (Color, bool) {
	for i, n := range colorNames {
		if n == name {
			return Color(i), true
		}
	}
	return 0, false
}

// LinkPrefix starts the class name of every connector detection.
const LinkPrefix = "Link"

// classSeparator splits "<Type>_<Color>" class names.
const classSeparator = "_"

// ErrUnknownClass is returned for class names outside the taxonomy.
var ErrUnknownClass = errors.New("unknown detector class")

// ClassKind tells links and nodes apart.
type ClassKind int

const (
	ClassLink ClassKind = iota
	ClassNode
)

// Class is a parsed detector class. Type is meaningful only for ClassNode.
type Class struct {
	Kind  ClassKind
	Type  NodeType
	Color Color
}

// ParseClass classifies a detector class name such as "RTN_Green" or
// "Link_Red". The color is the suffix after the final separator. Names that
// are neither a link nor a known node type, or that carry an unknown color,
// return ErrUnknownClass.
func ParseClass(name string) (Class, error) {
	sep := strings.LastIndex(name, classSeparator)
	if sep < 0 {
		return Class{}, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}

	color, ok := ParseColor(name[sep+len(classSeparator):])
	if !ok {
		return Class{}, fmt.Errorf("%w: %q has no known color", ErrUnknownClass, name)
	}

	if strings.HasPrefix(name, LinkPrefix) {
		return Class{Kind: ClassLink, Color: color}, nil
	}

	prefix, _, _ := strings.Cut(name, classSeparator)
	nodeType, ok := ParseNodeType(prefix)
	if !ok {
		return Class{}, fmt.Errorf("%w: %q", ErrUnknownClass, name)
	}

	return Class{Kind: ClassNode, Type: nodeType, Color: color}, nil
}

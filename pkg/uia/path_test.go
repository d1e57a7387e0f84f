package uia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainOf(props ...ElementProps) *SyntheticElement {
	// props are ordered root first; the returned element is the leaf.
	var parent Element
	var current *SyntheticElement
	for _, p := range props {
		current = &SyntheticElement{Props: p, Up: parent}
		parent = current
	}
	return current
}

func TestAncestorPathOrdersRootFirst(t *testing.T) {
	leaf := chainOf(
		ElementProps{Name: "Desktop"},
		ElementProps{Name: "Mail - Inbox"},
		ElementProps{ControlType: "Pane"},
		ElementProps{Name: "Send", ControlType: "Button"},
	)

	path := AncestorPath(leaf)
	assert.Equal(t, []string{"Desktop", "Mail - Inbox", "Pane"}, path)
}

func TestAncestorPathParentlessElement(t *testing.T) {
	root := &SyntheticElement{Props: ElementProps{Name: "Desktop"}}

	path := AncestorPath(root)
	require.NotNil(t, path)
	assert.Empty(t, path)
}

func TestAncestorPathNilElement(t *testing.T) {
	path := AncestorPath(nil)
	require.NotNil(t, path)
	assert.Empty(t, path)
}

func TestAncestorPathDepthCap(t *testing.T) {
	props := make([]ElementProps, 0, 25)
	for i := 0; i < 25; i++ {
		props = append(props, ElementProps{Name: "Level"})
	}

	path := AncestorPath(chainOf(props...))
	assert.Len(t, path, 10)
}

func TestAncestorPathStopsAtFailedParent(t *testing.T) {
	grandparent := &SyntheticElement{
		Props: ElementProps{Name: "Unreachable"},
		Fail:  map[string]FailureReason{"parent": StaleElement},
	}
	parent := &SyntheticElement{Props: ElementProps{Name: "Toolbar"}, Up: grandparent}
	leaf := &SyntheticElement{Props: ElementProps{Name: "Save"}, Up: parent}

	path := AncestorPath(leaf)
	assert.Equal(t, []string{"Unreachable", "Toolbar"}, path)
}

func TestAncestorPathStopsAtUnreadableAncestor(t *testing.T) {
	grandparent := &SyntheticElement{
		Props: ElementProps{Name: "Window"},
		Fail:  map[string]FailureReason{"name": PropertyUnavailable},
	}
	parent := &SyntheticElement{Props: ElementProps{Name: "Toolbar"}, Up: grandparent}
	leaf := &SyntheticElement{Props: ElementProps{Name: "Save"}, Up: parent}

	path := AncestorPath(leaf)
	assert.Equal(t, []string{"Toolbar"}, path)
}

func TestAncestorPathFallsBackToControlType(t *testing.T) {
	parent := &SyntheticElement{Props: ElementProps{ControlType: "ToolBar"}}
	leaf := &SyntheticElement{Props: ElementProps{Name: "Save"}, Up: parent}

	path := AncestorPath(leaf)
	assert.Equal(t, []string{"ToolBar"}, path)
}

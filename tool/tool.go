// Package tool implements spec.md §3's tablet tool identity model: a
// tuple of (tool-type, tool-id, serial, refcount, axis/button capability
// sets), shared context-wide when serial is nonzero ("the same physical
// pen may enter proximity on different tablets") and tablet-local
// otherwise.
//
// There is no tablet precedent in the retrieval pack, so this is built
// directly from spec text; it follows the same refcounted, registry-owned
// shape as device.Group (see device.go) rather than inventing a new one.
package tool

import "github.com/evseat/evseat/eventqueue"

// Capability is one bit of a tool's axis or button capability set,
// stamped from a tool-id lookup table (or a fallback per tool type) the
// moment a tool is first seen (spec.md §4.11 step 2).
type Capability uint16

const (
	CapPressure Capability = 1 << iota
	CapDistance
	CapTiltX
	CapTiltY
	CapSlider
	CapRotation
	CapRelWheel
	CapButtonStylus
	CapButtonStylus2
)

// byToolID is a small vendor lookup table keyed on the kernel-reported
// tool-id (e.g. a Wacom tool-id encodes pressure/tilt/eraser support).
// It has no entries, so every tool-id falls back to byType.
var byToolID = map[uint32]Capability{}

// byType is the fallback capability set used when a tool-id has no entry
// in byToolID (spec.md §4.11 step 2: "or, if unavailable, a fallback set
// per tool type").
var byType = map[eventqueue.ToolType]Capability{
	eventqueue.ToolPen:      CapPressure | CapDistance | CapTiltX | CapTiltY | CapButtonStylus | CapButtonStylus2,
	eventqueue.ToolEraser:   CapPressure | CapDistance,
	eventqueue.ToolBrush:    CapPressure | CapDistance | CapTiltX | CapTiltY,
	eventqueue.ToolPencil:   CapPressure,
	eventqueue.ToolAirbrush: CapPressure | CapSlider,
	eventqueue.ToolFinger:   CapDistance,
	eventqueue.ToolMouse:    CapTiltX | CapTiltY | CapRotation | CapRelWheel | CapButtonStylus,
	eventqueue.ToolLens:     CapTiltX | CapTiltY | CapRotation,
}

func capabilitiesFor(typ eventqueue.ToolType, toolID uint32) Capability {
	if c, ok := byToolID[toolID]; ok {
		return c
	}
	return byType[typ]
}

// Has reports whether c includes bit.
func (c Capability) Has(bit Capability) bool { return c&bit != 0 }

// Tool is one tracked tablet tool instance.
type Tool struct {
	Type   eventqueue.ToolType
	ToolID uint32
	Serial uint64

	Axes    Capability
	refs    int32
}

// Ref returns the stable identity this tool is addressed by in outgoing
// events (eventqueue.ToolRef).
func (t *Tool) Ref() eventqueue.ToolRef {
	return eventqueue.ToolRef{Type: t.Type, ToolID: t.ToolID, Serial: t.Serial}
}

func newTool(typ eventqueue.ToolType, toolID uint32, serial uint64) *Tool {
	return &Tool{Type: typ, ToolID: toolID, Serial: serial, Axes: capabilitiesFor(typ, toolID)}
}

type key struct {
	typ    eventqueue.ToolType
	toolID uint32
	serial uint64
}

// Registry is a context-global table of serial-identified tools (spec.md
// §3: "tools with serial numbers are context-scoped"). One Registry lives
// on Context and is shared by every tablet Engine.
type Registry struct {
	tools map[key]*Tool
}

// NewRegistry returns an empty global tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[key]*Tool)}
}

// LookupOrCreate returns the tool identified by (typ, toolID, serial),
// creating and capability-stamping it on first sight, and increments its
// refcount. serial must be nonzero; callers with serial == 0 must use a
// tablet-local Table instead (spec.md §3's "local to one tablet" tools).
func (r *Registry) LookupOrCreate(typ eventqueue.ToolType, toolID uint32, serial uint64) *Tool {
	k := key{typ, toolID, serial}
	t, ok := r.tools[k]
	if !ok {
		t = newTool(typ, toolID, serial)
		r.tools[k] = t
	}
	t.refs++
	return t
}

// Release decrements a tool's refcount, dropping it from the registry
// once no tablet references it any longer.
func (r *Registry) Release(t *Tool) {
	t.refs--
	if t.refs <= 0 {
		delete(r.tools, key{t.Type, t.ToolID, t.Serial})
	}
}

// Table is a single tablet's local registry for serial == 0 tools (not
// shared across tablets, since such a tool has no globally stable
// identity to share).
type Table struct {
	tools map[key]*Tool
}

// NewTable returns an empty tablet-local tool table.
func NewTable() *Table {
	return &Table{tools: make(map[key]*Tool)}
}

// LookupOrCreate is Table's local-scope analog of Registry.LookupOrCreate.
func (t *Table) LookupOrCreate(typ eventqueue.ToolType, toolID uint32) *Tool {
	k := key{typ, toolID, 0}
	tool, ok := t.tools[k]
	if !ok {
		tool = newTool(typ, toolID, 0)
		t.tools[k] = tool
	}
	tool.refs++
	return tool
}

// Release drops a local tool once its tablet no longer needs it.
func (t *Table) Release(tool *Tool) {
	tool.refs--
	if tool.refs <= 0 {
		delete(t.tools, key{tool.Type, tool.ToolID, 0})
	}
}

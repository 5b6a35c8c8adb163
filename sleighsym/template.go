package sleighsym

import "github.com/lookbusy1344/sleigh-lift/space"

// VarnodeTemplateKind discriminates how a template operand resolves
// to a concrete varnode at emission time.
type VarnodeTemplateKind int

const (
	VTFixed VarnodeTemplateKind = iota
	VTHandleRef
	VTRelativeLabel
	VTUnique
)

// HandleSelector picks which field of a resolved OperandHandle a
// Handle-ref varnode-template reads.
type HandleSelector int

const (
	SelectSpace HandleSelector = iota
	SelectOffset
	SelectSize
)

// VarnodeTemplate is one operand slot of an OpTemplate.
type VarnodeTemplate struct {
	Kind VarnodeTemplateKind

	// VTFixed
	Fixed space.Varnode

	// VTHandleRef
	OperandIndex int
	Selector     HandleSelector

	// VTRelativeLabel
	LabelIndex int

	// VTUnique: size in bytes of the fresh temporary.
	Size uint32
}

// OpTemplate is one entry of a constructor's semantic template.
// BUILD/DELAY_SLOT/LABEL are handled structurally by the emitter
// rather than becoming ordinary PCodeOps; RawOpcode carries the
// literal opcode name so the emitter can detect and reject the
// reserved opcodes (CROSS_BUILD, CPOOL_REF, SEGMENT, NEW, INSERT,
// EXTRACT, PIECE, CAST) that a supported architecture never produces.
type OpTemplate struct {
	RawOpcode string
	Out       *VarnodeTemplate
	In        []VarnodeTemplate

	IsBuild      bool
	BuildOperand int

	IsDelaySlot bool

	IsLabel    bool
	LabelIndex int
}

// SemanticTemplate is a constructor's fixed op-template list plus an
// optional result varnode-template (the handle a parent constructor
// inherits when this constructor is used as a subtable operand).
type SemanticTemplate struct {
	Ops    []OpTemplate
	Result *VarnodeTemplate
}

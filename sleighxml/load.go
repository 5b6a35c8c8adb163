package sleighxml

import (
	"encoding/xml"
	"io"
	"strconv"

	"github.com/lookbusy1344/sleigh-lift/lifterror"
	"github.com/lookbusy1344/sleigh-lift/pattern"
	"github.com/lookbusy1344/sleigh-lift/sfloat"
	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/space"
)

// Load decodes a `<sleigh>` specification document into a fully
// cross-referenced sleighsym.Program: address spaces and registers,
// the context database's declared variables, the flat symbol table,
// and every subtable's constructors and decision tree.
func Load(r io.Reader) (*sleighsym.Program, error) {
	var doc xmlDoc
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &lifterror.DeserialiseError{Kind: lifterror.XMLError, Detail: "decoding sleigh document", Wrapped: err}
	}
	return build(&doc)
}

func parseSpaceKind(s string) space.Kind {
	switch s {
	case "ram":
		return space.RAM
	case "register":
		return space.Register
	case "unique":
		return space.Unique
	case "const", "constant":
		return space.Constant
	default:
		return space.Other
	}
}

// loadFloatFormats converts the document's <floatformat> elements, or
// falls back to the IEEE-754 single/double defaults when the
// specification declares none.
func loadFloatFormats(doc *xmlDoc) []sfloat.FloatFormat {
	if len(doc.FloatFormats) == 0 {
		return []sfloat.FloatFormat{sfloat.IEEEFloat32Format, sfloat.IEEEFloat64Format}
	}
	formats := make([]sfloat.FloatFormat, len(doc.FloatFormats))
	for i, f := range doc.FloatFormats {
		formats[i] = sfloat.FloatFormat{
			SizeBytes:   uint32(mustUint(f.Size, 4)),
			SignPos:     uint32(mustUint(f.SignPos, 31)),
			ExpPos:      uint32(mustUint(f.ExpPos, 23)),
			ExpSize:     uint32(mustUint(f.ExpSize, 8)),
			FracPos:     uint32(mustUint(f.FracPos, 0)),
			FracSize:    uint32(mustUint(f.FracSize, 23)),
			Bias:        int32(mustInt(f.Bias, 127)),
			JBitImplied: f.JBitImplied,
			ExpMax:      mustUint(f.ExpMax, 0xFF),
		}
	}
	return formats
}

func computeContextWords(doc *xmlDoc) int {
	words := int(mustUint(doc.NumSections, 0))
	for _, c := range doc.SymbolTable.Contexts {
		bitEnd := mustUint(c.ContextField.BitEnd, 0)
		need := int(bitEnd/32) + 1
		if need > words {
			words = need
		}
	}
	if words < 1 {
		words = 1
	}
	return words
}

// loader carries the build pass's running state: the program under
// construction, its space manager, and the xml-id -> internal-id
// mapping that resolves the document's forward references.
type loader struct {
	prog   *sleighsym.Program
	spaces *space.Manager
	idMap  map[string]int
}

func build(doc *xmlDoc) (*sleighsym.Program, error) {
	spaces := space.NewManager()
	for i, sp := range doc.Spaces.Space {
		kind := parseSpaceKind(sp.Kind)
		addrSize := uint32(mustUint(sp.AddressSize, 0))
		wordSize := uint32(mustUint(sp.WordSize, 1))
		if kind == space.RAM && addrSize == 0 {
			addrSize = 4
		}
		spaces.Add(space.NewSpace(sp.Name, i, kind, sp.BigEndian, addrSize, wordSize))
	}
	registerSpace, _ := spaces.ByName("register")
	registers := space.NewRegisterTable(registerSpace)
	for _, r := range doc.Spaces.Register {
		registers.Register(r.Name, mustUint(r.Offset, 0), uint32(mustUint(r.Size, 4)))
	}

	ctxdb := sleighctx.NewDatabase(computeContextWords(doc))

	prog := sleighsym.NewProgram(doc.Name, spaces, registers, ctxdb)
	prog.AlignBytes = uint32(mustUint(doc.Align, 1))
	prog.BigEndian = doc.BigEndian
	prog.FloatFormats = loadFloatFormats(doc)
	prog.UniqueBase = mustUint(doc.UniqBase, 0)
	prog.UniqueMask = mustUint(doc.UniqMask, 0xFFFFFFFFFFFFFFFF)
	prog.MaxDelay = int(mustInt(doc.MaxDelay, 0))

	l := &loader{prog: prog, spaces: spaces, idMap: map[string]int{}}
	if err := l.loadSymbols(doc, ctxdb); err != nil {
		return nil, err
	}
	if err := l.loadSubtables(doc); err != nil {
		return nil, err
	}
	return prog, nil
}

// addSym registers a new symbol under xmlID, returning it for the
// caller to fill in kind-specific fields.
func (l *loader) addSym(xmlID, scope, name string, kind sleighsym.Kind) *sleighsym.Symbol {
	sym := &sleighsym.Symbol{ID: len(l.prog.Symbols), Scope: int(mustInt(scope, 0)), Name: name, Kind: kind}
	l.prog.AddSymbol(sym)
	l.idMap[xmlID] = sym.ID
	return sym
}

// loadSymbols performs the first build pass: every symbol gets an
// internal id and its self-contained fields populated, deferring
// only the cross-symbol table references (valueof/nameof/listof) to
// a short second pass once every id is known.
func (l *loader) loadSymbols(doc *xmlDoc, ctxdb *sleighctx.Database) error {
	st := &doc.SymbolTable

	for _, u := range st.UserOps {
		sym := l.addSym(u.ID, u.Scope, u.Name, sleighsym.KindUserOp)
		sym.UserOpIndex = int(mustInt(u.Index, 0))
	}
	for _, e := range st.Epsilons {
		l.addSym(e.ID, e.Scope, e.Name, sleighsym.KindEpsilon)
	}
	for _, v := range st.Values {
		sym := l.addSym(v.ID, v.Scope, v.Name, sleighsym.KindValue)
		tf := toTokenField(v.TokenField)
		sym.TokenField = &tf
	}
	for _, c := range st.Contexts {
		sym := l.addSym(c.ID, c.Scope, c.Name, sleighsym.KindContext)
		cf := toContextField(c.ContextField)
		sym.ContextField = &cf
		ctxdb.DefineVariable(sleighctx.Variable{Name: c.Name, BitStart: cf.BitStart, BitEnd: cf.BitEnd + 1, Signed: cf.Signed})
	}
	for _, v := range st.Varnodes {
		sym := l.addSym(v.ID, v.Scope, v.Name, sleighsym.KindVarnode)
		sp, _ := l.spaces.ByName(v.Space)
		size := uint32(mustUint(v.Size, 4))
		offset := mustUint(v.Offset, 0)
		sym.Varnode = space.Varnode{Space: sp, Offset: offset, Size: size}
		if sp != nil && sp.Kind == space.Register {
			l.prog.Registers.Register(v.Name, offset, size)
		}
	}
	for _, v := range st.ValueMaps {
		sym := l.addSym(v.ID, v.Scope, v.Name, sleighsym.KindValueMap)
		table := make([]int64, len(v.Entries))
		for i, e := range v.Entries {
			if e.Value == "unfilled" {
				table[i] = sleighsym.UnfilledSentinel
				continue
			}
			n, err := parseInt(e.Value, 0)
			if err != nil {
				return err
			}
			table[i] = n
		}
		sym.ValueMapTable = table
	}
	for _, n := range st.Names {
		sym := l.addSym(n.ID, n.Scope, n.Name, sleighsym.KindName)
		table := make([]string, len(n.Entries))
		for i, e := range n.Entries {
			table[i] = e.Name
		}
		sym.NameTable = table
	}
	for _, v := range st.Varlists {
		sym := l.addSym(v.ID, v.Scope, v.Name, sleighsym.KindVarnodeList)
		table := make([]space.Varnode, len(v.Entries))
		for i, e := range v.Entries {
			sp, _ := l.spaces.ByName(e.Space)
			table[i] = space.Varnode{Space: sp, Offset: mustUint(e.Offset, 0), Size: uint32(mustUint(e.Size, 4))}
		}
		sym.VarnodeList = table
	}
	for _, o := range st.Operands {
		l.addSym(o.ID, o.Scope, o.Name, sleighsym.KindOperand)
	}
	for _, s := range st.Starts {
		l.addSym(s.ID, s.Scope, s.Name, sleighsym.KindStart)
	}
	for _, e := range st.Ends {
		l.addSym(e.ID, e.Scope, e.Name, sleighsym.KindEnd)
	}
	for _, f := range st.FlowDests {
		l.addSym(f.ID, f.Scope, f.Name, sleighsym.KindFlowDest)
	}
	for _, f := range st.FlowRefs {
		l.addSym(f.ID, f.Scope, f.Name, sleighsym.KindFlowRef)
	}
	// subtable_sym symbols are registered here (so forward references
	// from sibling subtables resolve), their Subtable body is attached
	// during loadSubtables.
	for _, s := range st.Subtables {
		l.addSym(s.ID, s.Scope, s.Name, sleighsym.KindSubtable)
	}

	// Second pass: resolve valueof/nameof/listof now that every id in
	// idMap is known.
	for _, v := range st.ValueMaps {
		sym := l.prog.Symbol(l.idMap[v.ID])
		if ref, ok := l.idMap[v.ValueOf]; ok {
			sym.ValueMapOf = ref
		}
	}
	for _, n := range st.Names {
		sym := l.prog.Symbol(l.idMap[n.ID])
		if ref, ok := l.idMap[n.NameOf]; ok {
			sym.NameOf = ref
		}
	}
	for _, v := range st.Varlists {
		sym := l.prog.Symbol(l.idMap[v.ID])
		if ref, ok := l.idMap[v.ListOf]; ok {
			sym.VarnodeOf = ref
		}
	}
	return nil
}

// exprForSymbol derives the pattern expression an operand referencing
// sym should evaluate: sym's own field definition for value/context
// symbols, the underlying value symbol's definition for the table
// kinds that index by it, and the fixed start/end expressions for
// start_sym/end_sym. Kinds with no dynamic value (varnode_sym,
// epsilon, subtables handled separately by the resolver) get a
// harmless constant.
func (l *loader) exprForSymbol(sym *sleighsym.Symbol) sleighsym.PatternExpression {
	if sym == nil {
		return sleighsym.ConstExpr{Value: 0}
	}
	switch sym.Kind {
	case sleighsym.KindValue:
		if sym.TokenField != nil {
			return *sym.TokenField
		}
	case sleighsym.KindContext:
		if sym.ContextField != nil {
			return *sym.ContextField
		}
	case sleighsym.KindValueMap:
		return l.exprForSymbol(l.prog.Symbol(sym.ValueMapOf))
	case sleighsym.KindName:
		return l.exprForSymbol(l.prog.Symbol(sym.NameOf))
	case sleighsym.KindVarnodeList:
		return l.exprForSymbol(l.prog.Symbol(sym.VarnodeOf))
	case sleighsym.KindStart:
		return sleighsym.StartExpr{}
	case sleighsym.KindEnd:
		return sleighsym.EndExpr{}
	}
	return sleighsym.ConstExpr{Value: 0}
}

func (l *loader) loadSubtables(doc *xmlDoc) error {
	for _, st := range doc.SymbolTable.Subtables {
		subtable := &sleighsym.Subtable{Name: st.Name}
		stID := l.prog.AddSubtable(subtable)
		sym := l.prog.Symbol(l.idMap[st.ID])
		sym.Subtable = subtable
		if st.Root {
			l.prog.RootSubtable = stID
		}

		localConstructorIDs := map[string]int{}
		for _, xc := range st.Constructors {
			c, err := l.buildConstructor(stID, xc)
			if err != nil {
				return err
			}
			cID := l.prog.AddConstructor(c)
			subtable.Constructors = append(subtable.Constructors, c)
			localConstructorIDs[xc.ID] = cID
		}

		decision, err := l.buildDecision(st.Decision, localConstructorIDs)
		if err != nil {
			return err
		}
		subtable.Decision = decision
	}
	return nil
}

func (l *loader) buildConstructor(subtableID int, xc xmlConstructor) (*sleighsym.Constructor, error) {
	c := &sleighsym.Constructor{SubtableID: subtableID}
	im, iv, cm, cv, impossible, err := toPattern(xc.Pattern)
	if err != nil {
		return nil, err
	}
	c.Pattern = pattern.Pattern{InstrMask: im, InstrValue: iv, CtxMask: cm, CtxValue: cv, Impossible: impossible}
	c.MinLength = uint32(mustUint(xc.MinLength, 0))
	c.DelaySlotCount = int(mustInt(xc.DelaySlotCount, 0))

	for _, xo := range xc.Operands {
		idx := int(mustInt(xo.Index, 0))
		def := sleighsym.OperandDef{Index: idx, MinLength: uint32(mustUint(xo.MinLength, 0)), DefiningSymbol: -1}
		if xo.AbsoluteBase != "" {
			def.HasAbsoluteBase = true
			def.AbsoluteBase = mustInt(xo.AbsoluteBase, 0)
		} else {
			def.HasRelativeOffset = true
			def.RelativeOffset = mustInt(xo.RelativeOffset, 0)
		}
		if xo.Symbol != "" {
			symID, ok := l.idMap[xo.Symbol]
			if !ok {
				return nil, &lifterror.DeserialiseError{Kind: lifterror.Invariant, Detail: "operand references unknown symbol id " + strconv.Quote(xo.Symbol)}
			}
			def.DefiningSymbol = symID
			def.DefiningExpr = l.exprForSymbol(l.prog.Symbol(symID))
		} else {
			expr, err := toPatternExpr(xo.Expr)
			if err != nil {
				return nil, err
			}
			def.DefiningExpr = expr
		}
		for len(c.Operands) <= idx {
			c.Operands = append(c.Operands, sleighsym.OperandDef{Index: len(c.Operands), DefiningSymbol: -1, DefiningExpr: sleighsym.ConstExpr{}})
		}
		c.Operands[idx] = def
	}

	for _, xp := range xc.PrintPieces {
		if xp.Kind == "operand" {
			c.PrintPieces = append(c.PrintPieces, sleighsym.PrintPiece{IsOperand: true, OperandIndex: int(mustInt(xp.Index, 0))})
		} else {
			c.PrintPieces = append(c.PrintPieces, sleighsym.PrintPiece{Literal: xp.Text})
		}
	}

	for _, xco := range xc.ContextOps {
		valExpr, err := toPatternExpr(&xco.Value.Expr)
		if err != nil {
			return nil, err
		}
		var addrExpr sleighsym.PatternExpression
		if xco.Address != nil {
			addrExpr, err = toPatternExpr(&xco.Address.Expr)
			if err != nil {
				return nil, err
			}
		}
		c.ContextOps = append(c.ContextOps, sleighsym.ContextOp{
			WordIndex:   int(mustInt(xco.WordIndex, 0)),
			Mask:        uint32(mustUint(xco.Mask, 0)),
			Value:       valExpr,
			Flow:        xco.Flow,
			AddressExpr: addrExpr,
		})
	}

	if xc.Template != nil {
		tmpl, err := l.buildTemplate(xc.Template)
		if err != nil {
			return nil, err
		}
		c.Template = tmpl
	}
	return c, nil
}

func (l *loader) toVarnodeTemplate(x xmlVarnodeTemplate) (sleighsym.VarnodeTemplate, error) {
	switch x.Kind {
	case "fixed":
		sp, _ := l.spaces.ByName(x.Space)
		return sleighsym.VarnodeTemplate{
			Kind:  sleighsym.VTFixed,
			Fixed: space.Varnode{Space: sp, Offset: mustUint(x.Offset, 0), Size: uint32(mustUint(x.Size, 4))},
		}, nil
	case "handleref":
		sel := sleighsym.SelectSpace
		switch x.Selector {
		case "offset":
			sel = sleighsym.SelectOffset
		case "size":
			sel = sleighsym.SelectSize
		}
		return sleighsym.VarnodeTemplate{Kind: sleighsym.VTHandleRef, OperandIndex: int(mustInt(x.Operand, 0)), Selector: sel}, nil
	case "label":
		return sleighsym.VarnodeTemplate{Kind: sleighsym.VTRelativeLabel, LabelIndex: int(mustInt(x.LabelIndex, 0))}, nil
	case "unique":
		return sleighsym.VarnodeTemplate{Kind: sleighsym.VTUnique, Size: uint32(mustUint(x.Size, 4))}, nil
	default:
		return sleighsym.VarnodeTemplate{}, &lifterror.DeserialiseError{Kind: lifterror.TagUnexpected, Detail: "unknown varnode-template kind " + strconv.Quote(x.Kind)}
	}
}

func (l *loader) buildTemplate(xt *xmlTemplate) (*sleighsym.SemanticTemplate, error) {
	tmpl := &sleighsym.SemanticTemplate{}
	if xt.Result != nil {
		vt, err := l.toVarnodeTemplate(*xt.Result)
		if err != nil {
			return nil, err
		}
		tmpl.Result = &vt
	}
	for _, xo := range xt.Ops {
		op := sleighsym.OpTemplate{
			RawOpcode:   xo.Opcode,
			IsBuild:     xo.Build,
			IsDelaySlot: xo.DelaySlot,
			IsLabel:     xo.Label,
		}
		if xo.Build {
			op.BuildOperand = int(mustInt(xo.BuildOperand, 0))
		}
		if xo.Label {
			op.LabelIndex = int(mustInt(xo.LabelIndex, 0))
		}
		if xo.Out != nil {
			vt, err := l.toVarnodeTemplate(*xo.Out)
			if err != nil {
				return nil, err
			}
			op.Out = &vt
		}
		for _, xi := range xo.In {
			vt, err := l.toVarnodeTemplate(xi)
			if err != nil {
				return nil, err
			}
			op.In = append(op.In, vt)
		}
		tmpl.Ops = append(tmpl.Ops, op)
	}
	return tmpl, nil
}

func (l *loader) buildDecision(xd xmlDecision, localIDs map[string]int) (pattern.DecisionNode, error) {
	switch {
	case xd.Leaf != nil:
		var entries []pattern.LeafEntry
		for _, e := range xd.Leaf.Entries {
			cid, ok := localIDs[e.Constructor]
			if !ok {
				return nil, &lifterror.DeserialiseError{Kind: lifterror.Invariant, Detail: "decision leaf references unknown constructor id " + strconv.Quote(e.Constructor)}
			}
			im, iv, cm, cv, impossible, err := toPattern(e.Pattern)
			if err != nil {
				return nil, err
			}
			entries = append(entries, pattern.LeafEntry{
				Pattern:          pattern.Pattern{InstrMask: im, InstrValue: iv, CtxMask: cm, CtxValue: cv, Impossible: impossible},
				ConstructorIndex: cid,
			})
		}
		return pattern.Leaf{Entries: entries}, nil
	case xd.Internal != nil:
		axis := pattern.AxisInstruction
		if xd.Internal.Axis == "context" {
			axis = pattern.AxisContext
		}
		var children []pattern.DecisionNode
		for _, c := range xd.Internal.Children {
			child, err := l.buildDecision(c, localIDs)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return pattern.Internal{
			StartBit: uint32(mustUint(xd.Internal.StartBit, 0)),
			NumBits:  uint32(mustUint(xd.Internal.NumBits, 0)),
			Axis:     axis,
			Children: children,
		}, nil
	default:
		return nil, &lifterror.DeserialiseError{Kind: lifterror.Invariant, Detail: "decision node has neither leaf nor internal child"}
	}
}

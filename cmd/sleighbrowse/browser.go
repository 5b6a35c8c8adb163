package main

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/sleigh-lift/sleighctx"
	"github.com/lookbusy1344/sleigh-lift/sleighsym"
	"github.com/lookbusy1344/sleigh-lift/translator"
)

// Browser is the TUI application: a subtable/constructor tree on the
// left, a detail pane and a live hex-decode pane on the right. The
// panel layout is a bordered Flex composition around a loaded
// translator.Translator, with no running execution state to show.
type Browser struct {
	T   *translator.Translator
	Ctx *sleighctx.Database

	App  *tview.Application
	Tree *tview.TreeView

	InfoView        *tview.TextView
	DisassemblyView *tview.TextView
	OutputView      *tview.TextView

	AddrInput  *tview.InputField
	BytesInput *tview.InputField
}

// NewBrowser builds the TUI around t, with its own cloned context
// database so decode requests here never mutate t.Prog.Context.
func NewBrowser(t *translator.Translator) *Browser {
	b := &Browser{T: t, Ctx: t.Prog.Context.Clone(), App: tview.NewApplication()}
	b.initViews()
	root := b.buildTree()
	b.Tree.SetRoot(root).SetCurrentNode(root)
	b.App.SetRoot(b.layout(), true).SetFocus(b.Tree)
	return b
}

func (b *Browser) initViews() {
	b.Tree = tview.NewTreeView()
	b.Tree.SetBorder(true).SetTitle(" Subtables / Constructors ")

	b.InfoView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	b.InfoView.SetBorder(true).SetTitle(" Constructor Detail ")

	b.DisassemblyView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	b.DisassemblyView.SetBorder(true).SetTitle(" Decode ")

	b.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	b.OutputView.SetBorder(true).SetTitle(" Output ")

	b.AddrInput = tview.NewInputField().SetLabel("addr (hex) ").SetFieldWidth(18)
	b.AddrInput.SetBorder(true).SetTitle(" Address ")

	b.BytesInput = tview.NewInputField().SetLabel("bytes (hex) ").SetFieldWidth(0)
	b.BytesInput.SetBorder(true).SetTitle(" Bytes ")
	b.BytesInput.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			b.decode()
		}
	})

	b.Tree.SetSelectedFunc(func(node *tview.TreeNode) {
		b.showDetail(node)
	})
}

func (b *Browser) layout() tview.Primitive {
	decodeInputs := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(b.AddrInput, 0, 1, false).
		AddItem(b.BytesInput, 0, 2, true)

	rightPanel := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(b.InfoView, 0, 2, false).
		AddItem(b.DisassemblyView, 0, 2, false).
		AddItem(decodeInputs, 3, 0, true)

	mainContent := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(b.Tree, 0, 1, false).
		AddItem(rightPanel, 0, 2, true)

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, true).
		AddItem(b.OutputView, 6, 0, false)
}

func (b *Browser) buildTree() *tview.TreeNode {
	prog := b.T.Prog
	root := tview.NewTreeNode(fmt.Sprintf("%s (%s)", prog.Name, b.T.Arch.Processor)).
		SetColor(tcell.ColorYellow)

	order := make([]int, len(prog.Subtables))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool { return prog.Subtables[order[i]].Name < prog.Subtables[order[j]].Name })

	for _, idx := range order {
		st := prog.Subtables[idx]
		label := st.Name
		if idx == prog.RootSubtable {
			label += " [root]"
		}
		stNode := tview.NewTreeNode(label).SetReference(st).SetSelectable(true)
		for _, c := range st.Constructors {
			cNode := tview.NewTreeNode(fmt.Sprintf("#%d %s", c.ID, constructorPreview(c))).
				SetReference(c).SetSelectable(true)
			stNode.AddChild(cNode)
		}
		root.AddChild(stNode)
	}
	return root
}

func constructorPreview(c *sleighsym.Constructor) string {
	var sb strings.Builder
	for _, p := range c.PrintPieces {
		if p.IsOperand {
			sb.WriteString(fmt.Sprintf("{%d}", p.OperandIndex))
		} else {
			sb.WriteString(p.Literal)
		}
	}
	if sb.Len() == 0 {
		return "(empty)"
	}
	return sb.String()
}

func (b *Browser) showDetail(node *tview.TreeNode) {
	ref := node.GetReference()
	switch v := ref.(type) {
	case *sleighsym.Subtable:
		b.InfoView.SetText(fmt.Sprintf("subtable %q\nid: %d\nconstructors: %d", v.Name, v.ID, len(v.Constructors)))
	case *sleighsym.Constructor:
		var sb strings.Builder
		fmt.Fprintf(&sb, "constructor #%d (subtable %d)\n", v.ID, v.SubtableID)
		fmt.Fprintf(&sb, "min length: %d  delay slots: %d\n", v.MinLength, v.DelaySlotCount)
		fmt.Fprintf(&sb, "print: %s\n", constructorPreview(v))
		fmt.Fprintf(&sb, "operands: %d  context ops: %d\n", len(v.Operands), len(v.ContextOps))
		if v.Template != nil {
			fmt.Fprintf(&sb, "template ops: %d\n", len(v.Template.Ops))
		}
		b.InfoView.SetText(sb.String())
	default:
		b.InfoView.SetText("")
	}
}

func (b *Browser) decode() {
	addrStr := strings.TrimSpace(b.AddrInput.GetText())
	bytesStr := strings.TrimSpace(b.BytesInput.GetText())

	addrStr = strings.TrimPrefix(strings.TrimPrefix(addrStr, "0x"), "0X")
	if addrStr == "" {
		addrStr = "0"
	}
	addr, err := strconv.ParseUint(addrStr, 16, 64)
	if err != nil {
		b.writeOutput(fmt.Sprintf("[red]invalid address: %v[white]\n", err))
		return
	}

	bytesStr = strings.ReplaceAll(bytesStr, " ", "")
	raw, err := hex.DecodeString(bytesStr)
	if err != nil {
		b.writeOutput(fmt.Sprintf("[red]invalid bytes: %v[white]\n", err))
		return
	}

	inst, err := b.T.Disassemble(b.Ctx, addr, raw)
	if err != nil {
		b.DisassemblyView.SetText(fmt.Sprintf("[red]decode failed: %v[white]", err))
		return
	}

	pcode, pcErr := b.T.LiftPCode(b.Ctx, addr, raw)

	var sb strings.Builder
	fmt.Fprintf(&sb, "0x%x: %s  (%d bytes, %d delay slots)\n\n", inst.Addr, inst.Text, inst.Len, inst.DelaySlots)
	if pcErr == nil {
		sb.WriteString("p-code:\n")
		for _, op := range pcode.Ops {
			fmt.Fprintf(&sb, "  %s\n", op)
		}
	}
	b.DisassemblyView.SetText(sb.String())
	b.writeOutput(fmt.Sprintf("decoded 0x%x\n", addr))
}

func (b *Browser) writeOutput(text string) {
	fmt.Fprint(b.OutputView, text)
	b.OutputView.ScrollToEnd()
}

// Run starts the TUI event loop.
func (b *Browser) Run() error {
	b.writeOutput("[green]sleigh-lift decision-tree browser[white]\n")
	b.writeOutput("Select a subtable/constructor on the left; type bytes and press Enter to decode.\n")
	return b.App.Run()
}

// Stop shuts the TUI down.
func (b *Browser) Stop() {
	b.App.Stop()
}

package ui

import (
	"fmt"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"gtr/internal/domain"
	"gtr/internal/grouping"
)

var strategyKeys = map[rune]grouping.Strategy{
	'c': grouping.ByCategory,
	'o': grouping.ByOutcome,
	'd': grouping.ByDuration,
}

// Browser shows the grouped test tree next to the details of the selected
// node. All methods except Dispatch must run on the tview event loop.
type Browser struct {
	app      *tview.Application
	view     *tview.TreeView
	details  *tview.TextView
	header   *tview.TextView
	footer   *tview.TextView
	layout   *tview.Flex
	renderer *TreeRenderer

	tree     *grouping.Tree
	results  ResultLookup
	failures map[string]domain.TestFailure
	status   string

	onStrategy func(grouping.Strategy)
	onCancel   func()
	onReload   func()
	stopped    atomic.Bool
}

// NewBrowser creates the browser layout. results supplies the details pane.
func NewBrowser(title string, results ResultLookup) *Browser {
	b := &Browser{
		app:      tview.NewApplication(),
		renderer: NewTreeRenderer(title),
		results:  results,
		failures: make(map[string]domain.TestFailure),
	}

	b.view = tview.NewTreeView().
		SetRoot(b.renderer.Root()).
		SetTopLevel(1).
		SetGraphics(true)
	b.view.SetSelectedFunc(func(node *tview.TreeNode) {
		node.SetExpanded(!node.IsExpanded())
	})
	b.view.SetChangedFunc(func(*tview.TreeNode) {
		b.updateDetails()
	})

	b.details = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(b.details, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(b.view, 0, 1, true).
		AddItem(detailsContainer, 0, 1, false)

	b.header = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)
	b.footer = tview.NewTextView().
		SetDynamicColors(true)

	b.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(b.header, 1, 0, false).
		AddItem(body, 0, 1, true).
		AddItem(b.footer, 1, 0, false)

	b.view.SetInputCapture(b.handleTreeKey)
	b.details.SetInputCapture(b.handleDetailsKey)
	b.updateHeader()
	return b
}

// Dispatch runs fn on the event loop and redraws. Safe from any goroutine.
// Calls after the event loop has exited are dropped.
func (b *Browser) Dispatch(fn func()) {
	if b.stopped.Load() {
		return
	}
	b.app.QueueUpdateDraw(fn)
}

// OnStrategy registers the handler for the c, o and d keys
func (b *Browser) OnStrategy(fn func(grouping.Strategy)) { b.onStrategy = fn }

// OnCancel registers the handler for the x key
func (b *Browser) OnCancel(fn func()) { b.onCancel = fn }

// OnReload registers the handler for the r key
func (b *Browser) OnReload(fn func()) { b.onReload = fn }

// AddFailures makes failure details available to the details pane
func (b *Browser) AddFailures(failures ...domain.TestFailure) {
	for _, f := range failures {
		if f.TestID != "" {
			b.failures[f.TestID] = f
		}
	}
	b.updateDetails()
}

// SetStatus replaces the footer text
func (b *Browser) SetStatus(status string) {
	b.status = status
	b.footer.SetText(" " + status)
}

// Apply shows tree after a rebuild, or after an incremental regroup that
// made changes
func (b *Browser) Apply(tree *grouping.Tree, rebuilt bool, changes grouping.Changes) {
	var selected *grouping.Node
	if current := b.view.GetCurrentNode(); current != nil && !rebuilt {
		selected, _ = current.GetReference().(*grouping.Node)
	}

	if rebuilt || tree != b.tree {
		b.renderer.Sync(tree, true)
	} else {
		b.renderer.Update(tree, changes)
	}
	b.tree = tree

	current := b.view.GetCurrentNode()
	if !b.renderer.Owns(current) || current == b.renderer.Root() {
		b.view.SetCurrentNode(b.firstSelectable(selected))
	}
	b.updateHeader()
	b.updateDetails()
}

// firstSelectable picks the group of a vanished selection, or the first group
func (b *Browser) firstSelectable(previous *grouping.Node) *tview.TreeNode {
	if b.tree == nil {
		return nil
	}
	if previous != nil {
		if g := b.tree.Group(previous.Group().Name()); g != nil {
			if w := b.renderer.Widget(g.ID()); w != nil {
				return w
			}
		}
	}
	for _, g := range b.tree.Groups() {
		if w := b.renderer.Widget(g.ID()); w != nil {
			return w
		}
	}
	return nil
}

// Run starts the event loop and blocks until Stop
func (b *Browser) Run() error {
	defer b.stopped.Store(true)
	if err := b.app.SetRoot(b.layout, true).SetFocus(b.view).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Stop ends the event loop
func (b *Browser) Stop() {
	b.app.Stop()
}

func (b *Browser) handleTreeKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyRight:
		b.app.SetFocus(b.details)
		return nil
	case tcell.KeyCtrlC:
		b.app.Stop()
		return nil
	case tcell.KeyRune:
		r := event.Rune()
		if s, ok := strategyKeys[r]; ok {
			if b.onStrategy != nil {
				b.onStrategy(s)
			}
			return nil
		}
		switch r {
		case 'x':
			if b.onCancel != nil {
				b.onCancel()
			}
			return nil
		case 'r':
			if b.onReload != nil {
				b.onReload()
			}
			return nil
		case 'q':
			b.app.Stop()
			return nil
		}
	}
	return event
}

func (b *Browser) handleDetailsKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyLeft, tcell.KeyEsc:
		b.app.SetFocus(b.view)
		return nil
	case tcell.KeyCtrlC:
		b.app.Stop()
		return nil
	}
	return event
}

func (b *Browser) updateHeader() {
	strategy, tests := "-", 0
	if b.tree != nil {
		strategy = b.tree.Strategy().String()
		tests = b.tree.LeafCount()
	}
	b.header.SetText(fmt.Sprintf(
		" Grouped by [yellow]%s[white] | %d tests | [yellow]c[white]/[yellow]o[white]/[yellow]d[white] regroup, [yellow]x[white] cancel run, → details, [yellow]q[white] quit ",
		strategy, tests,
	))
}

func (b *Browser) updateDetails() {
	current := b.view.GetCurrentNode()
	if current == nil {
		b.details.SetText("")
		return
	}
	n, _ := current.GetReference().(*grouping.Node)
	b.details.SetText(formatNodeDetails(b.tree, n, b.results, b.failures))
}

package view

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/jroimartin/gocui"
	"github.com/logrusorgru/aurora"

	"gpu-ca/internal/app"
	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
	"gpu-ca/internal/ui"
)

type keyBinding struct {
	key      interface{}
	name     string
	descr    string
	handler  func(v *gocui.View) error
	viewName string
}

// Terminal is an interactive text front end over the resident automata.
type Terminal struct {
	mu      sync.Mutex
	modes   *app.Modes
	dev     compute.Device
	surface []byte
	running bool
	step    bool
	err     error

	pace    *core.FixedStep

	g    *gocui.Gui
	k    []keyBinding
	done chan struct{}
}

const (
	frameInterval = time.Second / 30
	// maxCatchUp bounds the generations computed in one frame when updates
	// fall behind the target rate.
	maxCatchUp = 8
)

// NewTerminal builds the terminal UI. tps bounds how many generations are
// computed per second while running.
func NewTerminal(modes *app.Modes, dev compute.Device, tps int) (*Terminal, error) {
	if tps <= 0 {
		tps = 30
	}
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("terminal: %w", err)
	}
	size := modes.Current().Size()
	t := &Terminal{
		modes:   modes,
		dev:     dev,
		surface: make([]byte, size.Cells()*4),
		pace:    core.NewFixedStep(tps),
		g:       g,
		done:    make(chan struct{}),
	}
	t.k = []keyBinding{
		{gocui.KeyCtrlC, "^C", "Exit", t.cmdQuit, ""},
		{'q', "Q", "Exit", t.cmdQuit, ""},
		{gocui.KeySpace, "SPACE", "Run/Stop", t.cmdToggle, ""},
		{'n', "N", "Next step", t.cmdStep, ""},
		{'r', "R", "Reseed", t.cmdReset, ""},
		{'s', "S", "New seed", t.cmdNewSeed, ""},
		{'c', "C", "Clear", t.cmdClear, ""},
		{gocui.KeyArrowLeft, "LEFT", "Previous mode", t.cmdPrev, ""},
		{gocui.KeyArrowRight, "RIGHT", "Next mode", t.cmdNext, ""},
		{gocui.KeyF5, "F5", "Reload kernels", t.cmdRecharge, ""},
	}
	g.SetManagerFunc(t.layout)
	for _, kb := range t.k {
		h := kb.handler
		if err := g.SetKeybinding(kb.viewName, kb.key, gocui.ModNone, func(_ *gocui.Gui, v *gocui.View) error { return h(v) }); err != nil {
			g.Close()
			return nil, fmt.Errorf("terminal: bind %s: %w", kb.name, err)
		}
	}
	return t, nil
}

// Start runs the UI until the user quits.
func (t *Terminal) Start() error {
	go t.loop()
	err := t.g.MainLoop()
	close(t.done)
	t.g.Close()
	if err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

func (t *Terminal) loop() {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.done:
			return
		case <-ticker.C:
		}
		t.mu.Lock()
		switch {
		case t.step:
			t.err = t.modes.Update()
			t.step = false
		case t.running:
			for n := 0; n < maxCatchUp && t.pace.ShouldStep(); n++ {
				if t.err = t.modes.Update(); t.err != nil {
					break
				}
			}
		}
		t.mu.Unlock()
		t.refresh()
	}
}

func (t *Terminal) refresh() {
	t.g.Update(func(g *gocui.Gui) error {
		t.renderField(g)
		t.renderStatus(g)
		return nil
	})
}

func (t *Terminal) renderField(g *gocui.Gui) {
	v, err := g.View("field")
	if err != nil {
		return
	}
	v.Clear()
	t.mu.Lock()
	size := t.modes.Current().Size()
	err = t.dev.ReadSurface(t.modes.Current().CurrentTexture(), t.surface)
	t.mu.Unlock()
	if err != nil {
		fmt.Fprint(v, aurora.Red(err.Error()).String())
		return
	}
	cols, rows := v.Size()
	fmt.Fprint(v, Field(t.surface, size.W, size.H, cols, rows, ColorPainter))
}

func (t *Terminal) renderStatus(g *gocui.Gui) {
	v, err := g.View("status")
	if err != nil {
		return
	}
	v.Clear()
	t.mu.Lock()
	s := t.modes.Status()
	running, lastErr := t.running, t.err
	t.mu.Unlock()
	fmt.Fprintln(v, prop("Mode", "%d/%d", s.Mode+1, s.Modes))
	fmt.Fprintln(v, prop("Type", "%s", s.Name))
	fmt.Fprintln(v, prop("Dimension", "%d x %d", s.Size.W, s.Size.H))
	fmt.Fprintln(v, prop("Generation", "%d", s.Generation))
	fmt.Fprintln(v, prop("Update", "%s", ui.FormatDuration(s.UpdateTime)))
	state := aurora.Colorize("waiting", aurora.BlueFg).String()
	if running {
		state = aurora.Colorize("running", aurora.CyanFg).String()
	}
	fmt.Fprintln(v, prop("State", "%s", state))
	if lastErr != nil {
		fmt.Fprintln(v, " "+aurora.Red(lastErr.Error()).String())
	}
}

func prop(name, format string, values ...interface{}) string {
	return fmt.Sprintf(" "+aurora.Colorize(name, aurora.GreenFg).String()+": "+format, values...)
}

func (t *Terminal) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	const left = 28
	if v, err := g.SetView("status", 0, 0, left, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Status"
		t.renderStatus(g)
	}
	if v, err := g.SetView("field", left+1, 0, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Field"
		t.renderField(g)
	}
	if v, err := g.SetView("help", -1, maxY-3, maxX, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		var b bytes.Buffer
		b.WriteString("KEYS: ")
		for i, k := range t.k {
			if i != 0 {
				b.WriteString(", ")
			}
			b.WriteString(aurora.Green(k.name).String())
			b.WriteString(": ")
			b.WriteString(k.descr)
		}
		fmt.Fprintln(v, b.String())
	}
	return nil
}

func (t *Terminal) cmdQuit(*gocui.View) error { return gocui.ErrQuit }

func (t *Terminal) cmdToggle(*gocui.View) error {
	t.mu.Lock()
	t.running = !t.running
	if t.running {
		t.pace.Restart()
	}
	t.mu.Unlock()
	return nil
}

func (t *Terminal) cmdStep(*gocui.View) error {
	t.mu.Lock()
	t.step = true
	t.mu.Unlock()
	return nil
}

func (t *Terminal) cmdReset(*gocui.View) error {
	return t.act(func() error { return t.modes.Reset(t.modes.Seed()) })
}

func (t *Terminal) cmdNewSeed(*gocui.View) error {
	return t.act(func() error { return t.modes.Reset(time.Now().UnixNano()) })
}

func (t *Terminal) cmdClear(*gocui.View) error {
	return t.act(func() error { return t.modes.Current().Clean() })
}

func (t *Terminal) cmdPrev(*gocui.View) error {
	return t.act(func() error { return t.modes.Switch(-1) })
}

func (t *Terminal) cmdNext(*gocui.View) error {
	return t.act(func() error { return t.modes.Switch(1) })
}

func (t *Terminal) cmdRecharge(*gocui.View) error {
	return t.act(t.modes.Recharge)
}

// act runs fn under the lock and records its error for the status view.
func (t *Terminal) act(fn func() error) error {
	t.mu.Lock()
	err := fn()
	t.err = err
	t.mu.Unlock()
	if err != nil {
		core.Logger().Warn("terminal action failed", "err", err)
	}
	t.refresh()
	return nil
}

package main

import (
	"fmt"
	"image/color"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/integrii/flaggy"
	"github.com/logrusorgru/aurora"

	"gpu-ca/internal/app"
	"gpu-ca/internal/compute"
	"gpu-ca/internal/core"
	"gpu-ca/internal/render"
	_ "gpu-ca/internal/sims/conway"
	_ "gpu-ca/internal/sims/lenia"
	_ "gpu-ca/internal/sims/leniaop"
	_ "gpu-ca/internal/sims/smoothlife"
	"gpu-ca/internal/verify"
	pcore "gpu-ca/pkg/core"
)

type runOptions struct {
	sim       string
	width     int
	height    int
	steps     int
	seed      int64
	kernels   string
	workers   int
	params    string
	png       string
	scale     int
	selfcheck bool
}

type checkOptions struct {
	width  int
	height int
	radius int
	seed   int64
	tol    float64
	fft    bool
}

type accumulatorChecker interface {
	CheckAccumulator(tol float64) (verify.Report, error)
}

func main() {
	ro := runOptions{sim: "leniaop", width: 256, height: 256, steps: 100, seed: 42, scale: 1}
	co := checkOptions{width: 64, height: 64, radius: core.DefaultLeniaParams().Radius, seed: 42, tol: 1e-4, fft: true}
	var verbose bool

	flaggy.SetName("ca-bench")
	flaggy.SetDescription("Headless runs and numeric checks of the cellular automata")
	flaggy.DefaultParser.ShowHelpOnUnexpected = true
	flaggy.Bool(&verbose, "v", "verbose", "Debug logging")

	run := flaggy.NewSubcommand("run")
	run.Description = "Advance one automaton for a number of generations and report timings"
	run.String(&ro.sim, "s", "sim", "Automaton ["+strings.Join(core.Names(), "|")+"]")
	run.Int(&ro.width, "x", "width", "Grid width")
	run.Int(&ro.height, "y", "height", "Grid height")
	run.Int(&ro.steps, "n", "steps", "Generations to compute")
	run.Int64(&ro.seed, "", "seed", "Noise seed")
	run.String(&ro.kernels, "k", "kernels", "Directory overriding the embedded kernel sources")
	run.Int(&ro.workers, "w", "workers", "Compute worker goroutines (0 = GOMAXPROCS)")
	run.String(&ro.params, "p", "params", "Comma separated key=value parameters")
	run.String(&ro.png, "o", "png", "Write the final generation to this PNG file")
	run.Int(&ro.scale, "", "scale", "PNG pixel scale")
	run.Bool(&ro.selfcheck, "c", "selfcheck", "Check the row accumulator after the last step (leniaop)")
	flaggy.AttachSubcommand(run, 1)

	check := flaggy.NewSubcommand("check")
	check.Description = "Compare the direct, two-pass and FFT Lenia neighbourhood sums on random noise"
	check.Int(&co.width, "x", "width", "Grid width")
	check.Int(&co.height, "y", "height", "Grid height")
	check.Int(&co.radius, "r", "radius", "Kernel radius")
	check.Int64(&co.seed, "", "seed", "Noise seed")
	check.Float64(&co.tol, "t", "tolerance", "Absolute or relative tolerance")
	check.Bool(&co.fft, "f", "fft", "Include the FFT reference")
	flaggy.AttachSubcommand(check, 1)

	flaggy.Parse()

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	core.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var ok bool
	var err error
	switch {
	case run.Used:
		ok, err = runSim(ro)
	case check.Used:
		ok = runCheck(co)
	default:
		flaggy.ShowHelpAndExit("a subcommand is required")
	}
	if err != nil {
		log.Fatal(err)
	}
	if !ok {
		os.Exit(1)
	}
}

func runSim(o runOptions) (bool, error) {
	reg, found := core.Sims()[o.sim]
	if !found {
		return false, fmt.Errorf("unknown sim %q", o.sim)
	}
	dev, err := app.NewDevice(o.workers)
	if err != nil {
		return false, err
	}
	a := reg.Factory(core.Env{Device: dev, KernelDir: o.kernels}, app.ParamMap(o.params))
	size := core.Size{W: o.width, H: o.height}
	if err := a.Init(size); err != nil {
		return false, err
	}
	defer a.Release()
	if err := a.Reset(o.seed); err != nil {
		return false, err
	}

	fmt.Println("Running configuration:")
	printProp("Automaton", "%s", a.Name())
	printProp("Dimension", "%d x %d", size.W, size.H)
	printProp("Generations", "%d", o.steps)
	printProp("Seed", "%d", o.seed)

	var watch core.Stopwatch
	start := time.Now()
	failed := 0
	for i := 0; i < o.steps; i++ {
		stop := watch.Time()
		err := a.Update()
		stop()
		if err != nil {
			failed++
		}
		if (i+1)%50 == 0 {
			fmt.Printf("  Generations done: %v\n", a.Generation())
		}
	}
	total := time.Since(start)

	fmt.Println("\nFinished:")
	printProp("Generation", "%d", a.Generation())
	printProp("Failed updates", "%d", failed)
	printProp("Mean update", "%v", watch.Mean().Round(time.Microsecond))
	printProp("Last update", "%v", a.UpdateTime().Round(time.Microsecond))
	printProp("Total time", "%v", total.Round(time.Millisecond))

	pix := make([]byte, size.Cells()*4)
	if err := dev.ReadSurface(a.CurrentTexture(), pix); err != nil {
		return false, err
	}
	printProp("Mean state", "%.4f", meanState(pix))

	ok := failed == 0
	if o.selfcheck {
		c, can := a.(accumulatorChecker)
		if !can {
			return false, fmt.Errorf("%s has no row accumulator to check", a.Name())
		}
		rep, err := c.CheckAccumulator(0)
		if err != nil {
			return false, err
		}
		printReport(rep)
		ok = ok && rep.OK()
	}
	if o.png != "" {
		if err := writePNG(o.png, dev, a, o.scale); err != nil {
			return false, err
		}
		printProp("Image", "%s", o.png)
	}
	return ok, nil
}

func writePNG(path string, dev compute.Device, a core.Automaton, scale int) error {
	img, err := render.Snapshot(dev, a.CurrentTexture(), a.Size(), color.White, color.Black)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.WritePNG(f, img, scale); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func meanState(pix []byte) float64 {
	if len(pix) == 0 {
		return 0
	}
	sum := 0
	for i := 3; i < len(pix); i += 4 {
		sum += int(pix[i])
	}
	return float64(sum) / float64(len(pix)/4) / 255
}

func runCheck(o checkOptions) bool {
	p := core.DefaultLeniaParams()
	p.Radius = o.radius
	noise := pcore.NewRNG(o.seed).UniformNoise()
	alpha := make([]uint8, o.width*o.height)
	for i := range alpha {
		alpha[i] = noise()
	}
	field := verify.FieldFromAlpha(o.width, o.height, alpha)

	fmt.Println("Check configuration:")
	printProp("Dimension", "%d x %d", o.width, o.height)
	printProp("Radius", "%d", p.Radius)
	printProp("Tolerance", "%g", o.tol)

	ok := true
	for _, rep := range verify.Check(field, p, verify.Options{Tolerance: o.tol, FFT: o.fft}) {
		printReport(rep)
		ok = ok && rep.OK()
	}
	return ok
}

func printReport(rep verify.Report) {
	status := aurora.Green("PASS").String()
	if !rep.OK() {
		status = aurora.Red("FAIL").Bold().String()
	}
	fmt.Printf("  %s %s\n", status, rep)
	for _, m := range rep.Mismatches {
		fmt.Printf("      %s\n", m)
	}
}

func printProp(name, format string, values ...interface{}) {
	fmt.Printf("  "+aurora.Colorize(name, aurora.GreenFg).String()+": "+format+"\n", values...)
}

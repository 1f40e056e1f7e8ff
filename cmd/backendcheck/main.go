// Backend check tool - runs a backend beside the sequential reference with
// the same seed and reports how far photon positions drift apart. It can
// also render both sets of heads top-down to a PNG for inspection.
//
// Usage: go run ./cmd/backendcheck -backend gpu -ticks 600 -out heads.png
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/components"
	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/game"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

// result summarises one comparison run.
type result struct {
	Compared  int     // photons with no events on either side
	Diverged  int     // photons that respawned or recycled at least once
	MaxDev    float64 // largest position difference among compared photons
	WorstID   int
	WorstTick int64
}

func main() {
	configPath := flag.String("config", "", "Config YAML file (empty = use defaults)")
	backend := flag.String("backend", config.BackendGPU, "Backend to check against sequential")
	ticks := flag.Int("ticks", 600, "Ticks to run")
	seed := flag.Uint64("seed", 1, "RNG seed")
	tolerance := flag.Float64("tolerance", 1e-3, "Largest allowed position difference")
	outPath := flag.String("out", "", "Optional PNG of final heads (reference green, candidate magenta)")
	size := flag.Int("size", 512, "PNG edge in pixels")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.Cfg()
	// Random streams differ between CPU and kernels; recycling keeps
	// photons on deterministic paths until they leave the grid.
	cfg.Driver.Lifecycle = false
	cfg.GPU.Lifecycle = false

	if game.NeedsWindow(*backend) || *outPath != "" {
		rl.SetTraceLogLevel(rl.LogWarning)
		rl.SetConfigFlags(rl.FlagWindowHidden)
		rl.InitWindow(int32(*size), int32(*size), "Backend Check")
		defer rl.CloseWindow()
	}

	ref, err := game.NewDriver(cfg, config.BackendSequential, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create reference: %v\n", err)
		os.Exit(1)
	}
	defer ref.Close()
	cand, err := game.NewDriver(cfg, *backend, *seed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create %s backend: %v\n", *backend, err)
		os.Exit(1)
	}
	defer cand.Close()

	res, err := compare(ref, cand, *ticks)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Run failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s vs sequential after %d ticks (seed %d)\n", *backend, *ticks, *seed)
	fmt.Printf("  compared: %d photons, diverged by events: %d\n", res.Compared, res.Diverged)
	fmt.Printf("  max deviation: %.6g (photon %d, tick %d)\n", res.MaxDev, res.WorstID, res.WorstTick)

	if *outPath != "" {
		if exportHeads(ref.World(), cand.World(), float32(cfg.Well.GridSize), int32(*size), *outPath) {
			fmt.Printf("Heads rendered to: %s (%dx%d)\n", *outPath, *size, *size)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to export image\n")
		}
	}

	if res.MaxDev > *tolerance {
		fmt.Fprintf(os.Stderr, "deviation %.6g exceeds tolerance %.6g\n", res.MaxDev, *tolerance)
		os.Exit(1)
	}
}

// compare ticks both drivers in lockstep. Photons that see any event on
// either side are excluded from then on.
func compare(ref, cand *sim.Driver, ticks int) (result, error) {
	n := ref.World().Len()
	diverged := make([]bool, n)
	var res result

	for t := 0; t < ticks; t++ {
		if _, err := ref.Tick(); err != nil {
			return res, err
		}
		if _, err := cand.Tick(); err != nil {
			return res, err
		}

		refEvents, candEvents := ref.Events(), cand.Events()
		refs, crefs := ref.World().Refs(), cand.World().Refs()
		for i := 0; i < n; i++ {
			if refEvents[i] != systems.EventNone || candEvents[i] != systems.EventNone {
				diverged[i] = true
			}
			if diverged[i] {
				continue
			}
			if d := distance(refs[i].Motion.Pos, crefs[i].Motion.Pos); d > res.MaxDev {
				res.MaxDev = d
				res.WorstID = i
				res.WorstTick = ref.CurrentTick()
			}
		}
	}

	for _, d := range diverged {
		if d {
			res.Diverged++
		} else {
			res.Compared++
		}
	}
	return res, nil
}

func distance(a, b components.Vec3) float64 {
	dx, dy, dz := float64(a.X-b.X), float64(a.Y-b.Y), float64(a.Z-b.Z)
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// exportHeads draws both worlds top-down over [-extent, extent] and writes
// a PNG.
func exportHeads(ref, cand *sim.World, extent float32, size int32, path string) bool {
	target := rl.LoadRenderTexture(size, size)
	defer rl.UnloadRenderTexture(target)

	scale := float32(size) / (2 * extent)
	draw := func(w *sim.World, col rl.Color) {
		for _, r := range w.Refs() {
			if !r.Life.Active {
				continue
			}
			x := (r.Motion.Pos.X + extent) * scale
			y := (r.Motion.Pos.Z + extent) * scale
			rl.DrawCircleV(rl.Vector2{X: x, Y: y}, 2, col)
		}
	}

	rl.BeginTextureMode(target)
	rl.ClearBackground(rl.Black)
	rl.DrawCircleLines(size/2, size/2, 1, rl.DarkGray)
	draw(ref, rl.Green)
	draw(cand, rl.Fade(rl.Magenta, 0.7))
	rl.EndTextureMode()

	// Flip back from the OpenGL convention
	img := rl.LoadImageFromTexture(target.Texture)
	rl.ImageFlipVertical(img)
	ok := rl.ExportImage(*img, path)
	rl.UnloadImage(img)
	return ok
}

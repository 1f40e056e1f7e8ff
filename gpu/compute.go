package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

//go:embed shaders/photons.comp
var computeSource string

// ErrNoCompute is returned when the GL context cannot run compute shaders.
var ErrNoCompute = errors.New("OpenGL 4.3 compute shaders unavailable; build raylib with -tags opengl43")

var _ sim.Backend = (*Compute)(nil)

// Compute runs the photon kernel as a GLSL compute shader on the raylib GL
// context. It must be created and used on the thread that owns the window.
type Compute struct {
	program   uint32
	photonBuf uint32
	trailBuf  uint32
	locs      []int32
	params    params
	group     int
	host      *hostState
}

// NewCompute compiles the kernel and allocates device buffers for cfg's
// photon population. A window must already be open.
func NewCompute(cfg *config.Config, lifecycle bool) (*Compute, error) {
	if rl.GetVersion() != rl.Opengl43 {
		return nil, ErrNoCompute
	}

	size := cfg.GPU.WorkgroupSize
	src := strings.Replace(computeSource, "#define WORKGROUP_SIZE 256",
		fmt.Sprintf("#define WORKGROUP_SIZE %d", size), 1)

	shader := rl.CompileShader(src, rl.ComputeShader)
	if shader == 0 {
		return nil, errors.New("compiling photon compute shader")
	}
	program := rl.LoadComputeShaderProgram(shader)
	if program == 0 {
		return nil, errors.New("linking photon compute program")
	}

	c := &Compute{
		program: program,
		params:  newParams(cfg, lifecycle),
		group:   size,
		host:    newHostState(cfg.Photons.Count, cfg.Photons.TrailLength),
	}

	c.photonBuf = rl.LoadShaderBuffer(uint32(c.host.photonBytes()), nil, rl.DynamicCopy)
	c.trailBuf = rl.LoadShaderBuffer(uint32(c.host.trailBytes()), nil, rl.DynamicCopy)
	if c.photonBuf == 0 || c.trailBuf == 0 {
		c.Close()
		return nil, errors.New("allocating photon shader buffers")
	}

	for _, u := range c.params.uniforms() {
		c.locs = append(c.locs, rl.GetLocationUniform(program, u.Name))
	}
	return c, nil
}

func (c *Compute) Name() string         { return config.BackendGPU }
func (c *Compute) Lifecycle() bool      { return c.params.Lifecycle > 0 }
func (c *Compute) SetLifecycle(on bool) { c.params.setLifecycle(on) }

// Step dispatches one invocation per photon and reads the results back.
func (c *Compute) Step(w *sim.World, events []systems.Event) error {
	if w.Len() != c.host.n {
		return fmt.Errorf("world has %d photons, buffers sized for %d", w.Len(), c.host.n)
	}

	if c.host.needsUpload(w) {
		c.host.pack(w)
		rl.UpdateShaderBuffer(c.photonBuf, unsafe.Pointer(&c.host.photons[0]), uint32(c.host.photonBytes()), 0)
		rl.UpdateShaderBuffer(c.trailBuf, unsafe.Pointer(&c.host.trails[0]), uint32(c.host.trailBytes()), 0)
	}

	rl.EnableShader(c.program)
	for i, u := range c.params.uniforms() {
		if c.locs[i] >= 0 {
			rl.SetUniform(c.locs[i], []float32{u.Value}, int32(rl.ShaderUniformFloat))
		}
	}
	rl.BindShaderBuffer(c.photonBuf, 0)
	rl.BindShaderBuffer(c.trailBuf, 1)
	rl.ComputeShaderDispatch(groups(c.host.n, c.group), 1, 1)
	rl.DisableShader()

	// Readback blocks until the dispatch has finished writing
	rl.ReadShaderBuffer(c.photonBuf, unsafe.Pointer(&c.host.photons[0]), uint32(c.host.photonBytes()), 0)
	rl.ReadShaderBuffer(c.trailBuf, unsafe.Pointer(&c.host.trails[0]), uint32(c.host.trailBytes()), 0)
	c.host.unpack(w, events)
	return nil
}

// Close releases the program and buffers.
func (c *Compute) Close() error {
	if c.trailBuf != 0 {
		rl.UnloadShaderBuffer(c.trailBuf)
		c.trailBuf = 0
	}
	if c.photonBuf != 0 {
		rl.UnloadShaderBuffer(c.photonBuf)
		c.photonBuf = 0
	}
	if c.program != 0 {
		rl.UnloadShaderProgram(c.program)
		c.program = 0
	}
	return nil
}

//go:build opencl

package gpu

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

//go:embed kernels/photons.cl
var kernelSource string

// OpenCL runs the photon kernel through an OpenCL device, preferring a GPU
// and falling back to a CPU device.
type OpenCL struct {
	context   *cl.Context
	queue     *cl.CommandQueue
	program   *cl.Program
	kernel    *cl.Kernel
	photonBuf *cl.MemObject
	trailBuf  *cl.MemObject
	device    string
	params    params
	dirty     bool // lifecycle argument changed since last dispatch
	host      *hostState
}

var _ sim.Backend = (*OpenCL)(nil)

// NewOpenCL builds the kernel and device buffers for cfg's population.
func NewOpenCL(cfg *config.Config, lifecycle bool) (*OpenCL, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms; install OpenCL drivers and verify with `clinfo`"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	if len(platforms) == 0 {
		return nil, errors.New("no OpenCL platforms available")
	}

	device := pickDevice(platforms, cl.DeviceTypeGPU)
	if device == nil {
		device = pickDevice(platforms, cl.DeviceTypeCPU)
	}
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	o := &OpenCL{
		device: device.Name(),
		params: newParams(cfg, lifecycle),
		host:   newHostState(cfg.Photons.Count, cfg.Photons.TrailLength),
	}

	if o.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return nil, fmt.Errorf("creating OpenCL context: %w", err)
	}
	if o.queue, err = o.context.CreateCommandQueue(device, 0); err != nil {
		o.Close()
		return nil, fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if o.program, err = o.context.CreateProgramWithSource([]string{kernelSource}); err != nil {
		o.Close()
		return nil, fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := o.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		o.Close()
		if buildErr, ok := err.(cl.BuildError); ok {
			return nil, fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return nil, fmt.Errorf("building OpenCL program: %w", err)
	}
	if o.kernel, err = o.program.CreateKernel("step_photons"); err != nil {
		o.Close()
		return nil, fmt.Errorf("creating photon kernel: %w", err)
	}
	if o.photonBuf, err = o.context.CreateEmptyBuffer(cl.MemReadWrite, o.host.photonBytes()); err != nil {
		o.Close()
		return nil, fmt.Errorf("allocating photon buffer: %w", err)
	}
	if o.trailBuf, err = o.context.CreateEmptyBuffer(cl.MemReadWrite, o.host.trailBytes()); err != nil {
		o.Close()
		return nil, fmt.Errorf("allocating trail buffer: %w", err)
	}
	if err := o.setArgs(); err != nil {
		o.Close()
		return nil, err
	}
	return o, nil
}

func pickDevice(platforms []*cl.Platform, kind cl.DeviceType) *cl.Device {
	for _, p := range platforms {
		devices, err := p.GetDevices(kind)
		if err != nil && err != cl.ErrDeviceNotFound {
			continue
		}
		if len(devices) > 0 {
			return devices[0]
		}
	}
	return nil
}

func (o *OpenCL) setArgs() error {
	p := o.params
	if err := o.kernel.SetArgs(
		o.photonBuf,
		o.trailBuf,
		p.DT, p.Mass, p.MinRadius, p.FDStep, p.MaxForce,
		p.GridSize, p.EscapeRadius, p.OrbitRadius, p.OrbitSpeed, p.InfallSpeed,
		p.LateralJitter, p.RespawnDelayMax, p.Count, p.TrailLength,
		p.Lifecycle,
	); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	return nil
}

func (o *OpenCL) Name() string    { return config.BackendOpenCL }
func (o *OpenCL) Lifecycle() bool { return o.params.Lifecycle > 0 }

// DeviceName returns the selected device.
func (o *OpenCL) DeviceName() string { return o.device }

// SetLifecycle updates the kernel's lifecycle argument before the next dispatch.
func (o *OpenCL) SetLifecycle(on bool) {
	o.params.setLifecycle(on)
	o.dirty = true
}

// Step uploads on cold start, runs one NDRange over all photons and reads
// the results back with blocking reads.
func (o *OpenCL) Step(w *sim.World, events []systems.Event) error {
	if w.Len() != o.host.n {
		return fmt.Errorf("world has %d photons, buffers sized for %d", w.Len(), o.host.n)
	}

	if o.host.needsUpload(w) {
		o.host.pack(w)
		ptr := unsafe.Pointer(&o.host.photons[0])
		if _, err := o.queue.EnqueueWriteBuffer(o.photonBuf, false, 0, o.host.photonBytes(), ptr, nil); err != nil {
			return fmt.Errorf("uploading photons: %w", err)
		}
		if _, err := o.queue.EnqueueWriteBufferFloat32(o.trailBuf, false, 0, o.host.trails, nil); err != nil {
			return fmt.Errorf("uploading trails: %w", err)
		}
	}

	if o.dirty {
		// lifecycle is the last kernel argument
		if err := o.kernel.SetArgFloat32(15, o.params.Lifecycle); err != nil {
			return fmt.Errorf("setting lifecycle argument: %w", err)
		}
		o.dirty = false
	}

	if _, err := o.queue.EnqueueNDRangeKernel(o.kernel, nil, []int{o.host.n}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing photon kernel: %w", err)
	}

	ptr := unsafe.Pointer(&o.host.photons[0])
	if _, err := o.queue.EnqueueReadBuffer(o.photonBuf, true, 0, o.host.photonBytes(), ptr, nil); err != nil {
		return fmt.Errorf("reading photons: %w", err)
	}
	if _, err := o.queue.EnqueueReadBufferFloat32(o.trailBuf, true, 0, o.host.trails, nil); err != nil {
		return fmt.Errorf("reading trails: %w", err)
	}
	o.host.unpack(w, events)
	return nil
}

// Close releases every OpenCL object that was created.
func (o *OpenCL) Close() error {
	if o.trailBuf != nil {
		o.trailBuf.Release()
		o.trailBuf = nil
	}
	if o.photonBuf != nil {
		o.photonBuf.Release()
		o.photonBuf = nil
	}
	if o.kernel != nil {
		o.kernel.Release()
		o.kernel = nil
	}
	if o.program != nil {
		o.program.Release()
		o.program = nil
	}
	if o.queue != nil {
		o.queue.Release()
		o.queue = nil
	}
	if o.context != nil {
		o.context.Release()
		o.context = nil
	}
	return nil
}

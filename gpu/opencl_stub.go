//go:build !opencl

package gpu

import (
	"errors"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/sim"
	"github.com/pthm-cable/photonwell/systems"
)

// ErrOpenCLDisabled is returned when the binary was built without OpenCL.
var ErrOpenCLDisabled = errors.New("OpenCL support is not enabled; rebuild with -tags opencl")

// OpenCL is unavailable in this build.
type OpenCL struct{}

var _ sim.Backend = (*OpenCL)(nil)

// NewOpenCL always fails in builds without the opencl tag.
func NewOpenCL(*config.Config, bool) (*OpenCL, error) {
	return nil, ErrOpenCLDisabled
}

func (o *OpenCL) Name() string       { return config.BackendOpenCL }
func (o *OpenCL) Lifecycle() bool    { return false }
func (o *OpenCL) SetLifecycle(bool)  {}
func (o *OpenCL) DeviceName() string { return "" }
func (o *OpenCL) Close() error       { return nil }

func (o *OpenCL) Step(*sim.World, []systems.Event) error {
	return ErrOpenCLDisabled
}

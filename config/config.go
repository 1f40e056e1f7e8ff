// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Backend names accepted by driver.backend.
const (
	BackendSequential = "sequential"
	BackendWorkers    = "workers"
	BackendGPU        = "gpu"
	BackendOpenCL     = "opencl"
)

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Photons   PhotonsConfig   `yaml:"photons"`
	Well      WellConfig      `yaml:"well"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Driver    DriverConfig    `yaml:"driver"`
	GPU       GPUConfig       `yaml:"gpu"`
	Camera    CameraConfig    `yaml:"camera"`
	Scene     SceneConfig     `yaml:"scene"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhotonsConfig sizes the photon population.
type PhotonsConfig struct {
	Count       int `yaml:"count"`        // N, total photons
	Orbiting    int `yaml:"orbiting"`     // K, photons 0..K-1 orbit the well
	TrailLength int `yaml:"trail_length"` // T, ring buffer capacity per photon
}

// WellConfig describes the height field.
type WellConfig struct {
	Mass         float64 `yaml:"mass"`
	MinRadius    float64 `yaml:"min_radius"`    // r_min, also the capture radius
	GridSize     float64 `yaml:"grid_size"`     // G, half-extent of the visible domain
	EscapeFactor float64 `yaml:"escape_factor"` // R_max = G * this
	GridSlices   int     `yaml:"grid_slices"`   // grid lines per axis
}

// PhysicsConfig holds integration parameters.
type PhysicsConfig struct {
	DT           float64       `yaml:"dt"`
	MaxForce     float64       `yaml:"max_force"`
	FDStep       float64       `yaml:"fd_step"` // central difference step h
	TickInterval time.Duration `yaml:"tick_interval"`
}

// SpawnConfig holds spawn rule parameters.
type SpawnConfig struct {
	OrbitRadius     float64 `yaml:"orbit_radius"`
	OrbitSpeedScale float64 `yaml:"orbit_speed_scale"` // multiplies the circular speed sqrt(mass/orbit_radius)
	InfallSpeed     float64 `yaml:"infall_speed"`
	LateralJitter   float64 `yaml:"lateral_jitter"`    // infalling z-velocity drawn from [-j, j)
	InitialDelayMax float64 `yaml:"initial_delay_max"` // startup timer for infalling photons
	RespawnDelayMax float64 `yaml:"respawn_delay_max"` // timer after capture or escape
}

// DriverConfig selects the execution model.
type DriverConfig struct {
	Backend   string `yaml:"backend"`
	Workers   int    `yaml:"workers"`   // 0 = GOMAXPROCS
	Lifecycle bool   `yaml:"lifecycle"` // CPU backends: capture/escape/respawn
}

// GPUConfig holds kernel backend parameters.
type GPUConfig struct {
	Lifecycle     bool `yaml:"lifecycle"` // kernel backends: capture/escape/respawn, else edge recycling
	WorkgroupSize int  `yaml:"workgroup_size"`
}

// CameraConfig holds orbit camera defaults and input limits.
type CameraConfig struct {
	AngleX          float64 `yaml:"angle_x"`
	AngleZ          float64 `yaml:"angle_z"`
	Distance        float64 `yaml:"distance"`
	MinDistance     float64 `yaml:"min_distance"`
	MaxDistance     float64 `yaml:"max_distance"`
	MinAngle        float64 `yaml:"min_angle"`
	MaxAngle        float64 `yaml:"max_angle"`
	DragSensitivity float64 `yaml:"drag_sensitivity"` // degrees per pixel
	ZoomStep        float64 `yaml:"zoom_step"`
}

// SceneConfig holds backdrop parameters.
type SceneConfig struct {
	Stars      int     `yaml:"stars"`
	StarExtent float64 `yaml:"star_extent"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64       `yaml:"stats_window"`
	PerfCollectorWindow int           `yaml:"perf_collector_window"`
	MetricsInterval     time.Duration `yaml:"metrics_interval"` // metrics.json export period
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32           float32 // Physics.DT as float32
	EscapeRadius   float64 // R_max
	Infalling      int     // N - K
	TicksPerWindow int     // stats window in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used. The result is validated.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.ComputeDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ComputeDerived calculates values derived from loaded config.
// Call again after mutating a loaded Config.
func (c *Config) ComputeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.EscapeRadius = c.Well.GridSize * c.Well.EscapeFactor
	c.Derived.Infalling = c.Photons.Count - c.Photons.Orbiting
	if c.Physics.DT > 0 {
		c.Derived.TicksPerWindow = int(c.Telemetry.StatsWindow/c.Physics.DT + 0.5)
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

package sim

import "github.com/pthm-cable/photonwell/components"

// PhotonView is the read-only per-photon state handed to presentation.
type PhotonView struct {
	ID       int
	Kind     components.Kind
	Position components.Vec3
	Velocity components.Vec2
	Active   bool
	Trail    []components.Vec3 // oldest first
}

// Frame is a copy of the world taken after a completed tick.
// A Frame is reused across snapshots; its buffers are sized once.
type Frame struct {
	Tick    int64
	Active  int
	Photons []PhotonView
}

// Snapshot copies the current state into f.
func (d *Driver) Snapshot(f *Frame) {
	refs := d.world.refs
	if len(f.Photons) != len(refs) {
		f.Photons = make([]PhotonView, len(refs))
	}

	f.Tick = d.tick
	f.Active = 0
	for i, r := range refs {
		v := &f.Photons[i]
		v.ID = r.Photon.ID
		v.Kind = r.Photon.Kind
		v.Position = r.Motion.Pos
		v.Velocity = r.Motion.Vel
		v.Active = r.Life.Active
		v.Trail = r.Trail.AppendTo(v.Trail[:0])
		if v.Active {
			f.Active++
		}
	}
}

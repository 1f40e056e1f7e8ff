package sim

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/photonwell/config"
	"github.com/pthm-cable/photonwell/systems"
)

// parallelThreshold is the minimum photon count to use the worker pool.
// Below this, single-threaded is faster due to goroutine overhead.
const parallelThreshold = 64

// workChunk represents a range of photons for a worker to process.
type workChunk struct {
	start, end int
	refs       []Ref
	events     []systems.Event
	updater    systems.Updater
}

// Workers is the CPU data-parallel backend. Each photon is an independent
// unit of work; a tick ends when every dispatched chunk reports done.
type Workers struct {
	updater    systems.Updater
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan struct{}  // workers signal completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool           // true if workers are running
}

// NewWorkers creates the worker pool backend. numWorkers <= 0 uses GOMAXPROCS.
func NewWorkers(cfg *config.Config, lifecycle bool, numWorkers int) *Workers {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	return &Workers{
		updater:    systems.NewUpdater(cfg, lifecycle),
		numWorkers: numWorkers,
	}
}

func (p *Workers) Name() string         { return config.BackendWorkers }
func (p *Workers) Lifecycle() bool      { return p.updater.Managed }
func (p *Workers) SetLifecycle(on bool) { p.updater.Managed = on }

// NumWorkers returns the pool size.
func (p *Workers) NumWorkers() int { return p.numWorkers }

// startWorkers launches persistent worker goroutines.
func (p *Workers) startWorkers() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan struct{}, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stopWorkers signals all workers to exit and waits for them.
func (p *Workers) stopWorkers() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

// worker runs in a goroutine, processing chunks until stopped.
func (p *Workers) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			updateRange(chunk.updater, chunk.refs, chunk.events, chunk.start, chunk.end)
			p.doneChan <- struct{}{}
		}
	}
}

// Step dispatches chunks to the pool and waits for all of them.
func (p *Workers) Step(w *World, events []systems.Event) error {
	n := len(w.refs)
	if n == 0 {
		return nil
	}

	if n < parallelThreshold {
		updateRange(p.updater, w.refs, events, 0, n)
		return nil
	}

	if !p.running {
		p.startWorkers()
	}

	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	chunksDispatched := 0
	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		p.workChan <- workChunk{
			start:   start,
			end:     end,
			refs:    w.refs,
			events:  events,
			updater: p.updater,
		}
		chunksDispatched++
	}

	// Barrier: every photon is updated before Step returns
	for i := 0; i < chunksDispatched; i++ {
		<-p.doneChan
	}
	return nil
}

// Close stops the worker goroutines.
func (p *Workers) Close() error {
	p.stopWorkers()
	return nil
}

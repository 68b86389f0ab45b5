// Package lifecycle implements the Model Lifecycle Controller (spec §4.4):
// the device-resident state machine for the decoder (LOADED_ON_DEVICE,
// UNLOADED, UNLOADED_KEEPING_CPU_CACHE) plus the authenticated load/unload
// transitions and their 204/304 semantics.
//
// Grounded on pkg/decoder.ReferenceEngine's own mutex-guarded state flips
// (pkg/decoder/reference.go), generalized here into the full three-state
// machine the decoder.Engine itself does not need to know about.
package lifecycle

import (
	"context"
	"sync"

	"github.com/pbusenius/nllb-api/pkg/decoder"
)

// State is one position in the model lifecycle state machine (spec §4.4).
type State string

const (
	LoadedOnDevice          State = "LOADED_ON_DEVICE"
	Unloaded                State = "UNLOADED"
	UnloadedKeepingCPUCache State = "UNLOADED_KEEPING_CPU_CACHE"
)

// Controller serializes load/unload transitions against each other and
// against in-flight translate calls, by holding a lock for the duration of
// every transition and exposing Acquire/Release for callers (the Dispatch
// Layer) that need to hold the engine in LOADED_ON_DEVICE for the duration
// of an operation.
type Controller struct {
	engine decoder.Engine

	mu    sync.RWMutex
	state State
}

// New returns a Controller over engine, in the LOADED_ON_DEVICE state (spec
// §4.4: "Initial state after startup: LOADED").
func New(engine decoder.Engine) *Controller {
	return &Controller{engine: engine, state: LoadedOnDevice}
}

// State reports the controller's current lifecycle state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Load transitions the engine to LOADED_ON_DEVICE. It returns changed=true
// (HTTP 204) if the state was not already LOADED_ON_DEVICE, and
// changed=false (HTTP 304) otherwise. keepCache is meaningful only when the
// transition originates from UNLOADED_KEEPING_CPU_CACHE on a CUDA device;
// the controller passes it to the engine only when the engine's device is
// CUDA and passes false otherwise (spec §4.4, "silently dropped
// otherwise").
func (c *Controller) Load(ctx context.Context, keepCache bool) (changed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == LoadedOnDevice {
		return false, nil
	}

	if err := c.engine.Load(ctx, keepCache && c.engine.Device() == decoder.CUDA); err != nil {
		return false, err
	}
	c.state = LoadedOnDevice
	return true, nil
}

// Unload transitions the engine out of LOADED_ON_DEVICE. It returns
// changed=true (HTTP 204) if the state was LOADED_ON_DEVICE, and
// changed=false (HTTP 304) otherwise. toCPU is honored only on a CUDA
// device: it selects UNLOADED_KEEPING_CPU_CACHE over UNLOADED.
func (c *Controller) Unload(ctx context.Context, toCPU bool) (changed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != LoadedOnDevice {
		return false, nil
	}

	keepOnCPU := toCPU && c.engine.Device() == decoder.CUDA
	if err := c.engine.Unload(ctx, keepOnCPU); err != nil {
		return false, err
	}
	if keepOnCPU {
		c.state = UnloadedKeepingCPUCache
	} else {
		c.state = Unloaded
	}
	return true, nil
}

// Acquire takes the read lock for the duration of a translate operation: it
// lets any number of translate calls proceed concurrently with each other,
// but blocks until any in-progress Load/Unload transition completes, and
// reports whether the engine is currently LOADED_ON_DEVICE. Callers must
// call the returned release function exactly once.
//
// This gives the atomicity spec §4.4 requires ("a translate in progress
// must either complete before unload observes the new state, or receive
// MODEL_UNAVAILABLE"): a transition cannot complete while any Acquire is
// outstanding, and no Acquire can observe a stale LOADED_ON_DEVICE state
// once a transition has started.
func (c *Controller) Acquire() (loaded bool, release func()) {
	c.mu.RLock()
	return c.state == LoadedOnDevice, c.mu.RUnlock
}

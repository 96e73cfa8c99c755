package audio

import (
	"context"
	"sync"
)

// FakeContext records scheduled graphs instead of playing them.
type FakeContext struct {
	mu          sync.Mutex
	state       State
	rate        int
	resumeErr   error
	resumeCalls int
	scheduled   [][]float32
}

func NewFakeContext(sampleRate int) *FakeContext {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	return &FakeContext{rate: sampleRate, state: StateSuspended}
}

func (f *FakeContext) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *FakeContext) SampleRate() int { return f.rate }

func (f *FakeContext) Resume(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumeCalls++
	if err := ctx.Err(); err != nil {
		return err
	}
	if f.state == StateClosed {
		return ErrClosed
	}
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.state = StateRunning
	return nil
}

func (f *FakeContext) Schedule(samples []float32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case StateClosed:
		return ErrClosed
	case StateSuspended:
		return ErrSuspended
	}
	f.scheduled = append(f.scheduled, samples)
	return nil
}

func (f *FakeContext) Close() error {
	f.mu.Lock()
	f.state = StateClosed
	f.mu.Unlock()
	return nil
}

// SetResumeError makes subsequent resumes fail with err (nil clears it).
func (f *FakeContext) SetResumeError(err error) {
	f.mu.Lock()
	f.resumeErr = err
	f.mu.Unlock()
}

// Suspend simulates the platform suspending output.
func (f *FakeContext) Suspend() {
	f.mu.Lock()
	if f.state == StateRunning {
		f.state = StateSuspended
	}
	f.mu.Unlock()
}

func (f *FakeContext) ResumeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resumeCalls
}

func (f *FakeContext) Scheduled() [][]float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]float32, len(f.scheduled))
	copy(out, f.scheduled)
	return out
}

// FakeBackend hands out FakeContexts and counts how many were opened.
type FakeBackend struct {
	mu sync.Mutex
	// Err, when set, makes Open fail as a platform without audio would.
	Err        error
	SampleRate int
	// Running opens contexts that skip the suspended state.
	Running bool
	// ResumeErr is installed on every context opened, as a platform that
	// blocks audio until a user gesture would.
	ResumeErr error
	opened    []*FakeContext
}

func (b *FakeBackend) Open() (Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return nil, b.Err
	}
	ctx := NewFakeContext(b.SampleRate)
	if b.Running {
		ctx.state = StateRunning
	}
	ctx.resumeErr = b.ResumeErr
	b.opened = append(b.opened, ctx)
	return ctx, nil
}

func (b *FakeBackend) Opened() []*FakeContext {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*FakeContext, len(b.opened))
	copy(out, b.opened)
	return out
}

func (b *FakeBackend) SetErr(err error) {
	b.mu.Lock()
	b.Err = err
	b.mu.Unlock()
}

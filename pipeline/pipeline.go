// Package pipeline hands parsed records from the parsing goroutine to a consumer goroutine
// through a bounded queue.
//
// The producer blocks while the queue is full; records are never dropped. A consumer that
// fails, by returning an error or by panicking, stops consuming. Its failure is returned to
// the producer by the next call to HandleLine, Close or Stop.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"

	"github.com/oleg578/swiftflat"
	"github.com/oleg578/swiftflat/model"
)

// DefaultQueueSize is the number of records a pipeline buffers by default.
const DefaultQueueSize = 1000

var (
	// ErrConsumerFailure is wrapped by every *ConsumerError.
	ErrConsumerFailure = errors.New("pipeline: consumer failed")
	// ErrNotRunning is returned when records are handed to a pipeline that was not started
	// or has already stopped.
	ErrNotRunning = errors.New("pipeline: not running")
	// ErrClosed is returned when a closed pipeline is started again.
	ErrClosed = errors.New("pipeline: closed")
)

// ConsumerError carries the failure of a consumer: the error it returned or the value it
// panicked with.
type ConsumerError struct {
	Err   error
	Panic any
}

func (e *ConsumerError) Error() string {
	if e == nil {
		return ""
	}
	if e.Panic != nil {
		return fmt.Sprintf("%v: panic: %v", ErrConsumerFailure, e.Panic)
	}
	return fmt.Sprintf("%v: %v", ErrConsumerFailure, e.Err)
}

// Unwrap returns ErrConsumerFailure and the consumer error, if any.
func (e *ConsumerError) Unwrap() []error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return []error{ErrConsumerFailure}
	}
	return []error{ErrConsumerFailure, e.Err}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithQueueSize sets the queue capacity. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.size = n
		}
	}
}

type state uint8

const (
	idle state = iota
	started
	closed
)

// Pipeline runs a swiftflat.LineHandler on its own goroutine. A Pipeline is a
// swiftflat.LineHandler itself, so it can be passed to Reader.Parse. Exactly one goroutine
// may act as producer.
type Pipeline struct {
	consumer swiftflat.LineHandler
	size     int
	log      commonlog.Logger

	onStart []func() error
	onStop  []func()

	queue    chan *model.Record
	quit     chan struct{}
	dead     chan struct{}
	quitOnce sync.Once
	running  atomic.Bool

	mu      sync.Mutex
	state   state
	failed  bool
	failure error
}

// New returns a pipeline that feeds consumer. Call Start before handing it records.
func New(consumer swiftflat.LineHandler, opts ...Option) *Pipeline {
	if consumer == nil {
		panic("pipeline: consumer cannot be nil")
	}
	p := &Pipeline{
		consumer: consumer,
		size:     DefaultQueueSize,
		log:      commonlog.GetLogger("swiftflat.pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnStart registers f to run on the consumer goroutine before the first record. Hooks run in
// registration order; one that fails is a consumer failure. Register hooks before Start.
func (p *Pipeline) OnStart(f func() error) {
	p.onStart = append(p.onStart, f)
}

// OnStop registers f to run on the consumer goroutine when it exits, also after a failure.
// Hooks run in registration order. Register hooks before Start.
func (p *Pipeline) OnStop(f func()) {
	p.onStop = append(p.onStop, f)
}

// Start launches the consumer goroutine and returns once it is running. Starting a running
// pipeline does nothing.
func (p *Pipeline) Start() error {
	p.mu.Lock()
	switch p.state {
	case started:
		p.mu.Unlock()
		return nil
	case closed:
		p.mu.Unlock()
		return ErrClosed
	}
	p.state = started
	p.queue = make(chan *model.Record, p.size)
	p.quit = make(chan struct{})
	p.dead = make(chan struct{})
	p.mu.Unlock()

	ready := make(chan struct{})
	go p.run(ready)
	select {
	case <-ready:
		p.log.Debugf("consumer started, queue size %d", p.size)
		return nil
	case <-p.dead:
		return p.takeFailure()
	}
}

func (p *Pipeline) run(ready chan<- struct{}) {
	defer close(p.dead)
	defer p.stopHooks()
	defer func() {
		if v := recover(); v != nil {
			p.fail(&ConsumerError{Panic: v})
		}
	}()

	for _, f := range p.onStart {
		if err := f(); err != nil {
			p.fail(&ConsumerError{Err: err})
			return
		}
	}
	p.running.Store(true)
	close(ready)

	for {
		select {
		case <-p.quit:
			return
		case rec, ok := <-p.queue:
			if !ok {
				return
			}
			select {
			case <-p.quit:
				return
			default:
			}
			if err := p.consumer.HandleLine(rec); err != nil {
				p.fail(&ConsumerError{Err: err})
				return
			}
		}
	}
}

func (p *Pipeline) stopHooks() {
	p.running.Store(false)
	for _, f := range p.onStop {
		f()
	}
}

func (p *Pipeline) fail(err error) {
	p.log.Errorf("%s", err)
	p.mu.Lock()
	if !p.failed {
		p.failed, p.failure = true, err
	}
	p.mu.Unlock()
}

// takeFailure returns the captured consumer failure once.
func (p *Pipeline) takeFailure() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.failure
	p.failure = nil
	return err
}

// HandleLine queues rec for the consumer, blocking while the queue is full. It returns the
// consumer failure if one happened since the last call.
func (p *Pipeline) HandleLine(rec *model.Record) error {
	p.mu.Lock()
	err, failed, st := p.failure, p.failed, p.state
	p.failure = nil
	p.mu.Unlock()
	switch {
	case err != nil:
		return err
	case failed || st != started:
		return ErrNotRunning
	}
	select {
	case p.queue <- rec:
		return nil
	case <-p.dead:
		if err := p.takeFailure(); err != nil {
			return err
		}
		return ErrNotRunning
	}
}

// Close waits until the consumer has handled every queued record, then stops it. It returns
// the consumer failure, if any was not reported yet.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	st := p.state
	p.state = closed
	p.mu.Unlock()
	if st != started {
		return p.takeFailure()
	}
	close(p.queue)
	<-p.dead
	p.log.Debugf("consumer closed")
	return p.takeFailure()
}

// Stop ends the consumer as soon as the record it is handling, if any, is done. Queued
// records are discarded. It returns the consumer failure, if any was not reported yet.
func (p *Pipeline) Stop() error {
	p.mu.Lock()
	st := p.state
	p.state = closed
	p.mu.Unlock()
	if st != started {
		return p.takeFailure()
	}
	p.quitOnce.Do(func() { close(p.quit) })
	<-p.dead
	dropped := 0
	for len(p.queue) > 0 {
		<-p.queue
		dropped++
	}
	p.log.Debugf("consumer stopped, %d queued records dropped", dropped)
	return p.takeFailure()
}

// Len returns the number of queued records.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queue == nil {
		return 0
	}
	return len(p.queue)
}

// Running reports whether the consumer goroutine is handling records.
func (p *Pipeline) Running() bool {
	return p.running.Load()
}

// Run parses r on the calling goroutine and hands every record to consumer on another one.
// It returns once the consumer has handled every record, with the first parse or consumer
// error.
func Run(r *swiftflat.Reader, consumer swiftflat.LineHandler, opts ...Option) error {
	p := New(consumer, opts...)
	if err := p.Start(); err != nil {
		return err
	}
	if err := r.Parse(p); err != nil {
		return errors.Join(err, p.Stop())
	}
	return p.Close()
}

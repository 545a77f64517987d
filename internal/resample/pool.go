package resample

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// MaxPoolThreads caps worker pool size regardless of processor count;
// oversubscription beyond this has empirically no benefit.
const MaxPoolThreads = 64

// worker is a persistent goroutine coordinated by three binary events,
// coordinated through a wakeup/done/ready handshake over channels:
//
//	loop:
//	  signal Ready
//	  wait Wakeup
//	  if terminated: exit
//	  reset Wakeup
//	  invoke job
//	  signal Done
type worker struct {
	wakeup chan struct{}
	done   chan struct{}
	ready  chan struct{}

	jobMu      sync.Mutex
	job        func()
	terminated atomic.Bool
}

func newWorker() *worker {
	w := &worker{
		wakeup: make(chan struct{}, 1),
		done:   make(chan struct{}, 1),
		ready:  make(chan struct{}, 1),
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	for {
		signal(w.ready)
		<-w.wakeup
		if w.terminated.Load() {
			return
		}
		w.jobMu.Lock()
		job := w.job
		w.jobMu.Unlock()
		if job != nil {
			job()
		}
		signal(w.done)
	}
}

// dispatch waits for the worker to be idle, hands it a job, and wakes
// it. It does not block for completion; call join for that.
func (w *worker) dispatch(job func()) {
	<-w.ready
	drain(w.done)
	w.jobMu.Lock()
	w.job = job
	w.jobMu.Unlock()
	signal(w.wakeup)
}

// join waits for the most recently dispatched job to finish.
func (w *worker) join() {
	<-w.done
}

func (w *worker) shutdown() {
	w.terminated.Store(true)
	<-w.ready
	signal(w.wakeup)
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func drain(ch chan struct{}) {
	select {
	case <-ch:
	default:
	}
}

// Pool is a fixed-size, persistent worker pool whose workers are
// started by PoolInit (only the default pool is constructed lazily). It
// is not reentrant: a job dispatched on a Pool must never itself call
// ZoomResampleParallel against that same Pool.
type Pool struct {
	workers []*worker
}

// PoolInit constructs a Pool of min(maxThreads, MaxPoolThreads)
// persistent workers. maxThreads <= 0 selects runtime.NumCPU().
func PoolInit(maxThreads int) *Pool {
	if maxThreads <= 0 {
		maxThreads = runtime.NumCPU()
	}
	if maxThreads > MaxPoolThreads {
		maxThreads = MaxPoolThreads
	}
	if maxThreads < 1 {
		maxThreads = 1
	}
	p := &Pool{workers: make([]*worker, maxThreads)}
	for i := range p.workers {
		p.workers[i] = newWorker()
	}
	return p
}

// PoolFinalize signals every worker to terminate. For each worker it
// waits until the worker is idle, then wakes it so its loop returns; it
// does not wait for the worker goroutines to return. The pool must not
// be used afterward.
func PoolFinalize(p *Pool) {
	if p == nil {
		return
	}
	for _, w := range p.workers {
		w.shutdown()
	}
}

// Size returns the number of workers in the pool.
func (p *Pool) Size() int {
	if p == nil {
		return 0
	}
	return len(p.workers)
}

// Run dispatches each job in jobs to a worker (reusing workers
// round-robin when there are more jobs than workers) and waits for all
// to complete. Jobs already dispatched to distinct workers run
// concurrently; a worker processes its assigned jobs in order.
func (p *Pool) Run(jobs []func()) {
	if len(jobs) == 0 {
		return
	}
	n := len(p.workers)
	if n == 0 {
		for _, j := range jobs {
			j()
		}
		return
	}

	// Bucket jobs by worker so each worker's jobs are dispatched and
	// joined in order, without requiring n == len(jobs).
	buckets := make([][]func(), n)
	for i, j := range jobs {
		w := i % n
		buckets[w] = append(buckets[w], j)
	}

	var wg sync.WaitGroup
	for i, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		wg.Add(1)
		go func(w *worker, jobs []func()) {
			defer wg.Done()
			for _, j := range jobs {
				w.dispatch(j)
				w.join()
			}
		}(p.workers[i], bucket)
	}
	wg.Wait()
}

var (
	defaultPoolOnce sync.Once
	defaultPool     *Pool
)

// globalPool returns (lazily constructing) the default process-wide
// pool used when ZoomResampleParallel is called with a nil Pool.
func globalPool() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = PoolInit(0)
	})
	return defaultPool
}

// band is one worker's rectangular slice of the target image, plus the
// derived source-column span its cache row must cover.
type band struct {
	xMin, xMax, yMin, yMax int
	xMinSource, xMaxSource int
}

// partition splits a targetW x targetH image into xChunks*yChunks
// rectangular bands, sized against the pool's worker count so each
// worker gets a contiguous run of rows wide enough to amortize its
// per-row setup cost.
func partition(targetW, targetH, poolSize int, colsX ContributorTable) []band {
	if poolSize < 1 {
		poolSize = 1
	}

	xChunks := maxInt(1, minInt(targetW/720, poolSize/4))
	if xChunks < 1 {
		xChunks = 1
	}
	yChunks := maxInt(2, minInt(targetH/8, poolSize/xChunks))
	if yChunks < 1 {
		yChunks = 1
	}
	if xChunks > targetW {
		xChunks = targetW
	}
	if yChunks > targetH {
		yChunks = targetH
	}
	if xChunks < 1 {
		xChunks = 1
	}
	if yChunks < 1 {
		yChunks = 1
	}

	bands := make([]band, 0, xChunks*yChunks)

	colWidth := targetW / xChunks
	rowHeight := targetH / yChunks

	for yi := 0; yi < yChunks; yi++ {
		yMin := yi * rowHeight
		yMax := yMin + rowHeight - 1
		if yi == yChunks-1 {
			yMax = targetH - 1
		}
		for xi := 0; xi < xChunks; xi++ {
			xMin := xi * colWidth
			xMax := xMin + colWidth - 1
			if xi == xChunks-1 {
				xMax = targetW - 1
			}

			xMinSrc := int(colsX[xMin].Min)
			xMaxSrc := int(colsX[xMax].Min + colsX[xMax].High)

			bands = append(bands, band{
				xMin: xMin, xMax: xMax,
				yMin: yMin, yMax: yMax,
				xMinSource: xMinSrc, xMaxSource: xMaxSrc,
			})
		}
	}
	return bands
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

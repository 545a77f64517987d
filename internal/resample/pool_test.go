package resample

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestPoolInitSizing(t *testing.T) {
	p := PoolInit(4)
	defer PoolFinalize(p)
	if got := p.Size(); got != 4 {
		t.Errorf("Size() = %d, want 4", got)
	}
}

func TestPoolInitClampsToMaxPoolThreads(t *testing.T) {
	p := PoolInit(MaxPoolThreads * 10)
	defer PoolFinalize(p)
	if got := p.Size(); got != MaxPoolThreads {
		t.Errorf("Size() = %d, want %d", got, MaxPoolThreads)
	}
}

func TestPoolInitNonPositiveSelectsNumCPU(t *testing.T) {
	p := PoolInit(0)
	defer PoolFinalize(p)
	if p.Size() < 1 {
		t.Errorf("Size() = %d, want >= 1", p.Size())
	}
}

func TestPoolSizeNilReceiver(t *testing.T) {
	var p *Pool
	if got := p.Size(); got != 0 {
		t.Errorf("nil Pool.Size() = %d, want 0", got)
	}
}

func TestPoolFinalizeNilIsNoop(t *testing.T) {
	PoolFinalize(nil) // must not panic
}

func TestPoolRunExecutesAllJobs(t *testing.T) {
	p := PoolInit(3)
	defer PoolFinalize(p)

	const n = 20
	var count atomic.Int64
	jobs := make([]func(), n)
	for i := 0; i < n; i++ {
		jobs[i] = func() { count.Add(1) }
	}
	p.Run(jobs)

	if got := count.Load(); got != n {
		t.Errorf("executed %d jobs, want %d", got, n)
	}
}

func TestPoolRunMoreJobsThanWorkers(t *testing.T) {
	p := PoolInit(2)
	defer PoolFinalize(p)

	const n = 7
	results := make([]int32, n)
	jobs := make([]func(), n)
	for i := 0; i < n; i++ {
		i := i
		jobs[i] = func() { results[i] = int32(i * i) }
	}
	p.Run(jobs)

	for i, got := range results {
		want := int32(i * i)
		if got != want {
			t.Errorf("job %d: got %d want %d", i, got, want)
		}
	}
}

func TestPoolRunEmptyJobsIsNoop(t *testing.T) {
	p := PoolInit(2)
	defer PoolFinalize(p)
	p.Run(nil) // must return immediately without blocking
}

func TestPoolRunZeroWorkersRunsInline(t *testing.T) {
	p := &Pool{}
	var count atomic.Int64
	p.Run([]func(){
		func() { count.Add(1) },
		func() { count.Add(1) },
	})
	if got := count.Load(); got != 2 {
		t.Errorf("got %d want 2", got)
	}
}

func TestWorkerDispatchJoinRoundTrip(t *testing.T) {
	w := newWorker()
	defer w.shutdown()

	var ran atomic.Bool
	w.dispatch(func() { ran.Store(true) })
	w.join()

	if !ran.Load() {
		t.Error("dispatched job did not run")
	}
}

func TestWorkerSerializesSuccessiveJobs(t *testing.T) {
	w := newWorker()
	defer w.shutdown()

	order := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		i := i
		w.dispatch(func() { order = append(order, i) })
		w.join()
	}
	for i, v := range order {
		if v != i {
			t.Errorf("order[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestWorkerShutdownStopsLoop(t *testing.T) {
	w := newWorker()

	done := make(chan struct{})
	go func() {
		w.shutdown()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("shutdown call blocked")
	}
}

func TestGlobalPoolIsSingleton(t *testing.T) {
	a := globalPool()
	b := globalPool()
	if a != b {
		t.Error("globalPool() returned distinct instances")
	}
}

func flatContributorTable(n int) ContributorTable {
	table := make(ContributorTable, n)
	for i := range table {
		table[i] = Contributor{Min: int32(i), High: 0, Weights: []int32{1}}
	}
	return table
}

func TestPartitionCoversFullImageWithoutOverlap(t *testing.T) {
	const w, h = 1440, 900
	cols := flatContributorTable(w)
	bands := partition(w, h, 8, cols)

	if len(bands) == 0 {
		t.Fatal("partition returned no bands")
	}

	covered := make([][]bool, h)
	for y := range covered {
		covered[y] = make([]bool, w)
	}
	for _, b := range bands {
		if b.xMin < 0 || b.xMax >= w || b.yMin < 0 || b.yMax >= h {
			t.Fatalf("band %+v out of target bounds %dx%d", b, w, h)
		}
		if b.xMin > b.xMax || b.yMin > b.yMax {
			t.Fatalf("band %+v has empty or inverted span", b)
		}
		for y := b.yMin; y <= b.yMax; y++ {
			for x := b.xMin; x <= b.xMax; x++ {
				if covered[y][x] {
					t.Fatalf("pixel (%d,%d) covered by more than one band", x, y)
				}
				covered[y][x] = true
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !covered[y][x] {
				t.Fatalf("pixel (%d,%d) not covered by any band", x, y)
			}
		}
	}
}

func TestPartitionSourceSpanMatchesContributorWindow(t *testing.T) {
	const w, h = 100, 40
	cols := flatContributorTable(w)
	cols[0] = Contributor{Min: 5, High: 2}
	cols[w-1] = Contributor{Min: 90, High: 3}

	bands := partition(w, h, 4, cols)
	for _, b := range bands {
		wantMin := int(cols[b.xMin].Min)
		wantMax := int(cols[b.xMax].Min + cols[b.xMax].High)
		if b.xMinSource != wantMin || b.xMaxSource != wantMax {
			t.Errorf("band %+v: source span got [%d,%d] want [%d,%d]",
				b, b.xMinSource, b.xMaxSource, wantMin, wantMax)
		}
	}
}

func TestPartitionSmallImageStaysInBounds(t *testing.T) {
	cols := flatContributorTable(3)
	bands := partition(3, 1, 16, cols)
	for _, b := range bands {
		if b.xMax >= 3 || b.yMax >= 1 {
			t.Errorf("band %+v exceeds 3x1 image bounds", b)
		}
	}
}

func TestPartitionPoolSizeLessThanOneTreatedAsOne(t *testing.T) {
	cols := flatContributorTable(64)
	bands := partition(64, 16, 0, cols)
	if len(bands) == 0 {
		t.Fatal("expected at least one band")
	}
}

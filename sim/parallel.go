package sim

import (
	"errors"
	"runtime"
	"sync"

	"github.com/pthm-cable/einp/animal"
)

// workChunk is a contiguous range of the tick order for one worker.
type workChunk struct {
	animals []*animal.Animal
	ctx     *animal.Context
}

// workerPool ticks animals on persistent goroutines.
type workerPool struct {
	numWorkers int

	// Worker pool channels
	workChan chan workChunk // sends work to workers
	doneChan chan error     // workers report chunk completion
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &workerPool{numWorkers: workers}
}

// start launches the worker goroutines.
func (p *workerPool) start() {
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.doneChan = make(chan error, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	close(p.doneChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			p.doneChan <- tickAll(chunk.animals, chunk.ctx)
		}
	}
}

// run splits animals into one chunk per worker and blocks until every
// chunk has been ticked.
func (p *workerPool) run(animals []*animal.Animal, ctx *animal.Context) error {
	if !p.running {
		p.start()
	}

	n := len(animals)
	chunkSize := (n + p.numWorkers - 1) / p.numWorkers

	dispatched := 0
	for w := 0; w < p.numWorkers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, n)
		if start >= end {
			continue
		}
		p.workChan <- workChunk{animals: animals[start:end], ctx: ctx}
		dispatched++
	}

	var errs []error
	for i := 0; i < dispatched; i++ {
		if err := <-p.doneChan; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// tickAll ticks each animal in order and joins the errors.
func tickAll(animals []*animal.Animal, ctx *animal.Context) error {
	var errs []error
	for _, a := range animals {
		if err := a.Tick(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Package batchrun runs a Dolby E ingest job (parse, project to S-ADM,
// report) across many input files concurrently, bounded to a fixed worker
// count. The teacher's cmd/ch10ctl batchCmd stubs this out entirely
// ("Batch mode placeholder: iterate files and call validate"); this package
// is the worked-out version of that intent, in the teacher's flag-driven
// CLI-subcommand style.
package batchrun

import (
	"sync"

	"example.com/dolbyectl/internal/common"
)

// Job is one unit of work: a single input file and where its outputs go.
type Job struct {
	InputPath string
	OutDir    string
}

// Result carries the outcome of running one Job.
type Result struct {
	Job Job
	Err error
}

// Pool runs jobs across a bounded number of goroutines, reporting metrics
// through a shared *common.Metrics the way the teacher's single-file path
// reports progress via common.StartProgressPrinter.
type Pool struct {
	Workers int
	Metrics *common.Metrics
	Run     func(Job) error
}

// NewPool builds a Pool with the given worker count (clamped to at least 1)
// and a fresh Metrics instance.
func NewPool(workers int, run func(Job) error) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{Workers: workers, Metrics: common.NewMetrics(), Run: run}
}

// Execute fans jobs out across the pool's workers and collects one Result
// per job, in no particular order.
func (p *Pool) Execute(jobs []Job) []Result {
	p.Metrics.Start()
	defer p.Metrics.Stop()

	in := make(chan Job)
	out := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < p.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range in {
				err := p.Run(job)
				if err == nil {
					p.Metrics.AddFrame(1)
				}
				out <- Result{Job: job, Err: err}
			}
		}()
	}

	go func() {
		for _, j := range jobs {
			in <- j
		}
		close(in)
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]Result, 0, len(jobs))
	for r := range out {
		results = append(results, r)
	}
	return results
}

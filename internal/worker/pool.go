// Package worker fans one generation run out across patient source
// files. Every source gets its own patient id, random stream and
// replayer, so a failing patient never poisons the rest of the batch
// and a fixed seed reproduces the whole run byte for byte.
package worker

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ssmixtwins/ssmixtwins/internal/domain/clinical"
	"github.com/ssmixtwins/ssmixtwins/internal/hl7"
	"github.com/ssmixtwins/ssmixtwins/internal/ssmix"
	"github.com/ssmixtwins/ssmixtwins/internal/tables"
	"github.com/ssmixtwins/ssmixtwins/internal/timeline"
)

// Options tunes one generation run.
type Options struct {
	Workers    int   // concurrent patients, minimum 1
	Seed       int64 // master seed for the whole run
	Physicians int   // size of the shared physician pool
	Policy     timeline.Policy
}

// Failure names one source file that could not be replayed.
type Failure struct {
	Source string
	Err    error
}

// RunReport aggregates the outcome of a run.
type RunReport struct {
	Patients int
	Failed   int
	Files    int
	ByType   map[hl7.Category]int
	Elapsed  time.Duration
	Failures []Failure
}

// Runner owns the shared state of a run: the code tables, the storage
// root, the name pools and the logger.
type Runner struct {
	tab   *tables.Tables
	store *ssmix.Store
	pools *clinical.Pools
	opts  Options
	log   zerolog.Logger
}

// NewRunner builds a Runner. A nil pools falls back to the built-in
// name pools.
func NewRunner(tab *tables.Tables, store *ssmix.Store, pools *clinical.Pools, opts Options, log zerolog.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Physicians < 1 {
		opts.Physicians = 30
	}
	return &Runner{tab: tab, store: store, pools: pools, opts: opts, log: log}
}

// Validate loads every source file and reports all their problems at
// once, so a batch can be fixed in one pass before anything is written.
func (r *Runner) Validate(paths []string) error {
	var problems []string
	for _, path := range paths {
		src, err := timeline.LoadSource(path)
		if err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if err := src.Validate(r.tab); err != nil {
			problems = append(problems, err.Error())
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("%d of %d source files are invalid:\n%s",
			len(problems), len(paths), strings.Join(problems, "\n"))
	}
	return nil
}

// Run replays every source file into the store. The shared hospital and
// physician pool are drawn first from the master seed, then each patient
// gets a child seed, so runs are reproducible regardless of worker count
// or completion order.
func (r *Runner) Run(ctx context.Context, paths []string) (*RunReport, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no source files to process")
	}
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	master := rand.New(rand.NewSource(r.opts.Seed))
	shared := clinical.NewFabricator(master, r.tab, r.pools)
	hospital, err := shared.Hospital()
	if err != nil {
		return nil, err
	}
	physicians, err := shared.PhysicianPool(r.opts.Physicians)
	if err != nil {
		return nil, err
	}
	patientIDs := patientIDPool(master, len(sorted))
	seeds := make([]int64, len(sorted))
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	start := time.Now()
	report := &RunReport{ByType: map[hl7.Category]int{}}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, path := range sorted {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rep, err := r.replayOne(path, patientIDs[i], seeds[i], hospital, physicians)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed++
				report.Failures = append(report.Failures, Failure{Source: path, Err: err})
				r.log.Error().Err(err).Str("source", path).Msg("patient replay failed")
				return nil
			}
			report.Patients++
			report.Files += rep.Files
			for c, n := range rep.ByType {
				report.ByType[c] += n
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	report.Elapsed = time.Since(start)
	return report, nil
}

func (r *Runner) replayOne(path, patientID string, seed int64, hospital *clinical.Hospital, physicians []*clinical.Physician) (*timeline.Report, error) {
	src, err := timeline.LoadSource(path)
	if err != nil {
		return nil, err
	}
	if err := src.Validate(r.tab); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(seed))
	fab := clinical.NewFabricator(rng, r.tab, r.pools)
	replayer, err := timeline.NewReplayer(rng, r.tab, fab, r.store, hospital, physicians, r.opts.Policy, r.log)
	if err != nil {
		return nil, err
	}
	return replayer.Replay(src, patientID)
}

// patientIDPool mints n distinct 10-digit patient ids shaped for the
// sharded storage tree: distinct 3-digit, 3-digit and 4-digit level
// parts crossed until the pool covers every source file.
func patientIDPool(rng *rand.Rand, n int) []string {
	perLevel := int(math.Ceil(math.Cbrt(float64(n))))
	if perLevel < 1 {
		perLevel = 1
	}
	if perLevel > 999 {
		perLevel = 999
	}
	lv1 := rng.Perm(999)[:perLevel]
	lv2 := rng.Perm(999)[:perLevel]
	lv3 := rng.Perm(9999)[:perLevel]

	ids := make([]string, 0, n)
	for _, a := range lv1 {
		for _, b := range lv2 {
			for _, c := range lv3 {
				if len(ids) == n {
					return ids
				}
				ids = append(ids, fmt.Sprintf("%03d%03d%04d", a, b, c))
			}
		}
	}
	return ids
}

// Package planner drives many components through validation
// concurrently, honoring the scheduling model of spec §5: bounded
// parallelism across components, each with its own exclusively-owned
// VFS, cancellable as one unit.
package planner

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/OldRepublicDevs/kotormodsync/internal/autogen"
	"github.com/OldRepublicDevs/kotormodsync/internal/config"
	"github.com/OldRepublicDevs/kotormodsync/internal/model"
	"github.com/OldRepublicDevs/kotormodsync/internal/validator"
	"github.com/OldRepublicDevs/kotormodsync/internal/vfs"
)

// ComponentResult pairs a component's id with its validation outcome.
type ComponentResult struct {
	ComponentID model.ID
	Result      validator.Result
	Err         error
}

// NewVFSFunc builds a fresh, independently-owned VFS for one
// component's validation attempt (spec §5: "each with an independent
// VFS"). Called once per component for the first run; after a
// wildcard failure it is called again for every candidate rewrite the
// archive-name-mismatch repair tries and once more for the re-run.
type NewVFSFunc func(component *model.Component) vfs.FileSystem

// ArchiveAnalyzer is the subset of *archive.Inspector the auto-generation
// step needs (spec §2's "C2/C5 analyze any present archive"). Accepted
// as an interface so callers can stub it in tests without touching a
// real archive file.
type ArchiveAnalyzer interface {
	Analyze(archivePath string) (model.ArchiveAnalysis, error)
}

// ArchiveForFunc resolves the local archive path a component's
// Auto-Instruction Generator pass should analyze, or ok=false when the
// component has none (it arrived with instructions already authored by
// hand, or its archive has not been downloaded yet).
type ArchiveForFunc func(component *model.Component) (archivePath string, ok bool)

// Plan runs the full per-component pipeline spec §2 describes: C2/C5
// archive analysis and instruction auto-generation, then C6/C4
// validation, concurrently across components, bounded by
// cfg.ParallelFileWorkers, returning one ComponentResult per component
// in input order. It stops launching new work once ctx is canceled, but
// components already running finish their (strictly sequential, per
// spec §4.4) instruction run before returning.
//
// analyzer and archiveFor may both be nil, in which case the
// auto-generation step is skipped entirely and components run with
// whatever instructions they already carry, the behavior this package
// had before auto-generation was wired in.
func Plan(
	ctx context.Context,
	cfg *config.Config,
	components []*model.Component,
	newVFS NewVFSFunc,
	knownNames map[string]struct{},
	diskExists func(name string) bool,
	analyzer ArchiveAnalyzer,
	archiveFor ArchiveForFunc,
) []ComponentResult {
	results := make([]ComponentResult, len(components))

	g, gctx := errgroup.WithContext(ctx)
	limit := cfg.ParallelFileWorkers
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	v := validator.New(cfg.ModDirectory, cfg.KotorDirectory)
	gen := autogen.New()

	for i, component := range components {
		i, component := i, component
		g.Go(func() error {
			select {
			case <-gctx.Done():
				results[i] = ComponentResult{ComponentID: component.ID, Err: gctx.Err()}
				return nil
			default:
			}

			generateInstructions(gen, analyzer, archiveFor, component)

			result := v.Validate(component, cfg.ModDirectory, func() vfs.FileSystem {
				return newVFS(component)
			}, knownNames, diskExists)

			results[i] = ComponentResult{ComponentID: component.ID, Result: result}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// generateInstructions runs the Auto-Instruction Generator (spec §4.5)
// against component's archive, when one is resolvable and analyzable,
// before the component reaches validation. A corrupted archive or a
// missing resolution is not fatal to the plan: the component simply
// runs validation against whatever instructions it already has, the
// same fallback the spec gives the caller of generate_instructions on
// CorruptedArchive (§4.2, §8 scenario 6).
func generateInstructions(gen *autogen.Generator, analyzer ArchiveAnalyzer, archiveFor ArchiveForFunc, component *model.Component) {
	if analyzer == nil || archiveFor == nil {
		return
	}
	archivePath, ok := archiveFor(component)
	if !ok {
		return
	}
	analysis, err := analyzer.Analyze(archivePath)
	if err != nil {
		log.Printf("planner: archive analysis failed for component %s (%s): %v", component.ID, archivePath, err)
		return
	}
	gen.Generate(component, archivePath, analysis)
}

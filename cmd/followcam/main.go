// Command followcam precomputes camera paths for screen-recording projects
// and emits renderer-facing artifacts: a YAML path table, an FFmpeg zoompan
// filter and a PNG preview of the camera trail.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/ivlev/followcam/internal/analyzer"
	"github.com/ivlev/followcam/internal/config"
	"github.com/ivlev/followcam/internal/director"
	"github.com/ivlev/followcam/internal/engine"
	"github.com/ivlev/followcam/internal/logging"
	"github.com/ivlev/followcam/internal/project"
	"github.com/ivlev/followcam/internal/render"
	"github.com/ivlev/followcam/internal/system"
	"github.com/ivlev/followcam/internal/timeline"
)

type options struct {
	projects   []string
	configPath string
	outPath    string
	filterOut  bool
	preview    string
	planOut    string
	usePlan    string
	epsilon    float64
	jobs       int
	watch      bool
	stats      bool
}

func main() {
	var opts options
	projectPtr := flag.String("project", "", "project file, or a directory to pick the newest project from (default: projects/)")
	flag.StringVar(&opts.configPath, "config", "", "YAML config file (optional; FOLLOWCAM_* env vars override)")
	flag.StringVar(&opts.outPath, "out", "", "write the camera path table (YAML) to this file")
	flag.BoolVar(&opts.filterOut, "filter", false, "print the FFmpeg zoompan filter to stdout")
	flag.StringVar(&opts.preview, "preview", "", "write a PNG preview of the camera trail to this file")
	flag.StringVar(&opts.planOut, "plan", "", "run the auto-zoom planner and write the plan (YAML) there; a directory gets a timestamped file")
	flag.StringVar(&opts.usePlan, "use-plan", "", "inject zoom blocks from a plan file; a directory picks the newest plan")
	flag.Float64Var(&opts.epsilon, "epsilon", render.DefaultEpsilon, "keyframe downsampling threshold")
	flag.IntVar(&opts.jobs, "jobs", runtime.NumCPU(), "parallel path computations when several projects are given")
	flag.BoolVar(&opts.watch, "watch", false, "recompute whenever the project file changes")
	flag.BoolVar(&opts.stats, "stats", false, "print a host snapshot before computing")
	flag.Parse()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logging.Init(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)

	system.InitResourceLimits()

	opts.projects = flag.Args()
	if *projectPtr != "" {
		opts.projects = append([]string{*projectPtr}, opts.projects...)
	}
	if len(opts.projects) == 0 {
		latest, err := system.FindLatestProject("projects")
		if err != nil {
			log.Fatal().Err(err).Msg("no project given and none found")
		}
		log.Info().Str("project", latest).Msg("picked newest project")
		opts.projects = []string{latest}
	}
	for i, p := range opts.projects {
		if fi, err := os.Stat(p); err == nil && fi.IsDir() {
			latest, err := system.FindLatestProject(p)
			if err != nil {
				log.Fatal().Err(err).Str("dir", p).Msg("no project found in directory")
			}
			opts.projects[i] = latest
		}
	}

	if opts.stats {
		fmt.Print(system.TakeSnapshot().Report())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.watch {
		if len(opts.projects) != 1 {
			log.Fatal().Msg("-watch supports exactly one project")
		}
		if err := watchLoop(ctx, cfg, opts); err != nil {
			log.Fatal().Err(err).Msg("watch failed")
		}
		return
	}

	if err := runAll(ctx, cfg, opts); err != nil {
		log.Fatal().Err(err).Msg("path computation failed")
	}
}

// runAll computes camera paths for every given project, in parallel when
// there is more than one, and writes the requested artifacts per project.
func runAll(ctx context.Context, cfg *config.Config, opts options) error {
	eng := engine.New(engineParams(cfg))

	type loaded struct {
		path   string
		doc    *project.Document
		store  *project.Store
		layout *timeline.Layout
	}

	jobs := make([]engine.Job, 0, len(opts.projects))
	all := make([]loaded, 0, len(opts.projects))
	for _, path := range opts.projects {
		doc, err := project.Load(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		store := project.NewStore(doc)

		if opts.usePlan != "" {
			planPath := opts.usePlan
			if fi, err := os.Stat(planPath); err == nil && fi.IsDir() {
				planPath, err = director.FindLatestPlan(planPath)
				if err != nil {
					return err
				}
			}
			plan, err := director.ReadPlan(planPath)
			if err != nil {
				return fmt.Errorf("read plan: %w", err)
			}
			applyPlan(doc, plan)
			log.Info().Int("blocks", len(plan.Blocks)).Str("plan", opts.usePlan).Msg("plan applied")
		}

		layout := doc.Layout(blockDefaults(cfg))

		if opts.planOut != "" {
			if err := writePlan(cfg, doc, store, opts.planOut); err != nil {
				return err
			}
		}

		all = append(all, loaded{path: path, doc: doc, store: store, layout: layout})
		jobs = append(jobs, engine.Job{
			Name:       path,
			Layout:     layout,
			Canvas:     doc.Canvas(),
			Recordings: store,
		})
	}

	started := time.Now()
	paths, err := eng.CalculateAll(ctx, jobs, opts.jobs)
	if err != nil {
		return err
	}
	log.Info().Int("projects", len(jobs)).Dur("elapsed", time.Since(started)).Msg("paths computed")

	batch := len(all) > 1
	for _, l := range all {
		path := paths[l.path]
		kfs := render.BuildKeyframes(path, l.layout, opts.epsilon)
		log.Info().Str("project", l.path).
			Int("frames", len(path)).Int("keyframes", len(kfs)).
			Msg("path ready")

		if err := writeArtifacts(l.doc, l.path, kfs, opts, batch); err != nil {
			return err
		}
	}
	return nil
}

func writeArtifacts(doc *project.Document, projectPath string, kfs []render.Keyframe, opts options, batch bool) error {
	outPath, previewPath := opts.outPath, opts.preview
	if batch {
		// Several projects share one invocation: artifacts land next to
		// each project file instead of colliding on one -out path.
		base := strings.TrimSuffix(projectPath, filepath.Ext(projectPath))
		if outPath != "" {
			outPath = base + ".path.yaml"
		}
		if previewPath != "" {
			previewPath = base + ".preview.png"
		}
	}

	if outPath != "" {
		table := render.NewTable(kfs, doc.Output.FPS, doc.Output.Width, doc.Output.Height)
		if err := render.WriteTable(table, outPath); err != nil {
			return fmt.Errorf("write path table: %w", err)
		}
		log.Info().Str("file", outPath).Msg("path table written")
	}

	if opts.filterOut {
		fmt.Println(render.ZoomPanFilter(kfs, doc.Output.FPS, doc.Output.Width, doc.Output.Height))
	}

	if previewPath != "" {
		img := render.Preview(nil, kfs, doc.Output.Width, doc.Output.Height)
		err := render.WritePNG(img, previewPath)
		system.PutImage(img)
		if err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		log.Info().Str("file", previewPath).Msg("preview written")
	}
	return nil
}

// writePlan runs the auto-zoom planner over each clip's recording and
// persists the proposed blocks.
func writePlan(cfg *config.Config, doc *project.Document, store *project.Store, path string) error {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = director.GeneratePlanPath(path)
	}
	planner := plannerFromConfig(cfg)

	plan := &director.Plan{Version: "1.0"}
	for _, clip := range doc.Clips {
		rec := store.Recording(clip.RecordingID)
		if rec == nil {
			continue
		}
		clipPlan := director.NewPlan(clip.ID, planner.Plan(rec))
		plan.Blocks = append(plan.Blocks, clipPlan.Blocks...)
	}

	if err := director.WritePlan(plan, path); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	log.Info().Int("blocks", len(plan.Blocks)).Str("file", path).Msg("plan written")
	return nil
}

// applyPlan appends a plan's blocks to the document before the layout is
// built. Plan blocks carry concrete values, so none of the optional-field
// resolution applies to them.
func applyPlan(doc *project.Document, plan *director.Plan) {
	for _, pb := range plan.Blocks {
		b := pb
		enabled := b.Enabled
		doc.ZoomBlocks = append(doc.ZoomBlocks, project.ZoomBlockDoc{
			ID:          b.ID,
			ClipID:      b.ClipID,
			StartTimeMs: b.StartTimeMs,
			EndTimeMs:   b.EndTimeMs,
			Scale:       b.Scale,
			IntroMs:     &b.IntroMs,
			OutroMs:     &b.OutroMs,
			Smoothing:   &b.Smoothing,
			Follow:      b.Follow,
			MouseIdlePx: b.MouseIdlePx,
			Enabled:     &enabled,
		})
	}
}

// watchLoop recomputes the single project whenever its file changes.
// Editors replace files on save, so the watch sits on the directory and
// filters events down to the project path.
func watchLoop(ctx context.Context, cfg *config.Config, opts options) error {
	projectPath, err := filepath.Abs(opts.projects[0])
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(projectPath)); err != nil {
		return err
	}

	run := func() {
		if err := runAll(ctx, cfg, opts); err != nil {
			log.Error().Err(err).Msg("recompute failed")
		}
	}
	run()

	// Saves arrive as bursts of events; the timer coalesces them.
	const debounce = 200 * time.Millisecond
	var pending *time.Timer
	trigger := make(chan struct{}, 1)

	log.Info().Str("project", projectPath).Msg("watching for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-trigger:
			run()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(ev.Name)
			if abs != projectPath {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		}
	}
}

// engineParams maps the config layer onto the engine's resolved tunables.
func engineParams(cfg *config.Config) engine.Params {
	return engine.Params{
		Smoothness:            cfg.Camera.Smoothness,
		CinematicSmoothing:    cfg.Camera.CinematicSmoothing,
		MaxDeadZoneRatio:      cfg.Camera.MaxDeadZoneRatio,
		HoldBufferMs:          cfg.Cluster.HoldBufferMs,
		SourceJumpThresholdMs: cfg.Camera.SourceJumpThresholdMs,
		DefaultScale:          cfg.Camera.DefaultZoomScale,
		Cluster: analyzer.Options{
			ClusterRadiusRatio:   cfg.Cluster.RadiusRatio,
			MinClusterDurationMs: cfg.Cluster.MinDurationMs,
		},
	}
}

func blockDefaults(cfg *config.Config) project.Defaults {
	return project.Defaults{
		IntroMs:     cfg.Blocks.IntroMs,
		OutroMs:     cfg.Blocks.OutroMs,
		Smoothing:   cfg.Blocks.Smoothing,
		Scale:       cfg.Camera.DefaultZoomScale,
		MouseIdlePx: cfg.Blocks.MouseIdlePx,
	}
}

func plannerFromConfig(cfg *config.Config) *director.Planner {
	p := director.NewPlanner()
	p.Clusters = analyzer.Options{
		ClusterRadiusRatio:   cfg.Cluster.RadiusRatio,
		MinClusterDurationMs: cfg.Cluster.MinDurationMs,
	}
	p.MinBlockMs = cfg.Planner.MinBlockMs
	p.MaxBlockMs = cfg.Planner.MaxBlockMs
	p.LeadInMs = cfg.Planner.LeadInMs
	p.MinGapMs = cfg.Planner.MinGapMs
	p.MinScale = cfg.Planner.MinScale
	p.MaxScale = cfg.Planner.MaxScale
	p.IntroMs = cfg.Blocks.IntroMs
	p.OutroMs = cfg.Blocks.OutroMs
	p.Smoothing = cfg.Blocks.Smoothing
	return p
}

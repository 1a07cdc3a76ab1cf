// Package engine runs the flythrough: it generates the tunnel once, then
// advances the camera and presents a rendered frame per tick until the
// frame budget is spent, the context is cancelled or the surface asks to
// stop.
package engine

import (
	"context"
	"fmt"
	"image"
	"io"
	"log"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/tunnel/internal/analyzer"
	"github.com/ivlev/tunnel/internal/audio"
	"github.com/ivlev/tunnel/internal/camera"
	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/director"
	"github.com/ivlev/tunnel/internal/effects"
	"github.com/ivlev/tunnel/internal/renderer"
	"github.com/ivlev/tunnel/internal/source"
	"github.com/ivlev/tunnel/internal/surface"
	"github.com/ivlev/tunnel/internal/system"
	"github.com/ivlev/tunnel/internal/tunnel"
)

// Project owns everything a run needs. Camera and State are written only by
// the goroutine running Run.
type Project struct {
	Config *config.Config
	Log    *log.Logger

	// Observer, when set, sees the camera sample of every frame.
	Observer func(camera.Sample)
	// BenchmarkLog is where the stats line is appended.
	BenchmarkLog string

	Seed   int64
	Params tunnel.Params
	Tunnel *tunnel.Tunnel
	Scene  *renderer.Scene
	Camera *camera.Camera
	State  *camera.State

	rasterizer *renderer.Rasterizer
	effects    effects.Chain
	recorder   *director.Recorder
	replay     *director.Scenario
	monitor    *analyzer.Monitor
	stats      Stats
}

func NewProject(cfg *config.Config, logger *log.Logger) *Project {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Project{Config: cfg, Log: logger, BenchmarkLog: "benchmark.log"}
}

// Setup validates the configuration and builds the tunnel, scene and
// camera. It is called by Run when needed.
func (p *Project) Setup() error {
	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return err
	}

	p.Params = tunnel.ParamsFrom(cfg)
	p.State = camera.NewState(cfg.ProgressIncrement, cfg.RollIncrement)
	seed := cfg.Seed

	if cfg.ScenarioInput != "" {
		if err := p.loadReplay(cfg.ScenarioInput); err != nil {
			return err
		}
		seed = p.replay.Seed
		p.Params = p.replay.Tunnel.Params()
		p.State = camera.NewState(p.replay.ProgressIncrement, p.replay.RollIncrement)
	}

	var rng *source.Seeded
	if seed != 0 {
		rng = source.NewSeeded(seed)
	} else {
		rng = source.NewEntropy()
	}
	p.Seed = rng.Seed()
	p.Log.Printf("[*] Сид: %d", p.Seed)

	t, err := tunnel.Generate(rng, p.Params)
	if err != nil {
		return fmt.Errorf("ошибка генерации туннеля: %w", err)
	}
	p.Tunnel = t
	p.Log.Printf("[*] Туннель: %d опорных точек | длина кривой %.1f | %d частиц",
		len(t.ControlPoints), t.Curve.Length(), t.Field.Len())
	lo, hi := t.Field.Bounds()
	p.Log.Printf("[*] Габариты: (%.1f, %.1f, %.1f) .. (%.1f, %.1f, %.1f)", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)

	p.Scene = renderer.NewScene(t.Field.Points, cfg)
	p.Camera = camera.New(cfg.FOV, 1, cfg.Near, cfg.Far)
	p.rasterizer = &renderer.Rasterizer{Supersample: cfg.Supersample}

	label := effects.BadgeLabel(p.Seed, p.Params.PointCount, p.Params.CurveSegments, p.Params.TubeRadius, p.Params.RadialSegments)
	p.effects, err = effects.NewChain(cfg.Effects, effects.Options{Seed: p.Seed, Label: label})
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}

	if cfg.ScenarioOutput != "" {
		p.recorder = director.NewRecorder(p.Seed, p.Params, p.State, cfg.FPS, cfg.KeyframeInterval)
	}
	detector, err := analyzer.NewDetector(cfg.Detector)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}
	if cfg.ShowStats {
		p.monitor = analyzer.NewMonitor(detector, uint64(cfg.FPS))
	}
	return nil
}

func (p *Project) loadReplay(path string) error {
	if path == "latest" {
		latest, err := director.FindLatestScenario("")
		if err != nil {
			return err
		}
		path = latest
	}
	s, err := director.ReadScenario(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения сценария: %w", err)
	}
	p.replay = s
	p.Log.Printf("[*] Используется сценарий: %s (%d ключевых кадров, %d кадров)", path, len(s.Keyframes), s.Frames)
	return nil
}

// FrameLimit is the number of frames Run will present: the configured
// count, the length of a replayed flight, one full cycle of the curve for
// offline surfaces, or 0 (unbounded) for realtime ones.
func (p *Project) FrameLimit(realtime bool) int {
	switch {
	case p.Config.Frames > 0:
		return p.Config.Frames
	case p.replay != nil:
		return int(p.replay.Frames)
	case realtime:
		return 0
	default:
		return camera.CycleLength(p.State.ProgressIncrement)
	}
}

// PrepareSoundtrack returns the audio file to mux into a video of frames
// frames: the configured file, a drone synthesized into dir, or "" for none.
func (p *Project) PrepareSoundtrack(dir string, frames int) (string, error) {
	cfg := p.Config
	if cfg.AudioPath != "" || cfg.ToneHz <= 0 || frames <= 0 {
		return cfg.AudioPath, nil
	}

	path := filepath.Join(dir, "drone.wav")
	length := time.Duration(float64(frames) / float64(cfg.FPS) * float64(time.Second))
	err := audio.WriteDrone(path, length, audio.Options{
		Tone:     cfg.ToneHz,
		RollRate: p.State.RollIncrement * float64(cfg.FPS),
		Volume:   0.8,
		Fade:     time.Duration(cfg.FadeDuration * float64(time.Second)),
	})
	if err != nil {
		return "", fmt.Errorf("ошибка синтеза звука: %w", err)
	}
	p.Log.Printf("[*] Звук: гул %.0f Гц, %s", cfg.ToneHz, length.Round(time.Millisecond))
	return path, nil
}

// Run presents frames on surf until the frame limit is reached, ctx is
// cancelled or surf interrupts. Cancellation is a normal stop and returns
// nil; surface errors abort the run.
func (p *Project) Run(ctx context.Context, surf surface.Surface) error {
	if p.Tunnel == nil {
		if err := p.Setup(); err != nil {
			return err
		}
	}

	w, h := surf.Size()
	p.Camera.SetViewport(w, h)
	realtime := surface.IsRealtime(surf)
	limit := p.FrameLimit(realtime)

	p.stats = Stats{Start: time.Now(), Workers: p.Config.Workers}
	var err error
	if realtime {
		err = p.runLive(ctx, surf, limit)
	} else {
		err = p.runBatch(ctx, surf, limit)
	}
	p.stats.Total = time.Since(p.stats.Start)
	if err != nil {
		return err
	}

	if p.recorder != nil {
		if err := p.saveRecording(); err != nil {
			return err
		}
	}
	if p.Config.ShowStats {
		p.report()
	}
	return nil
}

func (p *Project) saveRecording() error {
	path := p.Config.ScenarioOutput
	if path == "auto" {
		path = director.GenerateScenarioPath("")
	}
	s := p.recorder.Scenario()
	if len(s.Keyframes) == 0 {
		p.Log.Printf("[!] Нет записанных кадров, %s не сохранен", path)
		return nil
	}
	if err := director.WriteScenario(s, path); err != nil {
		return fmt.Errorf("ошибка записи сценария: %w", err)
	}
	p.Log.Printf("[+++] Полет сохранен: %s (%d ключевых кадров)", path, len(s.Keyframes))
	return nil
}

// step places the camera for the next frame.
func (p *Project) step() camera.Sample {
	var s camera.Sample
	if p.replay != nil {
		s = p.replayStep()
	} else {
		s = camera.Advance(p.Tunnel.Curve, p.Camera, p.State)
	}
	if p.recorder != nil {
		p.recorder.Observe(s)
	}
	if p.Observer != nil {
		p.Observer(s)
	}
	return s
}

func (p *Project) replayStep() camera.Sample {
	frame := p.State.Frame
	cs := renderer.InterpolateKeyframes(p.replay, frame)
	curve := p.Tunnel.Curve
	s := camera.Sample{
		Frame:    frame,
		Progress: cs.Progress,
		Roll:     cs.Roll,
		Position: curve.PointAt(cs.Progress),
		Target:   curve.PointAt(cs.Progress + p.State.ProgressIncrement),
		Wrapped:  frame > 0 && cs.Progress == 0,
	}
	camera.Place(p.Camera, s.Position, s.Target, s.Roll)
	p.State.Seek(frame+1, cs.Progress+p.State.ProgressIncrement)
	return s
}

func (p *Project) frameInfo(s camera.Sample) effects.FrameInfo {
	return effects.FrameInfo{
		Frame:    s.Frame,
		Progress: s.Progress,
		Roll:     s.Roll,
		Wrapped:  s.Wrapped,
		FPS:      p.Config.FPS,
	}
}

// draw renders one frame with cam into img and applies the effects.
func (p *Project) draw(img *image.RGBA, cam *camera.Camera, info effects.FrameInfo) {
	p.rasterizer.Render(img, p.Scene, cam)
	p.effects.Apply(img, info)
}

func (p *Project) present(surf surface.Surface, img *image.RGBA, frame uint64) error {
	start := time.Now()
	if err := surf.Present(img); err != nil {
		return fmt.Errorf("ошибка вывода кадра %d: %w", frame, err)
	}
	p.stats.Present += time.Since(start)
	p.stats.Frames++

	if p.monitor != nil {
		blank, err := p.monitor.Observe(frame, img)
		if err != nil {
			return err
		}
		if blank {
			p.Log.Printf("[!] Кадр %d пустой", frame)
		}
	}
	return nil
}

// runLive is the paced loop. Resize notifications are applied here,
// between frames, so the camera only ever has one writer.
func (p *Project) runLive(ctx context.Context, surf surface.Surface, limit int) error {
	var resized <-chan surface.Size
	if v, ok := surf.(surface.Viewport); ok {
		resized = v.Resized()
	}
	var interrupted <-chan struct{}
	if in, ok := surf.(surface.Interrupter); ok {
		interrupted = in.Interrupted()
	}

	ticker := time.NewTicker(time.Second / time.Duration(p.Config.FPS))
	defer ticker.Stop()

	w, h := surf.Size()
	img := system.GetImage(image.Rect(0, 0, w, h))
	defer func() { system.PutImage(img) }()

	for presented := 0; limit == 0 || presented < limit; {
		select {
		case <-ctx.Done():
			p.Log.Printf("[!] Остановлено после %d кадров", presented)
			return nil
		case <-interrupted:
			p.Log.Printf("[!] Прервано после %d кадров", presented)
			return nil
		case size := <-resized:
			img = p.resize(img, size)
		case <-ticker.C:
			// A resize that raced the tick applies to this frame.
			select {
			case size := <-resized:
				img = p.resize(img, size)
			default:
			}
			s := p.step()
			start := time.Now()
			p.draw(img, p.Camera, p.frameInfo(s))
			p.stats.Render += time.Since(start)
			if err := p.present(surf, img, s.Frame); err != nil {
				return err
			}
			presented++
		}
	}
	return nil
}

// resize points the camera at a new viewport and swaps the frame buffer.
func (p *Project) resize(img *image.RGBA, size surface.Size) *image.RGBA {
	if size.Empty() || img.Bounds().Size() == image.Pt(size.W, size.H) {
		return img
	}
	p.Camera.SetViewport(size.W, size.H)
	system.PutImage(img)
	p.Log.Printf("[*] Размер окна: %dx%d", size.W, size.H)
	return system.GetImage(image.Rect(0, 0, size.W, size.H))
}

// runBatch produces frames as fast as possible. Camera states are taken
// sequentially, a batch of them is rasterized on the worker pool and the
// results are presented in order.
func (p *Project) runBatch(ctx context.Context, surf surface.Surface, limit int) error {
	workers := max(p.Config.Workers, 1)
	w, h := surf.Size()
	rect := image.Rect(0, 0, w, h)

	for done := 0; done < limit; {
		if ctx.Err() != nil {
			p.Log.Printf("[!] Остановлено после %d кадров", done)
			return nil
		}

		n := min(workers*2, limit-done)
		cams := make([]camera.Camera, n)
		infos := make([]effects.FrameInfo, n)
		for i := 0; i < n; i++ {
			infos[i] = p.frameInfo(p.step())
			cams[i] = *p.Camera
		}

		frames := make([]*image.RGBA, n)
		start := time.Now()
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				img := system.GetImage(rect)
				p.draw(img, &cams[i], infos[i])
				frames[i] = img
				return nil
			})
		}
		err := g.Wait()
		p.stats.Render += time.Since(start)
		if err != nil {
			release(frames)
			p.Log.Printf("[!] Остановлено после %d кадров", done)
			return nil
		}

		for i, img := range frames {
			if err := p.present(surf, img, infos[i].Frame); err != nil {
				release(frames)
				return err
			}
			if done+i+1 == limit || (done+i+1)%max(p.Config.FPS, 1) == 0 {
				p.Log.Printf("[>] Готово: %d/%d", done+i+1, limit)
			}
		}
		release(frames)
		done += n
	}
	return nil
}

func release(frames []*image.RGBA) {
	for i, img := range frames {
		if img != nil {
			system.PutImage(img)
			frames[i] = nil
		}
	}
}

// Stats of the last Run.
func (p *Project) Stats() Stats { return p.stats }

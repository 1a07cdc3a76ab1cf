// Command flightlog flies the camera through a tunnel without a display and
// writes the flight as a YAML scenario that the tunnel command can replay.
package main

import (
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"

	"github.com/ivlev/tunnel/internal/analyzer"
	"github.com/ivlev/tunnel/internal/camera"
	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/director"
	"github.com/ivlev/tunnel/internal/renderer"
	"github.com/ivlev/tunnel/internal/source"
	"github.com/ivlev/tunnel/internal/tunnel"
)

type options struct {
	cfg     *config.Config
	config  string
	output  string
	preview int
	print   bool
}

func bindFlags(fs *flag.FlagSet, o *options) {
	cfg := o.cfg
	fs.StringVar(&o.config, "config", "", "YAML файл настроек (тот же, что у tunnel); флаги важнее")
	fs.StringVar(&o.output, "output", "", "Путь к сценарию (если пусто, генерируется автоматически в flights/)")
	fs.IntVar(&o.preview, "preview", 160, "Ширина проверочных кадров (0 - без проверки)")
	fs.BoolVar(&o.print, "print", false, "Также вывести YAML сценария в stdout")

	fs.IntVar(&cfg.PointCount, "points", cfg.PointCount, "Количество случайных опорных точек")
	fs.IntVar(&cfg.CurveSegments, "segments", cfg.CurveSegments, "Сегменты трубы вдоль кривой")
	fs.Float64Var(&cfg.TubeRadius, "radius", cfg.TubeRadius, "Радиус трубы")
	fs.IntVar(&cfg.RadialSegments, "radial", cfg.RadialSegments, "Частиц в каждом кольце")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Сид генератора (0 - новый)")
	fs.IntVar(&cfg.Frames, "frames", cfg.Frames, "Количество кадров (0 - один полный круг до сброса)")
	fs.Float64Var(&cfg.ProgressIncrement, "step", cfg.ProgressIncrement, "Шаг по кривой за кадр, в (0, 1)")
	fs.Float64Var(&cfg.RollIncrement, "roll", cfg.RollIncrement, "Поворот камеры за кадр, радианы")
	fs.IntVar(&cfg.KeyframeInterval, "keyframe-every", cfg.KeyframeInterval, "Кадров между ключевыми кадрами")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "FPS, записываемый в сценарий")
	fs.StringVar(&cfg.Detector, "detector", cfg.Detector, "Анализ заполненности кадров: luma, fast")
}

// parseFlags works like the tunnel command: flags are parsed again on top
// of the -config file so explicit ones win.
func parseFlags(args []string) (*options, error) {
	o := &options{cfg: config.Default()}
	fs := flag.NewFlagSet("flightlog", flag.ExitOnError)
	bindFlags(fs, o)
	fs.Parse(args)

	if o.config != "" {
		fileCfg, err := config.Load(o.config)
		if err != nil {
			return nil, err
		}
		o.cfg = fileCfg
		fs = flag.NewFlagSet("flightlog", flag.ExitOnError)
		bindFlags(fs, o)
		fs.Parse(args)
	}
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

func run(o *options, out io.Writer) (*director.Scenario, error) {
	cfg := o.cfg
	detector, err := analyzer.NewDetector(cfg.Detector)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfiguration, err)
	}
	if o.output == "" {
		o.output = director.GenerateScenarioPath("")
	}

	fmt.Fprintln(out, "=== Запись полета ===")
	fmt.Fprintf(out, "Сценарий: %s\n\n", o.output)

	fmt.Fprintln(out, "[1/3] Генерация туннеля...")
	var rng *source.Seeded
	if cfg.Seed != 0 {
		rng = source.NewSeeded(cfg.Seed)
	} else {
		rng = source.NewEntropy()
	}
	params := tunnel.ParamsFrom(cfg)
	t, err := tunnel.Generate(rng, params)
	if err != nil {
		return nil, fmt.Errorf("ошибка генерации туннеля: %w", err)
	}
	lo, hi := t.Field.Bounds()
	fmt.Fprintf(out, "✓ Сид %d: %d опорных точек, %d частиц\n", rng.Seed(), len(t.ControlPoints), t.Field.Len())
	fmt.Fprintf(out, "✓ Габариты: (%.1f, %.1f, %.1f) .. (%.1f, %.1f, %.1f)\n\n", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)

	fmt.Fprintln(out, "[2/3] Полет...")
	st := camera.NewState(cfg.ProgressIncrement, cfg.RollIncrement)
	frames := cfg.Frames
	if frames == 0 {
		frames = camera.CycleLength(cfg.ProgressIncrement)
	}
	d := director.NewDirector(cfg.KeyframeInterval, cfg.FPS)
	scenario, err := d.GenerateScenario(t, rng.Seed(), params, st, frames)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи полета: %w", err)
	}
	fmt.Fprintf(out, "✓ %d кадров, %d ключевых кадров\n", scenario.Frames, len(scenario.Keyframes))
	if o.preview > 0 {
		fmt.Fprintf(out, "✓ %s\n", checkCoverage(out, t, cfg, detector, scenario, o.preview))
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "[3/3] Сохранение сценария...")
	if err := director.WriteScenario(scenario, o.output); err != nil {
		return nil, fmt.Errorf("ошибка сохранения сценария: %w", err)
	}
	fmt.Fprintf(out, "[+++] Полет сохранен: %s\n", o.output)
	fmt.Fprintf(out, "Повтор: tunnel -scenario %s\n", o.output)
	if o.print {
		fmt.Fprintln(out)
		if err := director.EncodeScenario(out, scenario); err != nil {
			return nil, err
		}
	}
	return scenario, nil
}

// checkCoverage renders every keyframe at a small size and reports how much
// of each frame the particles cover.
func checkCoverage(out io.Writer, t *tunnel.Tunnel, cfg *config.Config, d analyzer.Detector, s *director.Scenario, width int) analyzer.Summary {
	height := max(width*cfg.Height/cfg.Width, 1)
	scene := renderer.NewScene(t.Field.Points, cfg)
	rast := &renderer.Rasterizer{Supersample: 1}
	cam := camera.New(cfg.FOV, 1, cfg.Near, cfg.Far)
	cam.SetViewport(width, height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	monitor := analyzer.NewMonitor(d, 1)
	for _, kf := range s.Keyframes {
		camera.Place(cam, kf.Position, kf.Target, kf.Roll)
		rast.Render(img, scene, cam)
		if blank, err := monitor.Observe(kf.Frame, img); err == nil && blank {
			fmt.Fprintf(out, "  [!] Ключевой кадр %d пустой\n", kf.Frame)
		}
	}
	return monitor.Summary()
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatalf("[-] Ошибка настроек: %v", err)
	}
	if _, err := run(o, os.Stdout); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ivlev/tunnel/internal/config"
	"github.com/ivlev/tunnel/internal/engine"
	"github.com/ivlev/tunnel/internal/surface"
	"github.com/ivlev/tunnel/internal/system"
	"github.com/ivlev/tunnel/internal/terminal"
	"github.com/ivlev/tunnel/internal/video"
)

// Set with -ldflags "-X main.version=...".
var version = "dev"

// paths are the flags that name files rather than settings.
type paths struct {
	config string
	dump   string
}

func bindFlags(fs *flag.FlagSet, cfg *config.Config, p *paths) {
	fs.StringVar(&p.config, "config", "", "YAML файл настроек; флаги из командной строки важнее")
	fs.StringVar(&p.dump, "dump-config", "", "Сохранить итоговые настройки в YAML файл и выйти")

	fs.IntVar(&cfg.PointCount, "points", cfg.PointCount, "Количество случайных опорных точек")
	fs.IntVar(&cfg.CurveSegments, "segments", cfg.CurveSegments, "Сегменты трубы вдоль кривой")
	fs.Float64Var(&cfg.TubeRadius, "radius", cfg.TubeRadius, "Радиус трубы")
	fs.IntVar(&cfg.RadialSegments, "radial", cfg.RadialSegments, "Частиц в каждом кольце")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Сид генератора (0 - новый при каждом запуске)")

	fs.Float64Var(&cfg.ProgressIncrement, "step", cfg.ProgressIncrement, "Шаг по кривой за кадр, в (0, 1)")
	fs.Float64Var(&cfg.RollIncrement, "roll", cfg.RollIncrement, "Поворот камеры за кадр, радианы")
	fs.Float64Var(&cfg.FOV, "fov", cfg.FOV, "Вертикальный угол обзора, градусы")

	fs.StringVar(&cfg.Surface, "surface", cfg.Surface, "Вывод: terminal, video, png")
	fs.StringVar(&cfg.OutputPath, "output", cfg.OutputPath, "Видео или папка PNG (если пусто, генерируется автоматически в output/)")
	fs.IntVar(&cfg.Width, "width", cfg.Width, "Ширина (video, png)")
	fs.IntVar(&cfg.Height, "height", cfg.Height, "Высота (video, png)")
	fs.StringVar(&cfg.Preset, "preset", cfg.Preset, "Пресет формата: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram), 1:1")
	fs.IntVar(&cfg.FPS, "fps", cfg.FPS, "FPS")
	fs.IntVar(&cfg.Frames, "frames", cfg.Frames,
		"Количество кадров (0 - один полный круг для video/png, бесконечно в терминале). "+
			"Круг считается по реальному моменту сброса: для шага 0.001 это 999 кадров. "+
			"Затухание в конце видео ставится на последний плановый кадр, поэтому прерванное видео обрывается без него")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "Потоки")
	fs.Float64Var(&cfg.PointSize, "point-size", cfg.PointSize, "Размер частицы в единицах сцены")
	fs.Float64Var(&cfg.MaxPointSize, "max-point-size", cfg.MaxPointSize, "Максимальный размер частицы в пикселях (0 - без ограничения)")
	fs.StringVar(&cfg.PointColor, "color", cfg.PointColor, "Цвет частиц, #rrggbb")
	fs.StringVar(&cfg.Background, "background", cfg.Background, "Цвет фона, #rrggbb")
	fs.Float64Var(&cfg.Fog, "fog", cfg.Fog, "Глубина, на которой частицы исчезают (0 - без тумана)")
	fs.IntVar(&cfg.Supersample, "supersample", cfg.Supersample, "Коэффициент суперсэмплинга")
	fs.Func("effects", "Эффекты через запятую: hud, badge, vignette", func(s string) error {
		cfg.Effects = nil
		for _, name := range strings.Split(s, ",") {
			if name = strings.TrimSpace(name); name != "" {
				cfg.Effects = append(cfg.Effects, name)
			}
		}
		return nil
	})

	fs.StringVar(&cfg.VideoEncoder, "encoder", cfg.VideoEncoder, "H.264 кодек (пусто - лучший доступный)")
	fs.IntVar(&cfg.Quality, "quality", cfg.Quality, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	fs.Float64Var(&cfg.FadeDuration, "fade", cfg.FadeDuration, "Длительность затухания в начале и в конце (сек)")
	fs.StringVar(&cfg.AudioPath, "audio", cfg.AudioPath, "Путь к аудио для видео")
	fs.Float64Var(&cfg.ToneHz, "tone", cfg.ToneHz, "Синтезировать гул с этой частотой, Гц (0 - без звука)")

	fs.StringVar(&cfg.ScenarioInput, "scenario", cfg.ScenarioInput, "Повторить записанный полет (путь или \"latest\")")
	fs.StringVar(&cfg.ScenarioOutput, "scenario-out", cfg.ScenarioOutput, "Записать полет в YAML (\"auto\" - в flights/)")
	fs.IntVar(&cfg.KeyframeInterval, "keyframe-every", cfg.KeyframeInterval, "Кадров между ключевыми кадрами")

	fs.StringVar(&cfg.LogPath, "log", cfg.LogPath, "Файл лога (в режиме терминала без него лог не пишется)")
	fs.BoolVar(&cfg.ShowStats, "stats", cfg.ShowStats, "Вывести отчет о производительности и дописать его в benchmark.log")
	fs.StringVar(&cfg.Detector, "detector", cfg.Detector, "Анализ заполненности кадров для отчета: luma, fast")
}

// parseConfig reads the flags, and when -config is given parses them again
// on top of the file so explicit flags win.
func parseConfig(args []string) (*config.Config, paths, error) {
	var p paths
	cfg := config.Default()
	cfg.Workers = system.RecommendedWorkers()
	fs := flag.NewFlagSet("tunnel", flag.ExitOnError)
	bindFlags(fs, cfg, &p)
	fs.Parse(args)

	if p.config != "" {
		fileCfg, err := config.Load(p.config)
		if err != nil {
			return nil, p, err
		}
		fs = flag.NewFlagSet("tunnel", flag.ExitOnError)
		bindFlags(fs, fileCfg, &p)
		fs.Parse(args)
		cfg = fileCfg
	}

	cfg.Surface = strings.ToLower(cfg.Surface)
	cfg.BuildVersion = version
	if err := cfg.ApplyPreset(); err != nil {
		return nil, p, err
	}
	return cfg, p, cfg.Validate()
}

func newLogger(cfg *config.Config) (*log.Logger, io.Closer, error) {
	if cfg.LogPath != "" {
		f, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		return log.New(f, "", log.LstdFlags), f, nil
	}
	if cfg.Surface == config.SurfaceTerminal {
		// Экраном владеет tcell, лог туда писать нельзя
		return log.New(io.Discard, "", 0), io.NopCloser(nil), nil
	}
	return log.New(os.Stdout, "", 0), io.NopCloser(nil), nil
}

func defaultOutput(cfg *config.Config) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	if cfg.Surface == config.SurfacePNG {
		return filepath.Join("output", "tunnel_"+timestamp)
	}
	return filepath.Join("output", fmt.Sprintf("tunnel_%s.mp4", timestamp))
}

func openSurface(ctx context.Context, cfg *config.Config, project *engine.Project, logger *log.Logger) (surface.Surface, error) {
	switch cfg.Surface {
	case config.SurfaceTerminal:
		return terminal.New()

	case config.SurfacePNG:
		return surface.NewPNGSequence(cfg.OutputPath, cfg.Width, cfg.Height)

	case config.SurfaceVideo:
		if !system.HasFFmpeg() {
			return nil, errors.New("ffmpeg не найден в PATH")
		}
		if cfg.VideoEncoder == "" {
			cfg.VideoEncoder = system.GetBestH264Encoder()
			if cfg.VideoEncoder != "libx264" {
				logger.Printf("[*] Обнаружено аппаратное ускорение: %s", cfg.VideoEncoder)
			}
		}
		if cfg.Quality == 0 {
			cfg.Quality = system.DefaultQuality(cfg.VideoEncoder)
		}
		if cfg.FadeDuration > 0 && !system.CheckFilterSupport("fade") {
			logger.Printf("[!] В ffmpeg нет фильтра fade, затухание отключено")
			cfg.FadeDuration = 0
		}

		frames := project.FrameLimit(false)
		audioDir, err := os.MkdirTemp("", "tunnel-audio-")
		if err != nil {
			return nil, err
		}
		audioPath, err := project.PrepareSoundtrack(audioDir, frames)
		if err != nil {
			os.RemoveAll(audioDir)
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(cfg.OutputPath), 0755); err != nil {
			os.RemoveAll(audioDir)
			return nil, err
		}

		// ffmpeg должен пережить отмену, чтобы дописать файл
		enc, err := video.NewFFmpegEncoder(context.WithoutCancel(ctx), video.Options{
			Output:  cfg.OutputPath,
			Width:   cfg.Width,
			Height:  cfg.Height,
			FPS:     cfg.FPS,
			Frames:  frames,
			Encoder: cfg.VideoEncoder,
			Quality: cfg.Quality,
			Fade:    cfg.FadeDuration,
			Audio:   audioPath,
		})
		if err != nil {
			os.RemoveAll(audioDir)
			return nil, err
		}
		return &cleanup{Surface: enc, dir: audioDir}, nil
	}
	return nil, fmt.Errorf("%w: неизвестный вывод %q", config.ErrInvalidConfiguration, cfg.Surface)
}

// cleanup removes the synthesized soundtrack once the video is closed.
type cleanup struct {
	surface.Surface
	dir string
}

func (c *cleanup) Close() error {
	defer os.RemoveAll(c.dir)
	return c.Surface.Close()
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	if cfg.Surface != config.SurfaceTerminal && cfg.OutputPath == "" {
		cfg.OutputPath = defaultOutput(cfg)
	}
	if cfg.Surface != config.SurfaceTerminal {
		logger.Printf("[*] Результат: %s | Разрешение: %dx%d @ %d FPS | Потоков: %d", cfg.OutputPath, cfg.Width, cfg.Height, cfg.FPS, cfg.Workers)
	}

	project := engine.NewProject(cfg, logger)
	if err := project.Setup(); err != nil {
		return err
	}

	surf, err := openSurface(ctx, cfg, project, logger)
	if err != nil {
		return fmt.Errorf("ошибка открытия вывода %s: %w", cfg.Surface, err)
	}

	runErr := project.Run(ctx, surf)
	if err := surf.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("ошибка закрытия вывода %s: %w", cfg.Surface, err)
	}
	return runErr
}

func main() {
	cfg, p, err := parseConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("[-] Ошибка настроек: %v", err)
	}

	if p.dump != "" {
		if err := cfg.Save(p.dump); err != nil {
			log.Fatalf("[-] Не удалось сохранить настройки: %v", err)
		}
		fmt.Printf("[+++] Настройки сохранены: %s\n", p.dump)
		return
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("[-] Не удалось открыть лог: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		closer.Close()
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	if cfg.Surface != config.SurfaceTerminal {
		fmt.Printf("[+++] Успех! Результат: %s\n", cfg.OutputPath)
	}
}

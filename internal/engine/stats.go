package engine

import (
	"fmt"
	"os"
	"time"

	"github.com/ivlev/tunnel/internal/system"
)

// Stats are the timings of one Run.
type Stats struct {
	Start   time.Time
	Frames  int
	Workers int
	Render  time.Duration
	Present time.Duration
	Total   time.Duration
}

// FPS is the effective frame rate over the whole run.
func (s Stats) FPS() float64 {
	if s.Total <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Total.Seconds()
}

func (p *Project) report() {
	s := p.stats
	host := system.DescribeHost()
	rss, err := system.ProcessRSS()
	if err != nil {
		p.Log.Printf("[!] Не удалось получить память процесса: %v", err)
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s\n"+
			"Host: %s\n"+
			"Seed: %d\n"+
			"Frames: %d (%d workers)\n"+
			"Total Time: %.2fs\n"+
			"Rendering: %.2fs\n"+
			"Presenting: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Memory (RSS): %s\n",
		p.Config.BuildVersion, host, p.Seed, s.Frames, s.Workers,
		s.Total.Seconds(), s.Render.Seconds(), s.Present.Seconds(), s.FPS(),
		system.FormatBytes(rss),
	)
	if p.monitor != nil {
		report += "Coverage: " + p.monitor.Summary().String() + "\n"
	}
	report += "----------------------------"
	p.Log.Print(report)

	if p.BenchmarkLog == "" {
		return
	}
	entry := fmt.Sprintf("[%s] Build: %s | Surface: %s | Seed: %d | Frames: %d | Total: %.2fs | Render: %.2fs | Present: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		p.Config.Surface,
		p.Seed,
		s.Frames,
		s.Total.Seconds(),
		s.Render.Seconds(),
		s.Present.Seconds(),
		s.FPS(),
	)

	f, err := os.OpenFile(p.BenchmarkLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		p.Log.Printf("[!] Не удалось записать %s: %v", p.BenchmarkLog, err)
		return
	}
	defer f.Close()
	f.WriteString(entry)
}

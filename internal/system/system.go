package system

import (
	"os/exec"
	"strings"
	"sync"
)

var (
	ffmpegOnce     sync.Once
	ffmpegEncoders string
	ffmpegFilters  string
)

func probeFFmpeg() {
	ffmpegOnce.Do(func() {
		if out, err := exec.Command("ffmpeg", "-hide_banner", "-encoders").CombinedOutput(); err == nil {
			ffmpegEncoders = string(out)
		}
		if out, err := exec.Command("ffmpeg", "-hide_banner", "-filters").CombinedOutput(); err == nil {
			ffmpegFilters = string(out)
		}
	})
}

// HasFFmpeg reports whether an ffmpeg binary is on PATH.
func HasFFmpeg() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// GetBestH264Encoder picks a hardware H.264 encoder when ffmpeg has one and
// falls back to libx264.
func GetBestH264Encoder() string {
	probeFFmpeg()
	return pickEncoder(ffmpegEncoders)
}

func pickEncoder(list string) string {
	// VideoToolbox (macOS), then NVENC
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(list, name) {
			return name
		}
	}
	return "libx264"
}

// DefaultQuality is the quality value that suits encoder when none is set.
func DefaultQuality(encoder string) int {
	switch encoder {
	case "h264_videotoolbox":
		return 75 // bitrate = Q*100 kbit/s
	case "h264_nvenc":
		return 28
	default:
		return 23 // CRF
	}
}

// CheckFilterSupport reports whether the local ffmpeg build has filter.
func CheckFilterSupport(filter string) bool {
	probeFFmpeg()
	for _, line := range strings.Split(ffmpegFilters, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == filter {
			return true
		}
	}
	return false
}

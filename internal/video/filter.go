package video

import (
	"fmt"
	"strings"
)

// Duration is the length of frames frames at fps.
func Duration(frames, fps int) float64 {
	if fps <= 0 {
		return 0
	}
	return float64(frames) / float64(fps)
}

// fadeWindow shortens fade so that fade in and fade out do not overlap.
func fadeWindow(total, fade float64) float64 {
	if fade <= 0 || total <= 0 {
		return 0
	}
	if 2*fade > total {
		fade = total / 2
	}
	return fade
}

// GenerateFadeFilter creates the -vf chain fading the flight in from black
// and out to black at its end. Empty when there is nothing to fade.
func GenerateFadeFilter(frames, fps int, fade float64) string {
	total := Duration(frames, fps)
	fade = fadeWindow(total, fade)
	if fade == 0 {
		return ""
	}
	return strings.Join([]string{
		fmt.Sprintf("fade=t=in:st=0:d=%.3f", fade),
		fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", total-fade, fade),
	}, ",")
}

// GenerateAudioFadeFilter is the matching -af chain for the soundtrack.
func GenerateAudioFadeFilter(frames, fps int, fade float64) string {
	total := Duration(frames, fps)
	fade = fadeWindow(total, fade)
	if fade == 0 {
		return ""
	}
	return fmt.Sprintf("afade=t=in:st=0:d=%.3f,afade=t=out:st=%.3f:d=%.3f", fade, total-fade, fade)
}

// QualityArgs maps a quality value onto the rate control of encoder.
func QualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox has no CRF; Q*100 kbit/s
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

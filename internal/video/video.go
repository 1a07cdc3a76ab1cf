// Package video encodes the flythrough to a file by streaming raw RGBA
// frames into a single ffmpeg process.
package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os/exec"
)

// Options describe the encoded output.
type Options struct {
	Output  string
	Width   int
	Height  int
	FPS     int
	Frames  int // expected length, used for the fades
	Encoder string
	Quality int
	Fade    float64 // seconds, 0 = no fade
	Audio   string  // optional soundtrack muxed in
}

// BuildArgs returns the ffmpeg command line for opts, reading frames from
// stdin.
func BuildArgs(opts Options) []string {
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", "-",
	}
	if opts.Audio != "" {
		args = append(args, "-i", opts.Audio)
	}

	if vf := GenerateFadeFilter(opts.Frames, opts.FPS, opts.Fade); vf != "" {
		args = append(args, "-vf", vf)
	}
	args = append(args, "-map", "0:v")

	if opts.Audio != "" {
		args = append(args, "-map", "1:a")
		if af := GenerateAudioFadeFilter(opts.Frames, opts.FPS, opts.Fade); af != "" {
			args = append(args, "-af", af)
		}
		args = append(args, "-c:a", "aac", "-shortest")
	}

	encoder := opts.Encoder
	if encoder == "" {
		encoder = "libx264"
	}
	args = append(args, "-pix_fmt", "yuv420p", "-c:v", encoder)
	args = append(args, QualityArgs(encoder, opts.Quality)...)
	args = append(args, opts.Output)
	return args
}

// FFmpegEncoder is a surface that pipes every presented frame to ffmpeg.
type FFmpegEncoder struct {
	opts   Options
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	frames int
}

// NewFFmpegEncoder starts ffmpeg. Cancelling ctx kills the process.
func NewFFmpegEncoder(ctx context.Context, opts Options) (*FFmpegEncoder, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.Width%2 != 0 || opts.Height%2 != 0 {
		return nil, fmt.Errorf("video size must be positive and even, got %dx%d", opts.Width, opts.Height)
	}
	if opts.FPS <= 0 {
		return nil, fmt.Errorf("video fps must be positive, got %d", opts.FPS)
	}

	e := &FFmpegEncoder{opts: opts}
	e.cmd = exec.CommandContext(ctx, "ffmpeg", BuildArgs(opts)...)
	e.cmd.Stderr = &e.stderr

	stdin, err := e.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}
	e.stdin = stdin

	if err := e.cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}
	return e, nil
}

func (e *FFmpegEncoder) Size() (int, int) { return e.opts.Width, e.opts.Height }

// Frames is the number of frames written so far.
func (e *FFmpegEncoder) Frames() int { return e.frames }

func (e *FFmpegEncoder) Present(frame *image.RGBA) error {
	if err := writeRawRGBA(e.stdin, frame); err != nil {
		return fmt.Errorf("write frame %d: %w (%s)", e.frames, err, bytes.TrimSpace(e.stderr.Bytes()))
	}
	e.frames++
	return nil
}

// Close ends the stream and waits for ffmpeg to finish the file.
func (e *FFmpegEncoder) Close() error {
	e.stdin.Close()
	if err := e.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, e.stderr.String())
	}
	return nil
}

// writeRawRGBA writes the pixels of img row by row without stride padding.
func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen && b.Min == (image.Point{}) {
		_, err := w.Write(img.Pix[:rowLen*b.Dy()])
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		if _, err := w.Write(img.Pix[i : i+rowLen]); err != nil {
			return err
		}
	}
	return nil
}

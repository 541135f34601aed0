// Command pcmchain decodes an audio file, runs it through the configured
// stage chain and writes the result as WAV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/uuid"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"golang.org/x/sync/errgroup"

	"github.com/wingyippp/pcmchain"
	"github.com/wingyippp/pcmchain/audio"
	"github.com/wingyippp/pcmchain/engine"
	"github.com/wingyippp/pcmchain/formats/aiff"
	"github.com/wingyippp/pcmchain/formats/mp3"
	"github.com/wingyippp/pcmchain/formats/vorbis"
	"github.com/wingyippp/pcmchain/formats/wav"
	"github.com/wingyippp/pcmchain/internal/config"
	"github.com/wingyippp/pcmchain/internal/observe"
	"github.com/wingyippp/pcmchain/pcm"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// job is one conversion requested on the command line.
type job struct {
	in, out string
	rate    int
	mono    bool
	stats   bool
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pcmchain", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configPath := fs.String("config", "", "path to the YAML configuration file (default: one enabled gain reducer)")
	inPath := fs.String("in", "", "input audio file: .wav, .aiff, .mp3 or .ogg")
	outPath := fs.String("out", "", `output WAV file, or "-" for stdout`)
	bufferSize := fs.Int("buffer", 0, "read size in bytes, overriding buffer_size")
	rate := fs.Int("rate", 0, "resample the input to this rate before the chain")
	mono := fs.Bool("mono", false, "mix the input down to mono before the chain")
	stats := fs.Bool("stats", false, "log metric totals when done")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *inPath == "" || *outPath == "" {
		fmt.Fprintln(stderr, "pcmchain: -in and -out are required")
		fs.Usage()
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "pcmchain: %v\n", err)
			return 1
		}
	}
	if *bufferSize > 0 {
		cfg.BufferSize = *bufferSize
	}

	logger := newLogger(stderr, cfg.LogLevel).With("run_id", uuid.NewString())
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	j := job{in: *inPath, out: *outPath, rate: *rate, mono: *mono, stats: *stats}
	if err := convert(ctx, cfg, j, stdout, logger); err != nil {
		logger.Error("conversion failed", "in", j.in, "err", err)
		return 1
	}
	return 0
}

func newLogger(w io.Writer, level config.LogLevel) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level.Level()}))
}

func newDecoders() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	return reg
}

func convert(ctx context.Context, cfg *config.Config, j job, stdout io.Writer, logger *slog.Logger) (err error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(j.in), "."))

	f, err := os.Open(j.in)
	if err != nil {
		return err
	}
	defer f.Close()

	var src audio.Source
	src, err = newDecoders().Decode(ext, f)
	if err != nil {
		return fmt.Errorf("decode %q: %w", j.in, err)
	}
	defer src.Close()

	if j.rate > 0 {
		src = audio.NewResampler(src, j.rate)
	}
	if j.mono {
		src = audio.NewMonoMixer(src)
	}

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer mp.Shutdown(context.Background())

	metrics, err := observe.NewMetrics(mp)
	if err != nil {
		return err
	}

	deps := config.Deps{EngineName: cfg.Engine, Logger: logger, Metrics: metrics}
	if e := cfg.NewEngine(); e != nil {
		b, ierr := engine.Init(e, engine.WithLogger(logger))
		if ierr != nil {
			return fmt.Errorf("load engine %q: %w", cfg.Engine, ierr)
		}
		defer func() {
			if cerr := b.Close(); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}()
		deps.Engine = b.Registry()
	}

	chain, err := config.DefaultRegistry().BuildChain(cfg, deps)
	if err != nil {
		return err
	}

	in := src.Format()
	size := cfg.BufferSize
	if size <= 0 {
		size = src.BufSize()
	}
	size = max(size/in.BytesPerFrame(), 1) * in.BytesPerFrame()

	sink, err := openSink(j.out, stdout)
	if err != nil {
		return err
	}
	defer sink.abort()

	logger.Info("converting", "in", j.in, "format", in.String(), "stages", len(cfg.Stages), "engine", cfg.Engine)

	g, gctx := errgroup.WithContext(ctx)
	chunks := make(chan []byte, readAheadChunks)

	g.Go(func() error {
		return readAhead(gctx, src, size, chunks)
	})

	var out pcm.Format
	g.Go(func() error {
		cs := &chanSource{ctx: gctx, format: in, size: size, chunks: chunks}
		var err error
		out, err = pcmchain.RenderTo(gctx, cs, chain, size, func(p []byte) error {
			return sink.write(chain.OutputFormat(), p)
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}
	if err := sink.close(out); err != nil {
		return err
	}

	logger.Info("converted", "out", j.out, "format", out.String(), "bytes", sink.written)

	if j.stats {
		if err := logTotals(ctx, reader, logger); err != nil {
			return err
		}
	}
	return nil
}

// wavSink writes chain output as WAV through wav.Writer, which patches the
// header on close. Output for stdout goes to a temporary file first and is
// copied over once complete.
type wavSink struct {
	file    *os.File
	stdout  io.Writer
	w       *wav.Writer
	written int
	closed  bool
}

func openSink(path string, stdout io.Writer) (*wavSink, error) {
	if path == "-" {
		file, err := os.CreateTemp("", "pcmchain-*.wav")
		if err != nil {
			return nil, err
		}
		return &wavSink{file: file, stdout: stdout}, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &wavSink{file: file}, nil
}

func (s *wavSink) write(f pcm.Format, p []byte) error {
	if s.w == nil {
		w, err := wav.NewWriter(s.file, f)
		if err != nil {
			return err
		}
		s.w = w
	}
	n, err := s.w.Write(p)
	s.written += n
	return err
}

func (s *wavSink) close(f pcm.Format) (err error) {
	s.closed = true
	defer func() {
		if cerr := s.cleanup(); err == nil {
			err = cerr
		}
	}()

	// an empty stream still gets a header
	if s.w == nil {
		if s.w, err = wav.NewWriter(s.file, f); err != nil {
			return err
		}
	}
	if err := s.w.Close(); err != nil {
		return err
	}

	if s.stdout == nil {
		return nil
	}
	if _, err := s.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	_, err = io.Copy(s.stdout, s.file)
	return err
}

// cleanup closes the file and removes it when it only stood in for stdout.
func (s *wavSink) cleanup() error {
	err := s.file.Close()
	if s.stdout != nil {
		if rerr := os.Remove(s.file.Name()); err == nil {
			err = rerr
		}
	}
	return err
}

// abort releases the file of a failed run.
func (s *wavSink) abort() {
	if s.closed {
		return
	}
	s.cleanup()
}

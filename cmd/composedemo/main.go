// Command composedemo renders a compositor scene to a PNG file.
//
// Usage:
//
//	composedemo [-config settings.toml] [-width 1280] [-height 720] [-msaa 4x] [-blur] [-frames 1] [-out compose.png] [-gpu]
//
// Flags given on the command line override the settings file.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/schollz/progressbar/v3"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/config"
	"github.com/gogpu/compose/internal/glyphs"
	"github.com/gogpu/compose/render"
)

// useGPU is set by gpu.go when the wgpu backend is compiled in.
var useGPU func() bool

func main() {
	var (
		configPath = flag.String("config", "", "settings file (.toml, .yaml)")
		verbose    = flag.Bool("v", false, "debug logging")
		width      = flag.Uint("width", 0, "image width")
		height     = flag.Uint("height", 0, "image height")
		flags      = config.Default()
	)
	flag.Var(&flags.Msaa, "msaa", "multisampling: off, 2x, 4x, 8x or 16x")
	flag.BoolVar(&flags.Blur, "blur", false, "blur the resolved image")
	flag.IntVar(&flags.Frames, "frames", 1, "frames to render")
	flag.IntVar(&flags.Workers, "workers", 0, "software renderer workers (0 = GOMAXPROCS)")
	flag.StringVar(&flags.Output, "out", flags.Output, "output PNG file")
	flag.BoolVar(&flags.GPU, "gpu", false, "render with the wgpu backend")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	compose.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	settings := config.Default()
	if *configPath != "" {
		var err error
		if settings, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
	}
	flags.Width, flags.Height = uint32(*width), uint32(*height)
	applyFlags(&settings, flags)
	if err := settings.Validate(); err != nil {
		log.Fatalf("Invalid settings: %v", err)
	}

	if err := run(context.Background(), settings); err != nil {
		log.Fatalf("Render failed: %v", err)
	}
}

// applyFlags copies every flag the user set explicitly over s.
func applyFlags(s *config.Settings, f config.Settings) {
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "width":
			s.Width = f.Width
		case "height":
			s.Height = f.Height
		case "msaa":
			s.Msaa = f.Msaa
		case "blur":
			s.Blur = f.Blur
		case "frames":
			s.Frames = f.Frames
		case "workers":
			s.Workers = f.Workers
		case "out":
			s.Output = f.Output
		case "gpu":
			s.GPU = f.GPU
		}
	})
}

func run(ctx context.Context, s config.Settings) error {
	atlas, err := glyphs.NewGoAtlas(18)
	if err != nil {
		return err
	}
	defer atlas.Close()

	screen := mgl32.Vec2{float32(s.Width), float32(s.Height)}
	table := compose.NewTextureTable()
	table.SetFontAtlas(atlas.Texture())
	records := buildScene(screen, table, atlas)
	if err := compose.ValidateInstances(records, table); err != nil {
		return err
	}

	r := render.NewSoftwareRenderer(render.Options{Workers: s.Workers})
	defer r.Close()
	store := compose.NewInstanceStore()
	defer store.Close()

	gpu := s.GPU && useGPU != nil && useGPU()
	if s.GPU && !gpu {
		slog.Warn("wgpu backend not compiled in, using the software renderer")
	}

	pb := progressbar.Default(int64(s.Frames))
	defer pb.Close()

	var img image.Image
	start := time.Now()
	for range s.Frames {
		instances, err := store.Write(ctx, records)
		if err != nil {
			return err
		}
		frame := &compose.Frame{
			State:       compose.NewFrameState(mgl32.Ident4(), mgl32.Ident4(), s.Width, s.Height),
			Instances:   instances,
			Textures:    table,
			Clear:       compose.Hex("#1b1d23"),
			SampleCount: s.Msaa.SampleCount(),
			Blur:        s.Blur,
		}
		if gpu {
			img, err = render.RenderImage(ctx, r, frame)
		} else {
			var out *render.Output
			if out, err = r.Render(ctx, frame); err == nil {
				img = out.Image()
			}
		}
		if err != nil {
			return err
		}
		_ = pb.Add(1)
	}
	elapsed := time.Since(start)

	if err := savePNG(s.Output, img); err != nil {
		return err
	}
	slog.Info("scene rendered",
		"output", s.Output,
		"size", fmt.Sprintf("%dx%d", s.Width, s.Height),
		"msaa", s.Msaa,
		"blur", s.Blur,
		"frames", s.Frames,
		"per_frame", elapsed/time.Duration(s.Frames))
	return nil
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

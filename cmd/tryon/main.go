package main

import (
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/bharatheritage/tryon/internal/config"
	imagepkg "github.com/bharatheritage/tryon/internal/image"
	"github.com/bharatheritage/tryon/internal/imagen"
	"github.com/bharatheritage/tryon/internal/tryon"
	"github.com/bharatheritage/tryon/internal/util"
)

var version = "dev"

type (
	cmd struct {
		Version   struct{}     `cmd:"" help:"Show version."`
		Composite cmdComposite `cmd:"" help:"Put a garment onto a person photo and write the results as PNG files."`
	}
	cmdComposite struct {
		Person  string `arg:"" name:"person" help:"Path to the person photo." type:"existingfile"`
		Garment string `arg:"" name:"garment" help:"Path to the garment image." type:"existingfile"`
		Count   int    `help:"Number of variants to generate (1-4)." default:"1"`
		Steps   int    `help:"Quality steps passed to the AI service (1-150)." default:"32"`
		Out     string `help:"Output directory." default:"out" type:"path"`
		AI      bool   `help:"Try the configured AI service first."`
	}
)

func main() {
	if err := doMain(context.Background(), os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func doMain(ctx context.Context, stdout, stderr io.Writer, args []string) error {
	var c cmd
	parser, err := kong.New(&c,
		kong.Name("tryon"),
		kong.Description("Virtual try-on compositor"),
		kong.Writers(stdout, stderr),
	)
	if err != nil {
		return fmt.Errorf("creating parser: %w", err)
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	switch kctx.Command() {
	case "version":
		_, err = fmt.Fprintf(stdout, "tryon: %s\n", version)
		return err
	case "composite <person> <garment>":
		return runComposite(ctx, c.Composite, stdout, stderr)
	default:
		panic("unreachable")
	}
}

func runComposite(ctx context.Context, c cmdComposite, stdout, stderr io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(stderr)

	person, err := readImage(c.Person)
	if err != nil {
		return err
	}
	garment, err := readImage(c.Garment)
	if err != nil {
		return err
	}

	var service tryon.ImageService = tryon.Unavailable{}
	if c.AI {
		service = imagen.NewService(ctx, cfg, logger)
	}
	gen := tryon.New(
		tryon.WithService(service),
		tryon.WithPlacement(cfg.ImagePlacement()),
		tryon.WithTimeout(cfg.AI.Timeout),
		tryon.WithLogger(logger),
	)

	res, err := gen.Generate(ctx, tryon.Request{
		PersonImage:  person,
		GarmentImage: garment,
		QualitySteps: tryon.ClampQualitySteps(c.Steps),
		ImageCount:   tryon.ClampImageCount(c.Count),
	})
	if err != nil {
		return err
	}
	if c.AI {
		for _, w := range res.Warnings {
			logger.Warn(w)
		}
	}

	payloads := make([][]byte, 0, len(res.Images))
	for _, img := range res.Images {
		b, err := imagepkg.EncodePNG(img)
		if err != nil {
			return err
		}
		payloads = append(payloads, b)
	}
	paths, err := util.WriteFiles(c.Out, "tryon_%d.png", payloads)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(stdout, p)
	}
	logger.Debug("composite written", "source", res.Source, "count", len(paths))
	return nil
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := imagepkg.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

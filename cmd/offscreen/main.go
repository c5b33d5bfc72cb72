// Command offscreen renders one frame on an offscreen GPU surface and writes
// it to an image file.
//
// With no flags it clears a 640x480 surface on a hardware adapter to
// (0.3, 0.4, 0.5, 1.0) and writes test.png.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/headless"
)

func main() {
	var (
		variant      = flag.String("variant", "clear", "frame to render: clear or quad")
		output       = flag.String("o", "test.png", "output file (.png, .bmp, .tif, .tiff, .webp)")
		configPath   = flag.String("config", "", "TOML config file; flags given explicitly override it")
		adapter      = flag.String("adapter", "hardware", "adapter: hardware, low-power, software or any")
		bindProgram  = flag.Bool("bind-program", false, "make the quad program active before drawing")
		checkShaders = flag.Bool("check-shaders", false, "fail on shader compile or link errors")
		printGLSL    = flag.Bool("glsl", false, "print the GLSL translation of the quad shaders")
		verbose      = flag.Bool("v", false, "log to stderr")
	)
	flag.Parse()

	if *verbose {
		headless.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	cfg := headless.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = headless.LoadConfig(*configPath); err != nil {
			log.Fatalf("offscreen: %v", err)
		}
	}

	var flagErr error
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "variant":
			v, err := headless.ParseVariant(*variant)
			if err != nil {
				flagErr = err
			}
			cfg.Variant = v
		case "o":
			cfg.Output = *output
		case "adapter":
			cfg.Adapter = *adapter
		case "bind-program":
			cfg.Quad.BindProgram = *bindProgram
		case "check-shaders":
			cfg.Quad.CheckShaders = *checkShaders
		}
	})
	if flagErr != nil {
		log.Fatalf("offscreen: %v", flagErr)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("offscreen: %v", err)
	}

	for _, w := range flagWarnings(cfg, *printGLSL) {
		log.Printf("offscreen: %s", w)
	}
	if err := run(cfg, *printGLSL); err != nil {
		log.Fatalf("offscreen: %v", err)
	}
	os.Exit(0)
}

// flagWarnings lists flags that have no effect with cfg.
func flagWarnings(cfg headless.Config, printGLSL bool) []string {
	var out []string
	if cfg.Variant != headless.VariantQuad {
		if printGLSL {
			out = append(out, fmt.Sprintf("-glsl ignored: variant %s compiles no shaders", cfg.Variant))
		}
		if cfg.Quad.BindProgram || cfg.Quad.CheckShaders {
			out = append(out, fmt.Sprintf("quad options ignored: variant %s draws nothing", cfg.Variant))
		}
	}
	return out
}

func run(cfg headless.Config, printGLSL bool) error {
	s, err := headless.Setup(cfg.SetupConfig())
	if err != nil {
		return err
	}

	var pix *headless.PixelBuffer
	switch cfg.Variant {
	case headless.VariantQuad:
		qc := cfg.QuadConfig()
		if printGLSL {
			if err := dumpGLSL(s.GL, qc); err != nil {
				_ = s.Close()
				return err
			}
		}
		var stats headless.FrameStats
		pix, stats, err = headless.RenderQuad(s.GL, s.SurfaceInfo, qc)
		if err == nil {
			headless.Logger().Info("offscreen: quad rendered",
				"draws", stats.Draws, "skipped", stats.SkippedDraws)
		}
	default:
		pix, err = headless.RenderClear(s.GL, s.SurfaceInfo, cfg.FrameConfig())
	}
	if cerr := s.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	return pix.Save(cfg.Output)
}

func dumpGLSL(gl *headless.Functions, qc headless.QuadConfig) error {
	for _, sh := range []struct {
		kind headless.Enum
		src  string
	}{
		{headless.VERTEX_SHADER, qc.VertexShader},
		{headless.FRAGMENT_SHADER, qc.FragmentShader},
	} {
		name := gl.CreateShader(sh.kind)
		gl.ShaderSource(name, sh.src)
		gl.CompileShader(name)
		if gl.GetShaderiv(name, headless.COMPILE_STATUS) == headless.FALSE {
			return fmt.Errorf("%s: %s", sh.kind, gl.GetShaderInfoLog(name))
		}
		fmt.Printf("// %s\n%s\n", sh.kind, gl.GetTranslatedShaderSource(name))
		gl.DeleteShader(name)
	}
	return nil
}

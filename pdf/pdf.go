// Package pdf prints rendered bulletin HTML to A4 PDF with headless Chrome.
package pdf

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const (
	a4WidthIn  = 8.27
	a4HeightIn = 11.69
	marginIn   = 10 / 25.4 // 10mm
)

// Options controls page orientation.
type Options struct {
	Landscape bool
}

// Generator drives a local Chrome or Chromium binary.
type Generator struct {
	ChromePath string
	Logger     *zap.Logger
}

func New(chromePath string, logger *zap.Logger) *Generator {
	return &Generator{ChromePath: chromePath, Logger: logger}
}

// Generate prints htmlPath to outPath. It reports false with a nil error when
// no browser is configured or the browser cannot be started.
func (g *Generator) Generate(ctx context.Context, htmlPath, outPath string, opts Options) (bool, error) {
	if g.ChromePath == "" {
		g.Logger.Warn("⚠️  CHROME_PATH not set, skipping PDF", zap.String("file", filepath.Base(outPath)))
		return false, nil
	}

	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", htmlPath, err)
	}

	bin, err := exec.LookPath(g.ChromePath)
	if err != nil {
		g.Logger.Warn("⚠️  Browser not available, skipping PDF", zap.String("file", filepath.Base(outPath)), zap.Error(err))
		return false, nil
	}

	l := launcher.New().Context(ctx).Bin(bin).Headless(true).NoSandbox(true)
	controlURL, err := l.Launch()
	if err != nil {
		g.Logger.Warn("⚠️  Browser failed to start, skipping PDF", zap.String("file", filepath.Base(outPath)), zap.Error(err))
		return false, nil
	}
	// Cleanup waits for the process to exit, so it only runs after a launch.
	defer func() {
		l.Kill()
		l.Cleanup()
	}()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		g.Logger.Warn("⚠️  Browser unreachable, skipping PDF", zap.String("file", filepath.Base(outPath)), zap.Error(err))
		return false, nil
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: fileURL(abs)})
	if err != nil {
		return false, fmt.Errorf("open %s: %w", filepath.Base(abs), err)
	}
	if err := page.WaitLoad(); err != nil {
		return false, fmt.Errorf("wait for page load: %w", err)
	}
	if err := (proto.EmulationSetEmulatedMedia{Media: "print"}).Call(page); err != nil {
		return false, fmt.Errorf("emulate print media: %w", err)
	}

	stream, err := page.PDF(printOptions(opts))
	if err != nil {
		return false, fmt.Errorf("print to pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return false, fmt.Errorf("read pdf stream: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", outPath, err)
	}

	g.Logger.Info("✅ PDF saved", zap.String("file", filepath.Base(outPath)), zap.Int("bytes", len(data)))
	return true, nil
}

func fileURL(abs string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func printOptions(opts Options) *proto.PagePrintToPDF {
	width, height, margin := a4WidthIn, a4HeightIn, marginIn
	return &proto.PagePrintToPDF{
		Landscape:         opts.Landscape,
		PrintBackground:   true,
		PreferCSSPageSize: true,
		PaperWidth:        &width,
		PaperHeight:       &height,
		MarginTop:         &margin,
		MarginBottom:      &margin,
		MarginLeft:        &margin,
		MarginRight:       &margin,
	}
}

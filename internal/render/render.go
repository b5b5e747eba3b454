// Package render turns a product record into a label artifact on disk:
// fill the template, rasterize the markup, and write the image atomically.
package render

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"labelprint/internal/fileutil"
	"labelprint/internal/label"
	"labelprint/internal/logging"
	"labelprint/internal/product"
	"labelprint/internal/services"
)

// Rasterizer converts label markup into image bytes.
type Rasterizer interface {
	Render(ctx context.Context, markup, format string) ([]byte, error)
}

// Config controls where and how labels are rendered.
type Config struct {
	OutputDir string
	Format    string
	Layout    label.Layout
	// SheetSize is the number of labels per combined batch PDF. Zero disables sheets.
	SheetSize int
}

// Label is a rendered label. Path is empty until the artifact is written.
type Label struct {
	SKU    product.SKU
	Markup string
	Image  []byte
	Format string
	Path   string
}

// Renderer renders records with a loaded template.
type Renderer struct {
	cfg        Config
	rasterizer Rasterizer
	logger     *slog.Logger
}

// New constructs a renderer. An empty format defaults to png.
func New(cfg Config, rasterizer Rasterizer, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = logging.NewNop()
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if cfg.Format == "" {
		cfg.Format = "png"
	}
	return &Renderer{
		cfg:        cfg,
		rasterizer: rasterizer,
		logger:     logging.NewComponentLogger(logger, "render"),
	}
}

// SheetsEnabled reports whether batch sheets are produced.
func (r *Renderer) SheetsEnabled() bool { return r.cfg.SheetSize > 0 }

// ArtifactPath returns where the label for sku is written.
func (r *Renderer) ArtifactPath(sku product.SKU) string {
	return filepath.Join(r.cfg.OutputDir, fileutil.SafeName(string(sku))+"."+r.cfg.Format)
}

// Render fills tpl with rec, rasterizes it, and writes the artifact. A fill
// failure returns before the rasterizer is called. Any failure also removes
// the SKU's artifact left by an earlier run.
func (r *Renderer) Render(ctx context.Context, tpl *label.Template, rec product.Record) (Label, error) {
	path := r.ArtifactPath(rec.SKU)
	markup, err := label.Fill(tpl, label.Fields(rec, r.cfg.Layout))
	if err != nil {
		return Label{}, r.discard(path, err)
	}

	image, err := r.rasterizer.Render(ctx, markup, r.cfg.Format)
	if err != nil {
		return Label{}, r.discard(path, err)
	}
	if err := ctx.Err(); err != nil {
		return Label{}, r.discard(path, err)
	}

	if err := fileutil.WriteFileAtomic(path, image, 0o644); err != nil {
		return Label{}, r.discard(path, services.Wrap(services.ErrRenderService, "render", "write", path, err))
	}

	r.logger.Debug("label rendered",
		logging.SKU(rec.SKU),
		logging.String(logging.FieldEventType, "label_rendered"),
		logging.String("path", path),
		logging.Int("bytes", len(image)))

	return Label{
		SKU:    rec.SKU,
		Markup: markup,
		Image:  image,
		Format: r.cfg.Format,
		Path:   path,
	}, nil
}

// RenderSheet joins the markup of labels into PDFs of SheetSize labels each,
// named <name>_<n>.pdf. It returns the paths written before any failure.
func (r *Renderer) RenderSheet(ctx context.Context, name string, labels []Label) ([]string, error) {
	if r.cfg.SheetSize <= 0 || len(labels) == 0 {
		return nil, nil
	}
	stem := fileutil.SafeName(strings.TrimSpace(name))
	if stem == "" {
		stem = "batch"
	}

	var paths []string
	for n, start := 0, 0; start < len(labels); n, start = n+1, start+r.cfg.SheetSize {
		end := min(start+r.cfg.SheetSize, len(labels))
		markups := make([]string, 0, end-start)
		for _, l := range labels[start:end] {
			markups = append(markups, l.Markup)
		}

		doc, err := r.rasterizer.Render(ctx, strings.Join(markups, "\n"), "pdf")
		if err != nil {
			return paths, err
		}
		path := filepath.Join(r.cfg.OutputDir, stem+"_"+strconv.Itoa(n)+".pdf")
		if err := fileutil.WriteFileAtomic(path, doc, 0o644); err != nil {
			return paths, services.Wrap(services.ErrRenderService, "render", "write sheet", path, err)
		}
		paths = append(paths, path)
	}

	r.logger.Info("batch sheets rendered",
		logging.String(logging.FieldEventType, "sheets_rendered"),
		logging.String("batch", name),
		logging.Int("labels", len(labels)),
		logging.Int("sheets", len(paths)),
		logging.String("first", paths[0]))
	return paths, nil
}

// discard removes a stale artifact at path and returns cause.
func (r *Renderer) discard(path string, cause error) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		r.logger.Debug("stale label not removed",
			logging.String("path", path),
			logging.Error(err))
	}
	return cause
}

package printing

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"labelprint/internal/logging"
	"labelprint/internal/render"
	"labelprint/internal/services"
)

const (
	defaultCloudURL     = "https://api.zebra.com/v2/devices/printers/send"
	defaultCloudTimeout = 30 * time.Second
)

// CloudConfig captures the Zebra SendFileToPrinter settings.
type CloudConfig struct {
	URL            string
	APIKey         string
	Tenant         string
	PrinterSerial  string
	TimeoutSeconds int
}

// Cloud uploads labels to a Zebra cloud-connected printer.
type Cloud struct {
	cfg        CloudConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCloud constructs a cloud dispatcher.
func NewCloud(cfg CloudConfig, logger *slog.Logger) *Cloud {
	if logger == nil {
		logger = logging.NewNop()
	}
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		cfg.URL = defaultCloudURL
	}
	timeout := defaultCloudTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Cloud{cfg: cfg, httpClient: &http.Client{Timeout: timeout}, logger: logger}
}

// WithHTTPClient overrides the default HTTP client.
func (c *Cloud) WithHTTPClient(client *http.Client) *Cloud {
	if client != nil {
		c.httpClient = client
	}
	return c
}

// Dispatch posts the label image as the zpl_file form field with the printer serial.
func (c *Cloud) Dispatch(ctx context.Context, lbl render.Label) ([]Job, error) {
	if len(lbl.Image) == 0 {
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch", "label has no image", nil)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	if err := form.WriteField("sn", c.cfg.PrinterSerial); err != nil {
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch", "encode form", err)
	}
	filename := filepath.Base(lbl.Path)
	if lbl.Path == "" {
		filename = string(lbl.SKU) + "." + lbl.Format
	}
	part, err := form.CreateFormFile("zpl_file", filename)
	if err != nil {
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch", "encode form", err)
	}
	if _, err := part.Write(lbl.Image); err != nil {
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch", "encode form", err)
	}
	if err := form.Close(); err != nil {
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch", "encode form", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, &body)
	if err != nil {
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch", "build request", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("tenant", c.cfg.Tenant)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch", "request failed", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch",
			fmt.Sprintf("http %d", resp.StatusCode), services.ErrAuth)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, services.Wrap(services.ErrDispatch, "zebra", "dispatch",
			fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw))), nil)
	}

	job := newJob(KindCloud, c.cfg.PrinterSerial, lbl)
	c.logger.Info("label sent to cloud printer",
		logging.SKU(job.SKU),
		logging.String(logging.FieldEventType, "print_cloud_sent"),
		logging.String("printer_serial", c.cfg.PrinterSerial),
		logging.String("job_id", job.ID))
	return []Job{job}, nil
}

package export

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("pharma-forecast/export")

// Renderer turns a markdown report into PDF bytes. Handlers depend on the
// interface so tests can substitute a double without a browser install.
type Renderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

// ChromiumRenderer prints the report through headless Chromium. The markdown
// is converted to a self-contained HTML document and loaded as a data URL,
// so no web server or temp file is involved.
type ChromiumRenderer struct {
	chromePath string
}

func NewChromiumRenderer() *ChromiumRenderer {
	return &ChromiumRenderer{chromePath: detectChromePath()}
}

const reportCSS = `
body{font-family:Georgia,'Times New Roman',serif;color:#1c1917;line-height:1.5;font-size:11pt;}
h1{font-size:19pt;border-bottom:2px solid #0e7490;padding-bottom:0.3rem;}
h2{font-size:14pt;color:#0e7490;margin-top:1.4rem;}
table{width:100%;border-collapse:collapse;font-size:9.5pt;margin:0.6rem 0;}
th,td{border:1px solid #a8a29e;padding:0.3rem 0.45rem;text-align:left;vertical-align:top;}
thead th{background:#f1f5f9;font-weight:700;}
ul{margin:0.4rem 0;}
html,body,*{-webkit-print-color-adjust:exact !important;print-color-adjust:exact !important;}
`

func (r *ChromiumRenderer) Render(ctx context.Context, markdown string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "export.render_pdf")
	defer span.End()

	htmlDoc, err := buildHTML(markdown)
	if err != nil {
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var pdf []byte
	dataURL := "data:text/html;base64," + base64.StdEncoding.EncodeToString([]byte(htmlDoc))
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			footer := `<div style="width:100%;text-align:center;font-size:9px;color:#666;">` +
				`Page <span class="pageNumber"></span> of <span class="totalPages"></span></div>`
			out, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithDisplayHeaderFooter(true).
				WithHeaderTemplate(`<div></div>`).
				WithFooterTemplate(footer).
				WithPaperWidth(8.27).
				WithPaperHeight(11.69).
				WithMarginTop(0.5).
				WithMarginBottom(0.75).
				WithMarginLeft(0.45).
				WithMarginRight(0.45).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = out
			return nil
		}),
	); err != nil {
		return nil, fmt.Errorf("print report: %w", err)
	}
	return pdf, nil
}

func buildHTML(markdown string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>Analysis Report</title>" +
		"<style>" + reportCSS + "</style></head><body>" +
		content.String() +
		"</body></html>", nil
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

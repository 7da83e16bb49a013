// Package report assembles the calibration/robustness protocol document in
// Markdown and renders it to HTML for sharing.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"scfscan/internal/analysis"
	"scfscan/internal/calibration"
)

// CalibrationProtocol renders the calibration document as Markdown.
func CalibrationProtocol(doc *calibration.Document) string {
	var b strings.Builder

	b.WriteString("# QRNG Tilt Calibration Protocol\n\n")
	b.WriteString(fmt.Sprintf("Run `%s`, generated %s.\n\n",
		doc.Reproducibility.RunID, doc.Reproducibility.GeneratedAt.UTC().Format("2006-01-02 15:04:05 UTC")))

	b.WriteString("## Per-source results\n\n")
	b.WriteString("| source | n_bits | epsilon_max | 95% CI | method |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range doc.Sources {
		b.WriteString(fmt.Sprintf("| %s | %d | %.6g | [%.6g, %.6g] | %s |\n",
			r.SourceID, r.NBits, r.EpsilonMax, r.CILower, r.CIUpper, r.Method))
	}

	b.WriteString("\n## Pooled bound\n\n")
	b.WriteString(fmt.Sprintf("epsilon_max = **%.6g** (95%% CI [%.6g, %.6g], %s pooling)\n",
		doc.Pooled.EpsilonMax, doc.Pooled.CILower, doc.Pooled.CIUpper, doc.Pooled.Method))

	if len(doc.Sensitivity) > 0 {
		b.WriteString("\n## Sensitivity\n\n")
		keys := make([]string, 0, len(doc.Sensitivity))
		for k := range doc.Sensitivity {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf("- %s: %.6g\n", k, doc.Sensitivity[k]))
		}
	}

	b.WriteString("\n## Reproducibility\n\n")
	b.WriteString(fmt.Sprintf("- seed: %d\n- method: %s\n- n_bootstrap: %d\n",
		doc.Reproducibility.SeedUsed, doc.Reproducibility.Method, doc.Reproducibility.NBootstrap))
	if doc.Reproducibility.ConfigHash != "" {
		b.WriteString(fmt.Sprintf("- config: `%s`\n", doc.Reproducibility.ConfigHash))
	}
	hashes := make([]string, 0, len(doc.Reproducibility.DataHashes))
	for name := range doc.Reproducibility.DataHashes {
		hashes = append(hashes, name)
	}
	sort.Strings(hashes)
	for _, name := range hashes {
		b.WriteString(fmt.Sprintf("- sha256(%s): `%s`\n", name, doc.Reproducibility.DataHashes[name]))
	}

	return b.String()
}

// RobustnessSection renders a bound-perturbation report as Markdown,
// appendable to the protocol.
func RobustnessSection(r *analysis.RobustnessReport) string {
	var b strings.Builder

	b.WriteString("## Bound-perturbation robustness\n\n")
	b.WriteString(fmt.Sprintf("Verdict: **%s** (bounds scaled by +/-%.0f%%)\n\n", r.Verdict, r.Scale*100))
	b.WriteString("| scenario | viable points | top channel |\n")
	b.WriteString("|---|---|---|\n")
	b.WriteString(fmt.Sprintf("| %s | %d | %s |\n", r.Baseline.Name, r.Baseline.NViable, r.Baseline.TopChannel))
	for _, sc := range r.Scenarios {
		b.WriteString(fmt.Sprintf("| %s | %d | %s |\n", sc.Name, sc.NViable, sc.TopChannel))
	}

	return b.String()
}

// RenderHTML converts protocol Markdown to a standalone HTML fragment.
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Paths contains the resolved output locations for one run.
// This is the single source of truth for file paths in the application.
type Paths struct {
	BaseDir    string // resolved output directory
	ChartsDir  string // PNG chart dumps (only created when requested)
	ExportsDir string // CSV/JSON/XLSX aggregate exports
}

// ResolvePaths resolves the output directory from config. A relative
// output_dir is anchored at the current working directory, since the tool is
// invoked against user-supplied files rather than an installed layout.
func ResolvePaths(cfg *Config) (*Paths, error) {
	base := cfg.Paths.OutputDir
	if !filepath.IsAbs(base) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = filepath.Join(wd, base)
	}

	return &Paths{
		BaseDir:    base,
		ChartsDir:  filepath.Join(base, "charts"),
		ExportsDir: filepath.Join(base, "exports"),
	}, nil
}

// EnsureDirectories creates the base output directory. Chart and export
// subdirectories are created lazily by the writers that use them.
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.BaseDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", p.BaseDir, err)
	}
	return nil
}

// ReportFile returns the dated default report path for the given extension,
// e.g. reports/training_report_20260830.pdf.
func (p *Paths) ReportFile(ext string, now time.Time) string {
	name := fmt.Sprintf("training_report_%s.%s", now.Format("20060102"), ext)
	return filepath.Join(p.BaseDir, name)
}

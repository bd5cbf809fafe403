package config

// Config holds pagemark configuration.
// Stored at: ./config.yaml or ~/.pagemark/config.yaml
type Config struct {
	Extraction ExtractionCfg `mapstructure:"extraction" yaml:"extraction"`
	Preview    PreviewCfg    `mapstructure:"preview" yaml:"preview"`
	Binding    BindingCfg    `mapstructure:"binding" yaml:"binding"`
	Scan       ScanCfg       `mapstructure:"scan" yaml:"scan"`
	Server     ServerCfg     `mapstructure:"server" yaml:"server"`
}

// ExtractionCfg configures asset extraction.
type ExtractionCfg struct {
	// ScaleFactor multiplies the page's base resolution when rasterizing
	// a bound region. 3.0 produces print-quality crops.
	ScaleFactor float64 `mapstructure:"scale_factor" yaml:"scale_factor"`
	// ImageFormat is the raster format for extracted assets.
	ImageFormat string `mapstructure:"image_format" yaml:"image_format"`
	// RetryAttempts bounds retries of a failed region render.
	RetryAttempts uint `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	// MaxWorkers bounds concurrent region renders during extraction.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"`
}

// PreviewCfg configures the page preview surface.
type PreviewCfg struct {
	// Zoom is the preview raster scale relative to page points.
	Zoom float64 `mapstructure:"zoom" yaml:"zoom"`
}

// BindingCfg configures the region-binding session.
type BindingCfg struct {
	// MinRegionSize is the smallest accepted drag rectangle edge, in
	// preview-surface pixels. Smaller commits are rejected and the drag
	// continues.
	MinRegionSize float64 `mapstructure:"min_region_size" yaml:"min_region_size"`
}

// ScanCfg configures the reference scanner.
type ScanCfg struct {
	// StrictNumbers rejects sub-numbered mentions that end a sentence
	// (e.g. a decimal-looking "Table 3.14." is read as "Table 3").
	StrictNumbers bool `mapstructure:"strict_numbers" yaml:"strict_numbers"`
}

// ServerCfg configures the HTTP server for the operator UI.
type ServerCfg struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port string `mapstructure:"port" yaml:"port"`
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Extraction: ExtractionCfg{
			ScaleFactor:   3.0,
			ImageFormat:   "png",
			RetryAttempts: 3,
			MaxWorkers:    4,
		},
		Preview: PreviewCfg{
			Zoom: 2.0,
		},
		Binding: BindingCfg{
			MinRegionSize: 5.0,
		},
		Scan: ScanCfg{
			StrictNumbers: false,
		},
		Server: ServerCfg{
			Host: "127.0.0.1",
			Port: "8080",
		},
	}
}

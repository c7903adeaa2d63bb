package config

// DiagramMode selects how diagram containers are turned into diagrams.
type DiagramMode string

const (
	DiagramClient DiagramMode = "client"
	DiagramCLI    DiagramMode = "cli"
	DiagramNone   DiagramMode = "none"
)

// Config is the top-level stitch configuration, corresponding to stitch.yml.
type Config struct {
	SiteDir       string            `yaml:"site_dir" koanf:"site_dir"`
	PublishDir    string            `yaml:"publish_dir" koanf:"publish_dir"`
	OutDir        string            `yaml:"out_dir" koanf:"out_dir"`
	EmptyOutDir   bool              `yaml:"empty_out_dir" koanf:"empty_out_dir"`
	CopyPublicDir bool              `yaml:"copy_public_dir" koanf:"copy_public_dir"`
	Origin        string            `yaml:"origin" koanf:"origin"`
	Port          int               `yaml:"port" koanf:"port"`
	Open          bool              `yaml:"open" koanf:"open"`
	HeadURL       string            `yaml:"head_url" koanf:"head_url"`
	HeaderURL     string            `yaml:"header_url" koanf:"header_url"`
	FooterURL     string            `yaml:"footer_url" koanf:"footer_url"`
	Assets        []AssetPair       `yaml:"assets" koanf:"assets"`
	Exclude       []string          `yaml:"exclude" koanf:"exclude"`
	Entries       map[string]string `yaml:"entries" koanf:"entries"`
	Diagram       DiagramConfig     `yaml:"diagram" koanf:"diagram"`
	Markdown      MarkdownConfig    `yaml:"markdown" koanf:"markdown"`
	FetchTimeout  string            `yaml:"fetch_timeout" koanf:"fetch_timeout"`
}

// AssetPair is one source directory copied into the publish directory.
type AssetPair struct {
	Src  string `yaml:"src" koanf:"src"`
	Dest string `yaml:"dest" koanf:"dest"`
}

// DiagramConfig holds diagram rendering settings.
type DiagramConfig struct {
	Mode      DiagramMode `yaml:"mode" koanf:"mode"`
	Command   string      `yaml:"command,omitempty" koanf:"command"`
	Keyword   string      `yaml:"keyword" koanf:"keyword"`
	ScriptURL string      `yaml:"script_url,omitempty" koanf:"script_url"`
}

// MarkdownConfig holds markdown rendering settings.
type MarkdownConfig struct {
	HighlightStyle string `yaml:"highlight_style" koanf:"highlight_style"`
}

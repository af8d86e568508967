package config

// fileDoc is the on-disk layout shared by bianx.yaml and bianx.toml.
type fileDoc struct {
	Bianx FileConfig `yaml:"bianx" toml:"bianx"`
}

type FileConfig struct {
	API    FileAPI    `yaml:"api" toml:"api"`
	Fetch  FileFetch  `yaml:"fetch" toml:"fetch"`
	Output FileOutput `yaml:"output" toml:"output"`
	Log    FileLog    `yaml:"log" toml:"log"`
}

type FileAPI struct {
	BaseURL    string `yaml:"base_url" toml:"base_url"`
	ListPath   string `yaml:"list_path" toml:"list_path"`
	DetailPath string `yaml:"detail_path" toml:"detail_path"`
	Token      string `yaml:"token" toml:"token"`
	Timeout    string `yaml:"timeout" toml:"timeout"`
}

type FileFetch struct {
	Concurrency       *int     `yaml:"concurrency" toml:"concurrency"`
	RequestsPerSecond *float64 `yaml:"requests_per_second" toml:"requests_per_second"`
	Burst             *int     `yaml:"burst" toml:"burst"`
	MaxBodyBytes      *int64   `yaml:"max_body_bytes" toml:"max_body_bytes"`
}

type FileOutput struct {
	Path        string `yaml:"path" toml:"path"`
	SheetName   string `yaml:"sheet_name" toml:"sheet_name"`
	TableName   string `yaml:"table_name" toml:"table_name"`
	TableStyle  string `yaml:"table_style" toml:"table_style"`
	ReportDir   string `yaml:"report_dir" toml:"report_dir"`
	WriteReport *bool  `yaml:"write_report" toml:"write_report"`
}

type FileLog struct {
	Debug *bool  `yaml:"debug" toml:"debug"`
	Dir   string `yaml:"dir" toml:"dir"`
}

package config

// Config is the shell configuration
type Config struct {
	Log   LogConfig   `yaml:"log"`
	Table TableConfig `yaml:"table"`
	Shell ShellConfig `yaml:"shell"`

	// BaseDir is the directory of the loaded file; relative paths resolve against it
	BaseDir string `yaml:"-"`
}

type LogConfig struct {
	Level     string `yaml:"level"`
	SeqURL    string `yaml:"seq_url"`
	AddSource bool   `yaml:"add_source"`
}

// TableConfig describes the table the shell opens at startup
type TableConfig struct {
	Name      string   `yaml:"name"`
	Structure string   `yaml:"structure"` // YAML or JSON field list
	Indexes   []string `yaml:"indexes"`   // key lists built in order
	Order     string   `yaml:"order"`     // key list of the starting index, empty for physical order
}

type ShellConfig struct {
	HistoryFile string `yaml:"history_file"`
	Prompt      string `yaml:"prompt"`
	PageSize    int    `yaml:"page_size"`
}

// Defaults returns the configuration used when no file sets a value
func Defaults() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Table: TableConfig{
			Name: "localtable",
		},
		Shell: ShellConfig{
			HistoryFile: "~/.localtable_history",
			Prompt:      "lt> ",
			PageSize:    20,
		},
	}
}

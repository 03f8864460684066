package config

// Masonfile represents the structure of the mason.yaml configuration file.
type Masonfile struct {
	Version string             `yaml:"version"`
	Rules   map[string]RuleDTO `yaml:"rules"`
}

// RuleDTO represents one rule declaration in the configuration.
type RuleDTO struct {
	Type         string   `yaml:"type"`
	Inputs       []string `yaml:"inputs"`
	Cmd          []string `yaml:"cmd"`
	Output       string   `yaml:"output"`
	Skeleton     string   `yaml:"skeleton"`
	ResourceDirs []string `yaml:"resource_dirs"`
	Deps         []string `yaml:"deps"`
}

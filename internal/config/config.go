package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v2"
)

type SourceConfig struct {
	Repositories []Repository `yaml:"repositories"`
}

type Repository struct {
	Name               string `yaml:"name"`
	Path               string `yaml:"path"`
	Test               string `yaml:"test,omitempty"`
	Language           string `yaml:"language"`
	Disabled           bool   `yaml:"disabled,omitempty"`
	SkipOtherLanguages bool   `yaml:"skip_other_languages,omitempty"`
}

type App struct {
	Port           int      `yaml:"port"`
	NumFileThreads int      `yaml:"num_file_threads,omitempty"`
	LogLevel       string   `yaml:"log_level,omitempty"`
	OutputPaths    []string `yaml:"output_paths,omitempty"`
	PrintParseTree bool     `yaml:"print_parse_tree,omitempty"`
	Format         string   `yaml:"format,omitempty"`
}

// RuleConfig enables a rule and sets its properties. ClassMetric and
// OperationMetric select a generic metric rule by key name instead of a
// built-in rule.
type RuleConfig struct {
	Name            string            `yaml:"name"`
	Disabled        bool              `yaml:"disabled,omitempty"`
	ClassMetric     string            `yaml:"class_metric,omitempty"`
	OperationMetric string            `yaml:"operation_metric,omitempty"`
	Properties      map[string]string `yaml:"properties,omitempty"`
}

type Config struct {
	Source SourceConfig `yaml:"source"`
	Rules  []RuleConfig `yaml:"rules"`
	App    App          `yaml:"app"`
}

const (
	DefaultPort           = 8080
	DefaultNumFileThreads = 4
	DefaultFormat         = "text"
)

func LoadConfig(appConfigPath string, sourceConfigPath string) (*Config, error) {
	if _, err := os.Stat(appConfigPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("app config file does not exist: %s", appConfigPath)
	}
	if _, err := os.Stat(sourceConfigPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("source config file does not exist: %s", sourceConfigPath)
	}

	dataApp, err := os.ReadFile(appConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read app config file: %w", err)
	}

	dataSource, err := os.ReadFile(sourceConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read source config file: %w", err)
	}

	var configApp Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(dataApp))), &configApp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal app config: %w", err)
	}

	var configSource Config
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(dataSource))), &configSource); err != nil {
		return nil, fmt.Errorf("failed to unmarshal source config: %w", err)
	}

	// Merge SourceConfig into configApp
	configApp.Source = configSource.Source
	if len(configSource.Rules) > 0 {
		configApp.Rules = configSource.Rules
	}

	if err := validateRepositories(&configApp); err != nil {
		return nil, fmt.Errorf("invalid repository configuration: %w", err)
	}
	if err := validateRules(&configApp); err != nil {
		return nil, fmt.Errorf("invalid rule configuration: %w", err)
	}

	configApp.applyDefaults()
	return &configApp, nil
}

func (c *Config) applyDefaults() {
	if c.App.Port == 0 {
		c.App.Port = DefaultPort
	}
	if c.App.NumFileThreads <= 0 {
		c.App.NumFileThreads = DefaultNumFileThreads
	}
	if c.App.Format == "" {
		c.App.Format = DefaultFormat
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
}

func (c *Config) GetRepository(name string) (*Repository, error) {
	for _, repo := range c.Source.Repositories {
		if repo.Name == name {
			return &repo, nil
		}
	}
	return nil, fmt.Errorf("repository not found: %s", name)
}

// EnabledRules returns the rules that are not disabled, in file order.
func (c *Config) EnabledRules() []RuleConfig {
	var out []RuleConfig
	for _, r := range c.Rules {
		if !r.Disabled {
			out = append(out, r)
		}
	}
	return out
}

// validateRepositories validates repository configurations
func validateRepositories(config *Config) error {
	for _, repo := range config.Source.Repositories {
		// If skip_other_languages is true, language must be specified
		if repo.SkipOtherLanguages && repo.Language == "" {
			return fmt.Errorf("repository '%s': skip_other_languages is true but language is not specified", repo.Name)
		}
	}
	return nil
}

func validateRules(config *Config) error {
	seen := make(map[string]bool, len(config.Rules))
	for _, r := range config.Rules {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("rule without a name")
		}
		if seen[r.Name] {
			return fmt.Errorf("rule '%s' is configured twice", r.Name)
		}
		seen[r.Name] = true
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars replaces ${VAR}, ${VAR:-default} and $VAR. An unset ${VAR}
// becomes empty; an unset $VAR is left as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(m string) string {
		groups := envVarPattern.FindStringSubmatch(m)
		if groups[4] != "" {
			if v, ok := os.LookupEnv(groups[4]); ok {
				return v
			}
			return m
		}
		if v, ok := os.LookupEnv(groups[1]); ok && v != "" {
			return v
		}
		if groups[2] != "" {
			return groups[3]
		}
		return ""
	})
}

/*
Package config manages TOML config for gopostfix services.

The file is created with defaults on first run. A file that fails to decode
as a whole is recovered section by section, so one bad value never takes the
server down:

	[server]
	languages = ["go"]
	trigger_characters = ["."]
	max_line_length = 4096

	[postfix]
	disabled = ["errors"]

	[[postfix_template]]
	label = "log"
	detail = "log.Println(expr)"
	body = "log.Println({{expr}})$0"

	[[snippet]]
	label = "test"
	body = "func Test${1:Name}(t *testing.T) {\n\t$0\n}"
*/
package config

import (
	"path/filepath"

	"github.com/bastiangx/gopostfix/internal/utils"
	"github.com/charmbracelet/log"
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
)

// FileName is the config file name inside the config directory
const FileName = "config.toml"

// AppFs is the filesystem config files are read from and written to
var AppFs = afero.NewOsFs()

// Config holds the entire config structure
type Config struct {
	Server    ServerConfig     `toml:"server"`
	Postfix   PostfixConfig    `toml:"postfix"`
	LSP       LSPConfig        `toml:"lsp"`
	CLI       CliConfig        `toml:"cli"`
	Templates []TemplateConfig `toml:"postfix_template,omitempty"`
	Snippets  []TemplateConfig `toml:"snippet,omitempty"`
}

// ServerConfig has options shared by every transport.
type ServerConfig struct {
	Languages         []string `toml:"languages"`
	TriggerCharacters []string `toml:"trigger_characters"`
	MaxLineLength     int      `toml:"max_line_length"`
}

// PostfixConfig holds catalog options.
type PostfixConfig struct {
	Disabled []string `toml:"disabled"`
}

// LSPConfig holds language server options.
type LSPConfig struct {
	MaxDocuments int    `toml:"max_documents"`
	Addr         string `toml:"addr"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultLimit int  `toml:"default_limit"`
	ShowSnippet  bool `toml:"show_snippet"`
}

// TemplateConfig is a user catalog entry.
type TemplateConfig struct {
	Label  string `toml:"label"`
	Detail string `toml:"detail,omitempty"`
	Body   string `toml:"body"`
}

// GetConfigDir returns the config directory, falling back to the
// executable dir when no user config dir is writable
func GetConfigDir() (string, error) {
	resolver, err := utils.NewPathResolver(AppFs)
	if err != nil {
		return "", errors.Wrap(err, "resolve config dir")
	}
	return filepath.Dir(resolver.GetConfigPath(FileName)), nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/gopostfix/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if utils.FileExists(AppFs, customConfigPath) {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s. Trying default path...", customConfigPath)
		}
	}

	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Languages:         []string{"go"},
			TriggerCharacters: []string{"."},
			MaxLineLength:     4096,
		},
		Postfix: PostfixConfig{
			Disabled: []string{},
		},
		LSP: LSPConfig{
			MaxDocuments: 100,
			Addr:         "127.0.0.1:7658",
		},
		CLI: CliConfig{
			DefaultLimit: 24,
			ShowSnippet:  false,
		},
	}
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(AppFs, configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(AppFs, configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("Failed to load config from %s: %v. Using built-in defaults...", configPath, err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	if !utils.FileExists(AppFs, configPath) {
		return nil, errors.Newf("config file %s does not exist", configPath)
	}

	config := DefaultConfig()
	if err := utils.LoadTOMLFile(AppFs, configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(AppFs, configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if serverSection, ok := utils.ExtractSection(tempConfig, "server"); ok {
		extractServerConfig(serverSection, &config.Server)
	}
	if postfixSection, ok := utils.ExtractSection(tempConfig, "postfix"); ok {
		extractPostfixConfig(postfixSection, &config.Postfix)
	}
	if lspSection, ok := utils.ExtractSection(tempConfig, "lsp"); ok {
		extractLSPConfig(lspSection, &config.LSP)
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		extractCliConfig(cliSection, &config.CLI)
	}
	if tables, ok := utils.ExtractTables(tempConfig, "postfix_template"); ok {
		config.Templates = extractTemplates(tables)
	}
	if tables, ok := utils.ExtractTables(tempConfig, "snippet"); ok {
		config.Snippets = extractTemplates(tables)
	}
	return config, nil
}

// extractServerConfig extracts server configuration from a map
func extractServerConfig(data map[string]any, server *ServerConfig) {
	if val, ok := utils.ExtractStringSlice(data, "languages"); ok {
		server.Languages = val
	}
	if val, ok := utils.ExtractStringSlice(data, "trigger_characters"); ok {
		server.TriggerCharacters = val
	}
	if val, ok := utils.ExtractInt64(data, "max_line_length"); ok {
		server.MaxLineLength = val
	}
}

// extractPostfixConfig extracts catalog configuration from a map
func extractPostfixConfig(data map[string]any, postfix *PostfixConfig) {
	if val, ok := utils.ExtractStringSlice(data, "disabled"); ok {
		postfix.Disabled = val
	}
}

// extractLSPConfig extracts language server configuration from a map
func extractLSPConfig(data map[string]any, lsp *LSPConfig) {
	if val, ok := utils.ExtractInt64(data, "max_documents"); ok {
		lsp.MaxDocuments = val
	}
	if val, ok := utils.ExtractString(data, "addr"); ok {
		lsp.Addr = val
	}
}

// extractCliConfig extracts CLI config from a map
func extractCliConfig(data map[string]any, cli *CliConfig) {
	if val, ok := utils.ExtractInt64(data, "default_limit"); ok {
		cli.DefaultLimit = val
	}
	if val, ok := utils.ExtractBool(data, "show_snippet"); ok {
		cli.ShowSnippet = val
	}
}

// extractTemplates keeps every table that has at least a label and a body
func extractTemplates(tables []map[string]any) []TemplateConfig {
	var out []TemplateConfig
	for _, t := range tables {
		label, okLabel := utils.ExtractString(t, "label")
		body, okBody := utils.ExtractString(t, "body")
		if !okLabel || !okBody {
			log.Warnf("Skipping template without label or body: %v", t)
			continue
		}
		detail, _ := utils.ExtractString(t, "detail")
		out = append(out, TemplateConfig{Label: label, Detail: detail, Body: body})
	}
	return out
}

// RebuildConfigFile force creates a new config.toml at default
func RebuildConfigFile() error {
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(AppFs, filepath.Dir(defaultPath)); err != nil {
		return errors.Wrapf(err, "create config dir for %s", defaultPath)
	}
	return SaveConfig(DefaultConfig(), defaultPath)
}

// GetActiveConfigPath returns the absolute path of loaded config file
func GetActiveConfigPath(configPath string) string {
	if configPath == "" {
		if defaultPath, err := GetDefaultConfigPath(); err == nil {
			return defaultPath
		}
		return "unknown"
	}
	return utils.GetAbsolutePath(configPath)
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	if err := utils.SaveTOMLFile(AppFs, config, configPath); err != nil {
		return errors.Wrapf(err, "save config %s", configPath)
	}
	return nil
}

// Update changes the catalog options and saves to file
func (c *Config) Update(configPath string, disabled []string, maxLineLength *int) error {
	if disabled != nil {
		c.Postfix.Disabled = disabled
	}
	if maxLineLength != nil {
		c.Server.MaxLineLength = *maxLineLength
	}
	return SaveConfig(c, configPath)
}

// =============================================================================
// Event Ledger - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration: the target events under analysis, the default status
// selection, the ledger's column names, the CSV reading settings and the
// categorization vocabulary.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults (DefaultConfig)
//   2. The YAML configuration file (config.yaml)
//   3. Environment variables, optionally read from a .env file
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file used when --config is not given.
// A missing file at this path is not an error: built-in defaults apply.
const DefaultPath = "config.yaml"

// Environment variables that override the file configuration.
const (
	EnvTargetEvents    = "EVENTLEDGER_TARGET_EVENTS"
	EnvAuditedEvent    = "EVENTLEDGER_AUDITED_EVENT"
	EnvDefaultStatuses = "EVENTLEDGER_DEFAULT_STATUSES"
	EnvCurrency        = "EVENTLEDGER_CURRENCY"
	EnvLogLevel        = "EVENTLEDGER_LOG_LEVEL"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the global application configuration.
type Config struct {
	// =========================================================================
	// ANALYSIS SETTINGS
	// =========================================================================

	// TargetEvents are the classifications analyzed as revenue-generating
	// events. Order is preserved in every report.
	TargetEvents []string `yaml:"target_events"`

	// AuditedEvent is the single target event scanned for duplicate costs.
	AuditedEvent string `yaml:"audited_event"`

	// DefaultStatuses is the status selection used when the caller does not
	// pick one. When none of them occur in the ledger, every status is used.
	DefaultStatuses []string `yaml:"default_statuses"`

	// Currency is the ISO 4217 code used to format amounts in reports.
	Currency string `yaml:"currency"`

	// CurrencyMarker is stripped from amount cells before parsing.
	CurrencyMarker string `yaml:"currency_marker"`

	// =========================================================================
	// LEDGER FORMAT
	// =========================================================================

	CSVSettings CSVSettings `yaml:"csv_settings"`

	Columns Columns `yaml:"columns"`

	// =========================================================================
	// CATEGORIZATION
	// =========================================================================

	// Categories maps each rule-based category to its pattern list.
	Categories CategoryRules `yaml:"categories"`

	// =========================================================================
	// DIRECTORY AND OUTPUT SETTINGS
	// =========================================================================

	// InputDir is scanned by the process command.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives generated reports and logs.
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives ledgers after a successful run.
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputNameFormat defines report file names.
	// Placeholders: {ledger}, {uuid}, {timestamp}, {date}, {time}.
	OutputNameFormat string `yaml:"output_name_format"`

	// ReportFormat is the default report format: text, json, xml or xlsx.
	ReportFormat string `yaml:"report_format"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// CSVSettings contains settings for reading the ledger file.
type CSVSettings struct {
	// Delimiter is "auto" to sniff among ; , tab and |, or a single character.
	Delimiter string `yaml:"delimiter"`

	// Encoding is UTF-8, ISO-8859-1 (Latin1) or Windows-1252.
	Encoding string `yaml:"encoding"`
}

// Columns names the required ledger headers.
type Columns struct {
	ID             string `yaml:"id"`
	Date           string `yaml:"date"`
	Description    string `yaml:"description"`
	Counterparty   string `yaml:"counterparty"`
	Classification string `yaml:"classification"`
	Amount         string `yaml:"amount"`
	Status         string `yaml:"status"`
	Kind           string `yaml:"kind"`
}

// Required returns the column names in the order they are checked.
func (c Columns) Required() []string {
	return []string{
		c.ID,
		c.Date,
		c.Description,
		c.Counterparty,
		c.Classification,
		c.Amount,
		c.Status,
		c.Kind,
	}
}

// CategoryRules holds the regular expressions for each rule-based category.
// Lists are tried in fixed priority order: personnel, taxes_gov, overhead.
type CategoryRules struct {
	Personnel []string `yaml:"personnel"`
	TaxesGov  []string `yaml:"taxes_gov"`
	Overhead  []string `yaml:"overhead"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// DefaultColumns returns the headers of the ledger export.
func DefaultColumns() Columns {
	return Columns{
		ID:             "ID",
		Date:           "Data",
		Description:    "Descrição",
		Counterparty:   "Fornecedor/Cliente",
		Classification: "Classificação",
		Amount:         "Valor",
		Status:         "Status",
		Kind:           "Tipo",
	}
}

// DefaultCategoryRules returns the built-in Portuguese vocabulary.
func DefaultCategoryRules() CategoryRules {
	return CategoryRules{
		Personnel: []string{
			`\brh\b`, `folha`, `sal[aá]rio`, `salario`, `pr[oó]-?labore`, `prolabore`,
			`benef[ií]cio`, `beneficio`, `inss`, `fgts`, `13`, `f[eé]rias`, `ferias`,
			`vale`, `vr`, `vt`, `plano de sa[uú]de`, `plano saude`,
		},
		TaxesGov: []string{
			`receita federal`, `darf`, `imposto`, `tributo`, `pis`, `cofins`, `csll`,
			`irpj`, `simples`, `icms`, `iss`, `sefaz`, `gps`, `e-social`, `esocial`,
		},
		Overhead: []string{
			`administrativ`, `despesa geral`, `overhead`, `contabil`, `contabilidade`,
			`aluguel`, `energia`, `internet`, `telefone`, `software`, `licen[cç]a`,
			`servi[cç]o`, `manuten[cç][aã]o`, `cart[aã]o`, `banco`, `tarifa`,
			`marketing institucional`, `coworking`, `escritorio`, `limpeza`,
			`seguran[cç]a`, `suporte`,
		},
	}
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if len(cfg.TargetEvents) == 0 {
		cfg.TargetEvents = []string{"VIP Deutsch", "Nuevo_sun", "Winterfall"}
	}
	if cfg.AuditedEvent == "" {
		cfg.AuditedEvent = cfg.TargetEvents[0]
	}
	if cfg.DefaultStatuses == nil {
		cfg.DefaultStatuses = []string{"Pago", "Agendado"}
	}
	if cfg.Currency == "" {
		cfg.Currency = "BRL"
	}
	if cfg.CurrencyMarker == "" {
		cfg.CurrencyMarker = "R$"
	}

	if cfg.CSVSettings.Delimiter == "" {
		cfg.CSVSettings.Delimiter = "auto"
	}
	if cfg.CSVSettings.Encoding == "" {
		cfg.CSVSettings.Encoding = "UTF-8"
	}

	defCols := DefaultColumns()
	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}
	fill(&cfg.Columns.ID, defCols.ID)
	fill(&cfg.Columns.Date, defCols.Date)
	fill(&cfg.Columns.Description, defCols.Description)
	fill(&cfg.Columns.Counterparty, defCols.Counterparty)
	fill(&cfg.Columns.Classification, defCols.Classification)
	fill(&cfg.Columns.Amount, defCols.Amount)
	fill(&cfg.Columns.Status, defCols.Status)
	fill(&cfg.Columns.Kind, defCols.Kind)

	// Each list is replaced only when absent so a config can empty one out
	// explicitly with an empty YAML list.
	defRules := DefaultCategoryRules()
	if cfg.Categories.Personnel == nil {
		cfg.Categories.Personnel = defRules.Personnel
	}
	if cfg.Categories.TaxesGov == nil {
		cfg.Categories.TaxesGov = defRules.TaxesGov
	}
	if cfg.Categories.Overhead == nil {
		cfg.Categories.Overhead = defRules.Overhead
	}

	if cfg.InputDir == "" {
		cfg.InputDir = "./input"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "./output"
	}
	if cfg.InputArchiveDir == "" {
		cfg.InputArchiveDir = "./input_archive"
	}
	if cfg.OutputNameFormat == "" {
		cfg.OutputNameFormat = "{ledger}_{timestamp}_{uuid}"
	}
	if cfg.ReportFormat == "" {
		cfg.ReportFormat = "text"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads the configuration from a YAML file and applies environment
// overrides.
//
// PARAMETERS:
//   - path: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the Config struct, defaults applied.
//   - An error if the file exists but cannot be read or parsed.
//
// A missing file at DefaultPath yields the built-in defaults; a missing file
// at any other explicitly requested path is an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		// fall through to defaults
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ApplyEnv(cfg)
	applyDefaults(cfg)

	return cfg, nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped; existing variables are kept.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration values from EVENTLEDGER_* variables.
func ApplyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvTargetEvents); ok {
		cfg.TargetEvents = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvAuditedEvent); ok {
		cfg.AuditedEvent = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvDefaultStatuses); ok {
		cfg.DefaultStatuses = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvCurrency); ok {
		cfg.Currency = strings.ToUpper(strings.TrimSpace(v))
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.LogLevel = strings.TrimSpace(v)
	}
}

// splitList splits a comma-separated value, dropping blank items.
func splitList(v string) []string {
	out := []string{}
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsTargetEvent reports whether classification is one of the target events.
func (c *Config) IsTargetEvent(classification string) bool {
	for _, ev := range c.TargetEvents {
		if ev == classification {
			return true
		}
	}
	return false
}

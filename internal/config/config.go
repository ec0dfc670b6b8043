package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"

	"github.com/acuellar/atiende/internal/domain"
)

// Composer modes selectable through ia.modo.
const (
	ModeDirect     = "direct"
	ModeGenerative = "generative-only"
	ModeHybrid     = "hybrid"
)

// Config holds all configuration for Atiende
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	LLM      LLMConfig      `mapstructure:"llm"`

	Negocio  NegocioConfig  `mapstructure:"negocio"`
	Colores  ColoresConfig  `mapstructure:"colores"`
	Mensajes MensajesConfig `mapstructure:"mensajes"`
	IA       IAConfig       `mapstructure:"ia"`

	// UsedDefaults is set when no configuration file was found or the file
	// could not be parsed and the built-in profile was substituted
	// wholesale. Surfaced as a warning, never fatal.
	UsedDefaults bool `mapstructure:"-"`

	// LoadWarning carries the reason the file was discarded, when there is
	// one worth reporting (a parse failure).
	LoadWarning string `mapstructure:"-"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

// AdminConfig holds admin authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds database configuration. The default path is ":memory:"
// so conversation state lives only in process memory and is lost on restart.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig holds the OpenAI-compatible provider configuration
type LLMConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	LLMModel       string `mapstructure:"llm_model"`
}

// NegocioConfig holds business identity
type NegocioConfig struct {
	Nombre  string `mapstructure:"nombre"`
	Emoji   string `mapstructure:"emoji"`
	Tagline string `mapstructure:"tagline"`
	Logo    string `mapstructure:"logo"`
}

// ColoresConfig holds widget colors
type ColoresConfig struct {
	Primario     string `mapstructure:"primario"`
	Secundario   string `mapstructure:"secundario"`
	FondoUsuario string `mapstructure:"fondo_usuario"`
	FondoBot     string `mapstructure:"fondo_bot"`
}

// MensajesConfig holds welcome text and suggested queries
type MensajesConfig struct {
	Bienvenida  string   `mapstructure:"bienvenida"`
	Sugerencias []string `mapstructure:"sugerencias"`
}

// IAConfig selects the composer mode
type IAConfig struct {
	Habilitada bool   `mapstructure:"habilitada"`
	Modo       string `mapstructure:"modo"`
}

// Load loads configuration from file and environment. A missing or malformed
// file is not an error: the built-in defaults are substituted and UsedDefaults
// is set so the caller can surface a warning. Individual profile keys are not
// defaulted independently; a present file replaces the profile wholesale.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setOperationalDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("ATIENDE")
	v.AutomaticEnv()

	usedDefaults := false
	loadWarning := ""
	if configPath != "" {
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			usedDefaults = true
		}
	}
	if !usedDefaults {
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				loadWarning = fmt.Sprintf("config file unreadable, using defaults: %v", err)
				// A half-parsed file must not leak partial keys.
				v = viper.New()
				setOperationalDefaults(v)
				v.SetEnvPrefix("ATIENDE")
				v.AutomaticEnv()
			}
			usedDefaults = true
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.UsedDefaults = usedDefaults
	cfg.LoadWarning = loadWarning

	if usedDefaults {
		applyProfileDefaults(&cfg)
	}
	if cfg.IA.Modo == "" {
		cfg.IA.Modo = ModeDirect
	}

	return &cfg, nil
}

// Default returns the full built-in configuration, as used when no file is
// present.
func Default() *Config {
	v := viper.New()
	setOperationalDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("built-in config is invalid: %v", err))
	}
	cfg.UsedDefaults = true
	applyProfileDefaults(&cfg)
	return &cfg
}

func setOperationalDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")

	v.SetDefault("admin.api_key", "")

	v.SetDefault("database.path", ":memory:")

	v.SetDefault("llm.base_url", "http://localhost:11434/v1")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.embedding_model", "nomic-embed-text")
	v.SetDefault("llm.llm_model", "qwen2.5:7b")
}

func applyProfileDefaults(cfg *Config) {
	p := domain.DefaultProfile()
	cfg.Negocio = NegocioConfig{Nombre: p.Nombre, Emoji: p.Emoji, Tagline: p.Tagline, Logo: "assets/logo.png"}
	cfg.Colores = ColoresConfig{
		Primario:     p.Primario,
		Secundario:   p.Secundario,
		FondoUsuario: p.FondoUser,
		FondoBot:     p.FondoBot,
	}
	cfg.Mensajes = MensajesConfig{Sugerencias: p.Sugerencias}
	cfg.IA = IAConfig{Habilitada: false, Modo: ModeDirect}
}

// Profile assembles the BusinessProfile from the negocio, colores and
// mensajes sections.
func (c *Config) Profile() domain.BusinessProfile {
	return domain.BusinessProfile{
		Nombre:      c.Negocio.Nombre,
		Emoji:       c.Negocio.Emoji,
		Tagline:     c.Negocio.Tagline,
		LogoPath:    c.Negocio.Logo,
		Primario:    c.Colores.Primario,
		Secundario:  c.Colores.Secundario,
		FondoUser:   c.Colores.FondoUsuario,
		FondoBot:    c.Colores.FondoBot,
		Bienvenida:  c.Mensajes.Bienvenida,
		Sugerencias: c.Mensajes.Sugerencias,
	}
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

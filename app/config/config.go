package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"MotoZonePos/app/security"
)

// AppConfig holds all application configuration
type AppConfig struct {
	// Remote backend the gateway fronts
	Backend BackendConfig `json:"backend"`

	// Local fallback database
	LocalDB LocalDBConfig `json:"local_db"`

	// Gateway HTTP/WebSocket server
	Server ServerConfig `json:"server"`

	// Sale computation settings
	Sales SalesConfig `json:"sales"`

	// Google Sheets report export
	Sheets SheetsConfig `json:"sheets"`

	// Business Information
	Business BusinessConfig `json:"business"`
}

// BackendConfig holds remote backend connection settings
type BackendConfig struct {
	BaseURL         string `json:"base_url"`
	HealthTimeout   int    `json:"health_timeout_seconds"`   // health probe timeout
	RecheckInterval int    `json:"recheck_interval_seconds"` // re-probe cadence while unavailable
}

// LocalDBConfig holds the offline fallback store settings.
// Driver is "sqlite" (default, file under DataPath) or "postgres" (DSN).
type LocalDBConfig struct {
	Driver   string `json:"driver"`
	DataPath string `json:"data_path"`
	DSN      string `json:"dsn"`
}

// ServerConfig holds the gateway's own listen settings
type ServerConfig struct {
	Port      int    `json:"port"`
	JWTSecret string `json:"jwt_secret"` // signs offline session tokens
}

// SalesConfig holds checkout settings
type SalesConfig struct {
	TaxRate        float64 `json:"tax_rate"`
	CurrencySymbol string  `json:"currency_symbol"`
}

// SheetsConfig holds Google Sheets export settings
type SheetsConfig struct {
	Enabled        bool   `json:"enabled"`
	SpreadsheetID  string `json:"spreadsheet_id"`
	SheetName      string `json:"sheet_name"`
	CredentialsKey string `json:"credentials_key"` // service account JSON key
}

// BusinessConfig holds business information printed on receipts
type BusinessConfig struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, herr := os.UserHomeDir()
		if herr != nil {
			return "", fmt.Errorf("could not determine config directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	appDir := filepath.Join(configDir, "MotoZonePos")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory: %w", err)
	}

	return filepath.Join(appDir, "config.json"), nil
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Backend: BackendConfig{
			BaseURL:         "http://localhost:3000/api",
			HealthTimeout:   5,
			RecheckInterval: 30,
		},
		LocalDB: LocalDBConfig{
			Driver:   "sqlite",
			DataPath: "./data",
		},
		Server: ServerConfig{
			Port: 8080,
		},
		Sales: SalesConfig{
			TaxRate:        0.16,
			CurrencySymbol: "$",
		},
		Sheets: SheetsConfig{
			SheetName: "Ventas",
		},
		Business: BusinessConfig{
			Name: "Moto Zone",
		},
	}
}

// LoadConfig loads configuration from config.json, applies environment
// overrides and decrypts sensitive fields. A missing config file is not an
// error: defaults are written out and returned.
func LoadConfig() (*AppConfig, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg); err != nil {
			return nil, err
		}
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	var cfg AppConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	if err := cfg.decryptSensitiveFields(); err != nil {
		return nil, fmt.Errorf("could not decrypt sensitive fields: %w", err)
	}

	cfg.applyEnvOverrides()
	return &cfg, nil
}

// SaveConfig saves configuration to config.json after encrypting sensitive fields
func SaveConfig(cfg *AppConfig) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Encrypt a copy so the caller keeps plaintext values
	cfgCopy := *cfg
	if err := cfgCopy.encryptSensitiveFields(); err != nil {
		return fmt.Errorf("could not encrypt sensitive fields: %w", err)
	}

	data, err := json.MarshalIndent(&cfgCopy, "", "  ")
	if err != nil {
		return fmt.Errorf("could not marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("could not write config file: %w", err)
	}

	return nil
}

// applyEnvOverrides lets environment variables (including .env values)
// override file settings, for development and container deployments.
func (cfg *AppConfig) applyEnvOverrides() {
	if v := os.Getenv("BACKEND_URL"); v != "" {
		cfg.Backend.BaseURL = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.LocalDB.Driver = "postgres"
		cfg.LocalDB.DSN = v
	}
	if v := os.Getenv("DATA_PATH"); v != "" {
		cfg.LocalDB.DataPath = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Server.JWTSecret = v
	}
	if v := os.Getenv("TAX_RATE"); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Sales.TaxRate = rate
		}
	}
}

// encryptSensitiveFields encrypts sensitive configuration fields
func (cfg *AppConfig) encryptSensitiveFields() error {
	var err error

	if cfg.Server.JWTSecret != "" {
		cfg.Server.JWTSecret, err = security.Encrypt(cfg.Server.JWTSecret)
		if err != nil {
			return fmt.Errorf("could not encrypt jwt secret: %w", err)
		}
	}

	if cfg.Sheets.CredentialsKey != "" {
		cfg.Sheets.CredentialsKey, err = security.Encrypt(cfg.Sheets.CredentialsKey)
		if err != nil {
			return fmt.Errorf("could not encrypt sheets credentials: %w", err)
		}
	}

	if cfg.LocalDB.DSN != "" {
		cfg.LocalDB.DSN, err = security.Encrypt(cfg.LocalDB.DSN)
		if err != nil {
			return fmt.Errorf("could not encrypt database dsn: %w", err)
		}
	}

	return nil
}

// decryptSensitiveFields decrypts sensitive configuration fields.
// If a field is not encrypted (plain text), it is left as-is so hand-edited
// development configs keep working.
func (cfg *AppConfig) decryptSensitiveFields() error {
	if cfg.Server.JWTSecret != "" {
		if decrypted, err := security.Decrypt(cfg.Server.JWTSecret); err == nil {
			cfg.Server.JWTSecret = decrypted
		}
	}

	if cfg.Sheets.CredentialsKey != "" {
		if decrypted, err := security.Decrypt(cfg.Sheets.CredentialsKey); err == nil {
			cfg.Sheets.CredentialsKey = decrypted
		}
	}

	if cfg.LocalDB.DSN != "" {
		if decrypted, err := security.Decrypt(cfg.LocalDB.DSN); err == nil {
			cfg.LocalDB.DSN = decrypted
		}
	}

	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"launchpad-client/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Logging   logging.Config  `mapstructure:"logging"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Launchpad LaunchpadConfig `mapstructure:"launchpad"`
	Wallet    WalletConfig    `mapstructure:"wallet"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Notify    NotifyConfig    `mapstructure:"notify"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// ChainConfig captures per-chain constants. They are injected through this
// struct rather than read from process-wide state so that one binary can be
// pointed at a different chain by configuration alone.
type ChainConfig struct {
	ChainID        int64         `mapstructure:"chain_id"`
	NativeSymbol   string        `mapstructure:"native_symbol"`
	RPCURL         string        `mapstructure:"rpc_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	FactoryAddress string        `mapstructure:"factory_address"`
	RouterAddress  string        `mapstructure:"router_address"`
	AdminAddresses []string      `mapstructure:"admin_addresses"`
}

// LaunchpadConfig covers sale-data access.
type LaunchpadConfig struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	SaleAddress    string        `mapstructure:"sale_address"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// WalletConfig provides the signing capability. An empty private key means
// no wallet is connected; read-only commands still work.
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
}

// DatabaseConfig encapsulates PostgreSQL connectivity.
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// WatchConfig governs the refresh loop cadence.
type WatchConfig struct {
	Interval      time.Duration `mapstructure:"interval"`
	AlignToBucket bool          `mapstructure:"align_to_bucket"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
	MaxDataPoints int           `mapstructure:"max_data_points"`
}

// NotifyConfig defines notification routing.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig 描述 Telegram 通知参数。
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
	APIBase  string `mapstructure:"api_base"`
}

// IsAdmin reports whether the address is one of the configured admins.
func (c ChainConfig) IsAdmin(addr common.Address) bool {
	for _, admin := range c.AdminAddresses {
		if common.HexToAddress(admin) == addr {
			return true
		}
	}
	return false
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LAUNCHPAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "launchpad-client")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("chain.chain_id", int64(56))
	v.SetDefault("chain.native_symbol", "BNB")
	v.SetDefault("chain.request_timeout", "10s")
	v.SetDefault("chain.confirm_timeout", "3m")

	v.SetDefault("launchpad.request_timeout", "10s")
	v.SetDefault("launchpad.user_agent", "launchpad-client/1.0")

	v.SetDefault("watch.interval", "30s")
	v.SetDefault("watch.align_to_bucket", true)
	v.SetDefault("watch.startup_delay", "0s")
	v.SetDefault("watch.max_data_points", 100000)

	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.api_base", "https://api.telegram.org")

	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.Chain.ChainID <= 0 {
		return fmt.Errorf("chain.chain_id must be greater than zero")
	}
	if c.Watch.Interval <= 0 {
		return fmt.Errorf("watch.interval must be greater than zero")
	}
	if c.Watch.MaxDataPoints <= 0 {
		return fmt.Errorf("watch.max_data_points must be greater than zero")
	}
	if c.Wallet.PrivateKey != "" {
		key := strings.TrimPrefix(strings.TrimSpace(c.Wallet.PrivateKey), "0x")
		if len(key) != 64 {
			return fmt.Errorf("wallet.private_key must be a 32-byte hex string")
		}
	}
	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token 必须配置")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id 必须配置")
		}
	}
	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Watch.MaxDataPoints
}

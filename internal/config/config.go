package config

// Layered configuration, lowest priority first:
// 1. defaults (the stock Economist style)
// 2. config.yaml (or --config)
// 3. .env file
// 4. environment (ECONCHART_STYLE_DPI, TELEGRAM_BOT_TOKEN, ...)
// 5. command-line flags

import (
	"errors"
	"fmt"
	"strings"

	"econchart/internal/features/barchart"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "ECONCHART"

type Config struct {
	Style    barchart.Style `mapstructure:"style"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Log      LogConfig      `mapstructure:"log"`
	Render   RenderConfig   `mapstructure:"render"`
}

type TelegramConfig struct {
	BotToken   string  `mapstructure:"bot_token"`
	ChatID     int64   `mapstructure:"chat_id"`
	MaxRetries int     `mapstructure:"max_retries"`
	RateLimit  float64 `mapstructure:"rate_limit"` // messages per second
}

type LogConfig struct {
	Dir   string `mapstructure:"dir"`
	Level string `mapstructure:"level"`
}

type RenderConfig struct {
	Open     bool   `mapstructure:"open"`      // open the chart in the system viewer after saving
	FontPath string `mapstructure:"font_path"` // default font for every chart
}

type LoadOptions struct {
	ConfigFile string // explicit config file; empty searches ./config.yaml
	EnvFile    string // empty means .env
	Flags      *pflag.FlagSet
}

// flagKeys maps command-line flag names to config keys
var flagKeys = map[string]string{
	"dpi":              "style.dpi",
	"top-n":            "style.top_n",
	"width":            "style.width_inches",
	"height":           "style.height_inches",
	"bar-color":        "style.bar_color",
	"accent-color":     "style.accent_color",
	"font":             "render.font_path",
	"open":             "render.open",
	"log-dir":          "log.dir",
	"log-level":        "log.level",
	"telegram-chat-id": "telegram.chat_id",
}

// Load builds the configuration
func Load(opts LoadOptions) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// .env is optional; values land in the process environment and are read below
	_ = godotenv.Load(envFile)

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config.yaml: %w", err)
			}
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setupEnvAliases(v)

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setupEnvAliases(v *viper.Viper) {
	// Plain names used by the telegram tooling, next to the prefixed ones
	v.BindEnv("telegram.bot_token", envPrefix+"_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	v.BindEnv("telegram.chat_id", envPrefix+"_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
	v.BindEnv("log.dir", envPrefix+"_LOG_DIR", "LOG_DIR")
}

// bindFlags binds only flags the user actually set, so unset flag defaults never mask config values
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("failed to bind flag --%s: %w", f.Name, err)
		}
	})
	return bindErr
}

// setDefaults registers every key so env lookups and Unmarshal see it
func setDefaults(v *viper.Viper) {
	d := barchart.DefaultStyle()

	// Style
	v.SetDefault("style.width_inches", d.WidthInches)
	v.SetDefault("style.height_inches", d.HeightInches)
	v.SetDefault("style.dpi", d.DPI)
	v.SetDefault("style.pad_inches", d.PadInches)
	v.SetDefault("style.top_n", d.TopN)
	v.SetDefault("style.background", d.Background)
	v.SetDefault("style.text_color", d.TextColor)
	v.SetDefault("style.axes_left", d.AxesLeft)
	v.SetDefault("style.axes_bottom", d.AxesBottom)
	v.SetDefault("style.axes_right", d.AxesRight)
	v.SetDefault("style.axes_top", d.AxesTop)
	v.SetDefault("style.bar_color", d.BarColor)
	v.SetDefault("style.bar_height", d.BarHeight)
	v.SetDefault("style.x_margin", d.XMargin)
	v.SetDefault("style.grid_color", d.GridColor)
	v.SetDefault("style.grid_alpha", d.GridAlpha)
	v.SetDefault("style.grid_width", d.GridWidth)
	v.SetDefault("style.spine_color", d.SpineColor)
	v.SetDefault("style.spine_width", d.SpineWidth)
	v.SetDefault("style.tick_length", d.TickLength)
	v.SetDefault("style.tick_width", d.TickWidth)
	v.SetDefault("style.tick_label_size", d.TickLabelSize)
	v.SetDefault("style.x_tick_pad", d.XTickPad)
	v.SetDefault("style.y_tick_pad", d.YTickPad)
	v.SetDefault("style.accent_color", d.AccentColor)
	v.SetDefault("style.rule_x0", d.RuleX0)
	v.SetDefault("style.rule_x1", d.RuleX1)
	v.SetDefault("style.rule_y", d.RuleY)
	v.SetDefault("style.rule_width", d.RuleWidth)
	v.SetDefault("style.tag_x", d.TagX)
	v.SetDefault("style.tag_y", d.TagY)
	v.SetDefault("style.tag_width", d.TagWidth)
	v.SetDefault("style.tag_height", d.TagHeight)
	setTextDefaults(v, "style.title", d.Title)
	setTextDefaults(v, "style.subtitle", d.Subtitle)
	setTextDefaults(v, "style.source", d.Source)

	// Telegram
	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.rate_limit", 1.0)

	// Log
	v.SetDefault("log.dir", "logs")
	v.SetDefault("log.level", "debug")

	// Render
	v.SetDefault("render.open", false)
	v.SetDefault("render.font_path", "")
}

func setTextDefaults(v *viper.Viper, prefix string, ts barchart.TextStyle) {
	v.SetDefault(prefix+".x", ts.X)
	v.SetDefault(prefix+".y", ts.Y)
	v.SetDefault(prefix+".size", ts.Size)
	v.SetDefault(prefix+".alpha", ts.Alpha)
	v.SetDefault(prefix+".bold", ts.Bold)
}

func (c *Config) Validate() error {
	if err := c.Style.Validate(); err != nil {
		return fmt.Errorf("invalid style: %w", err)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	return nil
}

// Validate checks the settings needed to publish
func (t TelegramConfig) Validate() error {
	if t.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required (env: TELEGRAM_BOT_TOKEN)")
	}
	if t.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required (env: TELEGRAM_CHAT_ID)")
	}
	return nil
}

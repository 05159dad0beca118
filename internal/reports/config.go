package reports

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config parameterizes the report generator.
type Config struct {
	APIKey          string  `toml:"api_key" validate:"required"`
	Model           string  `toml:"model" validate:"required"`
	Temperature     float32 `toml:"temperature" validate:"gte=0,lte=2"`
	MaxOutputTokens int32   `toml:"max_output_tokens" validate:"gte=0"`
	MaxInputChars   int     `toml:"max_input_chars" validate:"gte=0"`
	PromptFile      string  `toml:"prompt_file" validate:"omitempty,file"`
	Language        string  `toml:"language"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	APIKey        string
	Model         string
	MaxInputChars string
	PromptFile    string
	Language      string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return validate.Struct(c)
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Temperature != 0 {
		c.Temperature = overlay.Temperature
	}
	if overlay.MaxOutputTokens != 0 {
		c.MaxOutputTokens = overlay.MaxOutputTokens
	}
	if overlay.MaxInputChars != 0 {
		c.MaxInputChars = overlay.MaxInputChars
	}
	if overlay.PromptFile != "" {
		c.PromptFile = overlay.PromptFile
	}
	if overlay.Language != "" {
		c.Language = overlay.Language
	}
}

func (c *Config) loadDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.5-pro"
	}
	if c.MaxInputChars == 0 {
		c.MaxInputChars = 1_000_000
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Model != "" {
		if v := os.Getenv(env.Model); v != "" {
			c.Model = v
		}
	}
	if env.MaxInputChars != "" {
		if v := os.Getenv(env.MaxInputChars); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxInputChars = n
			}
		}
	}
	if env.PromptFile != "" {
		if v := os.Getenv(env.PromptFile); v != "" {
			c.PromptFile = v
		}
	}
	if env.Language != "" {
		if v := os.Getenv(env.Language); v != "" {
			c.Language = v
		}
	}
}

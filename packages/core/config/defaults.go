package config

import "github.com/abdul-hamid-achik/bookcheck/packages/books"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:         books.DefaultBaseURL,
		Timeout:         30000, // 30 seconds
		BookID:          books.DefaultBookID,
		Output:          "console",
		FollowRedirects: BoolPtr(true),
		ValidateSSL:     BoolPtr(true),
		DeleteWithBody:  BoolPtr(false),
		Preflight:       BoolPtr(false),
		LogLevel:        "warn",
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	d := DefaultConfig()
	return c.BaseURL == d.BaseURL &&
		c.Timeout == d.Timeout &&
		c.BookID == d.BookID &&
		c.Seed == d.Seed &&
		c.Output == d.Output &&
		c.OutputFile == d.OutputFile &&
		c.Proxy == d.Proxy &&
		len(c.Headers) == 0 &&
		c.Repeat == d.Repeat &&
		c.Rate == d.Rate &&
		c.LogLevel == d.LogLevel &&
		c.GetFollowRedirects() == d.GetFollowRedirects() &&
		c.GetValidateSSL() == d.GetValidateSSL() &&
		c.GetDeleteWithBody() == d.GetDeleteWithBody() &&
		c.GetPreflight() == d.GetPreflight() &&
		c.GetVerbose() == d.GetVerbose() &&
		c.GetNoColor() == d.GetNoColor()
}

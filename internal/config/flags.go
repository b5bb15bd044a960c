package config

import (
	"github.com/spf13/pflag"
)

// Flags holds the server flags bound to a FlagSet. Only flags the user
// actually set override the environment, so an explicit zero such as
// --hacking-decoys 0 is kept.
type Flags struct {
	fs      *pflag.FlagSet
	values  Config
	setters map[string]func(dst *Config)
}

// BindFlags registers server flags on fs
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs, setters: map[string]func(*Config){}}

	stringFlag(f, "host", "", "Listen host", func(c *Config) *string { return &c.Server.Host })
	intFlag(f, "port", "p", "Listen port", func(c *Config) *int { return &c.Server.Port })
	stringFlag(f, "storage", "", "Storage backend: memory, redis or postgres", func(c *Config) *string { return &c.Storage.Type })
	stringFlag(f, "redis-url", "", "Redis URL", func(c *Config) *string { return &c.Storage.RedisURL })
	stringFlag(f, "database-dsn", "d", "Postgres DSN", func(c *Config) *string { return &c.Storage.PostgresDSN })
	stringFlag(f, "admin-token", "", "Admin token", func(c *Config) *string { return &c.Auth.AdminToken })
	intFlag(f, "hacking-tries", "", "Initial hack session try budget", func(c *Config) *int { return &c.Game.HackingTriesAmount })
	intFlag(f, "hacking-decoys", "", "Decoy entries per hack session", func(c *Config) *int { return &c.Game.HackingDecoyAmount })
	intFlag(f, "calibration-reward", "", "Default station calibration reward", func(c *Config) *int { return &c.Game.CalibrationRewardAmount })
	stringFlag(f, "log-level", "", "Log level (debug, info, warn, error)", func(c *Config) *string { return &c.LogLevel })

	return f
}

func stringFlag(f *Flags, name, short, usage string, field func(*Config) *string) {
	f.fs.StringVarP(field(&f.values), name, short, "", usage)
	f.setters[name] = func(dst *Config) { *field(dst) = *field(&f.values) }
}

func intFlag(f *Flags, name, short, usage string, field func(*Config) *int) {
	f.fs.IntVarP(field(&f.values), name, short, 0, usage)
	f.setters[name] = func(dst *Config) { *field(dst) = *field(&f.values) }
}

// apply copies every flag that was set on the command line into dst
func (f *Flags) apply(dst *Config) {
	f.fs.Visit(func(fl *pflag.Flag) {
		if set, ok := f.setters[fl.Name]; ok {
			set(dst)
		}
	})
}

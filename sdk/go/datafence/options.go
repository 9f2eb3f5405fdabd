package datafence

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	dbPath        string
	overridesPath string
	auditLogPath  string
}

// WithDatabase sets the path to the governance SQLite database.
func WithDatabase(path string) Option {
	return func(c *clientConfig) { c.dbPath = path }
}

// WithOverrides applies a YAML overrides file on top of the stored
// configuration at client creation time.
func WithOverrides(path string) Option {
	return func(c *clientConfig) { c.overridesPath = path }
}

// WithAuditLog records every Check decision on a hash-chained JSONL log.
func WithAuditLog(path string) Option {
	return func(c *clientConfig) { c.auditLogPath = path }
}

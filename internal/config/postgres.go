package config

import (
	"net/url"
	"strings"
)

const preparedBinaryParam = "disable_prepared_binary_result"

// PostgresDSN is DB_URL with DB_DISABLE_PREPARED_BINARY_RESULT applied.
func (c Config) PostgresDSN() string {
	return NormalizePostgresDSN(c.DBURL, c.DBDisablePreparedBinary)
}

// NormalizePostgresDSN adds disable_prepared_binary_result=yes to URL style
// DSNs unless the caller already set the parameter. Key/value DSNs and
// unparsable input are returned as is.
func NormalizePostgresDSN(raw string, disablePreparedBinary bool) string {
	raw = strings.TrimSpace(raw)
	if !disablePreparedBinary || raw == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Has(preparedBinaryParam) {
		return raw
	}
	query.Set(preparedBinaryParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// PostgresDatabaseName extracts the database from either DSN form.
func PostgresDatabaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if parsed, err := url.Parse(dsn); err == nil && parsed.Scheme != "" {
		return strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
	}

	for _, field := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(field, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

package config

import "time"

const DefaultSessionTTL = 7 * 24 * time.Hour

// Duration lets TOML carry Go duration strings, e.g. session_ttl = "72h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

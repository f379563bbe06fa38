package model

const (
	// SettingsKeyPrefix namespaces sprint goal records in extension data.
	SettingsKeyPrefix = "sprintConfig."

	// TelemetryOptOutKey holds the single telemetry opt-out flag.
	TelemetryOptOutKey = "telemetryOptOut"
)

// ConfigKey composes the per team per iteration key, iteration first.
// Empty identifiers are passed through unchanged.
func ConfigKey(iterationID, teamID string) string {
	return iterationID + teamID
}

// SettingsKey is the extension data key holding the record for a config key.
func SettingsKey(configKey string) string {
	return SettingsKeyPrefix + configKey
}

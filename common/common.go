package common

const (
	WindowTitle = "bounce"
	Version     = "0.1.0"
	// DefaultScene is the scene prefab loaded when no -scene flag is given.
	DefaultScene = "scene.yaml"
	// SettingsApp is the gdata application name settings are stored under.
	SettingsApp = "bounce"
)

package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultChatModel is the completion model used by the chat assistant.
	DefaultChatModel = "gpt-4o-mini"
)

package domain

const (
	EnvironmentSandbox = "sandbox"
	EnvironmentLive    = "live"

	SandboxBaseURL = "https://api-m.sandbox.paypal.com"
	LiveBaseURL    = "https://api-m.paypal.com"

	DefaultEnvironment        = EnvironmentSandbox
	DefaultTokenSafetySeconds = 60
	DefaultRequestTimeoutMS   = 30000
	DefaultLogLevel           = "info"
)

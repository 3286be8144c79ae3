package main

type applicationConfig struct {
	Host           string `config_default:"localhost" config_description:"Server host interface"`
	Port           int    `config_default:"8080" config_description:"Server port"`
	SimulatedDelay int    `config_default:"0" config_description:"Simulated delay for HTMX interactions in milliseconds"`

	// Gemini chat. APIKey falls back to the API_KEY environment variable.
	APIKey      string  `config_default:"" config_description:"Google Gemini API key"`
	ModelName   string  `config_default:"gemini-2.5-flash" config_description:"Gemini model used for the chat"`
	Temperature float64 `config_default:"0.2" config_description:"Chat model temperature"`

	// Executive summary, "provider:model" with provider google, ollama, openai or anthropic
	ReportModel     string `config_default:"google:gemini-2.5-flash" config_description:"Model writing the session summary"`
	OpenAIAPIKey    string `config_default:"" config_description:"OpenAI API key for openai: report models"`
	OpenAIBaseURL   string `config_default:"" config_description:"OpenAI compatible base URL"`
	AnthropicAPIKey string `config_default:"" config_description:"Anthropic API key for anthropic: report models"`

	AdminPassword         string `config_default:"3685200" config_description:"Password of the configuration view"`
	NotificationRecipient string `config_default:"leads@archtools.example" config_description:"Recipient of the simulated emails"`
	CompanyConfigFile     string `config_default:"" config_description:"Optional YAML file seeding the company configuration"`

	CookieSecret  string `config_default:"" config_description:"Secret signing the visitor cookie, random when empty"`
	SecureCookie  bool   `config_default:"false" config_description:"Send the visitor cookie over HTTPS only"`
	MaxImageBytes int64  `config_default:"5242880" config_description:"Largest image a visitor may attach"`
	McpEnabled    bool   `config_default:"false" config_description:"Expose the outbox over MCP at /mcp"`
}

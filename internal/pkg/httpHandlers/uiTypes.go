package httpHandlers

import (
	"bytes"
	"html/template"
	"strings"

	"lead-chat/internal/pkg/chatSession"
	"lead-chat/internal/pkg/outbox"
	"lead-chat/internal/pkg/profile"
	"lead-chat/internal/pkg/sessions"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const entryTimestampLayout = "02/01/2006 15:04:05"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

type UiPage struct {
	View        string
	CompanyName string
	WebsiteURL  string
	FontSize    string
	FontSizes   []string
	LoginFailed bool
	Busy        bool
	FormError   string
	Form        UiRegistration
	User        profile.UserProfile
	Messages    []UiMessage
	Config      UiConfig
}

// UiRegistration refills the registration form after a rejected submission.
type UiRegistration struct {
	Name           string
	Company        string
	Project        string
	ClientType     string
	ProjectType    string
	ProjectStage   string
	AdditionalInfo string
}

type UiMessage struct {
	ID        string
	IsUser    bool
	Text      string
	HTML      template.HTML
	Image     template.URL
	Streaming bool
	Feedback  string
	Rateable  bool
	// OOB marks a fragment that replaces the rendered message in place.
	OOB bool
}

type UiMessageResponse struct {
	UiMessage
	New bool
}

type UiTone struct {
	Value    string
	Label    string
	Selected bool
}

type UiConfig struct {
	CompanyName   string
	WebsiteHost   string
	Context       string
	ContextLength int
	Tones         []UiTone
	Uploads       []string
	Entries       []UiEntry
}

type UiEntry struct {
	ID        string
	Timestamp string
	To        string
	Subject   string
	Body      string
	Kind      string
	Label     string
}

// TemplateFuncs are the helpers available to every template.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"fontClass": fontClass,
		"upper":     strings.ToUpper,
	}
}

func fontClass(fontSize string) string {
	switch sessions.FontSize(fontSize) {
	case sessions.FontSizeSmall:
		return "text-small"
	case sessions.FontSizeLarge:
		return "text-large"
	default:
		return "text-normal"
	}
}

// renderMarkdown converts model text to HTML. Raw HTML in the text is
// dropped by the renderer, so the result is safe to embed.
func renderMarkdown(text string) template.HTML {
	var buffer bytes.Buffer
	if err := markdown.Convert([]byte(text), &buffer); err != nil {
		log.Error().Err(err).Msg("goldmark.Markdown.Convert() failed")
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buffer.String())
}

func toUiMessage(message chatSession.Message) UiMessage {
	uiMessage := UiMessage{
		ID:        message.ID,
		IsUser:    message.Role == chatSession.RoleUser,
		Text:      message.Text,
		Streaming: message.Streaming,
		Feedback:  string(message.Feedback),
	}

	if uiMessage.IsUser {
		// Only data URLs produced by the ask handler end up here.
		if message.Image != "" {
			uiMessage.Image = template.URL(message.Image)
		}
	} else {
		uiMessage.HTML = renderMarkdown(message.Text)
		uiMessage.Rateable = !message.Streaming && message.Text != ""
	}

	return uiMessage
}

func ToUiMessageResponse(response chatSession.MessageResponse) UiMessageResponse {
	return UiMessageResponse{
		UiMessage: toUiMessage(response.Message),
		New:       response.New,
	}
}

func ToUiMessages(messages []chatSession.Message) []UiMessage {
	uiMessages := make([]UiMessage, len(messages))
	for i, message := range messages {
		uiMessages[i] = toUiMessage(message)
	}
	return uiMessages
}

func toUiConfig(company profile.CompanyConfig, uploads []string, entries []outbox.Entry) UiConfig {
	tones := make([]UiTone, len(profile.Tones))
	for i, tone := range profile.Tones {
		tones[i] = UiTone{Value: string(tone), Label: tone.Label(), Selected: tone == company.Tone}
	}

	uiEntries := make([]UiEntry, len(entries))
	for i, entry := range entries {
		uiEntries[i] = UiEntry{
			ID:        entry.ID,
			Timestamp: entry.Timestamp.Format(entryTimestampLayout),
			To:        entry.To,
			Subject:   entry.Subject,
			Body:      entry.Body,
			Kind:      string(entry.Kind),
			Label:     entry.Kind.Label(),
		}
	}

	return UiConfig{
		CompanyName:   company.CompanyName,
		WebsiteHost:   strings.TrimPrefix(company.WebsiteURL, "https://"),
		Context:       company.Context,
		ContextLength: len([]rune(company.Context)),
		Tones:         tones,
		Uploads:       uploads,
		Entries:       uiEntries,
	}
}

func fontSizes() []string {
	values := make([]string, len(sessions.FontSizes))
	for i, fontSize := range sessions.FontSizes {
		values[i] = string(fontSize)
	}
	return values
}

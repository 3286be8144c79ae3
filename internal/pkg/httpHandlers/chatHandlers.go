package httpHandlers

import (
	"errors"
	"html/template"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"lead-chat/internal/pkg/chatSession"
	"lead-chat/internal/pkg/cookies"
	"lead-chat/internal/pkg/outbox"
	"lead-chat/internal/pkg/profile"
	"lead-chat/internal/pkg/sessions"
	"lead-chat/internal/pkg/summarizer"
	"lead-chat/internal/pkg/views"
	"lead-chat/internal/pkg/web"
	"lead-chat/internal/pkg/websocketServer"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	DefaultMaxImageBytes    = 5 << 20
	DefaultMaxDocumentBytes = 1 << 20

	outboxPreviewSize = 50
)

var documentExtensions = []string{".txt", ".md", ".json", ".csv"}

type Options struct {
	Templates          *template.Template
	SessionManager     *sessions.SessionManager
	NotificationServer websocketServer.WebsocketServer
	Jar                *cookies.Jar
	Companies          *profile.Store
	Outbox             *outbox.Outbox
	Summarizer         *summarizer.Summarizer
	MaxImageBytes      int64
	MaxDocumentBytes   int64
}

type ChatHandlers struct {
	templates          *template.Template
	sessionManager     *sessions.SessionManager
	notificationServer websocketServer.WebsocketServer
	jar                *cookies.Jar
	companies          *profile.Store
	outbox             *outbox.Outbox
	summarizer         *summarizer.Summarizer
	maxImageBytes      int64
	maxDocumentBytes   int64
	now                func() time.Time
}

func New(options Options) *ChatHandlers {
	handlers := &ChatHandlers{
		templates:          options.Templates,
		sessionManager:     options.SessionManager,
		notificationServer: options.NotificationServer,
		jar:                options.Jar,
		companies:          options.Companies,
		outbox:             options.Outbox,
		summarizer:         options.Summarizer,
		maxImageBytes:      options.MaxImageBytes,
		maxDocumentBytes:   options.MaxDocumentBytes,
		now:                time.Now,
	}
	if handlers.maxImageBytes <= 0 {
		handlers.maxImageBytes = DefaultMaxImageBytes
	}
	if handlers.maxDocumentBytes <= 0 {
		handlers.maxDocumentBytes = DefaultMaxDocumentBytes
	}
	return handlers
}

// Main renders the whole page for the visitor's current view. Unknown
// visitors get a fresh id cookie.
func (instance *ChatHandlers) Main(request *http.Request, simulatedDelay int) *web.Response {
	web.Delay(simulatedDelay)

	var cookie *http.Cookie
	visitor := instance.visitor(request)
	if visitor == nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return web.GetEmptyResponse(http.StatusInternalServerError, nil, nil)
		}

		cookie = instance.jar.Cookie(id)
		if cookie == nil {
			return web.GetEmptyResponse(http.StatusInternalServerError, nil, nil)
		}

		visitor, err = instance.sessionManager.AddVisitor(id)
		if err != nil {
			log.Error().Err(err).Msg("sessionManager.AddVisitor() failed")
			return web.GetEmptyResponse(http.StatusInternalServerError, nil, nil)
		}
	}

	return web.RenderResponse(http.StatusOK, instance.templates, "main.gohtml", instance.page(visitor), nil, cookie)
}

func (instance *ChatHandlers) Start(request *http.Request, simulatedDelay int) *web.Response {
	return instance.fire(request, simulatedDelay, views.EventStart)
}

func (instance *ChatHandlers) IntroDone(request *http.Request, simulatedDelay int) *web.Response {
	return instance.fire(request, simulatedDelay, views.EventIntroDone)
}

func (instance *ChatHandlers) Back(request *http.Request, simulatedDelay int) *web.Response {
	return instance.fire(request, simulatedDelay, views.EventBack)
}

func (instance *ChatHandlers) fire(request *http.Request, simulatedDelay int, event views.Event) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	web.Delay(simulatedDelay)

	if _, err := visitor.Views.Fire(event); err != nil {
		log.Warn().Err(err).Str("visitor_id", visitor.ID.String()).Msg("view transition rejected")
		return instance.renderView(http.StatusConflict, visitor, nil)
	}
	return instance.renderView(http.StatusOK, visitor, nil)
}

// Register validates the profile, records the lead email and starts the
// visitor's conversation.
func (instance *ChatHandlers) Register(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	if visitor.Views.Current() != views.Register {
		return instance.renderView(http.StatusConflict, visitor, nil)
	}

	if err := request.ParseForm(); err != nil {
		log.Error().Err(err).Msg("http.Request.ParseForm() failed")
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	// Values are kept as typed. Validate ignores surrounding whitespace.
	form := UiRegistration{
		Name:           request.PostForm.Get("name"),
		Company:        request.PostForm.Get("company"),
		Project:        request.PostForm.Get("project"),
		ClientType:     request.PostForm.Get("clientType"),
		ProjectType:    request.PostForm.Get("projectType"),
		ProjectStage:   request.PostForm.Get("projectStage"),
		AdditionalInfo: request.PostForm.Get("additionalInfo"),
	}

	user := profile.UserProfile{
		Name:       form.Name,
		Company:    form.Company,
		Project:    form.Project,
		ClientType: profile.ParseClientType(form.ClientType),
	}
	if user.IsNew() {
		user.ProjectType = form.ProjectType
		user.ProjectStage = form.ProjectStage
		user.AdditionalInfo = form.AdditionalInfo
	}

	if err := user.Validate(); err != nil {
		return instance.renderView(http.StatusOK, visitor, func(page *UiPage) {
			page.FormError = "Please fill in name, company and project."
			page.Form = form
		})
	}

	web.Delay(simulatedDelay)

	instance.outbox.NotifyRegistration(user)
	visitor.Register(user, instance.companies.Get(), instance.messageResponseHandler(visitor.ID))

	if _, err := visitor.Views.Fire(views.EventRegistered); err != nil {
		log.Error().Err(err).Msg("views.Machine.Fire() failed")
	}
	return instance.renderView(http.StatusOK, visitor, nil)
}

// Admin checks the configuration password. A wrong password re-renders the
// current view with the error flag raised.
func (instance *ChatHandlers) Admin(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	if err := request.ParseForm(); err != nil {
		log.Error().Err(err).Msg("http.Request.ParseForm() failed")
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	web.Delay(simulatedDelay)

	_, err := visitor.Views.AdminLogin(request.PostForm.Get("password"))
	if err != nil && !errors.Is(err, views.ErrIncorrectPassword) {
		log.Warn().Err(err).Msg("admin login rejected")
		return instance.renderView(http.StatusConflict, visitor, nil)
	}
	if err == nil {
		visitor.ClearUploads()
	}
	return instance.renderView(http.StatusOK, visitor, nil)
}

func (instance *ChatHandlers) SaveConfig(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	if visitor.Views.Current() != views.Config {
		return web.GetEmptyResponse(http.StatusForbidden, nil, nil)
	}

	if err := request.ParseForm(); err != nil {
		log.Error().Err(err).Msg("http.Request.ParseForm() failed")
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	company := profile.CompanyConfig{
		CompanyName: strings.TrimSpace(request.PostForm.Get("companyName")),
		Tone:        profile.Tone(request.PostForm.Get("tone")),
		Context:     request.PostForm.Get("context"),
		WebsiteURL:  request.PostForm.Get("websiteUrl"),
	}
	if company.CompanyName == "" || !knownTone(company.Tone) {
		return instance.renderView(http.StatusOK, visitor, func(page *UiPage) {
			page.FormError = "Company name and a known tone are required."
		})
	}

	web.Delay(simulatedDelay)

	instance.companies.Update(company)
	visitor.ClearUploads()
	log.Info().Str("company", company.CompanyName).Str("tone", string(company.Tone)).
		Int("context_length", len(company.Context)).Msg("company configuration saved")

	if _, err := visitor.Views.Fire(views.EventConfigSaved); err != nil {
		log.Error().Err(err).Msg("views.Machine.Fire() failed")
	}
	return instance.renderView(http.StatusOK, visitor, nil)
}

// UploadKnowledge appends a text document to the knowledge base.
func (instance *ChatHandlers) UploadKnowledge(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	if visitor.Views.Current() != views.Config {
		return web.GetEmptyResponse(http.StatusForbidden, nil, nil)
	}

	uploadError := func(message string) *web.Response {
		return instance.renderView(http.StatusOK, visitor, func(page *UiPage) {
			page.FormError = message
		})
	}

	request.Body = http.MaxBytesReader(nil, request.Body, instance.maxDocumentBytes+multipartOverhead)
	file, header, err := request.FormFile("document")
	if err != nil {
		log.Warn().Err(err).Msg("http.Request.FormFile() failed")
		return uploadError("Select a .txt, .md, .json or .csv document up to the size limit.")
	}
	defer file.Close()

	if !knownDocumentExtension(header.Filename) {
		return uploadError("Only .txt, .md, .json and .csv documents can be imported.")
	}

	content, tooLarge, err := readLimited(file, instance.maxDocumentBytes)
	if err != nil {
		log.Error().Err(err).Msg("document can't be read")
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	if tooLarge {
		return uploadError("The document is too large.")
	}
	if !utf8.Valid(content) {
		return uploadError("The document is not UTF-8 text.")
	}

	web.Delay(simulatedDelay)

	fileName := path.Base(header.Filename)
	instance.companies.AppendDocument(fileName, string(content))
	visitor.AddUpload(fileName)
	log.Info().Str("file_name", fileName).Int("size", len(content)).Msg("document imported into knowledge base")

	return instance.renderView(http.StatusOK, visitor, nil)
}

func (instance *ChatHandlers) Settings(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	if err := request.ParseForm(); err != nil {
		log.Error().Err(err).Msg("http.Request.ParseForm() failed")
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	if err := visitor.SetFontSize(sessions.FontSize(request.PostForm.Get("fontSize"))); err != nil {
		log.Warn().Err(err).Msg("font size rejected")
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	web.Delay(simulatedDelay)
	return instance.renderView(http.StatusOK, visitor, nil)
}

func (instance *ChatHandlers) visitor(request *http.Request) *sessions.Visitor {
	id := instance.jar.VisitorID(request)
	if id == uuid.Nil {
		return nil
	}
	return instance.sessionManager.GetVisitor(id)
}

func (instance *ChatHandlers) page(visitor *sessions.Visitor) UiPage {
	company := instance.companies.Get()
	page := UiPage{
		View:        string(visitor.Views.Current()),
		CompanyName: company.CompanyName,
		WebsiteURL:  company.WebsiteURL,
		FontSize:    string(visitor.FontSize()),
		FontSizes:   fontSizes(),
		LoginFailed: visitor.Views.LoginFailed(),
		Form:        UiRegistration{ClientType: string(profile.ClientTypeExisting)},
	}

	switch visitor.Views.Current() {
	case views.Chat:
		if user, ok := visitor.User(); ok {
			page.User = user
		}
		if chat := visitor.Chat(); chat != nil {
			page.Messages = ToUiMessages(chat.Messages())
			page.Busy = chat.Busy()
		}
	case views.Config:
		page.Config = toUiConfig(company, visitor.Uploads(), instance.outbox.List("", outboxPreviewSize))
	}

	return page
}

func (instance *ChatHandlers) renderView(status int, visitor *sessions.Visitor, update func(page *UiPage)) *web.Response {
	page := instance.page(visitor)
	if update != nil {
		update(&page)
	}
	return web.RenderResponse(status, instance.templates, "view.gohtml", page, nil, nil)
}

// messageResponseHandler pushes every transcript change of the visitor's chat
// to their open websocket connections.
func (instance *ChatHandlers) messageResponseHandler(id uuid.UUID) chatSession.MessageResponseFunc {
	return func(response chatSession.MessageResponse) {
		uiResponse := ToUiMessageResponse(response)
		uiResponse.OOB = !response.New

		content, err := web.Render(instance.templates, "message-update.gohtml", uiResponse)
		if err != nil {
			return
		}
		instance.notificationServer.Publish(id, content)
	}
}

func knownTone(tone profile.Tone) bool {
	for _, known := range profile.Tones {
		if tone == known {
			return true
		}
	}
	return false
}

func knownDocumentExtension(fileName string) bool {
	extension := strings.ToLower(path.Ext(fileName))
	for _, known := range documentExtensions {
		if extension == known {
			return true
		}
	}
	return false
}

// readLimited reads at most limit bytes and reports whether more were available.
func readLimited(reader io.Reader, limit int64) ([]byte, bool, error) {
	content, err := io.ReadAll(io.LimitReader(reader, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(content)) > limit {
		return nil, true, nil
	}
	return content, false, nil
}

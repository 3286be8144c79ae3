package httpHandlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"lead-chat/internal/pkg/chatSession"
	"lead-chat/internal/pkg/outbox"
	"lead-chat/internal/pkg/views"
	"lead-chat/internal/pkg/web"

	"github.com/rs/zerolog/log"
)

// Room for the text fields and multipart framing around an upload.
const multipartOverhead = 1 << 20

const defaultOutboxLimit = 20

const (
	emptyMessageText = "Type a message or attach an image."
	busyText         = "Please wait for the current reply to finish."
)

// Ask enqueues the visitor's message. The reply is pushed over the websocket.
func (instance *ChatHandlers) Ask(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	chat := visitor.Chat()
	if chat == nil || visitor.Views.Current() != views.Chat {
		return web.TextResponse(http.StatusConflict, chatSession.MissingSessionMessage, nil)
	}

	request.Body = http.MaxBytesReader(nil, request.Body, instance.maxImageBytes+multipartOverhead)
	if err := request.ParseMultipartForm(multipartOverhead); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		log.Error().Err(err).Msg("http.Request.ParseMultipartForm() failed")
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return web.TextResponse(http.StatusRequestEntityTooLarge, "The image is too large.", nil)
		}
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	if request.MultipartForm != nil {
		defer func() {
			if err := request.MultipartForm.RemoveAll(); err != nil {
				log.Error().Err(err).Msg("multipart.Form.RemoveAll() failed")
			}
		}()
	}

	userInput := request.FormValue("user-input")

	imageDataURL, response := instance.imageDataURL(request)
	if response != nil {
		return response
	}

	err := chat.EnqueueMessage(userInput, imageDataURL)
	switch {
	case errors.Is(err, chatSession.ErrEmptyMessage):
		return web.TextResponse(http.StatusBadRequest, emptyMessageText, nil)
	case errors.Is(err, chatSession.ErrBusy):
		return web.TextResponse(http.StatusConflict, busyText, nil)
	case err != nil:
		log.Error().Err(err).Msg("enqueue message failed")
		return web.GetEmptyResponse(http.StatusInternalServerError, nil, nil)
	}

	web.Delay(simulatedDelay)

	headers := web.Headers{"HX-Trigger-After-Swap": "{\"clearUserInput\":\"\"}"}
	return web.GetEmptyResponse(http.StatusOK, headers, nil)
}

// imageDataURL turns the optional "image" upload into a data URL. A non nil
// response means the upload was rejected.
func (instance *ChatHandlers) imageDataURL(request *http.Request) (string, *web.Response) {
	if request.MultipartForm == nil {
		return "", nil
	}

	file, _, err := request.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		log.Error().Err(err).Msg("http.Request.FormFile() failed")
		return "", web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	defer file.Close()

	content, tooLarge, err := readLimited(file, instance.maxImageBytes)
	if err != nil {
		log.Error().Err(err).Msg("image can't be read")
		return "", web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	if tooLarge {
		return "", web.TextResponse(http.StatusRequestEntityTooLarge, "The image is too large.", nil)
	}
	if len(content) == 0 {
		return "", nil
	}

	mimeType := http.DetectContentType(content)
	if !strings.HasPrefix(mimeType, "image/") {
		return "", web.TextResponse(http.StatusBadRequest, "Only images can be attached.", nil)
	}

	return chatSession.Image{MIMEType: mimeType, Data: content}.DataURL(), nil
}

// Feedback rates a model reply and returns the re-rendered message.
func (instance *ChatHandlers) Feedback(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	chat := visitor.Chat()
	if chat == nil {
		return web.GetEmptyResponse(http.StatusNotFound, nil, nil)
	}

	if err := request.ParseForm(); err != nil {
		log.Error().Err(err).Msg("http.Request.ParseForm() failed")
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	message, err := chat.SetFeedback(request.PostForm.Get("id"), chatSession.Feedback(request.PostForm.Get("value")))
	switch {
	case errors.Is(err, chatSession.ErrMessageNotFound):
		return web.GetEmptyResponse(http.StatusNotFound, nil, nil)
	case err != nil:
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	web.Delay(simulatedDelay)
	return web.RenderResponse(http.StatusOK, instance.templates, "message.gohtml", toUiMessage(message), nil, nil)
}

// Transcript returns the plain text report the visitor can share.
func (instance *ChatHandlers) Transcript(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	chat := visitor.Chat()
	if chat == nil {
		return web.GetEmptyResponse(http.StatusNotFound, nil, nil)
	}

	user, _ := visitor.User()
	headers := web.Headers{
		"Content-Disposition": fmt.Sprintf("inline; filename=%q", "report-"+fileSafe(user.Project)+".txt"),
	}
	return web.TextResponse(http.StatusOK, chat.Transcript(instance.now()), headers)
}

// Report asks the summarizer for an executive summary of the conversation.
func (instance *ChatHandlers) Report(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}
	chat := visitor.Chat()
	if chat == nil {
		return web.GetEmptyResponse(http.StatusNotFound, nil, nil)
	}

	company := instance.companies.Get()
	summary := instance.summarizer.Summarize(request.Context(), company.CompanyName, chat.Transcript(instance.now()))

	web.Delay(simulatedDelay)
	return web.RenderResponse(http.StatusOK, instance.templates, "report.gohtml", renderMarkdown(summary), nil, nil)
}

// Outbox lists the simulated emails. Only visitors in the configuration view
// may read it.
func (instance *ChatHandlers) Outbox(request *http.Request, simulatedDelay int) *web.Response {
	visitor := instance.visitor(request)
	if visitor == nil || visitor.Views.Current() != views.Config {
		return web.GetEmptyResponse(http.StatusForbidden, nil, nil)
	}

	query := request.URL.Query()
	limit := defaultOutboxLimit
	if value := query.Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 {
			return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
		}
		limit = parsed
	}

	kind := outbox.Kind(query.Get("kind"))
	if kind != "" && kind != outbox.KindLead && kind != outbox.KindReport {
		return web.GetEmptyResponse(http.StatusBadRequest, nil, nil)
	}

	return web.JSONResponse(http.StatusOK, instance.outbox.List(kind, limit), nil)
}

func fileSafe(value string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		default:
			return -1
		}
	}, value)
}

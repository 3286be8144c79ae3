package web

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog/log"
)

func RenderResponse(status int, templates *template.Template, templateName string, data any, headers Headers, cookie *http.Cookie) *Response {
	content, err := Render(templates, templateName, data)
	if err != nil {
		return GetEmptyResponse(http.StatusInternalServerError, nil, nil)
	}

	return &Response{
		Status:      status,
		ContentType: "text/html; charset=utf-8",
		Content:     content,
		Headers:     headers,
		Cookie:      cookie,
	}
}

// Render executes a named template into a byte slice, e.g. for websocket pushes.
func Render(templates *template.Template, templateName string, data any) ([]byte, error) {
	var buffer bytes.Buffer
	if err := templates.ExecuteTemplate(&buffer, templateName, data); err != nil {
		log.Error().Err(err).Str("template_name", templateName).Msg("templates.ExecuteTemplate() failed")
		return nil, err
	}
	return buffer.Bytes(), nil
}

func JSONResponse(status int, data any, headers Headers) *Response {
	content, err := sonic.Marshal(data)
	if err != nil {
		log.Error().Err(err).Msg("sonic.Marshal() failed")
		return GetEmptyResponse(http.StatusInternalServerError, nil, nil)
	}

	return &Response{
		Status:      status,
		ContentType: "application/json",
		Content:     content,
		Headers:     headers,
	}
}

func TextResponse(status int, text string, headers Headers) *Response {
	return &Response{
		Status:      status,
		ContentType: "text/plain; charset=utf-8",
		Content:     []byte(text),
		Headers:     headers,
	}
}

func GetEmptyResponse(status int, headers Headers, cookie *http.Cookie) *Response {
	return GetResponse(status, []byte(""), headers, cookie)
}

func GetResponse(status int, content []byte, headers Headers, cookie *http.Cookie) *Response {
	return &Response{
		Status:  status,
		Content: content,
		Headers: headers,
		Cookie:  cookie,
	}
}

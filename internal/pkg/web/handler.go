package web

import (
	"net/http"
	"time"
)

type Headers map[string]string

// Handler adapts a request func returning a *Response to http.Handler.
// SimulatedDelay (milliseconds) is handed to the func so htmx indicators can
// be exercised locally.
type Handler struct {
	Request        func(request *http.Request, simulatedDelay int) *Response
	SimulatedDelay int
}

func (handler Handler) ServeHTTP(responseWriter http.ResponseWriter, request *http.Request) {
	response := handler.Request(request, handler.SimulatedDelay)
	response.Write(responseWriter)
}

func Delay(simulatedDelay int) {
	if simulatedDelay > 0 {
		time.Sleep(time.Duration(simulatedDelay) * time.Millisecond)
	}
}

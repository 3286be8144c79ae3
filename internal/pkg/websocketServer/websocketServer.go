package websocketServer

import (
	"net/http"

	"github.com/google/uuid"
)

// WebsocketServer pushes rendered HTML fragments to the browsers of one visitor.
type WebsocketServer interface {
	Handler(responseWriter http.ResponseWriter, request *http.Request)
	Publish(visitorID uuid.UUID, message []byte)
	Subscribers(visitorID uuid.UUID) int
}

// VisitorIdentifier resolves the visitor of a request, uuid.Nil if unknown.
type VisitorIdentifier func(request *http.Request) uuid.UUID

package websocketServer

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const subscriberMessageBufferSize = 64
const writeTimeout = 5 * time.Second

type websocketServerImpl struct {
	identify    VisitorIdentifier
	mutex       sync.Mutex
	subscribers map[*serverSubscriber]struct{}
}

func New(identify VisitorIdentifier) WebsocketServer {
	return &websocketServerImpl{
		identify:    identify,
		subscribers: make(map[*serverSubscriber]struct{}),
	}
}

type serverSubscriber struct {
	visitorID      uuid.UUID
	messageChannel chan []byte
	closeSlow      func()
}

func (instance *websocketServerImpl) Handler(responseWriter http.ResponseWriter, request *http.Request) {
	visitorID := instance.identify(request)
	if visitorID == uuid.Nil {
		http.Error(responseWriter, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	err := instance.subscribe(responseWriter, request, visitorID)
	if errors.Is(err, context.Canceled) {
		return
	}

	if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}

	if err != nil {
		log.Error().Err(err).Str("visitor_id", visitorID.String()).Msg("subscribe() failed")
	}
}

func (instance *websocketServerImpl) subscribe(responseWriter http.ResponseWriter, request *http.Request, visitorID uuid.UUID) error {
	websocketConnection, err := websocket.Accept(responseWriter, request, nil)
	if err != nil {
		// Accept has already written the error response.
		log.Error().Err(err).Msg("websocket.Accept() failed")
		return err
	}

	defer func() {
		if err := websocketConnection.CloseNow(); err != nil {
			log.Debug().Err(err).Msg("websocket.Conn.CloseNow() failed")
		}
	}()

	subscriber := &serverSubscriber{
		visitorID:      visitorID,
		messageChannel: make(chan []byte, subscriberMessageBufferSize),
		closeSlow: func() {
			err := websocketConnection.Close(websocket.StatusPolicyViolation, "connection too slow to keep up with messages")
			if err != nil {
				log.Error().Err(err).Msg("websocket.Conn.Close() failed")
			}
		},
	}

	instance.addSubscriber(subscriber)
	defer instance.deleteSubscriber(subscriber)

	ctx := websocketConnection.CloseRead(request.Context())

	for {
		select {
		case message := <-subscriber.messageChannel:
			if err := write(ctx, websocketConnection, message); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Publish queues message for every connection of the visitor. A connection
// whose queue is full is closed rather than blocking the publisher.
func (instance *websocketServerImpl) Publish(visitorID uuid.UUID, message []byte) {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()

	for subscriber := range instance.subscribers {
		if subscriber.visitorID != visitorID {
			continue
		}
		select {
		case subscriber.messageChannel <- message:
		default:
			go subscriber.closeSlow()
		}
	}
}

func (instance *websocketServerImpl) Subscribers(visitorID uuid.UUID) int {
	instance.mutex.Lock()
	defer instance.mutex.Unlock()

	count := 0
	for subscriber := range instance.subscribers {
		if subscriber.visitorID == visitorID {
			count++
		}
	}
	return count
}

func (instance *websocketServerImpl) addSubscriber(subscriber *serverSubscriber) {
	instance.mutex.Lock()
	instance.subscribers[subscriber] = struct{}{}
	instance.mutex.Unlock()
}

func (instance *websocketServerImpl) deleteSubscriber(subscriber *serverSubscriber) {
	instance.mutex.Lock()
	delete(instance.subscribers, subscriber)
	instance.mutex.Unlock()
}

func write(ctx context.Context, websocketConnection *websocket.Conn, message []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err := websocketConnection.Write(writeCtx, websocket.MessageText, message); err != nil {
		log.Error().Err(err).Msg("websocket.Conn.Write() failed")
		return err
	}
	return nil
}

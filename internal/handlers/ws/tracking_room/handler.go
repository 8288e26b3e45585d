package tracking_room

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gathr/internal/generated/dto"
	"gathr/internal/handlers/rest/presenter"
	"gathr/internal/pkg/middlewares/auth"
	"gathr/internal/service/authz"
	"gathr/internal/service/order"
	"gathr/internal/service/tracking"
	"gathr/pkg/geo"
	"gathr/pkg/logger"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gorilla/mux"
	"golang.org/x/sync/errgroup"
)

const (
	writeTimeout = 10 * time.Second
	// команда с текстом чата в MaxMessageLength рун помещается с запасом
	readLimitBytes = 8192

	frameError = "error"
)

type Handler struct {
	log            handlerLogger
	service        Service
	originPatterns []string
}

func New(log handlerLogger, service Service, originPatterns []string) *Handler {
	handlerLog := log.With()

	return &Handler{
		log:            handlerLog,
		service:        service,
		originPatterns: originPatterns,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	orderID := mux.Vars(r)["id"]

	// права проверяются до апгрейда, чтобы отказ ушёл обычным HTTP-статусом
	session, err := h.service.Join(r.Context(), auth.UserID(r.Context()), orderID, r.URL.Query().Get("name"))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrInvalidOrderID):
			w.WriteHeader(http.StatusBadRequest)
		case errors.Is(err, authz.ErrUnauthorized):
			w.WriteHeader(http.StatusUnauthorized)
		case errors.Is(err, authz.ErrForbidden):
			w.WriteHeader(http.StatusForbidden)
		case errors.Is(err, order.ErrOrderNotFound):
			w.WriteHeader(http.StatusNotFound)
		case errors.Is(err, tracking.ErrOrderNotInTransit):
			w.WriteHeader(http.StatusConflict)
		default:
			h.log.With(
				logger.NewField("order_id", orderID),
				logger.NewField("error", err),
			).Error("join tracking room")
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	}
	defer session.Leave(r.Context())

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.With(
			logger.NewField("order_id", orderID),
			logger.NewField("error", err),
		).Warn("websocket upgrade")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimitBytes)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		return h.writeLoop(ctx, conn, session)
	})
	g.Go(func() error {
		return h.readLoop(ctx, conn, session)
	})

	err = g.Wait()
	if err != nil && websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
		h.log.With(
			logger.NewField("order_id", orderID),
			logger.NewField("error", err),
		).Warn("tracking connection dropped")
	}
}

// writeLoop пересылает кадры комнаты. Закрытый канал означает, что комната
// разобрана или участник вышел, соединение закрывается штатно.
func (h *Handler) writeLoop(ctx context.Context, conn *websocket.Conn, session Session) error {
	messages := session.Messages()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return conn.Close(websocket.StatusNormalClosure, "tracking finished")
			}
			if err := write(ctx, conn, presenter.TrackingFrame(msg)); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, session Session) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		var cmd dto.TrackingCommand
		if typ != websocket.MessageText || json.Unmarshal(data, &cmd) != nil {
			if err := writeError(ctx, conn, session, "malformed command"); err != nil {
				return err
			}
			continue
		}

		if err := h.handleCommand(ctx, conn, session, cmd); err != nil {
			return err
		}
	}
}

func (h *Handler) handleCommand(ctx context.Context, conn *websocket.Conn, session Session, cmd dto.TrackingCommand) error {
	var err error
	switch cmd.Type {
	case dto.Location:
		if cmd.Lat == nil || cmd.Long == nil {
			return writeError(ctx, conn, session, "lat and long are required")
		}
		err = session.PublishLocation(ctx, geo.Point{Lat: *cmd.Lat, Long: *cmd.Long})
	case dto.Chat:
		if cmd.Text == nil {
			return writeError(ctx, conn, session, "text is required")
		}
		err = session.SendChat(*cmd.Text)
	default:
		return writeError(ctx, conn, session, "unknown command type")
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, tracking.ErrRoomClosed):
		// writeLoop получит закрытый канал и закроет соединение
		return nil
	case errors.Is(err, tracking.ErrCarrierOnly),
		errors.Is(err, tracking.ErrEmptyMessage),
		errors.Is(err, tracking.ErrMessageTooLong),
		errors.Is(err, geo.ErrInvalidCoordinates):
		return writeError(ctx, conn, session, err.Error())
	default:
		h.log.With(
			logger.NewField("order_id", session.OrderID()),
			logger.NewField("command", string(cmd.Type)),
			logger.NewField("error", err),
		).Error("handle tracking command")
		return writeError(ctx, conn, session, "internal error")
	}
}

func writeError(ctx context.Context, conn *websocket.Conn, session Session, text string) error {
	return write(ctx, conn, dto.TrackingFrame{
		Type:    frameError,
		OrderID: session.OrderID(),
		SentAt:  time.Now().UTC(),
		Error:   &text,
	})
}

func write(ctx context.Context, conn *websocket.Conn, frame dto.TrackingFrame) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, frame)
}

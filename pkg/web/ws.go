package web

import (
	"log/slog"
	"net/http"

	"github.com/dskvich/snarky-facts/pkg/domain"
	"github.com/dskvich/snarky-facts/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsEvent struct {
	State     domain.State   `json:"state"`
	Status    string         `json:"status,omitempty"`
	Card      string         `json:"card,omitempty"`
	Downloads []downloadLink `json:"downloads,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// GET /ws/generate streams each state change so the page can show progress,
// then sends the card or the error and closes.
func wsGenerateHandler(generator cardGenerator) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.WarnContext(ctx, "websocket upgrade failed", logger.Err(err))
			return
		}
		defer conn.Close()

		send := func(ev wsEvent) {
			if err := conn.WriteJSON(ev); err != nil {
				slog.WarnContext(ctx, "websocket write failed", logger.Err(err))
			}
		}

		card, err := generator.Run(ctx, func(s domain.State) {
			if s == domain.StateAwaitingTrivia || s == domain.StateAwaitingImage {
				send(wsEvent{State: s, Status: s.Status()})
			}
		})
		if err != nil {
			send(wsEvent{State: domain.StateIdle, Error: err.Error()})
		} else {
			send(wsEvent{State: domain.StateRendered, Card: card.Markup, Downloads: downloadLinks(card)})
		}

		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

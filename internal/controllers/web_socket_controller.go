package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"swachh_netra/internal/events"
	"swachh_netra/internal/models"
	"swachh_netra/internal/services"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	sendBuffer   = 64
)

// upgrader configures the WebSocket connection.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // mobile clients send no Origin
	},
}

// DashboardController streams change events to dashboards so they can
// refetch instead of polling.
type DashboardController struct {
	users *services.UserService
	hub   *events.Hub
}

func NewDashboardController(svc *services.Services) *DashboardController {
	return &DashboardController{users: svc.Users, hub: svc.Hub()}
}

// topicsFor picks the feeds a role may watch.
func topicsFor(s services.Session) []string {
	switch {
	case s.Role.IsAdmin() || s.Role == models.RoleSwachhHR:
		return []string{events.AdminTopic}
	case s.Role.IsContractor():
		return []string{events.ContractorTopic(s.UID())}
	case s.Role == models.RoleDriver:
		return []string{events.DriverTopic(s.UID())}
	}
	return nil
}

// Dashboard authenticates with ?token= since browsers cannot set headers on
// the upgrade request.
func (dc *DashboardController) Dashboard(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		logrus.Warn("WebSocket connection attempt: Missing token query parameter.")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authentication token"})
		return
	}

	sess, err := dc.users.Authenticate(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	topics := topicsFor(sess)
	if len(topics) == 0 {
		c.JSON(http.StatusForbidden, gin.H{"error": "unauthorized role for WebSocket connection"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Error("Failed to upgrade WebSocket connection")
		return
	}
	dc.serve(conn, sess, topics)
}

func (dc *DashboardController) serve(conn *websocket.Conn, sess services.Session, topics []string) {
	fields := logrus.Fields{
		"user":     sess.UID(),
		"role":     sess.Role,
		"conn_ptr": fmt.Sprintf("%p", conn),
	}
	logrus.WithFields(fields).Info("Dashboard WebSocket connection established.")

	send := make(chan events.Change, sendBuffer)
	done := make(chan struct{})

	var unsubscribes []func()
	for _, topic := range topics {
		unsubscribes = append(unsubscribes, dc.hub.Subscribe(topic, func(ch events.Change) {
			select {
			case send <- ch:
			case <-done:
			default:
				logrus.WithFields(fields).Warn("Dashboard send buffer full, dropping change.")
			}
		}))
	}
	defer func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
		close(done)
		conn.Close()
		logrus.WithFields(fields).Info("Dashboard WebSocket connection closed.")
	}()

	go dc.writeLoop(conn, send, done, fields)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logrus.WithFields(fields).Info("Dashboard WebSocket closed normally or abnormally.")
			} else {
				logrus.WithError(err).WithFields(fields).Warn("Error reading from dashboard WebSocket")
			}
			return
		}
		logrus.WithFields(fields).Debug("Dashboard client sent unexpected message. Ignoring.")
	}
}

func (dc *DashboardController) writeLoop(conn *websocket.Conn, send <-chan events.Change, done <-chan struct{}, fields logrus.Fields) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case ch := <-send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ch); err != nil {
				logrus.WithError(err).WithFields(fields).Warn("Failed to send change to dashboard client.")
				conn.Close()
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				conn.Close()
				return
			}
		case <-done:
			return
		}
	}
}

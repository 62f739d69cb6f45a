package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"MotoZonePos/app/models"
	"MotoZonePos/app/services"

	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Message types pushed to UI clients
	TypeAvailability MessageType = "availability"
	TypeStockUpdate  MessageType = "stock_update"
	TypeSaleNew      MessageType = "sale_new"
	TypeNotification MessageType = "notification"
	TypeHeartbeat    MessageType = "heartbeat"
	TypeAuthResponse MessageType = "auth_response"
)

// Message represents a WebSocket message
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Client represents a connected UI client
type Client struct {
	ID          string
	Connection  *websocket.Conn
	Send        chan []byte
	Server      *Server
	ConnectedAt time.Time
	RemoteAddr  string
}

// Server pushes live updates to UI clients over WebSocket and serves the
// REST API the front-end talks to. It announces itself on the local network
// via mDNS so tablets find the gateway without configuration.
type Server struct {
	clients      map[string]*Client
	broadcast    chan []byte
	register     chan *Client
	unregister   chan *Client
	upgrader     websocket.Upgrader
	mu           sync.RWMutex
	port         int
	httpServer   *http.Server
	restHandlers *RESTHandlers
	mdnsServer   *zeroconf.Server
	mdnsShutdown chan bool
}

// NewServer creates the gateway's WebSocket/REST server
func NewServer(port int) *Server {
	return &Server{
		clients:      make(map[string]*Client),
		broadcast:    make(chan []byte),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		port:         port,
		mdnsShutdown: make(chan bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// UI clients connect from the local network
				return true
			},
		},
	}
}

// SetHandlers wires the REST surface. Must be called before Start.
func (s *Server) SetHandlers(handlers *RESTHandlers) {
	s.restHandlers = handlers
	handlers.server = s
}

// Start runs the hub and blocks serving HTTP until Stop is called
func (s *Server) Start(status *services.StatusService) error {
	go s.run()

	// Availability transitions reach UI clients as push messages
	status.Subscribe(func(availability services.Availability) {
		s.SendAvailability(availability)
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	if s.restHandlers != nil {
		s.restHandlers.RegisterRoutes(mux)
		log.Println("Gateway server: REST API endpoints registered")
	}

	go s.startMDNS()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: mux,
	}
	log.Printf("Gateway server starting on port %d", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// startMDNS announces the gateway via mDNS/Zeroconf
func (s *Server) startMDNS() {
	server, err := zeroconf.Register(
		"MotoZone POS Gateway", // Service instance name
		"_motozone._tcp",      // Service type
		"local.",              // Domain
		s.port,                // Port
		[]string{"version=1.0"}, // TXT records
		nil, // Network interfaces (nil = all)
	)
	if err != nil {
		log.Printf("mDNS: Failed to register service: %v", err)
		return
	}

	s.mdnsServer = server
	log.Println("mDNS: Gateway announced on _motozone._tcp.local")

	<-s.mdnsShutdown
	server.Shutdown()
	log.Println("mDNS: Service announcement stopped")
}

// Stop shuts the server down: mDNS withdrawn, clients disconnected, HTTP
// listener drained.
func (s *Server) Stop(ctx context.Context) {
	select {
	case s.mdnsShutdown <- true:
	default:
	}

	s.mu.Lock()
	for _, client := range s.clients {
		close(client.Send)
		client.Connection.Close()
	}
	s.clients = make(map[string]*Client)
	s.mu.Unlock()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Printf("Gateway server shutdown error: %v", err)
		}
	}
}

// run handles the hub loop
func (s *Server) run() {
	ticker := time.NewTicker(30 * time.Second) // Heartbeat every 30 seconds
	defer ticker.Stop()

	for {
		select {
		case client := <-s.register:
			s.mu.Lock()
			s.clients[client.ID] = client
			s.mu.Unlock()
			log.Printf("UI client connected: %s (%s)", client.ID, client.RemoteAddr)
			s.sendAuthResponse(client, true, "Connected successfully")

		case client := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.clients[client.ID]; ok {
				delete(s.clients, client.ID)
				s.mu.Unlock()
				closeSendChannel(client)
				log.Printf("UI client disconnected: %s", client.ID)
			} else {
				s.mu.Unlock()
			}

		case message := <-s.broadcast:
			s.mu.Lock()
			for id, client := range s.clients {
				select {
				case client.Send <- message:
				default:
					// Client buffer is full, disconnect
					delete(s.clients, id)
					closeSendChannel(client)
				}
			}
			s.mu.Unlock()

		case <-ticker.C:
			s.sendHeartbeat()
		}
	}
}

// closeSendChannel closes a client's send channel exactly once
func closeSendChannel(client *Client) {
	go func(c *Client) {
		defer func() {
			if r := recover(); r != nil {
				// Channel already closed, ignore
			}
		}()
		close(c.Send)
	}(client)
}

// handleWebSocket handles WebSocket connection upgrades
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	client := &Client{
		ID:          generateClientID(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		Server:      s,
		ConnectedAt: time.Now(),
		RemoteAddr:  r.RemoteAddr,
	}

	s.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth handles the gateway's own health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	clientCount := len(s.clients)
	s.mu.RUnlock()

	response := map[string]interface{}{
		"status":  "healthy",
		"clients": clientCount,
		"time":    time.Now(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// Client methods

// readPump handles reading messages from the client
func (c *Client) readPump() {
	defer func() {
		c.Server.unregister <- c
		c.Connection.Close()
	}()

	c.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.Connection.SetPongHandler(func(string) error {
		c.Connection.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, messageBytes, err := c.Connection.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		var message Message
		if err := json.Unmarshal(messageBytes, &message); err != nil {
			log.Printf("Error parsing message: %v", err)
			continue
		}

		c.handleMessage(&message)
	}
}

// writePump handles writing messages to the client
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			c.Connection.WriteMessage(websocket.TextMessage, message)

		case <-ticker.C:
			c.Connection.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage handles incoming messages from clients. The UI only sends
// heartbeats; everything else flows through the REST API.
func (c *Client) handleMessage(message *Message) {
	switch message.Type {
	case TypeHeartbeat:
		c.sendMessage(Message{
			Type:      TypeHeartbeat,
			Timestamp: time.Now(),
			Data:      json.RawMessage(`{"status":"alive"}`),
		})
	default:
		log.Printf("Unknown message type from client %s: %s", c.ID, message.Type)
	}
}

// sendMessage sends a message to the client
func (c *Client) sendMessage(message Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	select {
	case c.Send <- data:
		return nil
	default:
		return fmt.Errorf("client send channel is full")
	}
}

// Server broadcast methods

// broadcastToAll fans a message out to every connected client
func (s *Server) broadcastToAll(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, client := range s.clients {
		select {
		case client.Send <- data:
		default:
			log.Printf("Failed to send to client %s", client.ID)
		}
	}
}

// SendAvailability pushes a backend availability transition
func (s *Server) SendAvailability(availability services.Availability) {
	data, _ := json.Marshal(map[string]interface{}{
		"status": string(availability),
		"time":   time.Now(),
	})
	s.broadcastToAll(&Message{
		Type:      TypeAvailability,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// SendStockUpdate pushes a product whose cached stock changed
func (s *Server) SendStockUpdate(product models.Product) {
	data, _ := json.Marshal(product)
	s.broadcastToAll(&Message{
		Type:      TypeStockUpdate,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// SendSaleRecorded pushes a freshly persisted sale
func (s *Server) SendSaleRecorded(sale models.Sale) {
	data, _ := json.Marshal(sale)
	s.broadcastToAll(&Message{
		Type:      TypeSaleNew,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// SendNotification pushes a free-form notification to every client
func (s *Server) SendNotification(text string) {
	data, _ := json.Marshal(map[string]string{"message": text})
	s.broadcastToAll(&Message{
		Type:      TypeNotification,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// sendHeartbeat sends heartbeat to all clients
func (s *Server) sendHeartbeat() {
	s.broadcastToAll(&Message{
		Type:      TypeHeartbeat,
		Timestamp: time.Now(),
		Data:      json.RawMessage(`{"ping":"pong"}`),
	})
}

// sendAuthResponse confirms the connection to a new client
func (s *Server) sendAuthResponse(client *Client, success bool, message string) {
	data, _ := json.Marshal(map[string]interface{}{
		"success":   success,
		"message":   message,
		"client_id": client.ID,
	})

	client.sendMessage(Message{
		Type:      TypeAuthResponse,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// GetConnectedClients returns the connected UI clients
func (s *Server) GetConnectedClients() []map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]map[string]interface{}, 0, len(s.clients))
	for _, client := range s.clients {
		clients = append(clients, map[string]interface{}{
			"id":           client.ID,
			"connected_at": client.ConnectedAt.Format(time.RFC3339),
			"remote_addr":  client.RemoteAddr,
		})
	}
	return clients
}

// GetPort returns the server port
func (s *Server) GetPort() int {
	return s.port
}

// Helper functions

func generateClientID() string {
	return fmt.Sprintf("%d-%d", time.Now().Unix(), time.Now().Nanosecond())
}

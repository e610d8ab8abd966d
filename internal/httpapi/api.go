// Package httpapi is the room-lifecycle surface around the sync core:
// creating rooms, bridging guests into a room-scoped token and serving the
// shape snapshot a client bootstraps from.
package httpapi

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"sketchwire/internal/auth"
	"sketchwire/internal/config"
	"sketchwire/internal/hub"
	"sketchwire/internal/snapshot"
	"sketchwire/internal/store"
)

type Server struct {
	cfg   *config.Config
	hub   *hub.Hub
	store store.Store
}

func New(cfg *config.Config, h *hub.Hub, st store.Store) *Server {
	return &Server{cfg: cfg, hub: h, store: st}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.hub.ServeWS)
	r.HandleFunc("/rooms", s.createRoom).Methods(http.MethodPost)
	r.HandleFunc("/rooms/guest", s.createGuestRoom).Methods(http.MethodPost)
	r.HandleFunc("/rooms/{roomId}/shapes", s.serveShapes).Methods(http.MethodGet)
	return r
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing authorization header")
	}
	if !strings.HasPrefix(header, "Bearer ") {
		return "", fmt.Errorf("malformed authorization header")
	}
	return strings.TrimPrefix(header, "Bearer "), nil
}

// createRoom creates a persistent room owned by the authenticated subject.
func (s *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	token, err := bearerToken(r)
	if err != nil {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, err)
		return
	}
	claims, err := auth.Verify(s.cfg.JWTSecret, token)
	if err != nil || claims.Kind != auth.KindAccess {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, "Invalid token")
		return
	}

	room := store.Room{ID: uuid.NewString(), Owner: claims.Subject}
	if err := s.store.CreateRoom(r.Context(), room); err != nil {
		log.Println("could not create room:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("content-type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"roomId": room.ID})
}

// createGuestRoom creates an ephemeral, unowned room and mints a guest token
// scoped to it. The room and its shapes go away when the last connection
// leaves.
func (s *Server) createGuestRoom(w http.ResponseWriter, r *http.Request) {
	room := store.Room{ID: uuid.NewString(), Ephemeral: true}
	if err := s.store.CreateRoom(r.Context(), room); err != nil {
		log.Println("could not create guest room:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	subject := fmt.Sprintf("guest:%s", uuid.NewString())
	token, err := auth.SignGuest(s.cfg.JWTSecret, subject, room.ID, s.cfg.GuestTokenTTL)
	if err != nil {
		log.Println("could not sign guest token:", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("content-type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"roomId": room.ID, "token": token})
}

// serveShapes streams the room's shape log as an lz4-compressed JSON array.
func (s *Server) serveShapes(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID := vars["roomId"]

	entries, err := s.store.ListShapes(r.Context(), roomID)
	if err != nil {
		log.Printf("could not load shapes for room %s: %v\n", roomID, err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	payloads := make([]json.RawMessage, len(entries))
	for i, entry := range entries {
		payloads[i] = entry.Shape
	}
	compressed, err := snapshot.Encode(payloads)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(compressed)
}

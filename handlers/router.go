package handlers

import (
	"github.com/gorilla/mux"
)

func NewRouter(g *Gateway) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/guest", Guest).Methods("POST")
	r.HandleFunc("/api/matches", FetchRecentMatches).Methods("GET")
	r.HandleFunc("/api/status", g.Status).Methods("GET")
	r.HandleFunc("/ws/{token}", g.WsHandler)

	return r
}

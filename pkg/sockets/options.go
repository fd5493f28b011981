package sockets

import "net/http"

func WithCheckOrigin(f func(r *http.Request) bool) func(*Hub) {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = f
	}
}

func WithOnError(f func(err error)) func(*Hub) {
	return func(h *Hub) {
		h.onError = f
	}
}

package server

import "time"

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// timeNow is swapped in tests exercising view generation timestamps.
var timeNow = time.Now

package httpx

import (
	"encoding/json"
	"net/http"
	"time"
)

// Code is the application-level outcome carried in every envelope. The
// transport status stays 200 so the frontend only ever branches on Code.
type Code int

const (
	CodeSuccess    Code = 0
	CodeError      Code = 10001
	CodeValidation Code = 10002
	CodeAuth       Code = 10003
	CodeNotFound   Code = 10004
	CodeFile       Code = 10005
	CodeServer     Code = 10006
)

// Envelope is the uniform response body.
type Envelope struct {
	Code      Code   `json:"code"`
	Msg       string `json:"msg"`
	Data      any    `json:"data"`
	Timestamp int64  `json:"timestamp"`
}

// Now is the envelope clock. Tests may replace it.
var Now = time.Now

// ContentTypeJSON is sent with every envelope.
const ContentTypeJSON = "application/json; charset=utf-8"

// WriteEnvelope writes an envelope with HTTP 200. A nil data value is sent
// as an empty object.
func WriteEnvelope(w http.ResponseWriter, code Code, msg string, data any) {
	if data == nil {
		data = struct{}{}
	}
	env := Envelope{
		Code:      code,
		Msg:       msg,
		Data:      data,
		Timestamp: Now().Unix(),
	}

	NoCache(w)
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(env)
}

// OK writes a success envelope.
func OK(w http.ResponseWriter, msg string, data any) {
	WriteEnvelope(w, CodeSuccess, msg, data)
}

// Fail writes an error envelope with the given code.
func Fail(w http.ResponseWriter, code Code, msg string, data any) {
	WriteEnvelope(w, code, msg, data)
}

// WriteJSON writes v without an envelope. Only the health probes use it,
// since orchestrators read their HTTP status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache marks a response as not storable; envelopes may carry tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

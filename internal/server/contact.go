package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Contact endpoint messages.
const (
	msgContactOK      = "Form data received successfully on the server!"
	msgContactMissing = "Missing form data. Please fill out all fields."
	msgContactFailed  = "Error processing your request. Please try again."
)

// ContactSubmission is the body of POST /api/contact.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Complete reports whether every field is filled in.
func (c ContactSubmission) Complete() bool {
	return c.Name != "" && c.Email != "" && c.Message != ""
}

// Normalize returns c with every field in Unicode NFC form.
func (c ContactSubmission) Normalize() ContactSubmission {
	return ContactSubmission{
		Name:    norm.NFC.String(c.Name),
		Email:   norm.NFC.String(c.Email),
		Message: norm.NFC.String(c.Message),
	}
}

var (
	errContactNull     = errors.New("contact: body is null")
	errContactTrailing = errors.New("contact: data after JSON value")
)

// decodeContact reads exactly one JSON value from body. An object is
// decoded into the submission; any other value except null carries no
// fields and yields an empty submission.
func decodeContact(body io.Reader) (ContactSubmission, error) {
	dec := json.NewDecoder(body)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return ContactSubmission{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return ContactSubmission{}, errContactTrailing
	}

	raw = bytes.TrimSpace(raw)
	switch raw[0] {
	case 'n':
		return ContactSubmission{}, errContactNull
	case '{':
		var sub ContactSubmission
		if err := json.Unmarshal(raw, &sub); err != nil {
			return ContactSubmission{}, err
		}
		return sub, nil
	}
	return ContactSubmission{}, nil
}

type contactResponse struct {
	Message string             `json:"message"`
	Data    *ContactSubmission `json:"data,omitempty"`
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	sub, err := decodeContact(r.Body)
	if err != nil {
		s.log.Warn("contact: decoding body", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, contactResponse{Message: msgContactFailed})
		return
	}

	sub = sub.Normalize()
	if !sub.Complete() {
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgContactMissing})
		return
	}

	s.log.Info("contact form submitted",
		zap.String("name", sub.Name),
		zap.String("email", sub.Email),
		zap.String("message", sub.Message),
	)
	writeJSON(w, http.StatusOK, contactResponse{Message: msgContactOK, Data: &sub})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

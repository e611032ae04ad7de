package server

import (
	"bytes"
	"net/http"

	"go.uber.org/zap"
)

// pageData feeds web/templates/index.html.
type pageData struct {
	Theme       string
	Title       string
	Description string
	Year        int
	Marks       []string
}

// registration marks drawn around the hero
var pageMarks = []string{"tl", "ml", "bl", "tr", "mr", "br"}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Theme:       themeFromRequest(r),
		Title:       "Neolithic | Revolutionizing Lithography",
		Description: "Neolithic builds next-generation lithography systems for semiconductor manufacturing.",
		Year:        s.now().Year(),
		Marks:       pageMarks,
	}

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.log.Error("rendering index", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

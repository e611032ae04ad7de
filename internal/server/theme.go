package server

import (
	"encoding/json"
	"net/http"
	"time"
)

const (
	themeCookie  = "theme"
	themeDark    = "dark"
	themeLight   = "light"
	themeMaxAge  = 365 * 24 * time.Hour
	defaultTheme = themeDark
)

func validTheme(t string) bool {
	return t == themeDark || t == themeLight
}

// themeFromRequest returns the theme stored in the cookie, or the default.
func themeFromRequest(r *http.Request) string {
	c, err := r.Cookie(themeCookie)
	if err != nil || !validTheme(c.Value) {
		return defaultTheme
	}
	return c.Value
}

func (s *Server) handleTheme(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || !validTheme(body.Theme) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "theme must be \"dark\" or \"light\""})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     themeCookie,
		Value:    body.Theme,
		Path:     "/",
		MaxAge:   int(themeMaxAge / time.Second),
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]string{"theme": body.Theme})
}

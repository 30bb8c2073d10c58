package server

import (
	"net/http"

	"github.com/thywilljoshua/pdf-to-study/internal/shell"
)

// static serves the site root and remembers the last lecture page opened.
func (s *Server) static() http.Handler {
	files := http.FileServer(http.Dir(s.cfg.Root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && shell.Detect(r.URL.Path, "") == shell.PageLecture {
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			files.ServeHTTP(sw, r)
			if sw.status == http.StatusOK {
				if err := s.last.Record(r.URL.Path); err != nil {
					s.log.Warn("recording last lecture", "path", r.URL.Path, "err", err)
				}
			}
			return
		}
		files.ServeHTTP(w, r)
	})
}

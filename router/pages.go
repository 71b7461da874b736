package router

import (
	"net/http"
	"os"
	"path/filepath"

	"duonest/pkg/logger"
)

// Pages serves the pre-built front end. Rendering happens elsewhere; this
// only hands out index.html.
type Pages struct {
	Dir string
}

func (p *Pages) Index(w http.ResponseWriter, r *http.Request) {
	index := filepath.Join(p.Dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logger.Sugar.Warnf("Index page unavailable: %v", err)
		http.Error(w, "index page not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, index)
}

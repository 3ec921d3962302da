package spa

import (
	"bytes"
	"net/http"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

// NewHTTPHandler mounts the host on an httprouter router under the base path.
func NewHTTPHandler(h *Host) http.Handler {
	router := httprouter.New()
	router.RedirectTrailingSlash = false
	router.HandleMethodNotAllowed = true

	handle := func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		h.ServeHTTP(w, r)
	}

	pattern := h.base + "*filepath"
	router.GET(pattern, handle)
	router.HEAD(pattern, handle)
	router.NotFound = h

	return router
}

// ServeHTTP answers a request using Match.
func (h *Host) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	res := h.Match(r.URL.Path)
	if cc := h.CacheControl(res); cc != "" {
		w.Header().Set("Cache-Control", cc)
	}

	switch res.Kind {
	case KindRedirect:
		target := res.Location
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	case KindFile:
		http.ServeFileFS(w, r, h.cfg.FS, res.File)
	case KindDocument:
		var buf bytes.Buffer
		if err := h.RenderDocument(&buf); err != nil {
			h.logger.Error("render entry document: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		if r.Method != http.MethodHead {
			_, _ = buf.WriteTo(w)
		}
	default:
		http.NotFound(w, r)
	}
}

// RequestID tags every request and response with an X-Request-ID header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
			r.Header.Set(HeaderRequestID, rid)
		}
		w.Header().Set(HeaderRequestID, rid)
		next.ServeHTTP(w, r)
	})
}

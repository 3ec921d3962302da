package spa

import (
	"bytes"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// RegisterFiber mounts the host on a fiber app under the base path.
func RegisterFiber(app *fiber.App, h *Host) {
	handler := func(c *fiber.Ctx) error {
		return h.serveFiber(c)
	}

	app.Get(h.base+"*", handler)
	if h.base != "/" {
		app.Get(strings.TrimSuffix(h.base, "/"), handler)
	}
}

func (h *Host) serveFiber(c *fiber.Ctx) error {
	res := h.Match(c.Path())
	if cc := h.CacheControl(res); cc != "" {
		c.Set(fiber.HeaderCacheControl, cc)
	}

	switch res.Kind {
	case KindRedirect:
		target := res.Location
		if query := string(c.Request().URI().QueryString()); query != "" {
			target += "?" + query
		}
		return c.Redirect(target, http.StatusMovedPermanently)
	case KindFile:
		data, err := fs.ReadFile(h.cfg.FS, res.File)
		if err != nil {
			h.logger.Error("read %s: %v", res.File, err)
			return fiber.ErrInternalServerError
		}
		contentType := mime.TypeByExtension(path.Ext(res.File))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(data)
	case KindDocument:
		var buf bytes.Buffer
		if err := h.RenderDocument(&buf); err != nil {
			h.logger.Error("render entry document: %v", err)
			return fiber.ErrInternalServerError
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	default:
		return c.SendStatus(http.StatusNotFound)
	}
}

// FiberRequestID is the fiber counterpart of RequestID.
func FiberRequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Locals("requestid", rid)
		return c.Next()
	}
}

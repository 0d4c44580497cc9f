package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-dispatch/types"
)

const fallbackContentType = "application/octet-stream"

// Static registers a prefix route at prefix serving files from root, which
// may be a directory or a single file. The request path suffix relative to
// the prefix is mapped onto the filesystem; anything missing, a directory,
// or escaping root yields 404. HEAD is registered alongside GET.
func (a *Application) Static(prefix, root string) error {
	handler := newStaticHandler(a.logger, NormalizePath(prefix), filepath.Clean(root))
	return a.Route("GET", prefix, handler).WithPrefix().Register()
}

func newStaticHandler(logger types.Logger, prefix, root string) types.Handler {
	return func(req *types.Request, resp *types.Response) types.ControlSignal {
		target, ok := resolveStaticPath(prefix, root, req.Path)
		if !ok {
			resp.StatusCode = 404
			return types.Forward
		}

		info, err := os.Stat(target)
		if err != nil || info.IsDir() {
			resp.StatusCode = 404
			return types.Forward
		}

		data, err := os.ReadFile(target)
		if err != nil {
			logger.Warn("Static file unreadable",
				zap.String("correlation_id", req.CorrelationID),
				zap.String("file", target),
				zap.Error(err))
			resp.StatusCode = 404
			return types.Forward
		}

		resp.StatusCode = 200
		resp.ContentType = detectContentType(target, data)
		resp.Body = data
		return types.Forward
	}
}

// resolveStaticPath maps the request path suffix under prefix onto a path
// under root. It refuses any resolution that would escape root.
func resolveStaticPath(prefix, root, reqPath string) (string, bool) {
	path := NormalizePath(reqPath)

	var suffix string
	switch {
	case path == prefix:
		suffix = ""
	case prefix == "/":
		suffix = path
	case strings.HasPrefix(path, prefix+"/"):
		suffix = path[len(prefix):]
	default:
		return "", false
	}

	if suffix == "" {
		// The bare prefix only serves root when root is a single file.
		return root, true
	}

	target := filepath.Join(root, filepath.FromSlash(suffix))
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", false
	}
	return target, true
}

// detectContentType prefers the file extension for formats whose content
// sniffing is ambiguous, then delegates to the MIME collaborator, which
// itself falls back to the generic binary type.
func detectContentType(path string, data []byte) string {
	if ct := extensionMIME(filepath.Ext(path)); ct != "" {
		return ct
	}
	if len(data) == 0 {
		return fallbackContentType
	}
	return mimetype.Detect(data).String()
}

// extensionMIME covers text formats that content sniffing confuses with
// plain text; everything else defers to sniffing.
func extensionMIME(ext string) string {
	switch strings.ToLower(ext) {
	case ".html", ".htm":
		return "text/html"
	case ".css":
		return "text/css"
	case ".js", ".mjs":
		return "text/javascript"
	case ".json":
		return "application/json"
	case ".svg":
		return "image/svg+xml"
	case ".txt":
		return "text/plain"
	default:
		return ""
	}
}

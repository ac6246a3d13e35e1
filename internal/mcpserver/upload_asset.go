package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	assetsDir    = "assets"
	maxAssetSize = 10 << 20 // 10 MB
)

// extByMIME maps the sniffable media types to their canonical extension.
// Extensions outside this table are rejected outright.
var extByMIME = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

func allowedExt(ext string) bool {
	if ext == ".jpeg" {
		return true
	}
	for _, e := range extByMIME {
		if e == ext {
			return true
		}
	}
	return false
}

type uploadResult struct {
	SavedPath     string `json:"savedPath"`
	MarkdownImage string `json:"markdownImage"`
}

func (s *Server) uploadAsset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	filename := ""
	if v, fErr := req.RequireString("filename"); fErr == nil {
		filename = v
	}

	data, sniffedExt, err := loadAsset(ctx, rawURL)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if filename == "" {
		filename = deriveFilename(rawURL, sniffedExt)
	}
	filename = sanitizeFilename(filename)

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt(ext) {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported file extension %q (allowed: png, jpg, jpeg, gif, webp, svg, pdf)", ext)), nil
	}
	if err := sniffMismatch(data, ext); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	savePath := filepath.Join(assetsDir, filename)
	if _, readErr := s.store.Read(savePath); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("file already exists: %s", savePath)), nil
	}
	if err := s.store.Write(savePath, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save asset: %v", err)), nil
	}

	urlPath := "/" + assetsDir + "/" + filename
	out, _ := json.Marshal(uploadResult{
		SavedPath:     urlPath,
		MarkdownImage: fmt.Sprintf("![%s](%s)", filename, urlPath),
	})
	return mcp.NewToolResultText(string(out)), nil
}

// loadAsset fetches the raw bytes from a data: URI or an http(s) URL and
// reports the extension implied by the declared media type (empty when the
// source does not declare one).
func loadAsset(ctx context.Context, rawURL string) ([]byte, string, error) {
	if strings.HasPrefix(rawURL, "data:") {
		return decodeDataURI(rawURL)
	}
	return download(ctx, rawURL)
}

// decodeDataURI parses a data:<mediatype>;base64,<payload> URI. Only base64
// payloads are accepted.
func decodeDataURI(uri string) ([]byte, string, error) {
	meta, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("invalid data URI: missing comma separator")
	}

	mediaType, hasB64 := strings.CutSuffix(meta, ";base64")
	if !hasB64 {
		return nil, "", fmt.Errorf("only base64 data URIs are supported")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Some producers omit padding.
		if data, err = base64.RawStdEncoding.DecodeString(encoded); err != nil {
			return nil, "", fmt.Errorf("invalid base64 payload: %w", err)
		}
	}
	if len(data) > maxAssetSize {
		return nil, "", fmt.Errorf("file too large: %d bytes (max %d)", len(data), maxAssetSize)
	}

	ext, err := extForMediaType(mediaType)
	if err != nil {
		return nil, "", err
	}
	return data, ext, nil
}

// download fetches an http(s) URL, refusing loopback and link-local targets
// on the initial request and on every redirect hop.
func download(ctx context.Context, rawURL string) ([]byte, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, "", fmt.Errorf("unsupported scheme %q (only http and https)", parsed.Scheme)
	}
	if err := refuseHost(parsed.Hostname()); err != nil {
		return nil, "", err
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return fmt.Errorf("too many redirects (max 5)")
			}
			return refuseHost(req.URL.Hostname())
		},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("download failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxAssetSize {
		return nil, "", fmt.Errorf("file too large: exceeds %d bytes", maxAssetSize)
	}

	ext := ""
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if mediaType, _, mErr := mime.ParseMediaType(ct); mErr == nil {
			ext = extByMIME[mediaType]
		}
	}
	return data, ext, nil
}

// refuseHost rejects hosts that resolve to loopback, unspecified, or
// link-local addresses. Link-local covers the cloud metadata endpoint
// 169.254.169.254 on every major provider.
func refuseHost(host string) error {
	if host == "metadata.google.internal" {
		return fmt.Errorf("blocked host: %s", host)
	}

	var addrs []net.IP
	if ip := net.ParseIP(host); ip != nil {
		addrs = []net.IP{ip}
	} else {
		resolved, err := net.LookupIP(host)
		if err != nil {
			return nil //nolint:nilerr // unresolvable hosts fail in the client instead
		}
		addrs = resolved
	}

	for _, ip := range addrs {
		if ip.IsLoopback() || ip.IsUnspecified() || ip.IsLinkLocalUnicast() {
			return fmt.Errorf("blocked host: %s resolves to %s", host, ip)
		}
	}
	return nil
}

// deriveFilename picks a filename from the URL path when it carries one,
// otherwise generates a random name with the sniffed extension.
func deriveFilename(rawURL, sniffedExt string) string {
	if !strings.HasPrefix(rawURL, "data:") {
		if parsed, err := url.Parse(rawURL); err == nil {
			base := path.Base(parsed.Path)
			if base != "" && base != "." && base != "/" && strings.Contains(base, ".") {
				return base
			}
		}
	}
	if sniffedExt == "" {
		sniffedExt = ".bin"
	}
	return uuid.New().String() + sniffedExt
}

// sanitizeFilename strips directory components and maps anything outside
// [A-Za-z0-9._-] to an underscore.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = uuid.New().String()
	}
	return name
}

// extForMediaType maps a declared media type to its extension, rejecting
// types outside the allowlist.
func extForMediaType(declared string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return "", fmt.Errorf("invalid media type %q: %w", declared, err)
	}
	ext, ok := extByMIME[mediaType]
	if !ok {
		return "", fmt.Errorf("unsupported media type %q", mediaType)
	}
	return ext, nil
}

// sniffMismatch verifies the content bytes agree with the claimed extension
// so a renamed executable cannot land in the assets directory.
func sniffMismatch(data []byte, ext string) error {
	if ext == ".svg" {
		// DetectContentType reports SVG as text/xml or text/plain; look for
		// the opening tag instead.
		head := data
		if len(head) > 1024 {
			head = head[:1024]
		}
		if !bytes.Contains(head, []byte("<svg")) {
			return fmt.Errorf("content does not appear to be SVG (missing <svg tag)")
		}
		return nil
	}

	detected := http.DetectContentType(data)
	mediaType, _, err := mime.ParseMediaType(detected)
	if err != nil {
		return fmt.Errorf("cannot sniff content type: %w", err)
	}
	want := extByMIME[mediaType]
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	if want != ext {
		return fmt.Errorf("content does not match extension %s (detected %s)", ext, detected)
	}
	return nil
}

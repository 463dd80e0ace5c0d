// Package asset turns stored image paths into URLs clients can load.
//
// Paths are stored relative to the upload root ("/uploads/x.jpg"). Anything
// that does not start with a slash is already absolute (an S3 URL, an
// external image) and is returned unchanged.
package asset

import "strings"

type Resolver struct {
	baseURL string
}

func NewResolver(baseURL string) Resolver {
	return Resolver{baseURL: strings.TrimRight(baseURL, "/")}
}

func (r Resolver) URL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "/") {
		return r.baseURL + path
	}
	return path
}

// URLs resolves every path of a comma-joined image list.
func (r Resolver) URLs(joined string) []string {
	paths := SplitImages(joined)
	urls := make([]string, 0, len(paths))
	for _, p := range paths {
		urls = append(urls, r.URL(p))
	}
	return urls
}

// First resolves the first image of a comma-joined list, or "".
func (r Resolver) First(joined string) string {
	paths := SplitImages(joined)
	if len(paths) == 0 {
		return ""
	}
	return r.URL(paths[0])
}

func SplitImages(joined string) []string {
	parts := strings.Split(joined, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func JoinImages(paths []string) string {
	clean := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			clean = append(clean, p)
		}
	}
	return strings.Join(clean, ",")
}

// Package sitemap generates sitemap.xml documents and lists the URLs of
// published sitemaps.
package sitemap

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/FocuswithJustin/DevToolkit/core/encoding"
	tkerrors "github.com/FocuswithJustin/DevToolkit/core/errors"
)

// Namespace is the sitemap protocol XML namespace.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ErrInvalidURL is returned for anything that is not an absolute http or
// https URL.
var ErrInvalidURL = tkerrors.NewValidation("", "URL must be a valid http/https URL")

// ValidateURL checks that raw is an http or https URL with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ErrInvalidURL
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	}
	return ErrInvalidURL
}

// Generate builds a sitemap for base and paths. Blank paths are skipped.
// Absolute URLs are used as given; anything else is resolved against base
// with a trailing slash, so "about" and "/about" both become base + "/about".
func Generate(base string, paths []string) (string, error) {
	if err := ValidateURL(base); err != nil {
		return "", err
	}
	baseURL, err := url.Parse(strings.TrimRight(base, "/") + "/")
	if err != nil {
		return "", ErrInvalidURL
	}

	var locs []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		full, err := resolve(baseURL, p)
		if err != nil {
			return "", err
		}
		if err := ValidateURL(full); err != nil {
			return "", err
		}
		locs = append(locs, full)
	}

	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if len(locs) == 0 {
		buf.WriteString(`<urlset xmlns="` + Namespace + `"/>`)
		return buf.String(), nil
	}
	buf.WriteString(`<urlset xmlns="` + Namespace + `">` + "\n")
	for _, loc := range locs {
		buf.WriteString("  <url>\n")
		buf.WriteString("    <loc>" + encoding.EscapeXMLText(loc) + "</loc>\n")
		buf.WriteString("  </url>\n")
	}
	buf.WriteString("</urlset>")
	return buf.String(), nil
}

func resolve(base *url.URL, p string) (string, error) {
	if u, err := url.Parse(p); err == nil && u.Scheme != "" && u.Host != "" {
		return p, nil
	}
	ref, err := url.Parse(strings.TrimLeft(p, "/"))
	if err != nil {
		return "", tkerrors.NewValidation("path", "invalid sitemap path "+p)
	}
	return base.ResolveReference(ref).String(), nil
}

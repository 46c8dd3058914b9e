// Package urlstate mirrors the displayed tree into the page URL and restores
// it from there, so views can be shared and navigated with back/forward.
package urlstate

import (
	"net/url"
	"strings"

	"go.skia.org/flamechart/flamechart/go/acquire"
	"go.skia.org/flamechart/flamechart/go/permalink"
	"go.skia.org/flamechart/flamechart/go/trace"
	"go.skia.org/flamechart/go/skerr"
)

// Persist returns a copy of u with the tree stored in the data parameter, or
// with the parameter removed if tree is nil. A permalink id is always removed
// since it no longer describes the page. Other parameters are kept.
//
// The tree JSON is escaped with EncodeURIComponent before being set, and the
// query serialization escapes it again. Links produced by the web page have
// the same form.
func Persist(u *url.URL, tree *trace.VisualNode) (*url.URL, error) {
	ret := &url.URL{Path: "/"}
	if u != nil {
		cp := *u
		ret = &cp
	}
	values := ret.Query()
	values.Del(permalink.IDParam)
	if tree == nil {
		values.Del(acquire.DataParam)
	} else {
		b, err := trace.EncodeVisual(tree)
		if err != nil {
			return nil, skerr.Wrapf(err, "encoding tree for URL")
		}
		values.Set(acquire.DataParam, EncodeURIComponent(string(b)))
	}
	ret.RawQuery = values.Encode()
	return ret, nil
}

// Restore decodes the tree stored in u. An absent data parameter is not an
// error and returns a nil tree. Errors wrap trace.ErrInvalidJSON.
func Restore(u *url.URL) (*trace.VisualNode, error) {
	raw, ok, err := acquire.FromURL(u)
	if err != nil {
		return nil, skerr.Wrapf(trace.ErrInvalidJSON, "restoring from URL: %s", err)
	}
	if !ok {
		return nil, nil
	}
	return trace.DecodeVisual([]byte(raw))
}

const upperhex = "0123456789ABCDEF"

func unreserved(c byte) bool {
	if 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' {
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}

// EncodeURIComponent escapes s the way the JavaScript function of the same
// name does: every byte of the UTF-8 encoding is percent-escaped except
// letters, digits and -_.!~*'().
func EncodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

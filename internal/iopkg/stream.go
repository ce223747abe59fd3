package iopkg

import (
	"errors"
	"io"
	"net/url"
	"os"
	"strings"
)

// Stdin is the source URI that reads the payload from standard input.
const Stdin = "-"

// stdin is swapped in tests.
var stdin io.Reader = os.Stdin

// Open returns a ReadCloser and (if known) size for "-", file:// or plain path sources.
func Open(uri string) (io.ReadCloser, int64, error) {
	if uri == Stdin {
		return io.NopCloser(stdin), -1, nil
	}
	if !strings.Contains(uri, "://") {
		return openFile(uri)
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, 0, err
	}
	switch u.Scheme {
	case "file":
		return openFile(strings.TrimPrefix(uri, "file://"))
	default:
		return nil, 0, errors.New("unsupported scheme: " + u.Scheme)
	}
}

func openFile(p string) (io.ReadCloser, int64, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, 0, err
	}
	st, _ := f.Stat()
	var sz int64
	if st != nil {
		sz = st.Size()
	}
	return f, sz, nil
}

// ReadPayload loads the whole source into memory.
func ReadPayload(uri string) ([]byte, error) {
	rc, _, err := Open(uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// BaseName returns the last path element of a file source, or "" for stdin.
func BaseName(uri string) string {
	if uri == Stdin {
		return ""
	}
	p := strings.TrimPrefix(uri, "file://")
	p = strings.TrimRight(p, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		p = p[i+1:]
	}
	return p
}

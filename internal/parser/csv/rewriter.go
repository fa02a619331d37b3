package csv

import (
	"bytes"
	"io"
	"sort"

	"golang.org/x/text/transform"
)

// readCloser pairs a wrapped reader with the Close of the file underneath.
type readCloser struct {
	io.Reader
	io.Closer
}

// replacer is a transform.Transformer that rewrites every occurrence of pat
// to repl. A partial match at the end of src is held back (ErrShortSrc) until
// more input arrives, so matches spanning read boundaries are found.
type replacer struct {
	pat, repl []byte
}

func (replacer) Reset() {}

func (r replacer) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		rest := src[nSrc:]
		i := bytes.Index(rest, r.pat)
		if i < 0 {
			hold := 0
			if !atEOF {
				hold = partialSuffix(rest, r.pat)
			}
			n := copy(dst[nDst:], rest[:len(rest)-hold])
			nDst += n
			nSrc += n
			switch {
			case n < len(rest)-hold:
				return nDst, nSrc, transform.ErrShortDst
			case hold > 0:
				return nDst, nSrc, transform.ErrShortSrc
			}
			return nDst, nSrc, nil
		}
		if len(dst)-nDst < i+len(r.repl) {
			n := copy(dst[nDst:], rest[:i])
			return nDst + n, nSrc + n, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], rest[:i])
		nDst += copy(dst[nDst:], r.repl)
		nSrc += i + len(r.pat)
	}
	return nDst, nSrc, nil
}

// partialSuffix returns the length of the longest proper prefix of pat that
// b ends with.
func partialSuffix(b, pat []byte) int {
	k := len(pat) - 1
	if k > len(b) {
		k = len(b)
	}
	for ; k > 0; k-- {
		if bytes.HasSuffix(b, pat[:k]) {
			return k
		}
	}
	return 0
}

// wrapWithReplacements applies every pattern -> replacement pair of repl to
// the byte stream before CSV parsing, in sorted pattern order. It is used to
// repair mojibake left by double-encoded exports of the raw table. Close is
// forwarded to r.
func wrapWithReplacements(r io.ReadCloser, repl map[string]string) io.ReadCloser {
	pats := make([]string, 0, len(repl))
	for p := range repl {
		if p != "" && p != repl[p] {
			pats = append(pats, p)
		}
	}
	if len(pats) == 0 {
		return r
	}
	sort.Strings(pats)

	ts := make([]transform.Transformer, len(pats))
	for i, p := range pats {
		ts[i] = replacer{pat: []byte(p), repl: []byte(repl[p])}
	}
	return &readCloser{Reader: transform.NewReader(r, transform.Chain(ts...)), Closer: r}
}

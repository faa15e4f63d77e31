// Package ja3 computes the classic JA3 fingerprint and its
// sorted-extensions variant from a captured ClientHello.
package ja3

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"

	"github.com/picohz/fingerprintd/internal/tlsparse"
)

// JA3 holds the assembled fingerprint string and its MD5 digest.
type JA3 struct {
	MD5 string `json:"md5"`
	Str string `json:"str"`
}

// New computes JA3 from hello. When sortExt is true, the extension
// component is sorted lexicographically by decimal string instead of
// kept in wire order, producing the sorted-JA3 variant.
func New(hello *tlsparse.ClientHello, sortExt bool) JA3 {
	ciphers := make([]string, 0, len(hello.CipherSuites))
	for _, c := range hello.CipherSuites {
		if tlsparse.IsGREASE(c) {
			continue
		}
		ciphers = append(ciphers, strconv.Itoa(int(c)))
	}

	extensions := make([]string, 0, len(hello.Extensions))
	for _, ext := range hello.Extensions {
		if tlsparse.IsGREASE(ext.Type) {
			continue
		}
		extensions = append(extensions, strconv.Itoa(int(ext.Type)))
	}
	if sortExt {
		sort.Strings(extensions)
	}

	var curves []string
	var points []string
	for _, ext := range hello.Extensions {
		if ext.Kind == tlsparse.KindSupportedGroups {
			for _, g := range ext.SupportedGroups {
				if tlsparse.IsGREASE(g) {
					continue
				}
				curves = append(curves, strconv.Itoa(int(g)))
			}
		}
		if ext.Kind == tlsparse.KindECPointFormats {
			for _, p := range ext.ECPointFormats {
				points = append(points, strconv.Itoa(int(p)))
			}
		}
	}

	str := strings.Join([]string{
		strconv.Itoa(int(hello.HandshakeVersion)),
		strings.Join(ciphers, "-"),
		strings.Join(extensions, "-"),
		strings.Join(curves, "-"),
		strings.Join(points, "-"),
	}, ",")

	sum := md5.Sum([]byte(str))
	return JA3{MD5: hex.EncodeToString(sum[:]), Str: str}
}

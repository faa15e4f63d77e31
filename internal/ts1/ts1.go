// Package ts1 computes the structural TS1 signatures: a TLS variant
// over a ClientHello snapshot and an HTTP/2 variant over a frame log.
// Both are sha1(canonical_json(value)) for a structured value that,
// unlike JA3/Akamai, keeps GREASE positionally instead of stripping it.
package ts1

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"

	"github.com/picohz/fingerprintd/internal/canonjson"
	"github.com/picohz/fingerprintd/internal/h2parse"
	"github.com/picohz/fingerprintd/internal/tlsparse"
)

// TS1 holds a rendered canonical-JSON text and its SHA-1 digest.
type TS1 struct {
	SHA1 string `json:"sha1"`
	Text string `json:"text"`
}

func sign(v canonjson.Value) TS1 {
	text := canonjson.Marshal(v)
	sum := sha1.Sum([]byte(text))
	return TS1{SHA1: hex.EncodeToString(sum[:]), Text: text}
}

// TLS computes TS1-TLS from a ClientHello snapshot.
func TLS(hello *tlsparse.ClientHello) TS1 {
	return sign(tlsValue(hello))
}

// HTTP2 computes TS1-HTTP2 from a frame log.
func HTTP2(frames []h2parse.Frame) TS1 {
	return sign(http2Value(frames))
}

func versionName(v uint16) string {
	switch v {
	case 0x0301:
		return "TLS_VERSION_1_0"
	case 0x0302:
		return "TLS_VERSION_1_1"
	case 0x0303:
		return "TLS_VERSION_1_2"
	case 0x0304:
		return "TLS_VERSION_1_3"
	default:
		return ""
	}
}

func tlsValue(hello *tlsparse.ClientHello) canonjson.Value {
	ciphersuites := make([]canonjson.Value, 0, len(hello.CipherSuites))
	for _, c := range hello.CipherSuites {
		if tlsparse.IsGREASE(c) {
			ciphersuites = append(ciphersuites, canonjson.String("GREASE"))
		} else {
			ciphersuites = append(ciphersuites, canonjson.Int(int64(c)))
		}
	}

	compMethods := make([]canonjson.Value, 0, len(hello.CompressMethods))
	for _, m := range hello.CompressMethods {
		compMethods = append(compMethods, canonjson.Int(int64(m)))
	}

	extensions := make([]canonjson.Value, 0, len(hello.Extensions))
	for _, ext := range hello.Extensions {
		extensions = append(extensions, extensionValue(ext))
	}

	clientHello := canonjson.Object(map[string]canonjson.Value{
		"record_version":    canonjson.String(versionName(hello.RecordVersion)),
		"handshake_version": canonjson.String(versionName(hello.HandshakeVersion)),
		"ciphersuites":      canonjson.Array(ciphersuites),
		"comp_methods":      canonjson.Array(compMethods),
		"extensions":        canonjson.Array(extensions),
		"sesion_id_length":  canonjson.Int(int64(hello.SessionIDLength)),
	})

	return canonjson.Object(map[string]canonjson.Value{"client_hello": clientHello})
}

func extensionValue(ext tlsparse.Extension) canonjson.Value {
	fields := map[string]canonjson.Value{}

	switch ext.Kind {
	case tlsparse.KindServerName:
		// no length field for this variant.
		fields["type"] = canonjson.String("server_name")

	case tlsparse.KindPadding:
		// no length field for this variant.
		fields["type"] = canonjson.String("padding")

	case tlsparse.KindStatusRequest:
		fields["length"] = canonjson.Int(int64(len(ext.Data)))
		fields["type"] = canonjson.String("status_request")
		fields["status_request_type"] = canonjson.Int(int64(ext.StatusRequestType))

	case tlsparse.KindSupportedGroups:
		fields["length"] = canonjson.Int(int64(len(ext.Data)))
		fields["type"] = canonjson.String("supported_groups")
		groups := make([]canonjson.Value, 0, len(ext.SupportedGroups))
		for _, g := range ext.SupportedGroups {
			if tlsparse.IsGREASE(g) {
				groups = append(groups, canonjson.String("GREASE"))
			} else {
				groups = append(groups, canonjson.Int(int64(g)))
			}
		}
		fields["supported_groups"] = canonjson.Array(groups)

	case tlsparse.KindECPointFormats:
		fields["length"] = canonjson.Int(int64(len(ext.Data)))
		fields["type"] = canonjson.String("ec_point_formats")
		points := make([]canonjson.Value, 0, len(ext.ECPointFormats))
		for _, p := range ext.ECPointFormats {
			points = append(points, canonjson.Int(int64(p)))
		}
		fields["ec_point_formats"] = canonjson.Array(points)

	case tlsparse.KindSignatureAlgorithms:
		fields["length"] = canonjson.Int(int64(len(ext.Data)))
		fields["type"] = canonjson.String("signature_algorithms")
		algs := make([]canonjson.Value, 0, len(ext.SignatureAlgorithms))
		for _, a := range ext.SignatureAlgorithms {
			algs = append(algs, canonjson.Int(int64(a)))
		}
		fields["sig_hash_algs"] = canonjson.Array(algs)

	case tlsparse.KindALPN:
		fields["length"] = canonjson.Int(int64(len(ext.Data)))
		fields["type"] = canonjson.String("application_layer_protocol_negotiation")
		names := make([]canonjson.Value, 0, len(ext.ALPNProtocols))
		for _, n := range ext.ALPNProtocols {
			names = append(names, canonjson.String(n))
		}
		fields["alpn_list"] = canonjson.Array(names)

	case tlsparse.KindEncryptThenMac:
		fields["length"] = canonjson.Int(int64(len(ext.Data)))
		fields["type"] = canonjson.String("encrypt_then_mac")

	case tlsparse.KindGREASE:
		b64 := base64.StdEncoding.EncodeToString(ext.Data)
		// Deliberately the length of the base64 string, not the raw
		// payload: this is the quirk that makes the GREASE signature
		// depend on encoding, not wire size.
		fields["length"] = canonjson.Int(int64(len(b64)))
		fields["type"] = canonjson.String("GREASE")
		if len(b64) > 0 {
			fields["data"] = canonjson.String(b64)
		}

	default:
		fields["length"] = canonjson.Int(int64(len(ext.Data)))
		fields["type"] = canonjson.Int(int64(ext.Type))
	}

	return canonjson.Object(fields)
}

func http2Value(frames []h2parse.Frame) canonjson.Value {
	items := make([]canonjson.Value, 0, len(frames))
	for _, f := range frames {
		switch frame := f.(type) {
		case *h2parse.Headers:
			pseudo := make([]canonjson.Value, 0, len(frame.PseudoHeaders))
			for _, p := range frame.PseudoHeaders {
				pseudo = append(pseudo, canonjson.String(p))
			}
			items = append(items, canonjson.Object(map[string]canonjson.Value{
				"frame_type":     canonjson.String("HEADERS"),
				"stream_id":      canonjson.Int(int64(frame.StreamID)),
				"pseudo_headers": canonjson.Array(pseudo),
			}))

		case *h2parse.Settings:
			settings := make([]canonjson.Value, 0, len(frame.Settings))
			for _, s := range frame.Settings {
				settings = append(settings, canonjson.Object(map[string]canonjson.Value{
					"id":    canonjson.Int(int64(s.ID)),
					"value": canonjson.Int(int64(s.Value)),
				}))
			}
			items = append(items, canonjson.Object(map[string]canonjson.Value{
				"frame_type": canonjson.String("SETTINGS"),
				"stream_id":  canonjson.Int(int64(frame.StreamID)),
				"settings":   canonjson.Array(settings),
			}))

		case *h2parse.Priority:
			items = append(items, canonjson.Object(map[string]canonjson.Value{
				"frame_type": canonjson.String("PRIORITY"),
				"stream_id":  canonjson.Int(int64(frame.StreamID)),
				"priority": canonjson.Object(map[string]canonjson.Value{
					"dep_stream_id": canonjson.Int(int64(frame.DepStreamID)),
					"weight":        canonjson.Int(int64(frame.Weight)),
					"exclusive":     canonjson.Bool(frame.Exclusive),
				}),
			}))

		case *h2parse.WindowUpdate:
			items = append(items, canonjson.Object(map[string]canonjson.Value{
				"frame_type":            canonjson.String("WINDOW_UPDATE"),
				"stream_id":             canonjson.Int(int64(frame.StreamID)),
				"window_size_increment": canonjson.Int(int64(frame.WindowSizeIncrement)),
			}))

		case *h2parse.Unknown:
			items = append(items, canonjson.Object(map[string]canonjson.Value{
				"frame_type": canonjson.Int(int64(frame.FrameType)),
			}))
		}
	}
	return canonjson.Array(items)
}

package http

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

const twilioSignatureHeader = "X-Twilio-Signature"

// twilioSignature computes base64(HMAC-SHA1(token, url + sorted key/value pairs)).
func twilioSignature(authToken, fullURL string, params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		vals := append([]string(nil), params[k]...)
		sort.Strings(vals)
		for _, v := range vals {
			b.WriteString(k)
			b.WriteString(v)
		}
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// validTwilioSignature checks the request signature against the public URL
// Twilio was configured with.
func validTwilioSignature(authToken, publicBaseURL string, r *http.Request, params url.Values) bool {
	got := r.Header.Get(twilioSignatureHeader)
	if got == "" {
		return false
	}
	want := twilioSignature(authToken, requestURL(publicBaseURL, r), params)
	return hmac.Equal([]byte(got), []byte(want))
}

func requestURL(publicBaseURL string, r *http.Request) string {
	if publicBaseURL != "" {
		return strings.TrimRight(publicBaseURL, "/") + r.URL.RequestURI()
	}
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}

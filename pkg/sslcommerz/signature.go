package sslcommerz

import (
	"crypto/md5"
	"crypto/subtle"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// VerifySignature checks the verify_sign the gateway attaches to callback and
// IPN posts. The signed fields are the ones named in verify_key plus the
// md5 of the store password.
func (c *Client) VerifySignature(form url.Values) bool {
	if c == nil {
		return false
	}
	return verifySignature(form, c.storePassword)
}

func verifySignature(form url.Values, storePassword string) bool {
	sign := form.Get("verify_sign")
	keys := form.Get("verify_key")
	if sign == "" || keys == "" {
		return false
	}

	fields := map[string]string{
		"store_passwd": md5Hex(storePassword),
	}
	for _, key := range strings.Split(keys, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields[key] = form.Get(key)
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(fields[name])
	}

	expected := md5Hex(b.String())
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(sign))) == 1
}

func md5Hex(value string) string {
	sum := md5.Sum([]byte(value))
	return hex.EncodeToString(sum[:])
}

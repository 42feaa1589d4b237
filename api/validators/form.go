package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"

	pkgerrors "github.com/Mahbub-Sajon/srs-publications-server/pkg/errors"
)

// DecodeForm reads gateway callback fields. Form-encoded bodies are the
// norm; a flat JSON object is accepted too, with non-string values
// rendered through fmt.
func DecodeForm(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var raw map[string]any
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw); err != nil && err != io.EOF {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body")
		}
		values := url.Values{}
		for k, v := range raw {
			switch typed := v.(type) {
			case nil:
			case string:
				values.Set(k, typed)
			default:
				values.Set(k, fmt.Sprint(typed))
			}
		}
		return values, nil
	}

	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid form body")
	}
	return r.PostForm, nil
}

package mtm

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxManifestBytes bounds a request body.
const maxManifestBytes = 1 << 20

// Handler returns an http.Handler that checks a YAML manifest POSTed as
// the request body. Accepted manifests get 200, rejected ones 422, both
// with a JSON verdict.
func (c *Client) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		data, err := io.ReadAll(io.LimitReader(r.Body, maxManifestBytes+1))
		if err != nil {
			http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(data) > maxManifestBytes {
			http.Error(w, "manifest too large", http.StatusRequestEntityTooLarge)
			return
		}

		source := "http:" + r.RemoteAddr
		m, err := c.LoadBytes(r.Context(), source, data)

		body := map[string]any{"valid": err == nil}
		status := http.StatusOK
		if err != nil {
			status = http.StatusUnprocessableEntity
			var me *Error
			if errors.As(err, &me) {
				body["kind"] = string(me.Kind)
				body["reason"] = me.Reason
				if me.Constraint != "" {
					body["constraint"] = me.Constraint
				}
			} else {
				body["reason"] = err.Error()
			}
		} else {
			body["model_name"] = m.ModelName
			body["fingerprint"] = m.Fingerprint
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	})
}

// Package mtm gates model loading on a model trust manifest. A loader
// hands it the manifest path; the model is loaded only if the manifest
// passes the closed mtm-v0.1 schema and declares no deployment constraint
// the loader cannot guarantee.
//
// Usage:
//
//	gate, err := mtm.New(mtm.WithAuditLog("/var/log/mtm/decisions.jsonl"))
//	load := mtm.Wrap(gate, func(ctx context.Context, m *mtm.Manifest) (*Model, error) {
//	    return loadWeights(m.ModelName)
//	})
//	model, err := load(ctx, "models/example/mtm.yaml")
//
// With WithServer the decision is made by a remote "mtm serve" instance and
// an unreachable server blocks the load.
//
// The SDK links directly against internal packages. External users import
// github.com/ppiankov/mtm/sdk/go/mtm.
package mtm

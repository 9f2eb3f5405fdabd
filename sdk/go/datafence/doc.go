// Package datafence provides in-process transfer governance for Go
// services. It opens the same SQLite-backed stores the gateway uses and
// exposes the decision gate, desensitization and classification engines
// without a network hop.
//
// Usage:
//
//	df, err := datafence.New(datafence.WithDatabase("datafence.db"))
//	if err != nil {
//	    return err
//	}
//	decision, err := df.Check(approvalID, assetIDs, payload)
//	if err != nil {
//	    return err
//	}
//	if decision.Allowed {
//	    send(decision.MaskedPayload)
//	}
//
// The SDK links directly against internal packages for zero-subprocess
// overhead. External users import github.com/finvault/datafence/sdk/go/datafence.
package datafence

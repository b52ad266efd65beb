// Package authstate tracks in-flight social-login handshakes between the
// redirect to the provider and the callback, keyed by the OAuth state
// parameter.
package authstate

import "time"

type FlowState struct {
	CodeVerifier string
	Nonce        string
	ReturnURL    string
	CreatedAt    time.Time
}

type Repo interface {
	Upsert(state string, flow *FlowState) error
	Get(state string) (*FlowState, error)
	Delete(state string) error
}

package social

import (
	"context"
	"fmt"

	"github.com/aistudy/authkit/core"
)

// Registry holds the configured verifiers and dispatches a proof to the one
// for its provider. It performs no account logic itself.
type Registry struct {
	verifiers map[core.Provider]core.SocialVerifier
}

// NewRegistry registers verifiers by provider. A later verifier for the
// same provider replaces an earlier one.
func NewRegistry(list ...core.SocialVerifier) *Registry {
	m := make(map[core.Provider]core.SocialVerifier)
	for _, v := range list {
		if v != nil {
			m[v.Provider()] = v
		}
	}
	return &Registry{verifiers: m}
}

func (r *Registry) Get(p core.Provider) (core.SocialVerifier, error) {
	v, ok := r.verifiers[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnsupportedProvider, p)
	}
	return v, nil
}

func (r *Registry) Providers() []core.Provider {
	out := make([]core.Provider, 0, len(r.verifiers))
	for _, p := range []core.Provider{core.ProviderGoogle, core.ProviderKakao, core.ProviderApple} {
		if _, ok := r.verifiers[p]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Verify validates the proof and hands it to the matching verifier.
func (r *Registry) Verify(ctx context.Context, proof core.SocialProof) (*core.Identity, error) {
	if proof == nil {
		return nil, core.ErrMissingProof
	}
	if err := proof.Validate(); err != nil {
		return nil, err
	}
	v, err := r.Get(proof.Provider())
	if err != nil {
		return nil, err
	}
	return v.Verify(ctx, proof)
}

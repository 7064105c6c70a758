// internal/application/mint/submitter.go
package mint

import (
	"context"
	"fmt"
	"log"
	"strings"

	mintdom "github.com/Spaceman-Collective/kyogen-mint/internal/domain/mint"
)

// SubmissionPolicy は送信したシグネチャのうち、どれを確認対象にするかを決めます。
type SubmissionPolicy interface {
	Name() string
	Track(signatures []string) []string
}

// LastSignaturePolicy は最後に送信した tx だけを確認対象にします。
// バッチは最後の 1 件が着地すれば成功とみなし、それ以前の tx の個別確認は行いません。
type LastSignaturePolicy struct{}

func (LastSignaturePolicy) Name() string { return "last" }

func (LastSignaturePolicy) Track(signatures []string) []string {
	if len(signatures) == 0 {
		return nil
	}
	return []string{signatures[len(signatures)-1]}
}

// EverySignaturePolicy はバッチ全件を確認対象にします。
type EverySignaturePolicy struct{}

func (EverySignaturePolicy) Name() string { return "every" }

func (EverySignaturePolicy) Track(signatures []string) []string {
	out := make([]string, len(signatures))
	copy(out, signatures)
	return out
}

// SubmissionPolicyByName は設定値からポリシーを解決します（未知の値は last）。
func SubmissionPolicyByName(name string) SubmissionPolicy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "every", "all":
		return EverySignaturePolicy{}
	default:
		return LastSignaturePolicy{}
	}
}

// Submitter は署名済み tx を構築順に 1 件ずつ送信します（並列送信はしない）。
type Submitter struct {
	chain  ChainClient
	policy SubmissionPolicy
}

func NewSubmitter(chain ChainClient, policy SubmissionPolicy) *Submitter {
	if policy == nil {
		policy = LastSignaturePolicy{}
	}
	return &Submitter{chain: chain, policy: policy}
}

// Submit は全件を送信し、送信順のシグネチャと確認対象を返します。
func (s *Submitter) Submit(ctx context.Context, signed []mintdom.SignedTransaction) (mintdom.Submission, error) {
	if len(signed) == 0 {
		return mintdom.Submission{}, mintdom.ErrNoTransactionCreated
	}

	sigs := make([]string, 0, len(signed))
	for _, st := range signed {
		sig, err := s.chain.SendTransaction(ctx, st.Transaction)
		if err != nil {
			return mintdom.Submission{Signatures: sigs}, fmt.Errorf("%w: slot=%d: %v", mintdom.ErrSubmitFailed, st.Slot, err)
		}
		log.Printf("[mint.submitter] sent slot=%d asset=%s sig=%s", st.Slot, maskShort(st.Asset.ToBase58()), maskShort(sig))
		sigs = append(sigs, sig)
	}

	if len(sigs) == 0 || strings.TrimSpace(sigs[len(sigs)-1]) == "" {
		return mintdom.Submission{Signatures: sigs}, mintdom.ErrNoTransactionCreated
	}

	return mintdom.Submission{
		Signatures: sigs,
		Tracked:    s.policy.Track(sigs),
	}, nil
}

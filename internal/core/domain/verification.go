package domain

// VerdictKind tells how the ledger evidence relates to the record store
type VerdictKind string

const (
	// VerdictConfirmed the ledger positively agrees with the record
	VerdictConfirmed VerdictKind = "confirmed"
	// VerdictUnconfirmed the ledger was silent: unconfigured, unreachable or inconclusive
	VerdictUnconfirmed VerdictKind = "unconfirmed"
	// VerdictContradicted the ledger explicitly reports the credential as not valid
	VerdictContradicted VerdictKind = "contradicted"
)

// LedgerVerdict is the ledger evidence gathered during a verification. At most one of
// Credential or Transaction is set.
type LedgerVerdict struct {
	Kind        VerdictKind
	Credential  *LedgerCredential
	Transaction *LedgerTransaction
}

// VerdictFromCredential maps a structured ledger read. Only an explicit isValid=false
// contradicts the record store.
func VerdictFromCredential(lc *LedgerCredential) LedgerVerdict {
	switch {
	case lc == nil:
		return LedgerVerdict{Kind: VerdictUnconfirmed}
	case lc.IsValid:
		return LedgerVerdict{Kind: VerdictConfirmed, Credential: lc}
	default:
		return LedgerVerdict{Kind: VerdictContradicted, Credential: lc}
	}
}

// VerdictFromTransaction maps a raw transaction read. A transaction carries no validity
// flag so it can confirm but never contradict.
func VerdictFromTransaction(tx *LedgerTransaction) LedgerVerdict {
	if tx == nil {
		return LedgerVerdict{Kind: VerdictUnconfirmed}
	}
	if tx.Status == TxnStatusSuccess {
		return LedgerVerdict{Kind: VerdictConfirmed, Transaction: tx}
	}
	return LedgerVerdict{Kind: VerdictUnconfirmed, Transaction: tx}
}

// Vetoes reports whether the verdict invalidates the record
func (v LedgerVerdict) Vetoes() bool {
	return v.Kind == VerdictContradicted
}

// VerificationResult is the verdict bundle returned by a verification
type VerificationResult struct {
	IsValid    bool
	Credential *Credential
	Ledger     LedgerVerdict
}

// NewVerificationResult combines the record store hit with the ledger verdict
func NewVerificationResult(c *Credential, verdict LedgerVerdict) *VerificationResult {
	return &VerificationResult{
		IsValid:    c != nil && c.IsActive() && !verdict.Vetoes(),
		Credential: c,
		Ledger:     verdict,
	}
}

package repositories

import "errors"

var (
	// ErrCredentialNotFound credential does not exist
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrCredentialDuplicated a credential with the same content hash, content id or ledger id already exists
	ErrCredentialDuplicated = errors.New("credential already exists")
	// ErrCredentialAlreadyAnchored the credential already carries ledger identifiers
	ErrCredentialAlreadyAnchored = errors.New("credential already anchored on the ledger")
	// ErrUserNotFound user does not exist
	ErrUserNotFound = errors.New("user not found")
)

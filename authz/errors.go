package authz

import "errors"

var (
	// ErrUnknownOperator indicates no credential is stored for the account.
	ErrUnknownOperator = errors.New("authz: unknown operator")

	// ErrBadSecret indicates the presented secret does not match the stored
	// credential.
	ErrBadSecret = errors.New("authz: secret verification failed")

	// ErrEmptySecret indicates an empty operator secret.
	ErrEmptySecret = errors.New("authz: empty secret")
)

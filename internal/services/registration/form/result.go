package form

// SuccessMessage is shown once the account and both records exist.
const SuccessMessage = "User successfully registered"

// Identity is the account created by the authentication provider.
type Identity struct {
	UID     string
	Email   string
	IDToken string
}

// ResultKind tags a submission outcome.
type ResultKind int

const (
	ResultSuccess ResultKind = iota + 1
	ResultValidationFailure
	ResultRemoteFailure
)

// String returns the kind name.
func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultValidationFailure:
		return "validation_failure"
	case ResultRemoteFailure:
		return "remote_failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of one submission attempt.
type Result struct {
	Kind ResultKind
	// Reason is the display text: the success message or the failure text.
	Reason string
	// Err is the underlying failure; nil on success.
	Err error
	// Identity is set on success.
	Identity Identity
	// ProfileImageURL is the hosted image URL when an upload completed, even
	// if a later step failed.
	ProfileImageURL string
}

// Succeeded builds a success result.
func Succeeded(identity Identity, imageURL string) Result {
	return Result{Kind: ResultSuccess, Reason: SuccessMessage, Identity: identity, ProfileImageURL: imageURL}
}

// ValidationFailed builds a local validation failure.
func ValidationFailed(reason string, err error) Result {
	return Result{Kind: ResultValidationFailure, Reason: reason, Err: err}
}

// RemoteFailed builds a collaborator failure.
func RemoteFailed(reason string, err error, imageURL string) Result {
	return Result{Kind: ResultRemoteFailure, Reason: reason, Err: err, ProfileImageURL: imageURL}
}

// OK reports whether the submission succeeded.
func (r Result) OK() bool {
	return r.Kind == ResultSuccess
}

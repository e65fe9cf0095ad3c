package errors

import (
	"errors"
	"strings"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
)

// AWS API error codes returned by EC2, IAM and S3, grouped by the sentinel they map to.
var codeKinds = map[string]error{
	// Resource errors.
	"InvalidInstanceID.NotFound":  ErrNotFound,
	"InvalidGroup.NotFound":       ErrNotFound,
	"InvalidKeyPair.NotFound":     ErrNotFound,
	"NoSuchBucket":                ErrNotFound,
	"NoSuchKey":                   ErrNotFound,
	"NotFound":                    ErrNotFound,
	"NoSuchEntity":                ErrNotFound,
	"InvalidKeyPair.Duplicate":    ErrAlreadyExists,
	"InvalidGroup.Duplicate":      ErrAlreadyExists,
	"InvalidPermission.Duplicate": ErrAlreadyExists,
	"BucketAlreadyExists":         ErrAlreadyExists,
	"BucketAlreadyOwnedByYou":     ErrAlreadyExists,
	"EntityAlreadyExists":         ErrAlreadyExists,

	// State errors.
	"IncorrectInstanceState": ErrInvalidState,
	"IncorrectState":         ErrInvalidState,
	"BucketNotEmpty":         ErrInvalidState,
	"OperationNotPermitted":  ErrInvalidState,
	"UnsupportedOperation":   ErrInvalidState,

	// Validation errors.
	"InvalidInstanceID.Malformed":        ErrInvalidInput,
	"InvalidParameterValue":              ErrInvalidInput,
	"InvalidParameterCombination":        ErrInvalidInput,
	"MissingParameter":                   ErrInvalidInput,
	"InvalidBucketName":                  ErrInvalidInput,
	"InvalidKeyPair.Format":              ErrInvalidInput,
	"ValidationError":                    ErrInvalidInput,
	"IllegalLocationConstraintException": ErrInvalidInput,

	// Permission errors.
	"AccessDenied":          ErrAccessDenied,
	"AccessDeniedException": ErrAccessDenied,
	"UnauthorizedOperation": ErrAccessDenied,
	"AuthFailure":           ErrAccessDenied,
	"InvalidAccessKeyId":    ErrAccessDenied,
	"InvalidClientTokenId":  ErrAccessDenied,
	"SignatureDoesNotMatch": ErrAccessDenied,
	"ExpiredToken":          ErrAccessDenied,
	"RequestExpired":        ErrAccessDenied,
	"AllAccessDisabled":     ErrAccessDenied,
}

func classify(code string) error {
	if kind, ok := codeKinds[code]; ok {
		return kind
	}
	// EC2 uses "<Resource>.NotFound" and "<Resource>.Duplicate" for most resources
	switch {
	case strings.HasSuffix(code, ".NotFound"):
		return ErrNotFound
	case strings.HasSuffix(code, ".Duplicate"):
		return ErrAlreadyExists
	case strings.HasSuffix(code, ".Malformed"):
		return ErrInvalidInput
	}
	return nil
}

// isCredentialsError recognizes the credential-chain failures raised by the SDK
// before a request is signed. They are not API errors and carry no code. The
// signer reports them as *v4.SigningError; the message match covers the
// identity resolvers that return plain wrapped errors.
func isCredentialsError(err error) bool {
	var signErr *v4.SigningError
	if errors.As(err, &signErr) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "failed to retrieve credentials") ||
		strings.Contains(msg, "failed to refresh cached credentials") ||
		strings.Contains(msg, "no EC2 IMDS role found") ||
		strings.Contains(msg, "static credentials are empty")
}

package rpc

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/apperr"
)

func codeFor(kind apperr.Kind) connect.Code {
	switch kind {
	case apperr.KindNotFound:
		return connect.CodeNotFound
	case apperr.KindForbidden:
		return connect.CodePermissionDenied
	case apperr.KindInvalidArgument:
		return connect.CodeInvalidArgument
	case apperr.KindConflict:
		return connect.CodeAlreadyExists
	case apperr.KindInvalidOperation:
		return connect.CodeFailedPrecondition
	case apperr.KindUnauthenticated:
		return connect.CodeUnauthenticated
	default:
		return connect.CodeInternal
	}
}

// connectError converts a service error into a Connect error. The kind is
// attached as the "error-kind" metadata so clients can tell Conflict from
// other AlreadyExists causes.
func connectError(procedure string, err error) error {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		slog.Error("RPC failed", "procedure", procedure, "error", err)
	}
	cerr := connect.NewError(codeFor(kind), errors.New(apperr.PublicMessage(err)))
	cerr.Meta().Set("Error-Kind", string(kind))
	return cerr
}

package model

import "errors"

// ErrInvalidFilter marks configuration errors raised while building subscriptions.
// Callers must fix the filter list; nothing is retried.
var ErrInvalidFilter = errors.New("invalid filter")

// ErrMissingSymbols a filter without explicit symbols for a venue that needs them
var ErrMissingSymbols = errors.New("filter requires explicit symbols")

// ErrUnsupportedChannel the venue does not publish the requested channel
var ErrUnsupportedChannel = errors.New("unsupported channel")

// ErrMalformedMessage marks per-message parse failures (bad timestamp, bad numeric field, missing field).
var ErrMalformedMessage = errors.New("malformed message")

// ErrUnexpectedMessage is returned by a mapper asked to map a message it does not handle.
var ErrUnexpectedMessage = errors.New("unexpected message type")

// ErrVenueDisconnect signals that the venue is terminating the session.
var ErrVenueDisconnect = errors.New("venue disconnect")

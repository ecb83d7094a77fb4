package domain

import "errors"

// ErrNotFound is returned by API clients when an upstream resource does not
// exist. Strategies treat it as "deleted between notification and processing"
// and stop without error.
var ErrNotFound = errors.New("resource not found")

// ErrGeenContactgegevens is returned by the voorkeur resolver when neither a
// usable email address nor a valid phone number is available. It is never
// swallowed: a partij without any reachable address is upstream data to fix,
// not something to guess around.
var ErrGeenContactgegevens = errors.New("rol has no usable digitaal adres")

package domain

import "context"

// ZakenAPI is the port to the zaken (case) service.
// Implementation lives in infrastructure/zgw.
type ZakenAPI interface {
	// GetRol fetches a rol by its canonical URL. Returns ErrNotFound when the
	// rol no longer exists.
	GetRol(ctx context.Context, url string) (*Rol, error)

	// DeleteRol removes a rol. Part of the destructive update protocol only.
	DeleteRol(ctx context.Context, url string) error

	// CreateRol posts a raw rol body and returns the recreated rol.
	CreateRol(ctx context.Context, body map[string]any) (*Rol, error)

	// GetZaak fetches a zaak by URL with its eigenschappen expanded.
	GetZaak(ctx context.Context, url string) (*Zaak, error)
}

// CatalogiAPI is the port to the zaaktypecatalogus service.
type CatalogiAPI interface {
	// GetRolType fetches a roltype by its canonical URL.
	GetRolType(ctx context.Context, url string) (*RolType, error)
}

// KlantenAPI is the port to the klantregistratie (OpenKlant) service.
type KlantenAPI interface {
	// GetPartij fetches a partij by uuid, optionally with its digitale
	// adressen expanded.
	GetPartij(ctx context.Context, uuid string, expandAdressen bool) (*Partij, error)

	// FindPartijByIdentificator looks a partij up by an external identity
	// value. Returns ErrNotFound when no partij carries it.
	FindPartijByIdentificator(ctx context.Context, soortObjectID, objectID string) (*Partij, error)

	// CreatePartij registers a new partij.
	CreatePartij(ctx context.Context, input CreatePartijInput) (*Partij, error)

	// SetVoorkeursDigitaalAdres patches the partij's preferred address.
	SetVoorkeursDigitaalAdres(ctx context.Context, partijUUID, adresUUID string) error

	// CreatePartijIdentificator binds an external identity to a partij.
	CreatePartijIdentificator(ctx context.Context, ident PartijIdentificator) error

	// CreateDigitaalAdres attaches a digitaal adres to a partij.
	CreateDigitaalAdres(ctx context.Context, adres DigitaalAdres) (*DigitaalAdres, error)

	// DeleteDigitaalAdres removes a digitaal adres.
	DeleteDigitaalAdres(ctx context.Context, uuid string) error
}

// SubmissionStore is the port to the external form-submission store.
type SubmissionStore interface {
	// GetSubmission fetches the full submission for a form reference on
	// behalf of the given citizen (bsn) or company (kvk) id.
	GetSubmission(ctx context.Context, reference, userID, userType string) (*Submission, error)
}

// ProcessedStore is the message-level idempotency guard: a durable
// hash → processed marker with a TTL. It is a safety net; the domain-level
// betrokkene guard on Rol is the primary idempotence mechanism.
type ProcessedStore interface {
	// AlreadyHandled reports whether the notification hash was processed
	// within the TTL window.
	AlreadyHandled(ctx context.Context, hash string) (bool, error)

	// MarkHandled records the hash as processed.
	MarkHandled(ctx context.Context, hash string) error
}

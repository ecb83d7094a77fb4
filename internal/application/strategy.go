package application

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/opengemeente/klantsync/internal/domain"
)

// Strategy names accepted in registratie.strategie config.
const (
	StrategieContactPerRol             = "contact-per-rol"
	StrategieContactPerRolDryRun       = "contact-per-rol-dry-run"
	StrategiePartijPerIdentiteit       = "partij-per-identiteit"
	StrategieContactPerRolMetFormulier = "contact-per-rol-met-formulier"
)

// Strategy is one complete notification-handling policy. Exactly one is
// selected at startup; there is no per-message strategy switching.
type Strategy interface {
	// ValidateNotificatie runs cheap local eligibility checks. A non-empty
	// slice means "not for us": the dispatcher skips the message silently.
	ValidateNotificatie(n *domain.Notificatie) []string

	// Register performs the full registration for an eligible notification.
	// Expected non-fatal outcomes (rol deleted, roltype outside the
	// whitelist, rol already linked) return nil; anything else is an error
	// the queue's redrive policy retries.
	Register(ctx context.Context, n *domain.Notificatie) error
}

// Options is the immutable pipeline configuration shared by all strategies.
type Options struct {
	ZakenRoot string
	// RolTypen whitelists roltype omschrijvingGeneriek values.
	RolTypen []string
	// Catalogi whitelists catalogus URLs. Empty allows all.
	Catalogi []string
	// UpdateRol enables writing the partij reference back onto the rol.
	UpdateRol bool
	// FormulierEigenschap names the zaak eigenschap holding the submission
	// reference (formulier strategy only).
	FormulierEigenschap string
	Velden              VeldenScan
}

// Deps are the external collaborators a strategy calls.
type Deps struct {
	Zaken       domain.ZakenAPI
	Catalogi    domain.CatalogiAPI
	Klanten     domain.KlantenAPI
	Submissions domain.SubmissionStore
}

// NewStrategy maps the configured strategy name to an instance. An unknown
// or empty name deterministically falls back to contact-per-rol, with a
// warning so the fallback never happens silently.
func NewStrategy(name string, opts Options, deps Deps) Strategy {
	b := base{opts: opts, deps: deps}

	switch name {
	case StrategieContactPerRol:
		return &contactPerRol{base: b}
	case StrategieContactPerRolDryRun:
		return &contactPerRol{base: b, dryRun: true}
	case StrategiePartijPerIdentiteit:
		return &partijPerIdentiteit{base: b}
	case StrategieContactPerRolMetFormulier:
		return &contactPerRolMetFormulier{base: b}
	default:
		log.Warn().Str("strategie", name).
			Msgf("unknown registration strategy, defaulting to %s", StrategieContactPerRol)
		return &contactPerRol{base: b}
	}
}

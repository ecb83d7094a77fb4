package application

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/opengemeente/klantsync/internal/domain"
)

// contactPerRol creates a fresh partij for every eligible rol, without any
// dedup across rollen. Organisaties get two linked partijen: the organisatie
// itself and a contactpersoon carrying the digital addresses.
//
// With dryRun set the full registration runs but the rol is never updated;
// used for validation runs against production data.
type contactPerRol struct {
	base
	dryRun bool
}

func (s *contactPerRol) Register(ctx context.Context, n *domain.Notificatie) error {
	rol, err := s.haalRegistreerbareRol(ctx, n)
	if err != nil || rol == nil {
		return err
	}

	if rol.Betrokkene != "" {
		// Already registered; the betrokkene guard makes reprocessing a no-op.
		log.Debug().Str("rol", rol.URL).Msg("rol already has betrokkene, skipping")
		return nil
	}

	partij, err := s.maakPartij(ctx, rol)
	if err != nil {
		return err
	}

	voorkeur := VoorkeurGeen
	if err := s.persistVoorkeur(ctx, partij.UUID, rol.Email(), rol.Telefoonnummer(), voorkeur); err != nil {
		return err
	}

	if s.dryRun {
		log.Info().Str("rol", rol.URL).Str("partij", partij.UUID).Msg("dry run, rol not updated")
		return nil
	}
	if !s.opts.UpdateRol {
		return nil
	}
	return s.koppelBetrokkene(ctx, rol.URL, partij.URL)
}

// maakPartij creates the partij (pair) for the rol and binds its external
// identity. The returned partij is the one carrying the digital addresses.
func (s *contactPerRol) maakPartij(ctx context.Context, rol *domain.Rol) (*domain.Partij, error) {
	if rol.BetrokkeneType.IsOrganisatie() {
		organisatie, err := s.deps.Klanten.CreatePartij(ctx, OrganisatiePartij(rol))
		if err != nil {
			return nil, fmt.Errorf("create organisatie partij: %w", err)
		}
		if kvk := rol.KvkNummer(); kvk != "" {
			if err := s.deps.Klanten.CreatePartijIdentificator(ctx, KvkIdentificator(organisatie.UUID, kvk)); err != nil {
				return nil, fmt.Errorf("create kvk identificator: %w", err)
			}
		}

		contactpersoon, err := s.deps.Klanten.CreatePartij(ctx, ContactpersoonPartij(rol, organisatie))
		if err != nil {
			return nil, fmt.Errorf("create contactpersoon partij: %w", err)
		}
		log.Info().
			Str("organisatie", organisatie.UUID).
			Str("contactpersoon", contactpersoon.UUID).
			Str("rol", rol.URL).
			Msg("organisatie partijen aangemaakt")
		return contactpersoon, nil
	}

	partij, err := s.deps.Klanten.CreatePartij(ctx, PersoonPartij(rol))
	if err != nil {
		return nil, fmt.Errorf("create persoon partij: %w", err)
	}
	if bsn := rol.Bsn(); bsn != "" {
		if err := s.deps.Klanten.CreatePartijIdentificator(ctx, BsnIdentificator(partij.UUID, bsn)); err != nil {
			return nil, fmt.Errorf("create bsn identificator: %w", err)
		}
	}
	log.Info().Str("partij", partij.UUID).Str("rol", rol.URL).Msg("persoon partij aangemaakt")
	return partij, nil
}

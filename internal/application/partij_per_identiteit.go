package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/opengemeente/klantsync/internal/domain"
)

// partijPerIdentiteit keeps one partij per identity across all zaken. Before
// creating anything it looks the identity up in the klantregistratie: the bsn
// for natuurlijke personen, a deterministic pseudo id for contact persons at
// a company (the zaken service has no stable id for that pairing).
//
// A found partij gets a full refresh of its digital addresses (delete then
// re-add) rather than a diff. A missing partij is created together with the
// identity binding so the next lookup succeeds.
type partijPerIdentiteit struct {
	base
}

func (s *partijPerIdentiteit) Register(ctx context.Context, n *domain.Notificatie) error {
	rol, err := s.haalRegistreerbareRol(ctx, n)
	if err != nil || rol == nil {
		return err
	}

	if rol.Betrokkene != "" {
		log.Debug().Str("rol", rol.URL).Msg("rol already has betrokkene, skipping")
		return nil
	}

	soortObjectID, objectID, err := lookupIdentiteit(rol)
	if err != nil {
		return err
	}

	partij, err := s.deps.Klanten.FindPartijByIdentificator(ctx, soortObjectID, objectID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		partij, err = s.maakPartijMetIdentiteit(ctx, rol, soortObjectID, objectID)
		if err != nil {
			return err
		}
		if err := s.persistVoorkeur(ctx, partij.UUID, rol.Email(), rol.Telefoonnummer(), VoorkeurGeen); err != nil {
			return err
		}
	case err != nil:
		return fmt.Errorf("find partij by %s: %w", soortObjectID, err)
	default:
		if err := s.verversAdressen(ctx, partij, rol); err != nil {
			return err
		}
	}

	if !s.opts.UpdateRol {
		return nil
	}
	return s.koppelBetrokkene(ctx, rol.URL, partij.URL)
}

// lookupIdentiteit derives the identity the partij is deduped on.
func lookupIdentiteit(rol *domain.Rol) (soortObjectID, objectID string, err error) {
	if rol.BetrokkeneType == domain.BetrokkeneNatuurlijkPersoon {
		bsn := rol.Bsn()
		if bsn == "" {
			return "", "", fmt.Errorf("rol %s: natuurlijk persoon without bsn", rol.URL)
		}
		return domain.SoortObjectIDBsn, bsn, nil
	}

	kvk := rol.KvkNummer()
	naam := rol.ContactNaam()
	if kvk == "" && naam == "" {
		return "", "", fmt.Errorf("rol %s: no identity to dedup on", rol.URL)
	}
	return domain.SoortObjectIDPseudoID, PseudoID(kvk, naam), nil
}

// maakPartijMetIdentiteit creates the partij (pair) plus the identity binding
// that makes the partij findable on re-registration.
func (s *partijPerIdentiteit) maakPartijMetIdentiteit(ctx context.Context, rol *domain.Rol, soortObjectID, objectID string) (*domain.Partij, error) {
	var (
		partij *domain.Partij
		err    error
	)
	if rol.BetrokkeneType.IsOrganisatie() {
		var organisatie *domain.Partij
		organisatie, err = s.deps.Klanten.CreatePartij(ctx, OrganisatiePartij(rol))
		if err != nil {
			return nil, fmt.Errorf("create organisatie partij: %w", err)
		}
		if kvk := rol.KvkNummer(); kvk != "" {
			if err = s.deps.Klanten.CreatePartijIdentificator(ctx, KvkIdentificator(organisatie.UUID, kvk)); err != nil {
				return nil, fmt.Errorf("create kvk identificator: %w", err)
			}
		}
		partij, err = s.deps.Klanten.CreatePartij(ctx, ContactpersoonPartij(rol, organisatie))
		if err != nil {
			return nil, fmt.Errorf("create contactpersoon partij: %w", err)
		}
	} else {
		partij, err = s.deps.Klanten.CreatePartij(ctx, PersoonPartij(rol))
		if err != nil {
			return nil, fmt.Errorf("create persoon partij: %w", err)
		}
	}

	ident := PseudoIdentificator(partij.UUID, objectID)
	if soortObjectID == domain.SoortObjectIDBsn {
		ident = BsnIdentificator(partij.UUID, objectID)
	}
	if err := s.deps.Klanten.CreatePartijIdentificator(ctx, ident); err != nil {
		return nil, fmt.Errorf("create %s identificator: %w", soortObjectID, err)
	}

	log.Info().Str("partij", partij.UUID).Str("identiteit", soortObjectID).Msg("partij met identiteit aangemaakt")
	return partij, nil
}

// verversAdressen replaces the existing partij's digital addresses with the
// rol's current contact data and re-resolves the voorkeur. A full refresh,
// not a diff: the rol is the source of truth at registration time.
func (s *partijPerIdentiteit) verversAdressen(ctx context.Context, partij *domain.Partij, rol *domain.Rol) error {
	expanded, err := s.deps.Klanten.GetPartij(ctx, partij.UUID, true)
	if err != nil {
		return fmt.Errorf("fetch partij %s with adressen: %w", partij.UUID, err)
	}

	for _, adres := range expanded.DigitaleAdressen {
		if err := s.deps.Klanten.DeleteDigitaalAdres(ctx, adres.UUID); err != nil {
			return fmt.Errorf("delete digitaal adres %s: %w", adres.UUID, err)
		}
	}

	log.Info().Str("partij", partij.UUID).Int("verwijderd", len(expanded.DigitaleAdressen)).
		Msg("bestaande adressen ververst")
	return s.persistVoorkeur(ctx, partij.UUID, rol.Email(), rol.Telefoonnummer(), VoorkeurGeen)
}

package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/opengemeente/klantsync/internal/domain"
)

// contactPerRolMetFormulier is the two-phase, form-aware variant. The phases
// are distinct pipeline invocations linked by a re-entrant notification, not
// a direct call:
//
//   - fase aanmaken: the rol has no betrokkene yet. A bare partij (no
//     addresses) is created with a temporary identity, and the betrokkene is
//     written onto the rol. Because the rol update is delete+recreate, the
//     zaken service publishes a second "rol created" notification for the
//     same logical rol.
//   - fase verrijken: that second notification arrives and the rol now
//     carries a betrokkene. The partij is fetched by that reference, the
//     owning zaak reveals the form-submission reference, and the submitted
//     form supplies the contact details and channel preference.
//
// The gate between the phases is exactly "does the rol carry a betrokkene":
// fase verrijken must be fully re-derivable from rol and zaak state alone.
type contactPerRolMetFormulier struct {
	base
}

func (s *contactPerRolMetFormulier) Register(ctx context.Context, n *domain.Notificatie) error {
	rol, err := s.haalRegistreerbareRol(ctx, n)
	if err != nil || rol == nil {
		return err
	}

	if rol.Betrokkene == "" {
		return s.faseAanmaken(ctx, rol)
	}
	return s.faseVerrijken(ctx, rol)
}

// faseAanmaken creates the bare partij (pair) and attaches it to the rol. An
// organisatie gets the same pair as the other strategies: the organisatie
// partij plus a contactpersoon, because the organisatie itself never carries
// digital addresses; the contactpersoon is what the rol links to and what
// fase verrijken enriches. The rol update here is what triggers fase
// verrijken; it is never repeated once a betrokkene exists.
func (s *contactPerRolMetFormulier) faseAanmaken(ctx context.Context, rol *domain.Rol) error {
	var partij *domain.Partij
	if rol.BetrokkeneType.IsOrganisatie() {
		organisatie, err := s.deps.Klanten.CreatePartij(ctx, OrganisatiePartij(rol))
		if err != nil {
			return fmt.Errorf("create organisatie partij: %w", err)
		}
		if kvk := rol.KvkNummer(); kvk != "" {
			if err := s.deps.Klanten.CreatePartijIdentificator(ctx, KvkIdentificator(organisatie.UUID, kvk)); err != nil {
				return fmt.Errorf("create kvk identificator: %w", err)
			}
		}
		partij, err = s.deps.Klanten.CreatePartij(ctx, ContactpersoonPartij(rol, organisatie))
		if err != nil {
			return fmt.Errorf("create contactpersoon partij: %w", err)
		}
	} else {
		var err error
		partij, err = s.deps.Klanten.CreatePartij(ctx, PersoonPartij(rol))
		if err != nil {
			return fmt.Errorf("create partij: %w", err)
		}
	}

	if err := s.deps.Klanten.CreatePartijIdentificator(ctx, tijdelijkeIdentificator(partij.UUID, rol)); err != nil {
		return fmt.Errorf("create tijdelijke identificator: %w", err)
	}

	log.Info().Str("partij", partij.UUID).Str("rol", rol.URL).Msg("kale partij aangemaakt, rol wordt gekoppeld")
	return s.koppelBetrokkene(ctx, rol.URL, partij.URL)
}

// faseVerrijken resolves the preferred address for the partij created in fase
// aanmaken, using the submitted form where available. No rol update here.
func (s *contactPerRolMetFormulier) faseVerrijken(ctx context.Context, rol *domain.Rol) error {
	partijUUID := uuidFromURL(rol.Betrokkene)
	partij, err := s.deps.Klanten.GetPartij(ctx, partijUUID, true)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("partij", partijUUID).Msg("gekoppelde partij no longer exists, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("fetch partij %s: %w", partijUUID, err)
	}
	if len(partij.DigitaleAdressen) > 0 {
		// Enrichment already ran for this partij.
		log.Debug().Str("partij", partijUUID).Msg("partij already has adressen, skipping")
		return nil
	}

	sub, err := s.haalSubmission(ctx, rol)
	if err != nil {
		return err
	}

	email, telefoonnummer := rol.Email(), rol.Telefoonnummer()
	if sub != nil {
		if e, t := ContactFromSubmission(sub, s.opts.Velden); e != "" || t != "" {
			if e != "" {
				email = e
			}
			if t != "" {
				telefoonnummer = t
			}
		}
	}
	voorkeur := VoorkeurFromSubmission(sub, s.opts.Velden)

	return s.persistVoorkeur(ctx, partij.UUID, email, telefoonnummer, voorkeur)
}

// haalSubmission locates the form submission via the zaak's
// formulier-referentie eigenschap. A zaak without one, or a submission that
// is gone, is not an error: the rol's own contact data still applies.
func (s *contactPerRolMetFormulier) haalSubmission(ctx context.Context, rol *domain.Rol) (*domain.Submission, error) {
	zaak, err := s.deps.Zaken.GetZaak(ctx, rol.Zaak)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("zaak", rol.Zaak).Msg("zaak no longer exists, enriching from rol data only")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch zaak %s: %w", rol.Zaak, err)
	}

	referentie, ok := zaak.Eigenschap(s.opts.FormulierEigenschap)
	if !ok || referentie == "" {
		log.Debug().Str("zaak", zaak.URL).Msg("zaak has no formulier referentie")
		return nil, nil
	}

	userID, userType := rol.Bsn(), "bsn"
	if userID == "" {
		userID, userType = rol.KvkNummer(), "kvk"
	}
	if userID == "" {
		log.Warn().Str("rol", rol.URL).Msg("no bsn or kvk to fetch submission with")
		return nil, nil
	}

	sub, err := s.deps.Submissions.GetSubmission(ctx, referentie, userID, userType)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("referentie", referentie).Msg("submission not found, enriching from rol data only")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch submission %s: %w", referentie, err)
	}
	return sub, nil
}

// tijdelijkeIdentificator builds the temporary identity binding for a partij
// created before its addresses are known.
func tijdelijkeIdentificator(partijUUID string, rol *domain.Rol) domain.PartijIdentificator {
	objecttype := domain.ObjecttypeNatuurlijkPersoon
	soortObjectID := domain.SoortObjectIDBsn
	objectID := rol.Bsn()
	if objectID == "" {
		objecttype = domain.ObjecttypeNietNatuurlijkPersoon
		soortObjectID = domain.SoortObjectIDPseudoID
		objectID = PseudoID(rol.KvkNummer(), rol.ContactNaam())
	}
	return domain.PartijIdentificator{
		IdentificeerdePartij: domain.PartijRef{UUID: partijUUID},
		Identificator: domain.IdentificatorWaarden{
			CodeObjecttype:    objecttype,
			CodeSoortObjectID: soortObjectID,
			ObjectID:          objectID,
			CodeRegister:      domain.RegisterTijdelijk,
		},
	}
}

// uuidFromURL extracts the trailing uuid segment from a resource URL.
func uuidFromURL(url string) string {
	url = strings.TrimSuffix(url, "/")
	if i := strings.LastIndex(url, "/"); i >= 0 {
		return url[i+1:]
	}
	return url
}

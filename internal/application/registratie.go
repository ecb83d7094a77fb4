package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/opengemeente/klantsync/internal/domain"
)

// base carries the shared registration skeleton. Variants embed it and
// implement only the partij-determination and address steps.
type base struct {
	opts Options
	deps Deps
}

func (b *base) ValidateNotificatie(n *domain.Notificatie) []string {
	return n.RegistrationIssues(b.opts.ZakenRoot)
}

// haalRegistreerbareRol fetches the rol and enforces the roltype and
// catalogus whitelists. A nil rol with nil error means "stop silently":
// the rol was deleted in the meantime or is not one we register.
func (b *base) haalRegistreerbareRol(ctx context.Context, n *domain.Notificatie) (*domain.Rol, error) {
	rol, err := b.deps.Zaken.GetRol(ctx, n.ResourceURL)
	if errors.Is(err, domain.ErrNotFound) {
		// Deleted or superseded between notification and processing.
		log.Info().Str("rol", n.ResourceURL).Msg("rol no longer exists, skipping")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch rol %s: %w", n.ResourceURL, err)
	}

	roltype, err := b.deps.Catalogi.GetRolType(ctx, rol.RolType)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("roltype", rol.RolType).Msg("roltype no longer exists, skipping")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch roltype %s: %w", rol.RolType, err)
	}

	if len(b.opts.Catalogi) > 0 && !slices.Contains(b.opts.Catalogi, roltype.Catalogus) {
		log.Debug().Str("catalogus", roltype.Catalogus).Msg("catalogus not whitelisted, skipping")
		return nil, nil
	}
	if !slices.Contains(b.opts.RolTypen, roltype.OmschrijvingGeneriek) {
		log.Debug().Str("omschrijving", roltype.OmschrijvingGeneriek).Msg("roltype not registered, skipping")
		return nil, nil
	}

	return rol, nil
}

// maakAdressen creates the digital addresses for a partij. The POST calls
// are independent and fan out in parallel; the returned slice keeps the
// evaluation order (email first, phone second).
func (b *base) maakAdressen(ctx context.Context, partijUUID, email, telefoonnummer string) ([]domain.DigitaalAdres, error) {
	inputs := DigitaleAdressen(partijUUID, email, telefoonnummer)
	created := make([]domain.DigitaalAdres, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	for i, input := range inputs {
		i, input := i, input
		g.Go(func() error {
			adres, err := b.deps.Klanten.CreateDigitaalAdres(gctx, input)
			if err != nil {
				return fmt.Errorf("create digitaal adres (%s): %w", input.SoortDigitaalAdres, err)
			}
			created[i] = *adres
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return created, nil
}

// persistVoorkeur creates the partij's digital addresses and patches the
// resolved preferred one onto the partij.
func (b *base) persistVoorkeur(ctx context.Context, partijUUID, email, telefoonnummer string, voorkeur Kanaalvoorkeur) error {
	soort, err := ResolveVoorkeur(email, telefoonnummer, voorkeur)
	if err != nil {
		return err
	}

	adressen, err := b.maakAdressen(ctx, partijUUID, email, telefoonnummer)
	if err != nil {
		return err
	}

	for _, adres := range adressen {
		if adres.SoortDigitaalAdres != soort {
			continue
		}
		if err := b.deps.Klanten.SetVoorkeursDigitaalAdres(ctx, partijUUID, adres.UUID); err != nil {
			return fmt.Errorf("set voorkeursadres on partij %s: %w", partijUUID, err)
		}
		log.Debug().Str("partij", partijUUID).Str("soort", string(soort)).Msg("voorkeursadres set")
		return nil
	}
	return fmt.Errorf("resolved voorkeur %s has no created adres on partij %s", soort, partijUUID)
}

// koppelBetrokkene writes the partij reference onto the rol. The zaken API
// has no partial update for the betrokkene field, so the only protocol is
// GET, DELETE, POST with the reference added and server-assigned fields
// stripped. This is not atomic: if the POST fails after the DELETE, the rol
// is gone from the zaken service. The original body is therefore logged at
// error level before the error is re-raised, so a human can recreate it.
//
// Every attempt re-reads current state first; the rol may have changed or
// already been recreated by a previous partial attempt.
func (b *base) koppelBetrokkene(ctx context.Context, rolURL, betrokkene string) error {
	rol, err := b.deps.Zaken.GetRol(ctx, rolURL)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Str("rol", rolURL).Msg("rol disappeared before betrokkene update, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("re-fetch rol %s before update: %w", rolURL, err)
	}

	rawBody := rol.Raw
	if len(rawBody) == 0 {
		rawBody, _ = json.Marshal(rol)
	}

	var body map[string]any
	if err := json.Unmarshal(rawBody, &body); err != nil {
		return fmt.Errorf("decode rol body %s: %w", rolURL, err)
	}
	for _, veld := range []string{"url", "uuid", "registratiedatum"} {
		delete(body, veld)
	}
	body["betrokkene"] = betrokkene

	if err := b.deps.Zaken.DeleteRol(ctx, rolURL); err != nil {
		return fmt.Errorf("delete rol %s: %w", rolURL, err)
	}

	if _, err := b.deps.Zaken.CreateRol(ctx, body); err != nil {
		log.Error().
			Str("rol", rolURL).
			Str("betrokkene", betrokkene).
			RawJSON("rol_body", rawBody).
			Err(err).
			Msg("rol recreate failed after delete; recreate manually from rol_body")
		return fmt.Errorf("recreate rol %s after delete: %w", rolURL, err)
	}

	log.Info().Str("rol", rolURL).Str("betrokkene", betrokkene).Msg("betrokkene gekoppeld")
	return nil
}

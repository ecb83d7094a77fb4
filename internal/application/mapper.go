package application

import "github.com/opengemeente/klantsync/internal/domain"

// Pure mapping functions from a rol to klantregistratie payloads. Anything
// that needs an API call lives in the strategies, not here.

const voorkeurstaal = "nld"

// PersoonPartij maps a natuurlijk-persoon rol to a partij payload.
func PersoonPartij(rol *domain.Rol) domain.CreatePartijInput {
	return domain.CreatePartijInput{
		SoortPartij:     domain.SoortPersoon,
		IndicatieActief: true,
		Voorkeurstaal:   voorkeurstaal,
		PartijIdentificatie: domain.PartijIdentificatie{
			VolledigeNaam: rol.ContactNaam(),
		},
	}
}

// OrganisatiePartij maps an organisatie rol to a partij payload. The
// organisatie partij itself carries no digital addresses; those go on the
// linked contactpersoon.
func OrganisatiePartij(rol *domain.Rol) domain.CreatePartijInput {
	naam := ""
	if rol.BetrokkeneIdentificatie != nil {
		naam = rol.BetrokkeneIdentificatie.StatutaireNaam
	}
	if naam == "" {
		naam = rol.KvkNummer()
	}
	return domain.CreatePartijInput{
		SoortPartij:     domain.SoortOrganisatie,
		IndicatieActief: true,
		Voorkeurstaal:   voorkeurstaal,
		PartijIdentificatie: domain.PartijIdentificatie{
			Naam: naam,
		},
	}
}

// ContactpersoonPartij maps the rol's contactpersoon to a partij working for
// the given organisatie.
func ContactpersoonPartij(rol *domain.Rol, organisatie *domain.Partij) domain.CreatePartijInput {
	input := domain.CreatePartijInput{
		SoortPartij:     domain.SoortContactpersoon,
		IndicatieActief: true,
		Voorkeurstaal:   voorkeurstaal,
		PartijIdentificatie: domain.PartijIdentificatie{
			VolledigeNaam: rol.ContactNaam(),
		},
	}
	if organisatie != nil {
		input.WerktVoorPartij = &domain.PartijRef{UUID: organisatie.UUID}
	}
	return input
}

// DigitaleAdressen builds the address payloads for a partij: email first,
// phone second, matching the order the channels are evaluated in.
func DigitaleAdressen(partijUUID, email, telefoonnummer string) []domain.DigitaalAdres {
	var adressen []domain.DigitaalAdres
	if email != "" {
		adressen = append(adressen, domain.DigitaalAdres{
			VerstrektDoorPartij: &domain.PartijRef{UUID: partijUUID},
			SoortDigitaalAdres:  domain.AdresEmail,
			Adres:               email,
			Omschrijving:        "E-mailadres",
		})
	}
	if telefoonnummer != "" {
		adressen = append(adressen, domain.DigitaalAdres{
			VerstrektDoorPartij: &domain.PartijRef{UUID: partijUUID},
			SoortDigitaalAdres:  domain.AdresTelefoon,
			Adres:               telefoonnummer,
			Omschrijving:        "Telefoonnummer",
		})
	}
	return adressen
}

// BsnIdentificator binds a citizen number to a partij under the BRP register.
func BsnIdentificator(partijUUID, bsn string) domain.PartijIdentificator {
	return domain.PartijIdentificator{
		IdentificeerdePartij: domain.PartijRef{UUID: partijUUID},
		Identificator: domain.IdentificatorWaarden{
			CodeObjecttype:    domain.ObjecttypeNatuurlijkPersoon,
			CodeSoortObjectID: domain.SoortObjectIDBsn,
			ObjectID:          bsn,
			CodeRegister:      domain.RegisterBRP,
		},
	}
}

// KvkIdentificator binds a company number to a partij under the KVK register.
func KvkIdentificator(partijUUID, kvkNummer string) domain.PartijIdentificator {
	return domain.PartijIdentificator{
		IdentificeerdePartij: domain.PartijRef{UUID: partijUUID},
		Identificator: domain.IdentificatorWaarden{
			CodeObjecttype:    domain.ObjecttypeNietNatuurlijkPersoon,
			CodeSoortObjectID: domain.SoortObjectIDKvkNummer,
			ObjectID:          kvkNummer,
			CodeRegister:      domain.RegisterKVK,
		},
	}
}

// PseudoIdentificator binds a synthetic contact-person identity to a partij
// under the service-owned register, so future lookups by the same pseudo id
// find this partij.
func PseudoIdentificator(partijUUID, pseudoID string) domain.PartijIdentificator {
	return domain.PartijIdentificator{
		IdentificeerdePartij: domain.PartijRef{UUID: partijUUID},
		Identificator: domain.IdentificatorWaarden{
			CodeObjecttype:    domain.ObjecttypeNietNatuurlijkPersoon,
			CodeSoortObjectID: domain.SoortObjectIDPseudoID,
			ObjectID:          pseudoID,
			CodeRegister:      domain.RegisterTijdelijk,
		},
	}
}

package domain

import "encoding/json"

// BetrokkeneType classifies who participates in a zaak through a rol.
type BetrokkeneType string

const (
	BetrokkeneNatuurlijkPersoon       BetrokkeneType = "natuurlijk_persoon"
	BetrokkeneNietNatuurlijkPersoon   BetrokkeneType = "niet_natuurlijk_persoon"
	BetrokkeneVestiging               BetrokkeneType = "vestiging"
	BetrokkeneOrganisatorischeEenheid BetrokkeneType = "organisatorische_eenheid"
	BetrokkeneMedewerker              BetrokkeneType = "medewerker"
)

// IsOrganisatie reports whether the betrokkene is a company-like party, which
// gets a separate contactpersoon partij carrying the digital addresses.
func (t BetrokkeneType) IsOrganisatie() bool {
	return t == BetrokkeneNietNatuurlijkPersoon || t == BetrokkeneVestiging
}

// Contactpersoon is the contact block the zaken service stores on a rol.
type Contactpersoon struct {
	Naam           string `json:"naam"`
	Emailadres     string `json:"emailadres,omitempty"`
	Telefoonnummer string `json:"telefoonnummer,omitempty"`
	Functie        string `json:"functie,omitempty"`
}

// BetrokkeneIdentificatie carries the external identity of the betrokkene.
// Which fields are set depends on BetrokkeneType.
type BetrokkeneIdentificatie struct {
	// InpBsn is the citizen number of a natuurlijk persoon.
	InpBsn string `json:"inpBsn,omitempty"`
	// InnNnpID is the KVK number of a niet-natuurlijk persoon.
	InnNnpID string `json:"innNnpId,omitempty"`
	// AnnIdentificatie is a fallback identification for parties without an
	// official register number.
	AnnIdentificatie         string `json:"annIdentificatie,omitempty"`
	StatutaireNaam           string `json:"statutaireNaam,omitempty"`
	VestigingsNummer         string `json:"vestigingsNummer,omitempty"`
	Voorletters              string `json:"voorletters,omitempty"`
	VoorvoegselGeslachtsnaam string `json:"voorvoegselGeslachtsnaam,omitempty"`
	Geslachtsnaam            string `json:"geslachtsnaam,omitempty"`
}

// Rol is a participation of a person or organization in a zaak.
type Rol struct {
	URL     string `json:"url"`
	UUID    string `json:"uuid"`
	Zaak    string `json:"zaak"`
	RolType string `json:"roltype"`
	// Betrokkene links the rol to its registered partij. A non-empty value
	// means registration already completed; this is the primary idempotence
	// guard, independent of the message-level processed store.
	Betrokkene              string                   `json:"betrokkene,omitempty"`
	BetrokkeneType          BetrokkeneType           `json:"betrokkeneType"`
	Roltoelichting          string                   `json:"roltoelichting,omitempty"`
	Registratiedatum        string                   `json:"registratiedatum,omitempty"`
	Contactpersoon          *Contactpersoon          `json:"contactpersoonRol,omitempty"`
	BetrokkeneIdentificatie *BetrokkeneIdentificatie `json:"betrokkeneIdentificatie,omitempty"`

	// Raw is the untouched response body the rol was decoded from. The
	// destructive update protocol re-posts this body (minus server-assigned
	// fields), so fields this struct does not model survive recreation.
	Raw json.RawMessage `json:"-"`
}

// Bsn returns the citizen number, if any.
func (r *Rol) Bsn() string {
	if r.BetrokkeneIdentificatie == nil {
		return ""
	}
	return r.BetrokkeneIdentificatie.InpBsn
}

// KvkNummer returns the company number, falling back to the generic
// annIdentificatie when the register number is absent.
func (r *Rol) KvkNummer() string {
	if r.BetrokkeneIdentificatie == nil {
		return ""
	}
	if r.BetrokkeneIdentificatie.InnNnpID != "" {
		return r.BetrokkeneIdentificatie.InnNnpID
	}
	return r.BetrokkeneIdentificatie.AnnIdentificatie
}

// ContactNaam returns the display name of the person to reach: the rol's
// contactpersoon when present, otherwise the betrokkene's own surname.
func (r *Rol) ContactNaam() string {
	if r.Contactpersoon != nil && r.Contactpersoon.Naam != "" {
		return r.Contactpersoon.Naam
	}
	if r.BetrokkeneIdentificatie == nil {
		return ""
	}
	naam := r.BetrokkeneIdentificatie.Geslachtsnaam
	if v := r.BetrokkeneIdentificatie.VoorvoegselGeslachtsnaam; v != "" {
		naam = v + " " + naam
	}
	if v := r.BetrokkeneIdentificatie.Voorletters; v != "" {
		naam = v + " " + naam
	}
	return naam
}

// Email returns the rol's email address, if any.
func (r *Rol) Email() string {
	if r.Contactpersoon == nil {
		return ""
	}
	return r.Contactpersoon.Emailadres
}

// Telefoonnummer returns the rol's phone number, if any.
func (r *Rol) Telefoonnummer() string {
	if r.Contactpersoon == nil {
		return ""
	}
	return r.Contactpersoon.Telefoonnummer
}

// RolType describes the kind of participation a rol represents.
type RolType struct {
	URL                  string `json:"url"`
	ZaakType             string `json:"zaaktype"`
	OmschrijvingGeneriek string `json:"omschrijvingGeneriek"`
	Catalogus            string `json:"catalogus,omitempty"`
}

// ZaakEigenschap is a named property value on a zaak.
type ZaakEigenschap struct {
	Naam   string `json:"naam"`
	Waarde string `json:"waarde"`
}

// Zaak is the case a rol belongs to, with its eigenschappen expanded.
type Zaak struct {
	URL           string           `json:"url"`
	UUID          string           `json:"uuid"`
	Identificatie string           `json:"identificatie"`
	Eigenschappen []ZaakEigenschap `json:"eigenschappen,omitempty"`
}

// Eigenschap looks up a property value by name.
func (z *Zaak) Eigenschap(naam string) (string, bool) {
	for _, e := range z.Eigenschappen {
		if e.Naam == naam {
			return e.Waarde, true
		}
	}
	return "", false
}

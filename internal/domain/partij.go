package domain

// SoortPartij classifies a partij in the klantregistratie.
type SoortPartij string

const (
	SoortPersoon        SoortPartij = "persoon"
	SoortOrganisatie    SoortPartij = "organisatie"
	SoortContactpersoon SoortPartij = "contactpersoon"
)

// SoortDigitaalAdres classifies a digitaal adres.
type SoortDigitaalAdres string

const (
	AdresEmail    SoortDigitaalAdres = "email"
	AdresTelefoon SoortDigitaalAdres = "telefoonnummer"
	AdresOverig   SoortDigitaalAdres = "overig"
)

// Identity register codes used on partij-identificatoren.
const (
	RegisterBRP = "brp"
	RegisterKVK = "kvk"
	// RegisterTijdelijk marks a service-owned synthetic identity, used for
	// pseudo ids and pre-registration placeholders.
	RegisterTijdelijk = "tijdelijk"

	ObjecttypeNatuurlijkPersoon     = "natuurlijk_persoon"
	ObjecttypeNietNatuurlijkPersoon = "niet_natuurlijk_persoon"

	SoortObjectIDBsn       = "bsn"
	SoortObjectIDKvkNummer = "kvkNummer"
	SoortObjectIDPseudoID  = "pseudoId"
)

// PartijRef is a uuid reference to another registration resource.
type PartijRef struct {
	UUID string `json:"uuid"`
}

// PartijIdentificatie is the naming block inside a partij. Exactly one of the
// name fields applies, depending on the soort.
type PartijIdentificatie struct {
	// VolledigeNaam names a persoon or contactpersoon.
	VolledigeNaam string `json:"volledigeNaam,omitempty"`
	// Naam names an organisatie.
	Naam string `json:"naam,omitempty"`
}

// Partij is a contact record in the klantregistratie.
type Partij struct {
	URL                    string              `json:"url,omitempty"`
	UUID                   string              `json:"uuid"`
	SoortPartij            SoortPartij         `json:"soortPartij"`
	IndicatieActief        bool                `json:"indicatieActief"`
	IndicatieGeheimhouding bool                `json:"indicatieGeheimhouding"`
	Voorkeurstaal          string              `json:"voorkeurstaal,omitempty"`
	VoorkeursDigitaalAdres *PartijRef          `json:"voorkeursDigitaalAdres,omitempty"`
	PartijIdentificatie    PartijIdentificatie `json:"partijIdentificatie"`
	// DigitaleAdressen is populated only when fetched with expand.
	DigitaleAdressen []DigitaalAdres `json:"digitaleAdressen,omitempty"`
}

// CreatePartijInput is the payload for registering a new partij.
type CreatePartijInput struct {
	SoortPartij            SoortPartij         `json:"soortPartij"`
	IndicatieActief        bool                `json:"indicatieActief"`
	IndicatieGeheimhouding bool                `json:"indicatieGeheimhouding"`
	Voorkeurstaal          string              `json:"voorkeurstaal"`
	PartijIdentificatie    PartijIdentificatie `json:"partijIdentificatie"`
	// WerktVoorPartij links a contactpersoon to its organisatie.
	WerktVoorPartij *PartijRef `json:"werktVoorPartij,omitempty"`
}

// PartijIdentificator binds an external identity to a partij, both for
// lookup/dedup and for audit.
type PartijIdentificator struct {
	IdentificeerdePartij PartijRef            `json:"identificeerdePartij"`
	Identificator        IdentificatorWaarden `json:"partijIdentificator"`
}

// IdentificatorWaarden is the coded identity value of a partij-identificator.
type IdentificatorWaarden struct {
	CodeObjecttype    string `json:"codeObjecttype"`
	CodeSoortObjectID string `json:"codeSoortObjectId"`
	ObjectID          string `json:"objectId"`
	CodeRegister      string `json:"codeRegister"`
}

// DigitaalAdres is a reachable channel (email, phone) owned by a partij.
type DigitaalAdres struct {
	UUID                string             `json:"uuid,omitempty"`
	VerstrektDoorPartij *PartijRef         `json:"verstrektDoorPartij,omitempty"`
	SoortDigitaalAdres  SoortDigitaalAdres `json:"soortDigitaalAdres"`
	Adres               string             `json:"adres"`
	Omschrijving        string             `json:"omschrijving,omitempty"`
}

// Submission is a form submission fetched from the submission store. The
// submission content itself is opaque JSON; only contact-preference signals
// are extracted from it.
type Submission struct {
	UserID     string         `json:"userId"`
	UserType   string         `json:"userType"`
	Key        string         `json:"key"`
	FormName   string         `json:"formName"`
	Submission map[string]any `json:"submission"`
}

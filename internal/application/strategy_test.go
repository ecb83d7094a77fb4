package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengemeente/klantsync/internal/domain"
)

// --- port fakes ---

type fakeZaken struct {
	rollen    map[string]*domain.Rol
	zaken     map[string]*domain.Zaak
	deleted   []string
	created   []map[string]any
	createErr error
}

func (f *fakeZaken) GetRol(_ context.Context, url string) (*domain.Rol, error) {
	rol, ok := f.rollen[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	kopie := *rol
	return &kopie, nil
}

func (f *fakeZaken) DeleteRol(_ context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeZaken) CreateRol(_ context.Context, body map[string]any) (*domain.Rol, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, body)
	return &domain.Rol{}, nil
}

func (f *fakeZaken) GetZaak(_ context.Context, url string) (*domain.Zaak, error) {
	zaak, ok := f.zaken[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return zaak, nil
}

type fakeCatalogi struct {
	roltypen map[string]*domain.RolType
}

func (f *fakeCatalogi) GetRolType(_ context.Context, url string) (*domain.RolType, error) {
	roltype, ok := f.roltypen[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return roltype, nil
}

type fakeKlanten struct {
	seq             int
	partijen        []domain.CreatePartijInput
	identificatoren []domain.PartijIdentificator
	adressen        []domain.DigitaalAdres
	verwijderd      []string
	voorkeuren      map[string]string
	vindbaar        map[string]*domain.Partij // objectID -> partij
	expanded        map[string]*domain.Partij // uuid -> partij incl. adressen
	lastFindSoort   string
	lastFindObject  string
}

func newFakeKlanten() *fakeKlanten {
	return &fakeKlanten{
		voorkeuren: map[string]string{},
		vindbaar:   map[string]*domain.Partij{},
		expanded:   map[string]*domain.Partij{},
	}
}

func (f *fakeKlanten) GetPartij(_ context.Context, uuid string, _ bool) (*domain.Partij, error) {
	if p, ok := f.expanded[uuid]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeKlanten) FindPartijByIdentificator(_ context.Context, soortObjectID, objectID string) (*domain.Partij, error) {
	f.lastFindSoort, f.lastFindObject = soortObjectID, objectID
	if p, ok := f.vindbaar[objectID]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeKlanten) CreatePartij(_ context.Context, input domain.CreatePartijInput) (*domain.Partij, error) {
	f.seq++
	f.partijen = append(f.partijen, input)
	uuid := fmt.Sprintf("partij-%d", f.seq)
	return &domain.Partij{
		UUID:        uuid,
		URL:         "https://klanten.test/partijen/" + uuid,
		SoortPartij: input.SoortPartij,
	}, nil
}

func (f *fakeKlanten) SetVoorkeursDigitaalAdres(_ context.Context, partijUUID, adresUUID string) error {
	f.voorkeuren[partijUUID] = adresUUID
	return nil
}

func (f *fakeKlanten) CreatePartijIdentificator(_ context.Context, ident domain.PartijIdentificator) error {
	f.identificatoren = append(f.identificatoren, ident)
	return nil
}

func (f *fakeKlanten) CreateDigitaalAdres(_ context.Context, adres domain.DigitaalAdres) (*domain.DigitaalAdres, error) {
	created := adres
	created.UUID = "adres-" + string(adres.SoortDigitaalAdres)
	f.adressen = append(f.adressen, created)
	return &created, nil
}

func (f *fakeKlanten) DeleteDigitaalAdres(_ context.Context, uuid string) error {
	f.verwijderd = append(f.verwijderd, uuid)
	return nil
}

type fakeSubmissions struct {
	subs         map[string]*domain.Submission
	lastUserID   string
	lastUserType string
}

func (f *fakeSubmissions) GetSubmission(_ context.Context, reference, userID, userType string) (*domain.Submission, error) {
	f.lastUserID, f.lastUserType = userID, userType
	if sub, ok := f.subs[reference]; ok {
		return sub, nil
	}
	return nil, domain.ErrNotFound
}

// --- fixtures ---

const (
	rolURL     = "https://zaken.test/rollen/rol-1"
	zaakURL    = "https://zaken.test/zaken/zaak-1"
	rolTypeURL = "https://catalogi.test/roltypen/rt-1"
	catalogus  = "https://catalogi.test/catalogussen/cat-1"
)

func testOpts() Options {
	return Options{
		ZakenRoot:           "https://zaken.test",
		RolTypen:            []string{"initiator"},
		UpdateRol:           true,
		FormulierEigenschap: "formulier_referentie",
		Velden:              testVelden(),
	}
}

func testRol() *domain.Rol {
	rol := persoonRol()
	rol.URL = rolURL
	rol.Zaak = zaakURL
	rol.RolType = rolTypeURL
	return rol
}

func testDeps(rol *domain.Rol) (Deps, *fakeZaken, *fakeKlanten, *fakeSubmissions) {
	zaken := &fakeZaken{
		rollen: map[string]*domain.Rol{},
		zaken:  map[string]*domain.Zaak{},
	}
	if rol != nil {
		zaken.rollen[rol.URL] = rol
	}
	catalogi := &fakeCatalogi{roltypen: map[string]*domain.RolType{
		rolTypeURL: {URL: rolTypeURL, OmschrijvingGeneriek: "initiator", Catalogus: catalogus},
	}}
	klanten := newFakeKlanten()
	submissions := &fakeSubmissions{subs: map[string]*domain.Submission{}}
	return Deps{Zaken: zaken, Catalogi: catalogi, Klanten: klanten, Submissions: submissions}, zaken, klanten, submissions
}

func notificatieVoor(rol *domain.Rol) *domain.Notificatie {
	return &domain.Notificatie{
		Kanaal:      domain.KanaalZaken,
		HoofdObject: zaakURL,
		Resource:    domain.ResourceRol,
		ResourceURL: rol.URL,
		Actie:       domain.ActieCreate,
	}
}

// --- selector ---

func TestNewStrategy(t *testing.T) {
	deps, _, _, _ := testDeps(nil)

	assert.IsType(t, &contactPerRol{}, NewStrategy(StrategieContactPerRol, testOpts(), deps))
	assert.IsType(t, &partijPerIdentiteit{}, NewStrategy(StrategiePartijPerIdentiteit, testOpts(), deps))
	assert.IsType(t, &contactPerRolMetFormulier{}, NewStrategy(StrategieContactPerRolMetFormulier, testOpts(), deps))

	dryRun, ok := NewStrategy(StrategieContactPerRolDryRun, testOpts(), deps).(*contactPerRol)
	require.True(t, ok)
	assert.True(t, dryRun.dryRun)

	// Unknown names fall back deterministically.
	fallback, ok := NewStrategy("iets-onbekends", testOpts(), deps).(*contactPerRol)
	require.True(t, ok)
	assert.False(t, fallback.dryRun)
}

func TestValidateNotificatie(t *testing.T) {
	deps, _, _, _ := testDeps(nil)
	strategy := NewStrategy(StrategieContactPerRol, testOpts(), deps)

	n := notificatieVoor(testRol())
	assert.Empty(t, strategy.ValidateNotificatie(n))

	n.Actie = domain.ActieUpdate
	assert.NotEmpty(t, strategy.ValidateNotificatie(n))
}

// --- contact-per-rol ---

func TestContactPerRol_EndToEnd(t *testing.T) {
	rol := testRol()
	deps, zaken, klanten, _ := testDeps(rol)
	strategy := NewStrategy(StrategieContactPerRol, testOpts(), deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	require.Len(t, klanten.partijen, 1)
	assert.Equal(t, domain.SoortPersoon, klanten.partijen[0].SoortPartij)
	assert.Equal(t, "H. de Jong", klanten.partijen[0].PartijIdentificatie.VolledigeNaam)

	require.Len(t, klanten.identificatoren, 1)
	assert.Equal(t, "999999333", klanten.identificatoren[0].Identificator.ObjectID)
	assert.Equal(t, domain.RegisterBRP, klanten.identificatoren[0].Identificator.CodeRegister)

	require.Len(t, klanten.adressen, 2)
	assert.Equal(t, domain.AdresEmail, klanten.adressen[0].SoortDigitaalAdres)
	assert.Equal(t, domain.AdresTelefoon, klanten.adressen[1].SoortDigitaalAdres)

	// Both channels present, no explicit voorkeur: email wins.
	assert.Equal(t, "adres-email", klanten.voorkeuren["partij-1"])

	// The rol update is delete + recreate with the betrokkene added.
	require.Len(t, zaken.deleted, 1)
	require.Len(t, zaken.created, 1)
	assert.Equal(t, "https://klanten.test/partijen/partij-1", zaken.created[0]["betrokkene"])
	assert.NotContains(t, zaken.created[0], "uuid")
	assert.NotContains(t, zaken.created[0], "url")
}

func TestContactPerRol_AlreadyLinked(t *testing.T) {
	rol := testRol()
	rol.Betrokkene = "https://klanten.test/partijen/bestaand"
	deps, zaken, klanten, _ := testDeps(rol)
	strategy := NewStrategy(StrategieContactPerRol, testOpts(), deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	assert.Empty(t, klanten.partijen)
	assert.Empty(t, zaken.deleted)
}

func TestContactPerRol_RolVerdwenen(t *testing.T) {
	rol := testRol()
	deps, _, klanten, _ := testDeps(nil) // rol not stored: 404
	strategy := NewStrategy(StrategieContactPerRol, testOpts(), deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))
	assert.Empty(t, klanten.partijen)
}

func TestContactPerRol_CatalogusNietToegestaan(t *testing.T) {
	rol := testRol()
	deps, _, klanten, _ := testDeps(rol)
	opts := testOpts()
	opts.Catalogi = []string{"https://catalogi.test/catalogussen/andere"}
	strategy := NewStrategy(StrategieContactPerRol, opts, deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))
	assert.Empty(t, klanten.partijen)
	assert.Empty(t, klanten.adressen)
}

func TestContactPerRol_RolTypeNietGeregistreerd(t *testing.T) {
	rol := testRol()
	deps, _, klanten, _ := testDeps(rol)
	opts := testOpts()
	opts.RolTypen = []string{"behandelaar"}
	strategy := NewStrategy(StrategieContactPerRol, opts, deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))
	assert.Empty(t, klanten.partijen)
}

func TestContactPerRol_DryRun(t *testing.T) {
	rol := testRol()
	deps, zaken, klanten, _ := testDeps(rol)
	strategy := NewStrategy(StrategieContactPerRolDryRun, testOpts(), deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	// Full registration ran, but the rol was never touched.
	assert.Len(t, klanten.partijen, 1)
	assert.Empty(t, zaken.deleted)
	assert.Empty(t, zaken.created)
}

func TestContactPerRol_Organisatie(t *testing.T) {
	rol := testRol()
	rol.BetrokkeneType = domain.BetrokkeneNietNatuurlijkPersoon
	rol.BetrokkeneIdentificatie = &domain.BetrokkeneIdentificatie{
		InnNnpID:       "69599084",
		StatutaireNaam: "Bakkerij de Jong B.V.",
	}
	deps, _, klanten, _ := testDeps(rol)
	strategy := NewStrategy(StrategieContactPerRol, testOpts(), deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	require.Len(t, klanten.partijen, 2)
	assert.Equal(t, domain.SoortOrganisatie, klanten.partijen[0].SoortPartij)
	assert.Equal(t, domain.SoortContactpersoon, klanten.partijen[1].SoortPartij)
	require.NotNil(t, klanten.partijen[1].WerktVoorPartij)
	assert.Equal(t, "partij-1", klanten.partijen[1].WerktVoorPartij.UUID)

	require.Len(t, klanten.identificatoren, 1)
	assert.Equal(t, domain.RegisterKVK, klanten.identificatoren[0].Identificator.CodeRegister)
	assert.Equal(t, "partij-1", klanten.identificatoren[0].IdentificeerdePartij.UUID)

	// The organisatie partij holds no channels; the contactpersoon does.
	require.Len(t, klanten.adressen, 2)
	assert.Equal(t, "partij-2", klanten.adressen[0].VerstrektDoorPartij.UUID)
}

func TestContactPerRol_GeenContactgegevens(t *testing.T) {
	rol := testRol()
	rol.Contactpersoon = &domain.Contactpersoon{Naam: "H. de Jong"}
	deps, _, _, _ := testDeps(rol)
	strategy := NewStrategy(StrategieContactPerRol, testOpts(), deps)

	err := strategy.Register(context.Background(), notificatieVoor(rol))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGeenContactgegevens))
}

// --- destructive rol update ---

func TestKoppelBetrokkene_RecreateFailure(t *testing.T) {
	rol := testRol()
	deps, zaken, _, _ := testDeps(rol)
	zaken.createErr = errors.New("zaken unavailable")

	var buf bytes.Buffer
	orig := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = orig }()

	strategy := NewStrategy(StrategieContactPerRol, testOpts(), deps)
	err := strategy.Register(context.Background(), notificatieVoor(rol))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "recreate rol")
	require.Len(t, zaken.deleted, 1)

	// The original rol body must be in the error log for manual recovery.
	assert.Contains(t, buf.String(), "rol_body")
	assert.Contains(t, buf.String(), "999999333")
	assert.Contains(t, buf.String(), rolURL)
}

// --- partij-per-identiteit ---

func TestPartijPerIdentiteit_NieuwePartij(t *testing.T) {
	rol := testRol()
	deps, zaken, klanten, _ := testDeps(rol)
	strategy := NewStrategy(StrategiePartijPerIdentiteit, testOpts(), deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	assert.Equal(t, domain.SoortObjectIDBsn, klanten.lastFindSoort)
	assert.Equal(t, "999999333", klanten.lastFindObject)

	require.Len(t, klanten.partijen, 1)
	require.Len(t, klanten.identificatoren, 1)
	assert.Equal(t, domain.RegisterBRP, klanten.identificatoren[0].Identificator.CodeRegister)
	assert.Len(t, klanten.adressen, 2)
	require.Len(t, zaken.created, 1)
}

func TestPartijPerIdentiteit_BestaandePartij(t *testing.T) {
	rol := testRol()
	deps, zaken, klanten, _ := testDeps(rol)

	bestaand := &domain.Partij{
		UUID: "partij-9",
		URL:  "https://klanten.test/partijen/partij-9",
	}
	klanten.vindbaar["999999333"] = bestaand
	klanten.expanded["partij-9"] = &domain.Partij{
		UUID: "partij-9",
		DigitaleAdressen: []domain.DigitaalAdres{
			{UUID: "oud-1", SoortDigitaalAdres: domain.AdresEmail, Adres: "oud@x.com"},
			{UUID: "oud-2", SoortDigitaalAdres: domain.AdresTelefoon, Adres: "0687654321"},
		},
	}

	strategy := NewStrategy(StrategiePartijPerIdentiteit, testOpts(), deps)
	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	// Full refresh: no new partij, old addresses gone, new ones created.
	assert.Empty(t, klanten.partijen)
	assert.ElementsMatch(t, []string{"oud-1", "oud-2"}, klanten.verwijderd)
	assert.Len(t, klanten.adressen, 2)
	assert.Equal(t, "adres-email", klanten.voorkeuren["partij-9"])

	require.Len(t, zaken.created, 1)
	assert.Equal(t, bestaand.URL, zaken.created[0]["betrokkene"])
}

func TestPartijPerIdentiteit_PseudoIdentiteit(t *testing.T) {
	rol := testRol()
	rol.BetrokkeneType = domain.BetrokkeneNietNatuurlijkPersoon
	rol.BetrokkeneIdentificatie = &domain.BetrokkeneIdentificatie{InnNnpID: "69599084"}
	deps, _, klanten, _ := testDeps(rol)

	strategy := NewStrategy(StrategiePartijPerIdentiteit, testOpts(), deps)
	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	assert.Equal(t, domain.SoortObjectIDPseudoID, klanten.lastFindSoort)
	assert.Equal(t, PseudoID("69599084", "H. de Jong"), klanten.lastFindObject)

	// Organisatie + contactpersoon, kvk binding + pseudo binding.
	assert.Len(t, klanten.partijen, 2)
	require.Len(t, klanten.identificatoren, 2)
	assert.Equal(t, domain.RegisterKVK, klanten.identificatoren[0].Identificator.CodeRegister)
	assert.Equal(t, domain.RegisterTijdelijk, klanten.identificatoren[1].Identificator.CodeRegister)
}

// --- contact-per-rol-met-formulier ---

func TestMetFormulier_FaseAanmaken(t *testing.T) {
	rol := testRol()
	deps, zaken, klanten, _ := testDeps(rol)
	strategy := NewStrategy(StrategieContactPerRolMetFormulier, testOpts(), deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	// Bare partij with a temporary identity, no addresses yet.
	require.Len(t, klanten.partijen, 1)
	assert.Empty(t, klanten.adressen)
	require.Len(t, klanten.identificatoren, 1)
	assert.Equal(t, domain.RegisterTijdelijk, klanten.identificatoren[0].Identificator.CodeRegister)
	assert.Equal(t, "999999333", klanten.identificatoren[0].Identificator.ObjectID)

	// The rol update triggers the second notification for fase verrijken.
	require.Len(t, zaken.created, 1)
	assert.Equal(t, "https://klanten.test/partijen/partij-1", zaken.created[0]["betrokkene"])
}

func TestMetFormulier_FaseAanmaken_Organisatie(t *testing.T) {
	rol := testRol()
	rol.BetrokkeneType = domain.BetrokkeneNietNatuurlijkPersoon
	rol.BetrokkeneIdentificatie = &domain.BetrokkeneIdentificatie{
		InnNnpID:       "69599084",
		StatutaireNaam: "Bakkerij de Jong B.V.",
	}
	deps, zaken, klanten, _ := testDeps(rol)
	strategy := NewStrategy(StrategieContactPerRolMetFormulier, testOpts(), deps)

	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	// Same pair as the other strategies: the organisatie carries no channels,
	// so the contactpersoon is what the rol links to and what gets enriched.
	require.Len(t, klanten.partijen, 2)
	assert.Equal(t, domain.SoortOrganisatie, klanten.partijen[0].SoortPartij)
	assert.Equal(t, domain.SoortContactpersoon, klanten.partijen[1].SoortPartij)
	assert.Empty(t, klanten.adressen)

	require.Len(t, klanten.identificatoren, 2)
	assert.Equal(t, domain.RegisterKVK, klanten.identificatoren[0].Identificator.CodeRegister)
	assert.Equal(t, "partij-1", klanten.identificatoren[0].IdentificeerdePartij.UUID)
	assert.Equal(t, domain.RegisterTijdelijk, klanten.identificatoren[1].Identificator.CodeRegister)
	assert.Equal(t, "partij-2", klanten.identificatoren[1].IdentificeerdePartij.UUID)

	require.Len(t, zaken.created, 1)
	assert.Equal(t, "https://klanten.test/partijen/partij-2", zaken.created[0]["betrokkene"])
}

func TestMetFormulier_FaseVerrijken(t *testing.T) {
	rol := testRol()
	rol.Betrokkene = "https://klanten.test/partijen/partij-7"
	deps, zaken, klanten, submissions := testDeps(rol)

	klanten.expanded["partij-7"] = &domain.Partij{UUID: "partij-7"}
	zaken.zaken[zaakURL] = &domain.Zaak{
		URL: zaakURL,
		Eigenschappen: []domain.ZaakEigenschap{
			{Naam: "formulier_referentie", Waarde: "OF-123"},
		},
	}
	submissions.subs["OF-123"] = &domain.Submission{
		Submission: map[string]any{"contactVoorkeur": "sms"},
	}

	strategy := NewStrategy(StrategieContactPerRolMetFormulier, testOpts(), deps)
	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	// Submission fetched on behalf of the citizen.
	assert.Equal(t, "999999333", submissions.lastUserID)
	assert.Equal(t, "bsn", submissions.lastUserType)

	// Explicit sms voorkeur from the form wins over the email default.
	assert.Len(t, klanten.adressen, 2)
	assert.Equal(t, "adres-telefoonnummer", klanten.voorkeuren["partij-7"])

	// No partij creation and no rol update in this phase.
	assert.Empty(t, klanten.partijen)
	assert.Empty(t, zaken.deleted)
}

func TestMetFormulier_FaseVerrijken_AlVerrijkt(t *testing.T) {
	rol := testRol()
	rol.Betrokkene = "https://klanten.test/partijen/partij-7"
	deps, _, klanten, _ := testDeps(rol)

	klanten.expanded["partij-7"] = &domain.Partij{
		UUID: "partij-7",
		DigitaleAdressen: []domain.DigitaalAdres{
			{UUID: "bestaand", SoortDigitaalAdres: domain.AdresEmail},
		},
	}

	strategy := NewStrategy(StrategieContactPerRolMetFormulier, testOpts(), deps)
	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	assert.Empty(t, klanten.adressen)
	assert.Empty(t, klanten.voorkeuren)
}

func TestMetFormulier_ZaakZonderReferentie(t *testing.T) {
	rol := testRol()
	rol.Betrokkene = "https://klanten.test/partijen/partij-7"
	deps, zaken, klanten, _ := testDeps(rol)

	klanten.expanded["partij-7"] = &domain.Partij{UUID: "partij-7"}
	zaken.zaken[zaakURL] = &domain.Zaak{URL: zaakURL}

	strategy := NewStrategy(StrategieContactPerRolMetFormulier, testOpts(), deps)
	require.NoError(t, strategy.Register(context.Background(), notificatieVoor(rol)))

	// Falls back to the rol's own contact data.
	assert.Len(t, klanten.adressen, 2)
	assert.Equal(t, "adres-email", klanten.voorkeuren["partij-7"])
}

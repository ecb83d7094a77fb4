package domain_test

import (
	"testing"
	"time"

	"github.com/opengemeente/klantsync/internal/domain"
)

func testNotificatie() domain.Notificatie {
	return domain.Notificatie{
		Kanaal:       domain.KanaalZaken,
		HoofdObject:  "https://zaken.test/zaken/api/v1/zaken/abc",
		Resource:     domain.ResourceRol,
		ResourceURL:  "https://zaken.test/zaken/api/v1/rollen/def",
		Actie:        domain.ActieCreate,
		Aanmaakdatum: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Kenmerken:    map[string]string{"bronorganisatie": "123456789"},
	}
}

func TestRegistrationIssues_Eligible(t *testing.T) {
	n := testNotificatie()
	if issues := n.RegistrationIssues("https://zaken.test"); len(issues) != 0 {
		t.Fatalf("expected no issues, got %v", issues)
	}
}

func TestRegistrationIssues_Ineligible(t *testing.T) {
	cases := map[string]func(*domain.Notificatie){
		"wrong actie":    func(n *domain.Notificatie) { n.Actie = domain.ActieUpdate },
		"wrong resource": func(n *domain.Notificatie) { n.Resource = "status" },
		"wrong root":     func(n *domain.Notificatie) { n.HoofdObject = "https://elders.test/zaken/abc" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			n := testNotificatie()
			mutate(&n)
			if issues := n.RegistrationIssues("https://zaken.test"); len(issues) == 0 {
				t.Fatal("expected issues, got none")
			}
		})
	}
}

func TestContentHash_StableAndDistinct(t *testing.T) {
	a, b := testNotificatie(), testNotificatie()
	if a.ContentHash() != b.ContentHash() {
		t.Fatal("equal notifications must hash equally")
	}

	b.ResourceURL = "https://zaken.test/zaken/api/v1/rollen/other"
	if a.ContentHash() == b.ContentHash() {
		t.Fatal("different notifications must hash differently")
	}
}

func TestParseNotificatie_Invalid(t *testing.T) {
	if _, err := domain.ParseNotificatie([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// Actie is the action reported by the notificaties service.
type Actie string

const (
	ActieCreate Actie = "create"
	ActieUpdate Actie = "update"
	ActieDelete Actie = "delete"
)

// ResourceRol is the only resource kind this service registers.
const ResourceRol = "rol"

// KanaalZaken is the notification channel the zaken service publishes on.
const KanaalZaken = "zaken"

// Notificatie is the inbound webhook payload from Open Notificaties.
// It is consumed exactly once per content hash and never persisted beyond
// the queue's retention window.
type Notificatie struct {
	Kanaal       string            `json:"kanaal"`
	HoofdObject  string            `json:"hoofdObject"`
	Resource     string            `json:"resource"`
	ResourceURL  string            `json:"resourceUrl"`
	Actie        Actie             `json:"actie"`
	Aanmaakdatum time.Time         `json:"aanmaakdatum"`
	Kenmerken    map[string]string `json:"kenmerken,omitempty"`
}

// RegistrationIssues returns the reasons this notification is not eligible
// for partij registration. An empty slice means "process it".
func (n Notificatie) RegistrationIssues(zaakRoot string) []string {
	var issues []string
	if n.Actie != ActieCreate {
		issues = append(issues, "actie is not create: "+string(n.Actie))
	}
	if n.Resource != ResourceRol {
		issues = append(issues, "resource is not rol: "+n.Resource)
	}
	if zaakRoot != "" && !strings.Contains(n.HoofdObject, zaakRoot) {
		issues = append(issues, "hoofdObject is outside the configured zaken root")
	}
	return issues
}

// ContentHash returns a stable sha256 hex digest of the notification body,
// used as the queue record key and the idempotency marker. The kenmerken map
// is serialized in sorted key order so equal notifications hash equally.
func (n Notificatie) ContentHash() string {
	keys := make([]string, 0, len(n.Kenmerken))
	for k := range n.Kenmerken {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(n.Kanaal)
	b.WriteByte('|')
	b.WriteString(n.HoofdObject)
	b.WriteByte('|')
	b.WriteString(n.Resource)
	b.WriteByte('|')
	b.WriteString(n.ResourceURL)
	b.WriteByte('|')
	b.WriteString(string(n.Actie))
	b.WriteByte('|')
	b.WriteString(n.Aanmaakdatum.UTC().Format(time.RFC3339))
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(n.Kenmerken[k])
	}

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// ParseNotificatie decodes a queued notification message.
func ParseNotificatie(data []byte) (*Notificatie, error) {
	var n Notificatie
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

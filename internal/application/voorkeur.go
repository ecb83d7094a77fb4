package application

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/opengemeente/klantsync/internal/domain"
)

// Kanaalvoorkeur is an explicit contact-channel preference extracted from a
// form submission. Empty means "no preference given".
type Kanaalvoorkeur string

const (
	VoorkeurEmail Kanaalvoorkeur = "email"
	VoorkeurSms   Kanaalvoorkeur = "sms"
	VoorkeurGeen  Kanaalvoorkeur = ""
)

// telefoonnummerPattern matches Dutch phone numbers: 0800/0900 service
// numbers, ten-digit national numbers, international +-prefixed numbers and
// the 14xx municipality numbers.
var telefoonnummerPattern = regexp.MustCompile(
	`^(0[8-9]00[0-9]{4,7})|(0[1-9][0-9]{8})|(\+[0-9]{9,20}|1400|140[0-9]{2,3})$`,
)

// GeldigTelefoonnummer reports whether the value is a usable Dutch phone number.
func GeldigTelefoonnummer(nummer string) bool {
	return nummer != "" && telefoonnummerPattern.MatchString(nummer)
}

// ResolveVoorkeur decides which digital address becomes the preferred one.
// Decision table, in priority order:
//  1. only email available        -> email
//  2. only a valid phone available -> telefoonnummer
//  3. both, explicit email voorkeur -> email
//  4. both, explicit sms voorkeur   -> telefoonnummer
//  5. both, no voorkeur             -> email
//  6. neither                       -> ErrGeenContactgegevens
//
// An invalid phone number counts as absent. There is no silent fallback: a
// rol without any reachable address is an error, not a guess.
func ResolveVoorkeur(email, telefoonnummer string, voorkeur Kanaalvoorkeur) (domain.SoortDigitaalAdres, error) {
	hasEmail := email != ""
	hasTelefoon := GeldigTelefoonnummer(telefoonnummer)

	switch {
	case hasEmail && !hasTelefoon:
		return domain.AdresEmail, nil
	case !hasEmail && hasTelefoon:
		return domain.AdresTelefoon, nil
	case hasEmail && hasTelefoon:
		if voorkeur == VoorkeurSms {
			return domain.AdresTelefoon, nil
		}
		return domain.AdresEmail, nil
	default:
		return "", fmt.Errorf("resolve voorkeur (email=%t, telefoon=%t): %w",
			hasEmail, hasTelefoon, domain.ErrGeenContactgegevens)
	}
}

// VeldenScan holds the ordered form-field-name lists scanned for contact
// signals. The names are guessed per form template and therefore come from
// configuration; first match wins within each list.
type VeldenScan struct {
	// Email and Telefoon name free-text fields holding an address value.
	Email    []string
	Telefoon []string
	// KanaalKeuze names "how should we contact you" fields whose value names
	// a channel.
	KanaalKeuze []string
	// EmailAkkoord names yes/no "may we use email" fields.
	EmailAkkoord []string
}

// VoorkeurFromSubmission scans the submission for an explicit channel
// preference. The KanaalKeuze fields are consulted before the EmailAkkoord
// fields; within each list the first field present in the submission wins.
func VoorkeurFromSubmission(sub *domain.Submission, velden VeldenScan) Kanaalvoorkeur {
	if sub == nil {
		return VoorkeurGeen
	}
	values := flatten(sub.Submission)

	for _, veld := range velden.KanaalKeuze {
		raw, ok := values[veld]
		if !ok {
			continue
		}
		v := strings.ToLower(fmt.Sprint(raw))
		switch {
		case strings.Contains(v, "mail"):
			return VoorkeurEmail
		case strings.Contains(v, "sms"), strings.Contains(v, "telefoon"):
			return VoorkeurSms
		}
	}

	for _, veld := range velden.EmailAkkoord {
		raw, ok := values[veld]
		if !ok {
			continue
		}
		switch v := raw.(type) {
		case bool:
			if v {
				return VoorkeurEmail
			}
			return VoorkeurSms
		case string:
			switch strings.ToLower(v) {
			case "ja", "true", "yes":
				return VoorkeurEmail
			case "nee", "false", "no":
				return VoorkeurSms
			}
		}
	}

	return VoorkeurGeen
}

// ContactFromSubmission extracts email and phone values from the submission's
// free-text fields. First match per list wins.
func ContactFromSubmission(sub *domain.Submission, velden VeldenScan) (email, telefoonnummer string) {
	if sub == nil {
		return "", ""
	}
	values := flatten(sub.Submission)

	for _, veld := range velden.Email {
		if v, ok := values[veld].(string); ok && v != "" {
			email = v
			break
		}
	}
	for _, veld := range velden.Telefoon {
		if v, ok := values[veld].(string); ok && v != "" {
			telefoonnummer = v
			break
		}
	}
	return email, telefoonnummer
}

// flatten collapses nested submission objects into a single field-name map.
// Form templates nest fields per page; the scan lists name leaf fields only.
// Keys are walked in sorted order so a leaf name appearing on two sibling
// pages always resolves to the same value: depth-first, first in key order.
func flatten(sub map[string]any) map[string]any {
	out := make(map[string]any, len(sub))
	var walk func(m map[string]any)
	walk = func(m map[string]any) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if nested, ok := m[k].(map[string]any); ok {
				walk(nested)
				continue
			}
			if _, exists := out[k]; !exists {
				out[k] = m[k]
			}
		}
	}
	walk(sub)
	return out
}

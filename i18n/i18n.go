package i18n

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type ctxKey struct{}

// WithLang stores the request language in ctx.
func WithLang(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LangFromContext returns the stored language or "fr".
func LangFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey{}).(string); ok && v != "" {
		return v
	}
	return "fr"
}

// DetectLanguage picks "en" when the Accept-Language header prefers English, "fr" otherwise.
func DetectLanguage(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if strings.HasPrefix(h, "en") {
		return "en"
	}
	return "fr"
}

var messages = map[string]map[string]string{
	"fr": {
		"required":               "Requis",
		"must_be_positive":       "Doit être positif",
		"out_of_range":           "Hors limites",
		"invalid_choice":         "Valeur invalide",
		"invalid_json":           "Requête invalide.",
		"invalid_id":             "Identifiant invalide.",
		"invalid_credentials":    "Identifiants invalides.",
		"unauthorized":           "Non autorisé.",
		"session_expired":        "Session expirée. Veuillez vous reconnecter.",
		"validation_failed":      "Champs incomplets ou invalides.",
		"invalid_duration":       "Durée invalide.",
		"invalid_status":         "Statut invalide.",
		"invalid_signature":      "Signature invalide.",
		"invalid_link":           "Lien invalide.",
		"client_not_found":       "Client introuvable.",
		"service_not_found":      "Service introuvable.",
		"material_not_found":     "Matériau introuvable.",
		"quote_not_found":        "Devis introuvable.",
		"document_not_found":     "Aucun document n'a encore été généré pour ce devis.",
		"project_not_found":      "Projet introuvable.",
		"not_found":              "Introuvable.",
		"calendar_unavailable":   "Synchronisation calendrier impossible.",
		"google_unconfigured":    "Google Calendar : identifiants non configurés.",
		"calendar_not_connected": "Google Calendar non connecté.",
		"mail_not_configured":    "Envoi d'e-mails non configuré.",
		"client_no_email":        "Le client n'a pas d'adresse e-mail.",
		"already_signed":         "Ce devis a déjà été signé.",
		"error_title":            "Erreur",
		"quote_accepted":         "Devis accepté",
		"quote_accepted_thanks":  "Merci, votre devis est maintenant marqué comme accepté.",
		"quote_already_accepted": "Ce devis était déjà accepté.",
		"download_quote":         "Télécharger le devis",
		"esign_title":            "Signature électronique",
		"signer_name":            "Nom et prénom",
		"clear":                  "Effacer",
		"sign_submit":            "Valider la signature",
		"signature_saved":        "Signature enregistrée, devis accepté.",
		"signature_failed":       "Erreur, signature non enregistrée.",
		"internal_error":         "Erreur interne.",
		"method_not_allowed":     "Méthode non autorisée.",
	},
	"en": {
		"required":               "Required",
		"must_be_positive":       "Must be positive",
		"out_of_range":           "Out of range",
		"invalid_choice":         "Invalid value",
		"invalid_json":           "Invalid request.",
		"invalid_id":             "Invalid identifier.",
		"invalid_credentials":    "Invalid credentials.",
		"unauthorized":           "Unauthorized.",
		"session_expired":        "Session expired. Please sign in again.",
		"validation_failed":      "Missing or invalid fields.",
		"invalid_duration":       "Invalid duration.",
		"invalid_status":         "Invalid status.",
		"invalid_signature":      "Invalid signature.",
		"invalid_link":           "Invalid link.",
		"client_not_found":       "Client not found.",
		"service_not_found":      "Service not found.",
		"material_not_found":     "Material not found.",
		"quote_not_found":        "Quote not found.",
		"document_not_found":     "No document has been generated for this quote yet.",
		"project_not_found":      "Project not found.",
		"not_found":              "Not found.",
		"calendar_unavailable":   "Calendar sync failed.",
		"google_unconfigured":    "Google Calendar: credentials not configured.",
		"calendar_not_connected": "Google Calendar is not connected.",
		"mail_not_configured":    "Email delivery is not configured.",
		"client_no_email":        "The client has no email address.",
		"already_signed":         "This quote has already been signed.",
		"error_title":            "Error",
		"quote_accepted":         "Quote accepted",
		"quote_accepted_thanks":  "Thank you, your quote is now marked as accepted.",
		"quote_already_accepted": "This quote was already accepted.",
		"download_quote":         "Download the quote",
		"esign_title":            "Electronic signature",
		"signer_name":            "Full name",
		"clear":                  "Clear",
		"sign_submit":            "Sign",
		"signature_saved":        "Signature saved, quote accepted.",
		"signature_failed":       "Error, signature not saved.",
		"internal_error":         "Internal error.",
		"method_not_allowed":     "Method not allowed.",
	},
}

// T translates code into lang, falling back to French then to the code itself.
func T(lang, code string) string {
	if m, ok := messages[lang]; ok {
		if s, ok := m[code]; ok {
			return s
		}
	}
	if s, ok := messages["fr"][code]; ok {
		return s
	}
	return code
}

var frMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre"}

// LongDate formats t as "4 mars 2026" (fr) or "March 4, 2026" (en).
func LongDate(lang string, t time.Time) string {
	if lang == "en" {
		return t.Format("January 2, 2006")
	}
	return fmt.Sprintf("%d %s %d", t.Day(), frMonths[t.Month()-1], t.Year())
}

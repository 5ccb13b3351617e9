// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired      = "auth.required"
	KeyAuthInvalidToken  = "auth.invalid_token"
	KeyAuthTokenExpired  = "auth.token_expired"
	KeyAdminAccessDenied = "admin.access_denied"

	// Cars
	KeyCarNotFound = "car.not_found"

	// Sync
	KeySyncStarted    = "sync.started"
	KeySyncInProgress = "sync.in_progress"
	KeySyncImported   = "sync.imported"

	// Validation
	KeyValidationInvalid = "validation.invalid"

	KeyRateLimited = "rate_limit.exceeded"
)

// Label key builders for the normalized vocabularies.
func FuelKey(code string) string { return labelKey("fuel", code) }
func CanonicalFuelKey(code string) string { return labelKey("fuel_canonical", code) }
func TransmissionKey(code string) string { return labelKey("transmission", code) }
func BodyKey(code string) string { return labelKey("body", code) }

func labelKey(group, code string) string {
	if code == "" {
		code = "other"
	}
	return group + "." + code
}

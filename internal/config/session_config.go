package config

import "time"

// SecurityQuestionsMode selects which of the two observed "needs security
// questions" rules is in force. The backend's behaviour is ambiguous here, so
// both are kept behind this switch until the rule is settled with the backend
// owners.
type SecurityQuestionsMode string

const (
	// SecurityQuestionsFlagDriven trusts the token's needsSecurityQuestions flag.
	SecurityQuestionsFlagDriven SecurityQuestionsMode = "flag"
	// SecurityQuestionsAlwaysPrompt prompts every user that has none configured.
	SecurityQuestionsAlwaysPrompt SecurityQuestionsMode = "always"
)

type SessionConfig interface {
	GetExpiryBuffer() time.Duration
	GetSecurityQuestionsMode() SecurityQuestionsMode
}

type Session struct{}

var _ SessionConfig = Session{}

// GetExpiryBuffer returns the window before hard expiry in which a token is
// already treated as needing refresh, so in-flight requests never race the
// actual expiry boundary.
func (Session) GetExpiryBuffer() time.Duration {
	seconds := GetEnv("TOKEN_EXPIRY_BUFFER_SECONDS", "")
	if d, err := time.ParseDuration(seconds + "s"); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}

func (Session) GetSecurityQuestionsMode() SecurityQuestionsMode {
	if GetEnv("SECURITY_QUESTIONS_MODE", "flag") == string(SecurityQuestionsAlwaysPrompt) {
		return SecurityQuestionsAlwaysPrompt
	}
	return SecurityQuestionsFlagDriven
}

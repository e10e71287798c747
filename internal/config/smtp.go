package config

import "os"

// SMTPConfig carries the outbound-mail settings for purchase
// confirmations. When Host is empty the mailer is disabled and the
// booking consumer falls back to logging confirmations.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// LoadSMTPConfig reads SMTP settings from the environment. All values
// are optional; an unset SMTP_HOST disables email delivery entirely.
func LoadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     envInt("SMTP_PORT", 587),
		Username: os.Getenv("SMTP_USER"),
		Password: os.Getenv("SMTP_PASS"),
		From:     envStr("SMTP_FROM", "no-reply@transitbook.example"),
	}
}

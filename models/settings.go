// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Settings section names
const (
	SectionGeneral       = "general"
	SectionSecurity      = "security"
	SectionNotifications = "notifications"
	SectionPerformance   = "performance"
)

type GeneralSettings struct {
	PlatformName        string `json:"platform_name"`
	AdminEmail          string `json:"admin_email"`
	SupportEmail        string `json:"support_email"`
	MaxPollDurationDays int    `json:"max_poll_duration_days"`
	EnableRegistration  bool   `json:"enable_registration"`
	EnableGuestVoting   bool   `json:"enable_guest_voting"`
}

type SecuritySettings struct {
	RequireEmailVerification bool `json:"require_email_verification"`
	EnableTwoFactor          bool `json:"enable_two_factor"`
	PasswordMinLength        int  `json:"password_min_length"`
	SessionTimeoutHours      int  `json:"session_timeout_hours"`
	EnableAuditLog           bool `json:"enable_audit_log"`
	RestrictAdminAccess      bool `json:"restrict_admin_access"`
}

type NotificationSettings struct {
	EmailNotifications    bool `json:"email_notifications"`
	SMSNotifications      bool `json:"sms_notifications"`
	PushNotifications     bool `json:"push_notifications"`
	NotifyOnNewPoll       bool `json:"notify_on_new_poll"`
	NotifyOnElectionStart bool `json:"notify_on_election_start"`
	NotifyOnHighActivity  bool `json:"notify_on_high_activity"`
}

type PerformanceSettings struct {
	EnableCaching       bool `json:"enable_caching"`
	CacheTimeoutSeconds int  `json:"cache_timeout_seconds"`
	MaxConcurrentVotes  int  `json:"max_concurrent_votes"`
	EnableRateLimit     bool `json:"enable_rate_limit"`
	RateLimitPerMinute  int  `json:"rate_limit_per_minute"`
}

type Settings struct {
	General       GeneralSettings      `json:"general"`
	Security      SecuritySettings     `json:"security"`
	Notifications NotificationSettings `json:"notifications"`
	Performance   PerformanceSettings  `json:"performance"`
}

// DefaultSettings returns the values used until an admin saves a section.
func DefaultSettings() Settings {
	return Settings{
		General: GeneralSettings{
			PlatformName:        "VoteHub",
			AdminEmail:          "admin@votehub.com",
			SupportEmail:        "support@votehub.com",
			MaxPollDurationDays: 30,
			EnableRegistration:  true,
			EnableGuestVoting:   false,
		},
		Security: SecuritySettings{
			RequireEmailVerification: true,
			EnableTwoFactor:          false,
			PasswordMinLength:        8,
			SessionTimeoutHours:      24,
			EnableAuditLog:           true,
			RestrictAdminAccess:      true,
		},
		Notifications: NotificationSettings{
			EmailNotifications:    true,
			SMSNotifications:      false,
			PushNotifications:     true,
			NotifyOnNewPoll:       true,
			NotifyOnElectionStart: true,
			NotifyOnHighActivity:  false,
		},
		Performance: PerformanceSettings{
			EnableCaching:       true,
			CacheTimeoutSeconds: 300,
			MaxConcurrentVotes:  1000,
			EnableRateLimit:     true,
			RateLimitPerMinute:  60,
		},
	}
}

// MaxPollDuration converts the general section limit to a duration.
func (s Settings) MaxPollDuration() time.Duration {
	return time.Duration(s.General.MaxPollDurationDays) * 24 * time.Hour
}

// Section returns a pointer to the named section, or nil when unknown.
// Decoding JSON into the returned pointer updates s in place.
func (s *Settings) Section(name string) any {
	switch name {
	case SectionGeneral:
		return &s.General
	case SectionSecurity:
		return &s.Security
	case SectionNotifications:
		return &s.Notifications
	case SectionPerformance:
		return &s.Performance
	}
	return nil
}

// SectionNames lists the sections in display order.
func SectionNames() []string {
	return []string{SectionGeneral, SectionSecurity, SectionNotifications, SectionPerformance}
}

// Validate checks the numeric bounds of every section.
func (s Settings) Validate() error {
	if s.General.PlatformName == "" {
		return invalid("general.platform_name", "is required")
	}
	if s.General.MaxPollDurationDays < 1 || s.General.MaxPollDurationDays > 365 {
		return invalid("general.max_poll_duration_days", "must be between 1 and 365")
	}
	if s.Security.PasswordMinLength < 6 || s.Security.PasswordMinLength > 128 {
		return invalid("security.password_min_length", "must be between 6 and 128")
	}
	if s.Security.SessionTimeoutHours < 1 {
		return invalid("security.session_timeout_hours", "must be positive")
	}
	if s.Performance.CacheTimeoutSeconds < 0 {
		return invalid("performance.cache_timeout_seconds", "must not be negative")
	}
	if s.Performance.MaxConcurrentVotes < 1 {
		return invalid("performance.max_concurrent_votes", "must be positive")
	}
	if s.Performance.RateLimitPerMinute < 1 {
		return invalid("performance.rate_limit_per_minute", "must be positive")
	}
	return nil
}

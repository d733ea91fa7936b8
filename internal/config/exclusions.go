package config

import "strings"

// DefaultExcludedApps returns applications whose window events are never
// imported: password managers, lock screens and credential prompts.
func DefaultExcludedApps() []string {
	return []string{
		// Password managers
		"1Password",
		"Bitwarden",
		"KeePassXC",
		"KeePass",
		"LastPass",
		"Dashlane",
		"Enpass",
		"Keychain Access",
		"Proton Pass",

		// Lock screens & credential prompts
		"loginwindow",
		"LockApp.exe",
		"gnome-screensaver",
		"xscreensaver",
		"i3lock",
		"swaylock",
		"polkit-gnome-authentication-agent-1",
		"pinentry",
		"CredentialUIBroker.exe",
	}
}

// Excludes reports whether events from app are dropped on import. Matching
// ignores case and surrounding whitespace.
func (c ImportConfig) Excludes(app string) bool {
	app = strings.TrimSpace(app)
	if app == "" {
		return false
	}
	for _, ex := range c.ExcludeApps {
		if strings.EqualFold(strings.TrimSpace(ex), app) {
			return true
		}
	}
	return false
}

// Package services – notification copy.
//
// Push notification text is selected from the recipient's preferred language
// via a golang.org/x/text matcher. Unknown or empty tags fall back to
// English. Copy lives here, next to the services that send it, because the
// singular/plural phrasing is part of the digest contract.
package services

import (
	"fmt"

	"golang.org/x/text/language"
)

// supportedLangs are the languages notification copy ships in. The first
// entry is the fallback.
var supportedLangs = []language.Tag{
	language.English,
	language.German,
}

var langMatcher = language.NewMatcher(supportedLangs)

// matchLang resolves a user's stored language tag to a supported copy
// language.
func matchLang(tag string) language.Tag {
	t, err := language.Parse(tag)
	if err != nil {
		return language.English
	}
	_, idx, _ := langMatcher.Match(t)
	return supportedLangs[idx]
}

// matchTitle is the push title announcing a fresh match.
func matchTitle(lang language.Tag) string {
	if lang == language.German {
		return "Es hat gefunkt!"
	}
	return "It's a match!"
}

// matchBody names the partner in the recipient's language.
func matchBody(lang language.Tag, partnerName string) string {
	if lang == language.German {
		return fmt.Sprintf("Du und %s habt euch dieselbe Nachricht geschickt.", partnerName)
	}
	return fmt.Sprintf("You and %s sent each other the same message.", partnerName)
}

// digestUserTitle is the push title of the personal digest.
func digestUserTitle(lang language.Tag) string {
	if lang == language.German {
		return "Neue Nachrichten warten"
	}
	return "New messages waiting"
}

// digestUserBody bakes the unmatched-inbound count into the body with
// singular/plural phrasing.
func digestUserBody(lang language.Tag, count int) string {
	if lang == language.German {
		if count == 1 {
			return "Du hast 1 neue unbeantwortete Nachricht erhalten."
		}
		return fmt.Sprintf("Du hast %d neue unbeantwortete Nachrichten erhalten.", count)
	}
	if count == 1 {
		return "You received 1 new message without a match yet."
	}
	return fmt.Sprintf("You received %d new messages without a match yet.", count)
}

// digestGlobalTitle is the push title of the global digest.
func digestGlobalTitle(lang language.Tag) string {
	if lang == language.German {
		return "Heute neu"
	}
	return "New today"
}

// digestGlobalBody reports how many new message contents appeared today.
func digestGlobalBody(lang language.Tag, count int64) string {
	if lang == language.German {
		if count == 1 {
			return "Heute ist 1 neue Nachricht im Umlauf."
		}
		return fmt.Sprintf("Heute sind %d neue Nachrichten im Umlauf.", count)
	}
	if count == 1 {
		return "1 new message is making the rounds today."
	}
	return fmt.Sprintf("%d new messages are making the rounds today.", count)
}

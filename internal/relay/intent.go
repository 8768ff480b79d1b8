package relay

import "strings"

// Intent is one of the recognized user commands. The set is closed: any
// other string becomes IntentUnknown.
type Intent string

const (
	IntentWake       Intent = "wake"
	IntentShutdown   Intent = "shutdown"
	IntentSleep      Intent = "sleep"
	IntentStatus     Intent = "status"
	IntentPing       Intent = "ping"
	IntentClipboard  Intent = "clipboard"
	IntentScreenshot Intent = "screenshot"
	IntentStats      Intent = "stats"
	IntentVolume     Intent = "volume"
	IntentUnknown    Intent = "unknown"
)

var allIntents = []Intent{
	IntentWake,
	IntentShutdown,
	IntentSleep,
	IntentStatus,
	IntentPing,
	IntentClipboard,
	IntentScreenshot,
	IntentStats,
	IntentVolume,
	IntentUnknown,
}

var intentSet = func() map[Intent]struct{} {
	set := make(map[Intent]struct{}, len(allIntents))
	for _, i := range allIntents {
		set[i] = struct{}{}
	}
	return set
}()

// AllIntents returns every Intent, IntentUnknown last.
func AllIntents() []Intent {
	out := make([]Intent, len(allIntents))
	copy(out, allIntents)
	return out
}

// ParseIntent maps a command word to an Intent. It accepts "/wake",
// "Wake" and "/wake@some_bot"; everything else is IntentUnknown.
func ParseIntent(s string) Intent {
	word := normalizeCommand(s)
	if _, ok := intentSet[Intent(word)]; ok {
		return Intent(word)
	}
	return IntentUnknown
}

func (i Intent) String() string {
	return string(i)
}

func normalizeCommand(s string) string {
	word := strings.ToLower(strings.TrimSpace(s))
	word = strings.TrimPrefix(word, "/")
	if at := strings.IndexByte(word, '@'); at >= 0 {
		word = word[:at]
	}
	return word
}

// isHelpCommand reports whether s asks for the command list.
func isHelpCommand(s string) bool {
	switch normalizeCommand(s) {
	case "help", "start":
		return true
	}
	return false
}

package services

import (
	"fmt"
	"strings"
)

// Language is the closed set of output languages the assistant speaks.
// Adding a language means adding a full column to every table below;
// ValidateSmallTalkTables refuses to start the app otherwise.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
)

// Languages lists every supported language.
var Languages = []Language{LanguageEnglish, LanguageHindi}

// ParseLanguage normalizes a language tag, falling back to English for
// anything outside the closed set.
func ParseLanguage(tag string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(tag))) {
	case LanguageHindi:
		return LanguageHindi
	default:
		return LanguageEnglish
	}
}

// SmallTalkIntent tags the sub-case a small-talk reply is chosen for.
type SmallTalkIntent string

const (
	IntentGreeting  SmallTalkIntent = "greeting"
	IntentTimeOfDay SmallTalkIntent = "time_of_day"
	IntentWellBeing SmallTalkIntent = "well_being"
	IntentGratitude SmallTalkIntent = "gratitude"
	IntentFarewell  SmallTalkIntent = "farewell"
	IntentIdentity  SmallTalkIntent = "identity"
	// IntentRefusal is its own classification result for polite off-domain
	// brush-offs, not a backstop for table drift: every phrase below maps to
	// an intent that every language answers.
	IntentRefusal SmallTalkIntent = "refusal"
)

// smallTalkIntents is the audit universe for the reply tables.
var smallTalkIntents = []SmallTalkIntent{
	IntentGreeting, IntentTimeOfDay, IntentWellBeing,
	IntentGratitude, IntentFarewell, IntentIdentity, IntentRefusal,
}

// smallTalkPhrases maps exact (lowercased, trimmed) inputs to an intent.
// Matching is exact on purpose: "hi, what should i do during a flood" must
// reach the knowledge path, not a canned greeting.
var smallTalkPhrases = map[string]SmallTalkIntent{
	// greetings
	"hi":       IntentGreeting,
	"hii":      IntentGreeting,
	"hello":    IntentGreeting,
	"hey":      IntentGreeting,
	"hey there": IntentGreeting,
	"namaste":  IntentGreeting,
	"नमस्ते":   IntentGreeting,
	"नमस्कार":  IntentGreeting,

	// time-of-day greetings
	"good morning":   IntentTimeOfDay,
	"good afternoon": IntentTimeOfDay,
	"good evening":   IntentTimeOfDay,
	"शुभ प्रभात":     IntentTimeOfDay,
	"शुभ संध्या":     IntentTimeOfDay,

	// well-being
	"how are you":       IntentWellBeing,
	"how are you doing": IntentWellBeing,
	"how is it going":   IntentWellBeing,
	"कैसे हो":           IntentWellBeing,
	"आप कैसे हैं":       IntentWellBeing,

	// gratitude
	"thanks":            IntentGratitude,
	"thank you":         IntentGratitude,
	"thank you so much": IntentGratitude,
	"thx":               IntentGratitude,
	"धन्यवाद":           IntentGratitude,
	"शुक्रिया":          IntentGratitude,

	// farewells
	"bye":           IntentFarewell,
	"goodbye":       IntentFarewell,
	"good night":    IntentFarewell,
	"see you":       IntentFarewell,
	"see you later": IntentFarewell,
	"अलविदा":        IntentFarewell,
	"फिर मिलेंगे":   IntentFarewell,

	// self-identification
	"who are you":        IntentIdentity,
	"what are you":       IntentIdentity,
	"what is your name":  IntentIdentity,
	"what's your name":   IntentIdentity,
	"who made you":       IntentIdentity,
	"आप कौन हैं":         IntentIdentity,
	"तुम कौन हो":         IntentIdentity,

	// polite off-domain requests that still deserve a canned brush-off
	"tell me a joke":  IntentRefusal,
	"sing me a song":  IntentRefusal,
	"कोई चुटकुला सुनाओ": IntentRefusal,
}

// smallTalkReplies holds one reply per (language, intent). The startup audit
// keeps this table and smallTalkPhrases provably in sync.
var smallTalkReplies = map[Language]map[SmallTalkIntent]string{
	LanguageEnglish: {
		IntentGreeting:  "Hello! I am Sankat Mitra, your disaster-preparedness assistant. Ask me anything about staying safe before, during, or after a disaster.",
		IntentTimeOfDay: "Good day! How can I help you prepare for or respond to an emergency?",
		IntentWellBeing: "I'm doing well and ready to help. What would you like to know about disaster safety?",
		IntentGratitude: "You're welcome! Stay safe, and ask me anytime.",
		IntentFarewell:  "Goodbye! Stay prepared and stay safe.",
		IntentIdentity:  "I am Sankat Mitra, an assistant that answers questions about disaster preparedness and response, built on verified reference material.",
		IntentRefusal:   "I can only help with disaster-preparedness and emergency-response questions. Please ask me something in that area.",
	},
	LanguageHindi: {
		IntentGreeting:  "नमस्ते! मैं संकट मित्र हूँ, आपका आपदा-तैयारी सहायक। आपदा से पहले, दौरान या बाद में सुरक्षित रहने के बारे में कुछ भी पूछें।",
		IntentTimeOfDay: "नमस्कार! आपात स्थिति की तैयारी में मैं आपकी कैसे मदद कर सकता हूँ?",
		IntentWellBeing: "मैं ठीक हूँ और मदद के लिए तैयार हूँ। आपदा सुरक्षा के बारे में आप क्या जानना चाहेंगे?",
		IntentGratitude: "आपका स्वागत है! सुरक्षित रहें, और कभी भी पूछें।",
		IntentFarewell:  "अलविदा! तैयार रहें और सुरक्षित रहें।",
		IntentIdentity:  "मैं संकट मित्र हूँ, एक सहायक जो सत्यापित संदर्भ सामग्री के आधार पर आपदा तैयारी और बचाव से जुड़े प्रश्नों के उत्तर देता है।",
		IntentRefusal:   "मैं केवल आपदा-तैयारी और आपातकालीन बचाव से जुड़े प्रश्नों में मदद कर सकता हूँ। कृपया उसी विषय में कुछ पूछें।",
	},
}

// apologyTemplates wrap an upstream failure in a user-facing, non-fatal
// reply; %v carries the error detail.
var apologyTemplates = map[Language]string{
	LanguageEnglish: "Sorry, I could not reach the knowledge service right now (%v). Please try again in a moment.",
	LanguageHindi:   "क्षमा करें, मैं अभी ज्ञान सेवा से संपर्क नहीं कर सका (%v)। कृपया थोड़ी देर में पुनः प्रयास करें।",
}

// languageDirectives steer the agent's output language on the knowledge
// path. English is the agent default and needs no directive.
var languageDirectives = map[Language]string{
	LanguageEnglish: "",
	LanguageHindi:   "Respond in Hindi (हिन्दी).",
}

// ClassifySmallTalk reports whether the query is small talk and which
// sub-case it hits. Comparison is exact match on the lowercased, trimmed
// query; substrings never match.
func ClassifySmallTalk(query string) (SmallTalkIntent, bool) {
	intent, ok := smallTalkPhrases[strings.ToLower(strings.TrimSpace(query))]
	return intent, ok
}

// SmallTalkReply returns the canned reply for the language and intent.
func SmallTalkReply(lang Language, intent SmallTalkIntent) string {
	return smallTalkReplies[lang][intent]
}

// ApologyReply renders the inference-failure apology with the error detail
// embedded.
func ApologyReply(lang Language, cause error) string {
	return fmt.Sprintf(apologyTemplates[lang], cause)
}

// LanguageDirective returns the directive appended to knowledge-path
// prompts, empty for the default language.
func LanguageDirective(lang Language) string {
	return languageDirectives[lang]
}

// ValidateSmallTalkTables checks at startup that the classifier's phrase set
// and the reply tables cover each other exactly: every phrase maps to a
// known intent, and every (language, intent) pair has a reply, an apology
// and a directive entry. Drift fails the boot instead of leaking the refusal
// reply at request time.
func ValidateSmallTalkTables() error {
	known := make(map[SmallTalkIntent]bool, len(smallTalkIntents))
	for _, intent := range smallTalkIntents {
		known[intent] = true
	}

	for phrase, intent := range smallTalkPhrases {
		if !known[intent] {
			return fmt.Errorf("small talk phrase %q maps to unknown intent %q", phrase, intent)
		}
		if phrase != strings.ToLower(strings.TrimSpace(phrase)) {
			return fmt.Errorf("small talk phrase %q is not normalized", phrase)
		}
	}

	for _, lang := range Languages {
		replies, ok := smallTalkReplies[lang]
		if !ok {
			return fmt.Errorf("language %q has no small talk reply table", lang)
		}
		for _, intent := range smallTalkIntents {
			if replies[intent] == "" {
				return fmt.Errorf("language %q is missing a reply for intent %q", lang, intent)
			}
		}
		if apologyTemplates[lang] == "" {
			return fmt.Errorf("language %q is missing an apology template", lang)
		}
		if _, ok := languageDirectives[lang]; !ok {
			return fmt.Errorf("language %q is missing a language directive entry", lang)
		}
	}
	return nil
}

package intent

import (
	"regexp"
	"strings"

	"github.com/anshaggr/foliochat/internal/chat"
)

// Type classifies what the user wants from a message.
type Type string

const (
	// TypeComponent means the user explicitly asked to see a portfolio
	// component.
	TypeComponent Type = "component"
	// TypeElaboration means the user wants more detail on a component that
	// was just shown.
	TypeElaboration Type = "elaboration"
	// TypePhilosophical means the user asked an opinion or worldview
	// question.
	TypePhilosophical Type = "philosophical"
	// TypeInformational is the fallback for everything else.
	TypeInformational Type = "informational"
)

// Analysis is the outcome of classifying one user message.
type Analysis struct {
	Type               Type
	ComponentType      chat.ComponentType
	Confidence         float64
	NeedsContext       bool
	RecentComponentRef chat.ComponentType
}

// Analyzer classifies user messages with a fixed-priority rule cascade:
// explicit component requests beat elaboration, elaboration beats
// philosophical, and everything else is informational. The analyzer is
// stateless; conversational context comes in with each call.
type Analyzer struct{}

func NewAnalyzer() *Analyzer { return &Analyzer{} }

// recentWindow is how many trailing messages are scanned for a shown
// component when judging elaboration intent.
const recentWindow = 3

// Analyze classifies message given the trailing conversation history.
func (a *Analyzer) Analyze(message string, recent []chat.Message) Analysis {
	lower := strings.ToLower(strings.TrimSpace(message))

	recentComponent, hasRecent := recentShownComponent(recent)

	if componentType, ok := detectComponentRequest(lower); ok {
		return Analysis{
			Type:          TypeComponent,
			ComponentType: componentType,
			Confidence:    0.9,
		}
	}

	if hasRecent && isElaborationRequest(lower, recentComponent) {
		return Analysis{
			Type:               TypeElaboration,
			Confidence:         0.85,
			NeedsContext:       true,
			RecentComponentRef: recentComponent,
		}
	}

	if isPhilosophicalQuestion(lower) {
		return Analysis{
			Type:       TypePhilosophical,
			Confidence: 0.8,
		}
	}

	return Analysis{
		Type:         TypeInformational,
		Confidence:   0.6,
		NeedsContext: hasRecent,
	}
}

// recentShownComponent returns the type of the newest shown-component
// message within the trailing window.
func recentShownComponent(messages []chat.Message) (chat.ComponentType, bool) {
	start := len(messages) - recentWindow
	if start < 0 {
		start = 0
	}
	for i := len(messages) - 1; i >= start; i-- {
		if messages[i].IsShownComponent() {
			return messages[i].Type, true
		}
	}
	return "", false
}

var (
	punctRe = regexp.MustCompile(`['"?!.,;:()]+`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// normalize lowercases, strips punctuation, and collapses whitespace so
// trigger matching survives phrasing like "Show me your PROJECTS!!".
func normalize(message string) string {
	cleaned := punctRe.ReplaceAllString(strings.ToLower(message), "")
	cleaned = spaceRe.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

// directTriggers are exact substring matches against the normalized
// message. Order matters: earlier entries win when a message matches
// several components.
var directTriggers = []struct {
	component chat.ComponentType
	phrases   []string
}{
	{chat.ComponentProfile, []string{"profile", "who are you", "about you", "introduce yourself"}},
	{chat.ComponentProjects, []string{"projects", "portfolio", "your work", "what have you built"}},
	{chat.ComponentSkills, []string{"skills", "your skills", "technical skills"}},
	{chat.ComponentContact, []string{"contact", "email", "get in touch", "reach you"}},
	{chat.ComponentResume, []string{"resume", "cv"}},
	{chat.ComponentInternship, []string{"internship", "availability", "hiring", "job opportunity"}},
}

// semanticPatterns catch flexible phrasings the trigger table misses. They
// run against the normalized message, so no punctuation appears in them.
var semanticPatterns = []struct {
	component chat.ComponentType
	patterns  []*regexp.Regexp
}{
	{chat.ComponentFun, []*regexp.Regexp{
		regexp.MustCompile(`craziest.*(thing|adventure|experience)`),
		regexp.MustCompile(`wildest.*(thing|adventure|experience)`),
		regexp.MustCompile(`most.*(epic|crazy|wild|fun|adventurous)`),
		regexp.MustCompile(`(adventure|crazy|wild|epic).*(story|experience|thing)`),
		regexp.MustCompile(`(hobbies|activities|adventures)`),
		regexp.MustCompile(`(trekking|hiking|climbing|outdoor)`),
		regexp.MustCompile(`fun.*(stuff|things|activities|photos)`),
		regexp.MustCompile(`(show|tell).*(adventure|fun|crazy|epic)`),
	}},
	{chat.ComponentProjects, []*regexp.Regexp{
		regexp.MustCompile(`(show|tell|see).*(projects|work|portfolio)`),
		regexp.MustCompile(`what.*(built|created|developed|worked on)`),
		regexp.MustCompile(`(projects|portfolio|work)`),
	}},
	{chat.ComponentSkills, []*regexp.Regexp{
		regexp.MustCompile(`(show|tell|list).*skills`),
		regexp.MustCompile(`what.*(skills|technologies|programming)`),
		regexp.MustCompile(`(technical|programming).*skills`),
	}},
}

// actionWords signal a display request when combined with a topic word.
var actionWords = []string{"show", "display", "see", "view", "check out", "take a look"}

// actionTopics maps topic patterns to components for the action-word
// fallback, checked in order.
var actionTopics = []struct {
	component chat.ComponentType
	topic     *regexp.Regexp
}{
	{chat.ComponentProjects, regexp.MustCompile(`projects?|portfolio|work|built`)},
	{chat.ComponentSkills, regexp.MustCompile(`skills?`)},
	{chat.ComponentProfile, regexp.MustCompile(`profile|about`)},
	{chat.ComponentContact, regexp.MustCompile(`contact|email`)},
	{chat.ComponentResume, regexp.MustCompile(`resume|cv`)},
	{chat.ComponentFun, regexp.MustCompile(`adventure|fun|photos|crazy|wild`)},
}

// moreExact are whole-message matches that open the picklist of everything
// else on offer. Substring matching would swallow elaboration phrasing like
// "tell me more".
var moreExact = []string{"show me more options", "more options", "more", "what else"}

func detectComponentRequest(message string) (chat.ComponentType, bool) {
	cleaned := normalize(message)

	for _, phrase := range moreExact {
		if cleaned == phrase {
			return chat.ComponentMore, true
		}
	}

	for _, entry := range directTriggers {
		for _, phrase := range entry.phrases {
			if strings.Contains(cleaned, phrase) {
				return entry.component, true
			}
		}
	}

	for _, entry := range semanticPatterns {
		for _, pattern := range entry.patterns {
			if pattern.MatchString(cleaned) {
				return entry.component, true
			}
		}
	}

	for _, word := range actionWords {
		if !strings.Contains(cleaned, word) {
			continue
		}
		for _, entry := range actionTopics {
			if entry.topic.MatchString(cleaned) {
				return entry.component, true
			}
		}
		break
	}

	return "", false
}

var elaborationKeywords = []string{
	"tell me more", "explain", "elaborate", "details", "about that",
	"how did", "what happened", "describe", "more about", "can you tell me more",
}

var contextKeywords = []string{"that", "this", "the one", "mentioned", "above", "shown"}

// elaborationPatterns are narrow per-component follow-up shapes, used when
// no generic elaboration or context keyword fired.
var elaborationPatterns = map[chat.ComponentType]*regexp.Regexp{
	chat.ComponentFun:      regexp.MustCompile(`tell me about.*trek|how was.*kedarnath|what happened.*mountain|describe.*adventure`),
	chat.ComponentProjects: regexp.MustCompile(`tell me about.*study buddy|how did you build|what was.*challenging|describe.*development`),
	chat.ComponentSkills:   regexp.MustCompile(`how did you learn|tell me about.*react|what's your experience.*python|describe your.*development`),
	chat.ComponentProfile:  regexp.MustCompile(`tell me more about yourself|what's your story|describe your journey|how did you get into`),
}

func isElaborationRequest(message string, recentComponent chat.ComponentType) bool {
	for _, kw := range elaborationKeywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	for _, kw := range contextKeywords {
		if strings.Contains(message, kw) {
			return true
		}
	}

	pattern, ok := elaborationPatterns[recentComponent]
	if !ok {
		return false
	}
	return pattern.MatchString(message)
}

var philosophicalKeywords = []string{
	"philosophy", "approach", "opinion", "think about", "believe",
	"feel about", "thoughts on", "perspective",
}

// starterPatterns classify question openers. except carves out practical
// continuations that would otherwise match the opener.
var starterPatterns = []struct {
	match  *regexp.Regexp
	except *regexp.Regexp
}{
	{
		match:  regexp.MustCompile(`^what are you`),
		except: regexp.MustCompile(`^what are you\s*(working on|building|doing|studying|learning|planning|skilled)`),
	},
	{
		match:  regexp.MustCompile(`^how are you`),
		except: regexp.MustCompile(`^how are you\s*(different|building|working|doing)`),
	},
	{
		match:  regexp.MustCompile(`^why are you`),
		except: regexp.MustCompile(`^why are you\s*(interested|passionate|good)`),
	},
	{match: regexp.MustCompile(`^what do you think about`)},
	{match: regexp.MustCompile(`^what's your opinion on`)},
	{match: regexp.MustCompile(`^how do you feel about`)},
	{match: regexp.MustCompile(`work philosophy`)},
	{match: regexp.MustCompile(`approach to`)},
	{match: regexp.MustCompile(`believe in`)},
}

func isPhilosophicalQuestion(message string) bool {
	for _, kw := range philosophicalKeywords {
		if strings.Contains(message, kw) {
			return true
		}
	}
	for _, p := range starterPatterns {
		if p.match.MatchString(message) {
			if p.except != nil && p.except.MatchString(message) {
				continue
			}
			return true
		}
	}
	return false
}

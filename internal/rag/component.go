package rag

import (
	"fmt"
	"strings"

	"github.com/anshaggr/foliochat/internal/chat"
)

// buildComponentContext renders the prompt block describing what the user
// just saw on screen, so the follow-up can reference it specifically.
func buildComponentContext(cc chat.ComponentContext) string {
	status := "Displayed successfully"
	if !cc.Shown {
		status = "Tried but failed"
	}

	var b strings.Builder

	switch cc.Type {
	case chat.ComponentProjects:
		b.WriteString("Component Context: Displayed projects showcase:\n")
		b.WriteString(bulleted(cc.AvailableProjects,
			"Study Buddy", "Aarogya AI", "Exam Guard", "DATAI", "MUJeats", "Agentic Chatbot System"))
		writeQueryStatus(&b, cc.UserQuery, status)
		b.WriteString(`
PROJECT CONTEXT:
- Study Buddy: Voice AI learning tool (6 months dev)
- Aarogya AI: Multilingual chatbot using RAG
- Exam Guard: AI cheat detection (1st prize @ MUJ)
- DATAI: Natural language to database tool
- MUJeats: Flutter food ordering UI
- Agentic Chatbot System: 3rd place @ Assesli, got interview offer

Context: User saw interactive project cards with tech badges and achievements.`)

	case chat.ComponentSkills:
		b.WriteString("Component Context: Displayed skills matrix:\n")
		b.WriteString(bulleted(cc.SkillCategories, "Full-stack Dev, AI/ML, Flutter, Cloud, DBs"))
		writeQueryStatus(&b, cc.UserQuery, status)
		b.WriteString(`
SKILLS CONTEXT:
- Loves React + Python
- Good at building full-stack AI apps
- Specializes in GenAI, Flutter, and Supabase magic

Context: Skills section with icons, categories, and tech stack highlights.`)

	case chat.ComponentFun:
		b.WriteString("Component Context: Displayed adventure gallery:\n")
		b.WriteString(bulleted(cc.AdventureHighlights,
			"Kedarnath trek (22 km)", "Goa beach exploration on scooty"))
		writeQueryStatus(&b, cc.UserQuery, status)
		b.WriteString(`
ADVENTURE CONTEXT:
- Kedarnath Trek: 22 km trek, post-1st year, with 3 friends
- Experience: Spiritual, intense, soul-touching
- Goa: Finalist @ BITS Hackathon, beach-hopping on scooty

Context: Fun section showing real-life adventures and crazy bits.`)

	case chat.ComponentProfile:
		b.WriteString(`Component Context: Displayed profile details:
- Student @ MUJ, CSE 3rd year
- From Gurgaon, 8+ CGPA
- Into full-stack, GenAI, adventures
- Hobbies: Cricket, basketball, chess, pool, TT, gaming (console > mobile), car lover
`)
		writeQueryStatus(&b, cc.UserQuery, status)
		b.WriteString("\nContext: User saw intro card with story, academic track, and interests.")

	case chat.ComponentContact:
		b.WriteString(`Component Context: Displayed contact info:
- Email, GitHub, LinkedIn
- Location: Gurgaon
- Status: Open to internships/freelance
`)
		writeQueryStatus(&b, cc.UserQuery, status)
		b.WriteString("\nContext: User got clickable links to reach out on multiple platforms.")

	case chat.ComponentInternship:
		b.WriteString("Component Context: Displayed internship availability:\n")
		if cc.Availability != "" {
			fmt.Fprintf(&b, "- Availability: %s\n", cc.Availability)
		} else {
			b.WriteString("- Summer 2026, part-time anytime\n")
		}
		if len(cc.Interests) > 0 {
			for _, interest := range cc.Interests {
				fmt.Fprintf(&b, "- Interest: %s\n", interest)
			}
		} else {
			b.WriteString("- Full-stack, GenAI, startup vibes\n")
		}
		writeQueryStatus(&b, cc.UserQuery, status)
		b.WriteString("\nContext: Shared availability and target roles with preferred work styles.")

	case chat.ComponentResume:
		b.WriteString(`Component Context: Resume download option displayed:
- Updated resume with hackathons, projects, experience
`)
		writeQueryStatus(&b, cc.UserQuery, status)
		b.WriteString("\nContext: Resume card with link to downloadable PDF.")

	default:
		fmt.Fprintf(&b, "Component Context: Displayed generic content for %s\n", cc.Type)
		writeQueryStatus(&b, cc.UserQuery, status)
	}

	return b.String()
}

func writeQueryStatus(b *strings.Builder, userQuery, status string) {
	fmt.Fprintf(b, "\nUser Query: %q\nComponent Status: %s\n", userQuery, status)
}

// bulleted renders items as a bullet list, or the defaults when empty.
func bulleted(items []string, defaults ...string) string {
	if len(items) == 0 {
		items = defaults
	}
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- %s\n", item)
	}
	return b.String()
}

var componentFallbacks = map[chat.ComponentType]string{
	chat.ComponentProjects:   "**10+ projects** in my arsenal! My favs? **Study Buddy**, **Exam Guard**, and **Aarogya AI**. Wanna dive into one?",
	chat.ComponentSkills:     "My toolkit's sharp: **React, Python, Gemini, Supabase, Flutter**, and more! What tech are you into?",
	chat.ComponentFun:        "Bro, that **Kedarnath trek** (22 km uphill madness) changed me. And Goa? Beaches + scooty = unbeatable vibe. You into adventure?",
	chat.ComponentProfile:    "**Techie by day, trekker by heart.** Gurgaon boy, 20 y/o, living dev life with 10+ projects and no regrets. What about you?",
	chat.ComponentContact:    "Reach out on **LinkedIn, GitHub, or email**. I reply faster than a CI/CD pipeline deploys.",
	chat.ComponentInternship: "**Summer 2026 ready!** Full-stack, GenAI, product roles, send 'em my way!",
	chat.ComponentResume:     "**Updated resume** is one click away. Curious about anything specific inside?",
}

// componentFallback is the canned follow-up used when generation fails.
func componentFallback(t chat.ComponentType) string {
	if text, ok := componentFallbacks[t]; ok {
		return text
	}
	return "That was fun to show! Want to know more about me or something else?"
}
